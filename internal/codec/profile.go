package codec

import (
	"math"

	"juicebus/internal/errcode"
)

// affine maps a physical quantity to a raw register value as
// value = raw*scale + offset, with raw limited to [0, max].
type affine struct {
	scale, offset, max int
}

func (a affine) decode(raw int) int { return raw*a.scale + a.offset }

// encode rounds v to the nearest representable raw value.
func (a affine) encode(v int) (int, error) {
	raw := int(math.Round(float64(v-a.offset) / float64(a.scale)))
	if raw < 0 || raw > a.max {
		return 0, errcode.BadArgument
	}
	return raw, nil
}

var (
	chargeCurrentCodec      = affine{scale: 75, offset: 550, max: 26}
	terminationCurrentCodec = affine{scale: 50, offset: 50, max: 7}
	regulationVoltageCodec  = affine{scale: 20, offset: 3500, max: 47}
	cutoffVoltageCodec      = affine{scale: 20, offset: 0, max: 255}
	ntcResistanceCodec      = affine{scale: 10, offset: 0, max: 0xFFFF}
)

// BatteryProfile is the custom electrical profile of the battery. Currents
// in mA, voltages in mV, temperatures in °C, NTC resistance in Ω.
type BatteryProfile struct {
	Capacity           int  `json:"capacity"`
	ChargeCurrent      int  `json:"chargeCurrent"`
	TerminationCurrent int  `json:"terminationCurrent"`
	RegulationVoltage  int  `json:"regulationVoltage"`
	CutoffVoltage      int  `json:"cutoffVoltage"`
	TempCold           int8 `json:"tempCold"`
	TempCool           int8 `json:"tempCool"`
	TempWarm           int8 `json:"tempWarm"`
	TempHot            int8 `json:"tempHot"`
	NTCB               int  `json:"ntcB"`
	NTCResistance      int  `json:"ntcResistance"`
}

func allZero(d []byte) bool {
	for _, b := range d {
		if b != 0 {
			return false
		}
	}
	return true
}

// DecodeBatteryProfile reports ok == false for the all-zero image, which the
// firmware uses to mark the custom profile as unset.
func DecodeBatteryProfile(d []byte) (p BatteryProfile, ok bool) {
	if allZero(d[:LenBatteryProfile]) {
		return BatteryProfile{}, false
	}
	return BatteryProfile{
		Capacity:           int(le16(d[0], d[1])),
		ChargeCurrent:      chargeCurrentCodec.decode(int(d[2])),
		TerminationCurrent: terminationCurrentCodec.decode(int(d[3])),
		RegulationVoltage:  regulationVoltageCodec.decode(int(d[4])),
		CutoffVoltage:      cutoffVoltageCodec.decode(int(d[5])),
		TempCold:           int8(d[6]),
		TempCool:           int8(d[7]),
		TempWarm:           int8(d[8]),
		TempHot:            int8(d[9]),
		NTCB:               int(le16(d[10], d[11])),
		NTCResistance:      ntcResistanceCodec.decode(int(le16(d[12], d[13]))),
	}, true
}

func EncodeBatteryProfile(p BatteryProfile) ([]byte, error) {
	if p.Capacity < 0 || p.Capacity > 0xFFFF || p.NTCB < 0 || p.NTCB > 0xFFFF {
		return nil, errcode.BadArgument
	}
	chg, err := chargeCurrentCodec.encode(p.ChargeCurrent)
	if err != nil {
		return nil, err
	}
	term, err := terminationCurrentCodec.encode(p.TerminationCurrent)
	if err != nil {
		return nil, err
	}
	reg, err := regulationVoltageCodec.encode(p.RegulationVoltage)
	if err != nil {
		return nil, err
	}
	cut, err := cutoffVoltageCodec.encode(p.CutoffVoltage)
	if err != nil {
		return nil, err
	}
	ntcR, err := ntcResistanceCodec.encode(p.NTCResistance)
	if err != nil {
		return nil, err
	}

	d := make([]byte, LenBatteryProfile)
	putLE16(d[0:2], uint16(p.Capacity))
	d[2] = byte(chg)
	d[3] = byte(term)
	d[4] = byte(reg)
	d[5] = byte(cut)
	d[6] = byte(p.TempCold)
	d[7] = byte(p.TempCool)
	d[8] = byte(p.TempWarm)
	d[9] = byte(p.TempHot)
	putLE16(d[10:12], uint16(p.NTCB))
	putLE16(d[12:14], uint16(ntcR))
	return d, nil
}

type Chemistry string

const (
	ChemistryLiPo    Chemistry = "LIPO"
	ChemistryLiFePO4 Chemistry = "LIFEPO4"
	ChemistryUnknown Chemistry = Unknown
)

var chemistries = []Chemistry{ChemistryLiPo, ChemistryLiFePO4}

// BatteryExtProfile holds open-circuit voltages (mV) and internal
// resistances (Ω, 0.01 resolution) at 10, 50 and 90 % charge.
type BatteryExtProfile struct {
	Chemistry Chemistry `json:"chemistry"`
	OCV10     int       `json:"ocv10"`
	OCV50     int       `json:"ocv50"`
	OCV90     int       `json:"ocv90"`
	R10       float64   `json:"r10"`
	R50       float64   `json:"r50"`
	R90       float64   `json:"r90"`
}

func DecodeBatteryExtProfile(d []byte) (p BatteryExtProfile, ok bool) {
	if allZero(d[:LenBatteryExtProfile]) {
		return BatteryExtProfile{}, false
	}
	return BatteryExtProfile{
		Chemistry: lookup(chemistries, int(d[0]), ChemistryUnknown),
		OCV10:     int(le16(d[1], d[2])),
		OCV50:     int(le16(d[3], d[4])),
		OCV90:     int(le16(d[5], d[6])),
		R10:       float64(le16(d[7], d[8])) / 100,
		R50:       float64(le16(d[9], d[10])) / 100,
		R90:       float64(le16(d[11], d[12])) / 100,
	}, true
}

func EncodeBatteryExtProfile(p BatteryExtProfile) ([]byte, error) {
	chem := index(chemistries, p.Chemistry)
	if chem < 0 {
		return nil, errcode.BadArgument
	}
	d := make([]byte, LenBatteryExtProfile)
	d[0] = byte(chem)
	for i, v := range []int{p.OCV10, p.OCV50, p.OCV90} {
		if v < 0 || v > 0xFFFF {
			return nil, errcode.BadArgument
		}
		putLE16(d[1+2*i:], uint16(v))
	}
	for i, r := range []float64{p.R10, p.R50, p.R90} {
		raw := math.Round(r * 100)
		if math.IsNaN(raw) || raw < 0 || raw > 0xFFFF {
			return nil, errcode.BadArgument
		}
		putLE16(d[7+2*i:], uint16(raw))
	}
	for i := 13; i < LenBatteryExtProfile; i++ {
		d[i] = 0xFF
	}
	return d, nil
}

// Battery profile names by firmware generation. The profile id register
// indexes into the list that matches the running firmware.
var (
	profilesLegacy = []string{"BP6X", "BP7X", "SNN5843", "LIPO8047109"}
	profilesV13    = []string{
		"PJZERO_1000", "BP7X_1820", "SNN5843_2300", "PJLIPO_12000",
		"PJLIPO_5000", "PJBP7X_1600", "PJSNN5843_1300", "PJZERO_1200",
		"BP6X_1400", "PJLIPO_600", "PJLIPO_500", "PJLIPO_2500",
	}
)

// BatteryProfileNames returns the predefined profile names of fw.
func BatteryProfileNames(fw FirmwareVersion) []string {
	if fw.AtLeast(1, 3) {
		return profilesV13
	}
	return profilesLegacy
}

// SupportsExtProfile reports whether fw has the extended profile register.
func SupportsExtProfile(fw FirmwareVersion) bool { return fw.AtLeast(1, 4) }

const (
	ProfileDefault = "DEFAULT"
	ProfileCustom  = "CUSTOM"

	profileIDCustom  = 0x0F
	profileIDDefault = 0xFF
)

// ProfileStatus is the decoded battery profile id register.
type ProfileStatus struct {
	Profile  string `json:"profile,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Source   string `json:"source,omitempty"`
	Validity string `json:"validity"`
}

func DecodeProfileStatus(d []byte, fw FirmwareVersion) ProfileStatus {
	id := d[0]
	if id == 0xFF {
		return ProfileStatus{Validity: "DATA_WRITE_NOT_COMPLETED"}
	}
	s := ProfileStatus{Origin: "PREDEFINED", Source: "HOST", Validity: "VALID"}
	if id&0x0F == profileIDCustom {
		s.Origin = ProfileCustom
		s.Profile = ProfileCustom
	} else {
		s.Profile = lookup(BatteryProfileNames(fw), int(id&0x0F), Unknown)
	}
	switch {
	case id&0x10 != 0:
		s.Source = "DIP_SWITCH"
	case id&0x20 != 0:
		s.Source = "RESISTOR"
	}
	if id&0x80 != 0 {
		s.Validity = "INVALID"
	}
	return s
}

// EncodeProfileID selects a predefined profile by name, CUSTOM or DEFAULT.
func EncodeProfileID(name string, fw FirmwareVersion) ([]byte, error) {
	switch name {
	case ProfileDefault:
		return []byte{profileIDDefault}, nil
	case ProfileCustom:
		return []byte{profileIDCustom}, nil
	}
	i := index(BatteryProfileNames(fw), name)
	if i < 0 {
		return nil, errcode.BadArgument
	}
	return []byte{byte(i)}, nil
}
