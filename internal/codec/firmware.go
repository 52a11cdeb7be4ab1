package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

// FirmwareVersion is decoded from the firmware version register. The first
// byte carries major and minor as nibbles, the second the build variant.
type FirmwareVersion struct {
	Major   uint8
	Minor   uint8
	Variant uint8
}

func DecodeFirmwareVersion(d []byte) FirmwareVersion {
	return FirmwareVersion{Major: d[0] >> 4, Minor: d[0] & 0x0F, Variant: d[1]}
}

// AtLeast reports whether v is major.minor or newer.
func (v FirmwareVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseFirmwareVersion parses "major.minor".
func ParseFirmwareVersion(s string) (FirmwareVersion, error) {
	var v FirmwareVersion
	if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err != nil {
		return FirmwareVersion{}, errors.Wrapf(err, "firmware version %q", s)
	}
	if v.Major > 0x0F || v.Minor > 0x0F {
		return FirmwareVersion{}, errors.Errorf("firmware version %q out of range", s)
	}
	return v, nil
}
