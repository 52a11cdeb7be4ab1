package juice

import "juicebus/internal/codec"

// RtcAlarm reads and sets the real-time clock and its wake-up alarm.
type RtcAlarm struct{ d *dev }

func (r *RtcAlarm) Time() (codec.DateTime, error) {
	b, err := r.d.read(codec.RegRtcTime, codec.LenRtcTime)
	if err != nil {
		return codec.DateTime{}, err
	}
	return codec.DecodeDateTime(b), nil
}

// SetTime writes the clock. The read-back may report the hour in the other
// representation or may have ticked by a second.
func (r *RtcAlarm) SetTime(t codec.DateTime) error {
	b, err := codec.EncodeDateTime(t)
	if err != nil {
		return err
	}
	return r.d.verifyFunc(codec.RegRtcTime, b, codec.EquivalentTime)
}

func (r *RtcAlarm) Alarm() (codec.Alarm, error) {
	b, err := r.d.read(codec.RegRtcAlarm, codec.LenRtcAlarm)
	if err != nil {
		return codec.Alarm{}, err
	}
	return codec.DecodeAlarm(b), nil
}

func (r *RtcAlarm) SetAlarm(a codec.Alarm) error {
	b, err := codec.EncodeAlarm(a)
	if err != nil {
		return err
	}
	return r.d.verifyFunc(codec.RegRtcAlarm, b, codec.EquivalentAlarm)
}

func (r *RtcAlarm) ControlStatus() (codec.ControlStatus, error) {
	b, err := r.d.read(codec.RegRtcControlStatus, codec.LenRtcControlStatus)
	if err != nil {
		return codec.ControlStatus{}, err
	}
	return codec.DecodeControlStatus(b), nil
}

// ClearAlarmFlag acknowledges a fired alarm. Nothing is written when the
// flag is already clear.
func (r *RtcAlarm) ClearAlarmFlag() error {
	cur, err := r.d.read(codec.RegRtcControlStatus, codec.LenRtcControlStatus)
	if err != nil {
		return err
	}
	b, changed := codec.ClearAlarmFlag(cur)
	if !changed {
		return nil
	}
	return r.d.verify(codec.RegRtcControlStatus, b)
}

// SetWakeupEnabled arms or disarms power-on by alarm.
func (r *RtcAlarm) SetWakeupEnabled(on bool) error {
	cur, err := r.d.read(codec.RegRtcControlStatus, codec.LenRtcControlStatus)
	if err != nil {
		return err
	}
	b, changed := codec.SetWakeupEnabled(cur, on)
	if !changed {
		return nil
	}
	return r.d.verify(codec.RegRtcControlStatus, b)
}
