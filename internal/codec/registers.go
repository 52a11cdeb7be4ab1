package codec

// Register map of the peripheral.
const (
	RegStatus            = 0x40
	RegChargeLevel       = 0x41
	RegFaultEvent        = 0x44
	RegButtonEvent       = 0x45
	RegBatteryTemp       = 0x47
	RegBatteryVoltage    = 0x49
	RegBatteryCurrent    = 0x4B
	RegIoVoltage         = 0x4D
	RegIoCurrent         = 0x4F
	RegChargingConfig    = 0x51
	RegBatteryProfileID  = 0x52
	RegBatteryProfile    = 0x53
	RegBatteryExtProfile = 0x54
	RegBatteryTempSense  = 0x5D
	RegPowerInputsConfig = 0x5E
	RegRunPinConfig      = 0x5F
	RegPowerRegulator    = 0x60
	RegWatchdog          = 0x61
	RegPowerOff          = 0x62
	RegWakeupOnCharge    = 0x63
	RegSystemPowerSwitch = 0x64
	RegLedState          = 0x66 // + led index
	RegLedBlink          = 0x68 // + led index
	RegLedConfig         = 0x6A // + led index
	RegButtonConfig      = 0x6E // + button index
	RegIoConfig          = 0x72 // + 5*(pin-1)
	RegIoAccess          = 0x75 // + 5*(pin-1)
	RegI2CAddress        = 0x7C // + slot index
	RegEepromProtect     = 0x7E
	RegEepromAddress     = 0x7F
	RegRtcTime           = 0xB0
	RegRtcAlarm          = 0xB9
	RegRtcControlStatus  = 0xC2
	RegResetToDefault    = 0xF0
	RegFirmwareVersion   = 0xFD
)

// Payload widths in bytes, checksum excluded.
const (
	LenStatus            = 1
	LenChargeLevel       = 1
	LenFaultEvent        = 1
	LenButtonEvent       = 2
	LenAnalog            = 2
	LenConfigByte        = 1
	LenBatteryProfile    = 14
	LenBatteryExtProfile = 17
	LenWatchdog          = 2
	LenLedState          = 3
	LenLedBlink          = 9
	LenLedConfig         = 4
	LenButtonConfig      = 12
	LenIoConfig          = 5
	LenIoAccess          = 2
	LenRtcTime           = 9
	LenRtcAlarm          = 9
	LenRtcControlStatus  = 2
	LenFirmwareVersion   = 2
)

// ResetToDefaultPayload is the fixed key the firmware expects before it
// restores factory configuration.
var ResetToDefaultPayload = []byte{0xAA, 0x55, 0x0A, 0xA3}
