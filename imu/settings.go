package imu

import "fmt"

var ErrInvalidSetting = fmt.Errorf("lsm9ds0: setting outside the supported set")

// AccelRange is the accelerometer full-scale range field of CTRL_REG2_XM
// (bits 5:3). A wider range trades resolution for headroom.
type AccelRange byte

const (
	AccelRange2G  AccelRange = 0b000 << 3
	AccelRange4G  AccelRange = 0b001 << 3
	AccelRange6G  AccelRange = 0b010 << 3
	AccelRange8G  AccelRange = 0b011 << 3
	AccelRange16G AccelRange = 0b100 << 3
)

// mgPerLSB returns the milli-g weight of one raw count for the range. The
// switch is exhaustive over the valid codes; anything else is rejected before
// it can desynchronize the cached factor from the register.
func (r AccelRange) mgPerLSB() (float32, error) {
	switch r {
	case AccelRange2G:
		return 0.061, nil
	case AccelRange4G:
		return 0.122, nil
	case AccelRange6G:
		return 0.183, nil
	case AccelRange8G:
		return 0.244, nil
	case AccelRange16G:
		// vendor table value; the datasheet step suggests 0.488
		return 0.732, nil
	}
	return 0, fmt.Errorf("%w: accel range %#x", ErrInvalidSetting, byte(r))
}

func (r AccelRange) String() string {
	switch r {
	case AccelRange2G:
		return "2g"
	case AccelRange4G:
		return "4g"
	case AccelRange6G:
		return "6g"
	case AccelRange8G:
		return "8g"
	case AccelRange16G:
		return "16g"
	}
	return fmt.Sprintf("invalid(%#x)", byte(r))
}

func ParseAccelRange(s string) (AccelRange, error) {
	switch s {
	case "2g":
		return AccelRange2G, nil
	case "4g":
		return AccelRange4G, nil
	case "6g":
		return AccelRange6G, nil
	case "8g":
		return AccelRange8G, nil
	case "16g":
		return AccelRange16G, nil
	}
	return 0, fmt.Errorf("%w: accel range %q (valid: 2g, 4g, 6g, 8g, 16g)", ErrInvalidSetting, s)
}

// MagGain is the magnetometer full-scale gain field of CTRL_REG6_XM
// (bits 6:5).
type MagGain byte

const (
	MagGain2Gauss  MagGain = 0b00 << 5
	MagGain4Gauss  MagGain = 0b01 << 5
	MagGain8Gauss  MagGain = 0b10 << 5
	MagGain12Gauss MagGain = 0b11 << 5
)

func (g MagGain) mgaussPerLSB() (float32, error) {
	switch g {
	case MagGain2Gauss:
		return 0.08, nil
	case MagGain4Gauss:
		return 0.16, nil
	case MagGain8Gauss:
		return 0.32, nil
	case MagGain12Gauss:
		return 0.48, nil
	}
	return 0, fmt.Errorf("%w: mag gain %#x", ErrInvalidSetting, byte(g))
}

func (g MagGain) String() string {
	switch g {
	case MagGain2Gauss:
		return "2gauss"
	case MagGain4Gauss:
		return "4gauss"
	case MagGain8Gauss:
		return "8gauss"
	case MagGain12Gauss:
		return "12gauss"
	}
	return fmt.Sprintf("invalid(%#x)", byte(g))
}

func ParseMagGain(s string) (MagGain, error) {
	switch s {
	case "2gauss":
		return MagGain2Gauss, nil
	case "4gauss":
		return MagGain4Gauss, nil
	case "8gauss":
		return MagGain8Gauss, nil
	case "12gauss":
		return MagGain12Gauss, nil
	}
	return 0, fmt.Errorf("%w: mag gain %q (valid: 2gauss, 4gauss, 8gauss, 12gauss)", ErrInvalidSetting, s)
}

// GyroScale is the gyroscope full-scale field of CTRL_REG4_G (bits 5:4).
type GyroScale byte

const (
	GyroScale245DPS  GyroScale = 0b00 << 4
	GyroScale500DPS  GyroScale = 0b01 << 4
	GyroScale2000DPS GyroScale = 0b10 << 4
)

func (s GyroScale) dpsPerLSB() (float32, error) {
	switch s {
	case GyroScale245DPS:
		return 0.00875, nil
	case GyroScale500DPS:
		return 0.01750, nil
	case GyroScale2000DPS:
		return 0.07000, nil
	}
	return 0, fmt.Errorf("%w: gyro scale %#x", ErrInvalidSetting, byte(s))
}

func (s GyroScale) String() string {
	switch s {
	case GyroScale245DPS:
		return "245dps"
	case GyroScale500DPS:
		return "500dps"
	case GyroScale2000DPS:
		return "2000dps"
	}
	return fmt.Sprintf("invalid(%#x)", byte(s))
}

func ParseGyroScale(s string) (GyroScale, error) {
	switch s {
	case "245dps":
		return GyroScale245DPS, nil
	case "500dps":
		return GyroScale500DPS, nil
	case "2000dps":
		return GyroScale2000DPS, nil
	}
	return 0, fmt.Errorf("%w: gyro scale %q (valid: 245dps, 500dps, 2000dps)", ErrInvalidSetting, s)
}
