package imu

import "context"

// SubDevice selects one of the two physical dies inside the LSM9DS0 package.
// The gyroscope sits on its own bus address / chip select; the accelerometer,
// magnetometer and temperature sensor share the second one.
type SubDevice int

const (
	Gyroscope SubDevice = iota
	AccelMagTemp
)

func (d SubDevice) String() string {
	switch d {
	case Gyroscope:
		return "gyro"
	case AccelMagTemp:
		return "accel/mag"
	}
	return "unknown"
}

// Transport executes register transactions against one of the sensor's
// sub-devices. Calls are synchronous and return only once the underlying bus
// transaction completed or failed; failures are reported to the caller
// unmodified, retry policy belongs to the transport or above.
type Transport interface {
	// ReadRegister returns the content of a single 8-bit register.
	ReadRegister(ctx context.Context, dev SubDevice, reg byte) (byte, error)
	// ReadBurst fills buf from consecutive registers starting at reg. The
	// caller is expected to set the device auto-increment bit in reg.
	ReadBurst(ctx context.Context, dev SubDevice, reg byte, buf []byte) error
	// WriteRegister writes a single 8-bit register.
	WriteRegister(ctx context.Context, dev SubDevice, reg byte, value byte) error
}
