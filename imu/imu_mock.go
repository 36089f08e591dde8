package imu

import (
	"context"
)

// VectorBehaviorFunc defines the function signature for 3-axis readings.
// It returns the X, Y, Z values or an error.
type VectorBehaviorFunc func(ctx context.Context) (float32, float32, float32, error)

// ScalarBehaviorFunc defines the function signature for single-value
// readings.
type ScalarBehaviorFunc func(ctx context.Context) (float32, error)

// MockIMU is a hardware-free stand-in for the LSM9DS0 that produces readings
// from behavior functions. It mirrors the physical-unit accessor set of the
// real driver so consumers can swap it in for testing or simulation.
type MockIMU struct {
	accelBehavior VectorBehaviorFunc
	magBehavior   VectorBehaviorFunc
	gyroBehavior  VectorBehaviorFunc
	tempBehavior  ScalarBehaviorFunc
}

// NewMockIMU creates a mock 9-axis sensor with the given behavior functions.
//
// Example usage:
//
//	// sensor at rest, 1g on the Z axis
//	m := NewMockIMU(
//		func(ctx context.Context) (float32, float32, float32, error) { return 0, 0, 9.81, nil },
//		func(ctx context.Context) (float32, float32, float32, error) { return 0.2, 0, 0.4, nil },
//		func(ctx context.Context) (float32, float32, float32, error) { return 0, 0, 0, nil },
//		func(ctx context.Context) (float32, error) { return 23.5, nil },
//	)
func NewMockIMU(accel, mag, gyro VectorBehaviorFunc, temp ScalarBehaviorFunc) *MockIMU {
	return &MockIMU{
		accelBehavior: accel,
		magBehavior:   mag,
		gyroBehavior:  gyro,
		tempBehavior:  temp,
	}
}

// GetAcceleration returns the acceleration in m/s² by calling the accel
// behavior function.
func (m *MockIMU) GetAcceleration(ctx context.Context) (float32, float32, float32, error) {
	return m.accelBehavior(ctx)
}

// GetMagneticField returns the magnetic field in gauss by calling the mag
// behavior function.
func (m *MockIMU) GetMagneticField(ctx context.Context) (float32, float32, float32, error) {
	return m.magBehavior(ctx)
}

// GetAngularRateDPS returns the angular rate in degrees per second by calling
// the gyro behavior function.
func (m *MockIMU) GetAngularRateDPS(ctx context.Context) (float32, float32, float32, error) {
	return m.gyroBehavior(ctx)
}

// GetTemperature returns the temperature in °C by calling the temperature
// behavior function.
func (m *MockIMU) GetTemperature(ctx context.Context) (float32, error) {
	return m.tempBehavior(ctx)
}
