package imu

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

// Default 7-bit bus addresses of the two sub-devices.
const (
	AddrGyro     = 0x6B // 0xD6 >> 1
	AddrAccelMag = 0x1D // 0x3B >> 1
)

// Identity register contents used to confirm the part is present and wired
// correctly before trusting further communication.
const (
	idGyro     = 0b11010100
	idAccelMag = 0b01001001
)

// Gyro sub-device registers.
const (
	regWhoAmIG   = 0x0F
	regCtrlReg1G = 0x20
	regCtrlReg4G = 0x23
	regCtrlReg5G = 0x24
	regOutXLG    = 0x28
)

// Accel/mag/temp sub-device registers.
const (
	regTempOutLXM = 0x05
	regOutXLM     = 0x08
	regWhoAmIXM   = 0x0F
	regCtrlReg0XM = 0x1F
	regCtrlReg1XM = 0x20
	regCtrlReg2XM = 0x21
	regCtrlReg5XM = 0x24
	regCtrlReg6XM = 0x25
	regCtrlReg7XM = 0x26
	regOutXLA     = 0x28
)

// Soft reset bytes written to the reboot control register of each sub-device.
const (
	softResetGyro = 0x05
	softResetMag  = 0x0C
)

// Bit fields of the three range settings.
const (
	accelRangeMask = 0b00111000
	magGainMask    = 0b01100000
	gyroScaleMask  = 0b00110000
)

// autoIncrement is ORed into the start address of a burst read so the device
// advances the register pointer after every byte.
const autoIncrement = 0x80

// The part needs 10ms after a reboot before it responds reliably. This is a
// hard timing requirement of the silicon, not a tunable.
const settleDelay = 10 * time.Millisecond

const gravityStandard = 9.80665

var ErrDeviceNotFound = fmt.Errorf("lsm9ds0: device not found, check wiring")

// LSM9DS0 represents the ST LSM9DS0 9-axis inertial module: 3-axis
// accelerometer, 3-axis magnetometer, 3-axis gyroscope and a temperature
// sensor, split over two sub-devices behind a Transport.
//
// Typical usage:
//
//	s, err := imu.NewLSM9DS0(ctx, imu.NewI2C(bus))
//	x, y, z, err := s.GetAcceleration(ctx)
//
// A single instance assumes at most one operation in flight at a time;
// concurrent calls from multiple goroutines must be serialized by the caller.
type LSM9DS0 struct {
	transport Transport

	// LSB weights cached alongside the last successfully written range
	// settings. They are only ever updated together with the register.
	accelMgLSB   float32
	magMgaussLSB float32
	gyroDPSDigit float32
}

// NewLSM9DS0 resets both sub-devices, verifies their identity registers and
// enables continuous sampling on all four sensors with the smallest
// full-scale ranges. On any failure no usable object is returned.
func NewLSM9DS0(ctx context.Context, transport Transport) (*LSM9DS0, error) {
	s := &LSM9DS0{transport: transport}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LSM9DS0) init(ctx context.Context) error {
	// reboot both sub-devices
	if err := s.transport.WriteRegister(ctx, Gyroscope, regCtrlReg5G, softResetGyro); err != nil {
		return fmt.Errorf("lsm9ds0: gyro reset failed: %w", err)
	}
	if err := s.transport.WriteRegister(ctx, AccelMagTemp, regCtrlReg0XM, softResetMag); err != nil {
		return fmt.Errorf("lsm9ds0: accel/mag reset failed: %w", err)
	}
	time.Sleep(settleDelay)

	id, err := s.transport.ReadRegister(ctx, AccelMagTemp, regWhoAmIXM)
	if err != nil {
		return fmt.Errorf("lsm9ds0: accel/mag identity read failed: %w", err)
	}
	if id != idAccelMag {
		return fmt.Errorf("%w: accel/mag identity %#x, expected %#x", ErrDeviceNotFound, id, idAccelMag)
	}
	id, err = s.transport.ReadRegister(ctx, Gyroscope, regWhoAmIG)
	if err != nil {
		return fmt.Errorf("lsm9ds0: gyro identity read failed: %w", err)
	}
	if id != idGyro {
		return fmt.Errorf("%w: gyro identity %#x, expected %#x", ErrDeviceNotFound, id, idGyro)
	}

	continuous := []struct {
		dev SubDevice
		reg byte
		val byte
	}{
		{AccelMagTemp, regCtrlReg1XM, 0x67},       // accel 100Hz, all axes
		{AccelMagTemp, regCtrlReg5XM, 0b11110000}, // mag high resolution, 50Hz
		{AccelMagTemp, regCtrlReg7XM, 0x00},       // mag continuous conversion
		{Gyroscope, regCtrlReg1G, 0x0F},           // gyro normal mode, all axes
	}
	for _, c := range continuous {
		if err := s.transport.WriteRegister(ctx, c.dev, c.reg, c.val); err != nil {
			return fmt.Errorf("lsm9ds0: could not enable continuous sampling on %s: %w", c.dev, err)
		}
	}
	// the temperature sensor shares the mag output rate, enabled on bit 7
	reg, err := s.transport.ReadRegister(ctx, AccelMagTemp, regCtrlReg5XM)
	if err != nil {
		return fmt.Errorf("lsm9ds0: could not read temperature control: %w", err)
	}
	if err := s.transport.WriteRegister(ctx, AccelMagTemp, regCtrlReg5XM, reg|1<<7); err != nil {
		return fmt.Errorf("lsm9ds0: could not enable temperature sensor: %w", err)
	}

	if err := s.SetAccelRange(ctx, AccelRange2G); err != nil {
		return err
	}
	if err := s.SetMagGain(ctx, MagGain2Gauss); err != nil {
		return err
	}
	return s.SetGyroScale(ctx, GyroScale245DPS)
}

// AccelRange reads the accelerometer full-scale range field back from the
// device.
func (s *LSM9DS0) AccelRange(ctx context.Context) (AccelRange, error) {
	reg, err := s.transport.ReadRegister(ctx, AccelMagTemp, regCtrlReg2XM)
	if err != nil {
		return 0, fmt.Errorf("lsm9ds0: could not read accel range: %w", err)
	}
	return AccelRange(reg & accelRangeMask), nil
}

// SetAccelRange programs the accelerometer full-scale range and caches the
// matching LSB weight. Invalid values are rejected before any bus traffic.
func (s *LSM9DS0) SetAccelRange(ctx context.Context, val AccelRange) error {
	scale, err := val.mgPerLSB()
	if err != nil {
		return err
	}
	if err := s.updateField(ctx, AccelMagTemp, regCtrlReg2XM, accelRangeMask, byte(val)); err != nil {
		return fmt.Errorf("lsm9ds0: could not set accel range: %w", err)
	}
	s.accelMgLSB = scale
	return nil
}

// MagGain reads the magnetometer gain field back from the device.
func (s *LSM9DS0) MagGain(ctx context.Context) (MagGain, error) {
	reg, err := s.transport.ReadRegister(ctx, AccelMagTemp, regCtrlReg6XM)
	if err != nil {
		return 0, fmt.Errorf("lsm9ds0: could not read mag gain: %w", err)
	}
	return MagGain(reg & magGainMask), nil
}

// SetMagGain programs the magnetometer gain and caches the matching LSB
// weight.
func (s *LSM9DS0) SetMagGain(ctx context.Context, val MagGain) error {
	scale, err := val.mgaussPerLSB()
	if err != nil {
		return err
	}
	if err := s.updateField(ctx, AccelMagTemp, regCtrlReg6XM, magGainMask, byte(val)); err != nil {
		return fmt.Errorf("lsm9ds0: could not set mag gain: %w", err)
	}
	s.magMgaussLSB = scale
	return nil
}

// GyroScale reads the gyroscope full-scale field back from the device.
func (s *LSM9DS0) GyroScale(ctx context.Context) (GyroScale, error) {
	reg, err := s.transport.ReadRegister(ctx, Gyroscope, regCtrlReg4G)
	if err != nil {
		return 0, fmt.Errorf("lsm9ds0: could not read gyro scale: %w", err)
	}
	return GyroScale(reg & gyroScaleMask), nil
}

// SetGyroScale programs the gyroscope full-scale range and caches the
// matching LSB weight.
func (s *LSM9DS0) SetGyroScale(ctx context.Context, val GyroScale) error {
	scale, err := val.dpsPerLSB()
	if err != nil {
		return err
	}
	if err := s.updateField(ctx, Gyroscope, regCtrlReg4G, gyroScaleMask, byte(val)); err != nil {
		return fmt.Errorf("lsm9ds0: could not set gyro scale: %w", err)
	}
	s.gyroDPSDigit = scale
	return nil
}

// updateField read-modify-writes a bit field of a control register, leaving
// the other bits untouched.
func (s *LSM9DS0) updateField(ctx context.Context, dev SubDevice, reg, mask, val byte) error {
	cur, err := s.transport.ReadRegister(ctx, dev, reg)
	if err != nil {
		return err
	}
	cur = (cur &^ mask) | val
	return s.transport.WriteRegister(ctx, dev, reg, cur)
}

// ReadAccelRaw returns the raw accelerometer X, Y, Z readings as 16-bit
// unsigned values, fetched in a single burst so the axes are coherent.
func (s *LSM9DS0) ReadAccelRaw(ctx context.Context) (x, y, z uint16, err error) {
	return s.readVectorRaw(ctx, AccelMagTemp, regOutXLA, "accel")
}

// ReadMagRaw returns the raw magnetometer X, Y, Z readings as 16-bit unsigned
// values.
func (s *LSM9DS0) ReadMagRaw(ctx context.Context) (x, y, z uint16, err error) {
	return s.readVectorRaw(ctx, AccelMagTemp, regOutXLM, "mag")
}

// ReadGyroRaw returns the raw gyroscope X, Y, Z readings as 16-bit unsigned
// values.
func (s *LSM9DS0) ReadGyroRaw(ctx context.Context) (x, y, z uint16, err error) {
	return s.readVectorRaw(ctx, Gyroscope, regOutXLG, "gyro")
}

func (s *LSM9DS0) readVectorRaw(ctx context.Context, dev SubDevice, reg byte, what string) (x, y, z uint16, err error) {
	var buf [6]byte
	if err = s.transport.ReadBurst(ctx, dev, autoIncrement|reg, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("lsm9ds0: %s burst read failed: %w", what, err)
	}
	// output registers are low byte first
	x = binary.LittleEndian.Uint16(buf[0:2])
	y = binary.LittleEndian.Uint16(buf[2:4])
	z = binary.LittleEndian.Uint16(buf[4:6])
	return x, y, z, nil
}

// ReadTempRaw returns the raw temperature reading as a 16-bit unsigned value.
func (s *LSM9DS0) ReadTempRaw(ctx context.Context) (uint16, error) {
	var buf [2]byte
	if err := s.transport.ReadBurst(ctx, AccelMagTemp, autoIncrement|regTempOutLXM, buf[:]); err != nil {
		return 0, fmt.Errorf("lsm9ds0: temperature burst read failed: %w", err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// GetAcceleration returns the X, Y, Z acceleration in m/s² using the LSB
// weight of the currently selected range.
func (s *LSM9DS0) GetAcceleration(ctx context.Context) (x, y, z float32, err error) {
	rx, ry, rz, err := s.ReadAccelRaw(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	k := s.accelMgLSB / 1000.0 * gravityStandard
	return float32(rx) * k, float32(ry) * k, float32(rz) * k, nil
}

// GetMagneticField returns the X, Y, Z magnetic field in gauss using the LSB
// weight of the currently selected gain.
func (s *LSM9DS0) GetMagneticField(ctx context.Context) (x, y, z float32, err error) {
	rx, ry, rz, err := s.ReadMagRaw(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return float32(rx) * s.magMgaussLSB / 1000.0,
		float32(ry) * s.magMgaussLSB / 1000.0,
		float32(rz) * s.magMgaussLSB / 1000.0, nil
}

// GetAngularRateDPS returns the X, Y, Z angular rate in degrees per second.
// The scale table is specified in degrees, so the unit is part of the method
// name; callers needing rad/s convert explicitly.
func (s *LSM9DS0) GetAngularRateDPS(ctx context.Context) (x, y, z float32, err error) {
	rx, ry, rz, err := s.ReadGyroRaw(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return float32(rx) * s.gyroDPSDigit,
		float32(ry) * s.gyroDPSDigit,
		float32(rz) * s.gyroDPSDigit, nil
}

// GetTemperature returns the die temperature in °C. The 21°C starting offset
// is not documented for the part, so readings are indicative only.
func (s *LSM9DS0) GetTemperature(ctx context.Context) (float32, error) {
	raw, err := s.ReadTempRaw(ctx)
	if err != nil {
		return 0, err
	}
	return 21.0 + float32(raw)/8.0, nil
}
