package imu

import (
	"context"
	"fmt"

	"github.com/gophertribe/sensors"
)

type I2COpts struct {
	GyroAddr     byte
	AccelMagAddr byte
}

type I2COpt func(*I2COpts)

// WithGyroAddress overrides the gyro sub-device address (SDO_G strap).
func WithGyroAddress(addr byte) I2COpt {
	return func(o *I2COpts) {
		o.GyroAddr = addr
	}
}

// WithAccelMagAddress overrides the accel/mag sub-device address (SDO_XM
// strap).
func WithAccelMagAddress(addr byte) I2COpt {
	return func(o *I2COpts) {
		o.AccelMagAddr = addr
	}
}

var _ Transport = &I2C{}

// I2C drives both LSM9DS0 sub-devices over a shared I2C bus. Every primitive
// is a single select-then-transfer transaction; the bus is released on every
// exit path.
type I2C struct {
	bus      sensors.I2CBus
	gyroAddr byte
	xmAddr   byte
}

func NewI2C(bus sensors.I2CBus, opts ...I2COpt) *I2C {
	config := I2COpts{
		GyroAddr:     AddrGyro,
		AccelMagAddr: AddrAccelMag,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &I2C{bus: bus, gyroAddr: config.GyroAddr, xmAddr: config.AccelMagAddr}
}

func (t *I2C) addr(dev SubDevice) byte {
	if dev == Gyroscope {
		return t.gyroAddr
	}
	return t.xmAddr
}

func (t *I2C) ReadRegister(ctx context.Context, dev SubDevice, reg byte) (byte, error) {
	defer func() { _ = t.bus.Release(ctx) }()
	addr := t.addr(dev)
	if err := t.bus.WriteToAddr(ctx, addr, []byte{reg}); err != nil {
		return 0, fmt.Errorf("could not select register %#x on %s: %w", reg, dev, err)
	}
	var buf [1]byte
	if err := t.bus.ReadFromAddr(ctx, addr, buf[:]); err != nil {
		return 0, fmt.Errorf("could not read register %#x from %s: %w", reg, dev, err)
	}
	return buf[0], nil
}

func (t *I2C) ReadBurst(ctx context.Context, dev SubDevice, reg byte, buf []byte) error {
	defer func() { _ = t.bus.Release(ctx) }()
	addr := t.addr(dev)
	if err := t.bus.WriteToAddr(ctx, addr, []byte{reg}); err != nil {
		return fmt.Errorf("could not select register %#x on %s: %w", reg, dev, err)
	}
	if err := t.bus.ReadFromAddr(ctx, addr, buf); err != nil {
		return fmt.Errorf("could not burst read %d bytes at %#x from %s: %w", len(buf), reg, dev, err)
	}
	return nil
}

func (t *I2C) WriteRegister(ctx context.Context, dev SubDevice, reg byte, value byte) error {
	defer func() { _ = t.bus.Release(ctx) }()
	if err := t.bus.WriteToAddr(ctx, t.addr(dev), []byte{reg, value}); err != nil {
		return fmt.Errorf("could not write register %#x on %s: %w", reg, dev, err)
	}
	return nil
}
