package imu

import (
	"context"
	"fmt"

	"github.com/gophertribe/sensors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Link parameters required by the part: SPI mode 0, conservative 200kHz
// clock. Applied on every transaction so the bus can be shared with devices
// using different settings.
const (
	spiClock = 200 * physic.KiloHertz
	spiMode  = spi.Mode0
)

// Transfer direction is encoded in bit 7 of the address byte: set for reads,
// clear for writes.
const (
	spiRead      = 0x80
	spiWriteMask = 0x7F
)

var _ Transport = &SPI{}

// SPI drives both LSM9DS0 sub-devices over a shared SPI bus, one chip select
// per sub-device. Each primitive is a single full-duplex transfer so chip
// select stays asserted across address and payload; the device is released on
// every exit path.
type SPI struct {
	gyro sensors.SPIDevice
	xm   sensors.SPIDevice
}

func NewSPI(gyro, accelMag sensors.SPIDevice) *SPI {
	return &SPI{gyro: gyro, xm: accelMag}
}

func (t *SPI) device(dev SubDevice) sensors.SPIDevice {
	if dev == Gyroscope {
		return t.gyro
	}
	return t.xm
}

func (t *SPI) ReadRegister(ctx context.Context, dev SubDevice, reg byte) (byte, error) {
	d := t.device(dev)
	defer func() { _ = d.Release(ctx) }()
	if err := d.Configure(ctx, spiClock, spiMode); err != nil {
		return 0, fmt.Errorf("could not configure %s link: %w", dev, err)
	}
	w := [2]byte{reg | spiRead, 0}
	var r [2]byte
	if err := d.Tx(ctx, w[:], r[:]); err != nil {
		return 0, fmt.Errorf("could not read register %#x from %s: %w", reg, dev, err)
	}
	return r[1], nil
}

func (t *SPI) ReadBurst(ctx context.Context, dev SubDevice, reg byte, buf []byte) error {
	d := t.device(dev)
	defer func() { _ = d.Release(ctx) }()
	if err := d.Configure(ctx, spiClock, spiMode); err != nil {
		return fmt.Errorf("could not configure %s link: %w", dev, err)
	}
	w := make([]byte, len(buf)+1)
	w[0] = reg | spiRead
	r := make([]byte, len(buf)+1)
	if err := d.Tx(ctx, w, r); err != nil {
		return fmt.Errorf("could not burst read %d bytes at %#x from %s: %w", len(buf), reg, dev, err)
	}
	copy(buf, r[1:])
	return nil
}

func (t *SPI) WriteRegister(ctx context.Context, dev SubDevice, reg byte, value byte) error {
	d := t.device(dev)
	defer func() { _ = d.Release(ctx) }()
	if err := d.Configure(ctx, spiClock, spiMode); err != nil {
		return fmt.Errorf("could not configure %s link: %w", dev, err)
	}
	if err := d.Tx(ctx, []byte{reg & spiWriteMask, value}, nil); err != nil {
		return fmt.Errorf("could not write register %#x on %s: %w", reg, dev, err)
	}
	return nil
}
