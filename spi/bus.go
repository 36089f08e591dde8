package spi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gophertribe/sensors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var _ sensors.SPIDevice = &Device{}

// Device exposes a periph.io SPI port through the sensors.SPIDevice
// interface. The connection is established on the first Configure call and
// kept until the link parameters change. Transactions on the underlying port
// are serialized by periph, so Release is a no-op.
type Device struct {
	port spi.PortCloser
	conn spi.Conn
	freq physic.Frequency
	mode spi.Mode
}

func NewDevice(port string) (*Device, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("loaded host driver", "driver", driver.String())
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("could not open spi port: %w", err)
	}
	return &Device{port: p}, nil
}

func (d *Device) Configure(ctx context.Context, freq physic.Frequency, mode spi.Mode) error {
	if d.conn != nil && d.freq == freq && d.mode == mode {
		return nil
	}
	conn, err := d.port.Connect(freq, mode, 8)
	if err != nil {
		return fmt.Errorf("could not connect spi port at %s: %w", freq, err)
	}
	d.conn = conn
	d.freq = freq
	d.mode = mode
	return nil
}

func (d *Device) Tx(ctx context.Context, w, r []byte) error {
	if d.conn == nil {
		return fmt.Errorf("spi device not configured")
	}
	if err := d.conn.Tx(w, r); err != nil {
		return fmt.Errorf("could not transfer on spi port: %w", err)
	}
	return nil
}

func (d *Device) Release(ctx context.Context) error {
	return nil
}

func (d *Device) Close() error {
	return d.port.Close()
}
