package i2c

import (
	"context"
	"fmt"
	"sync"

	"github.com/gophertribe/sensors"
	"gobot.io/x/gobot/v2/drivers/i2c"
)

var _ sensors.I2CBus = &GobotBus{}

// gobotDriver is the subset of gobot's generic driver used by GobotBus.
type gobotDriver interface {
	Start() error
	Halt() error
	Read(data []byte) error
	Write(data []byte) error
}

// GobotBus exposes a gobot I2C adaptor through the sensors.I2CBus interface.
// Gobot binds a driver to a single device address, so the bus keeps one
// generic driver per address and starts it on first use.
type GobotBus struct {
	adaptor i2c.Connector
	busNum  int

	mu      sync.Mutex
	drivers map[byte]gobotDriver

	// overridable for tests
	newDriver func(address byte) gobotDriver
}

func NewGobotBus(adaptor i2c.Connector, busNum int) *GobotBus {
	b := &GobotBus{
		adaptor: adaptor,
		busNum:  busNum,
		drivers: make(map[byte]gobotDriver),
	}
	b.newDriver = func(address byte) gobotDriver {
		return i2c.NewGenericDriver(adaptor, "sensors", int(address), func(c i2c.Config) {
			c.SetBus(busNum)
		})
	}
	return b
}

func (b *GobotBus) driver(address byte) (gobotDriver, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.drivers[address]; ok {
		return d, nil
	}
	d := b.newDriver(address)
	if err := d.Start(); err != nil {
		return nil, fmt.Errorf("could not start driver for address %#x: %w", address, err)
	}
	b.drivers[address] = d
	return d, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	if err := d.Read(buffer); err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	if err := d.Write(buffer); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close halts all started drivers.
func (b *GobotBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for addr, d := range b.drivers {
		if err := d.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not halt driver for address %#x: %w", addr, err)
		}
		delete(b.drivers, addr)
	}
	return firstErr
}
