package sensors

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// SPIDevice is an exclusive-access channel to a single chip-selected device
// on a shared SPI bus. Tx performs one full-duplex transfer with chip select
// asserted for its whole duration; splitting a register access over several
// Tx calls drops chip select in between. Release hands the bus back and must
// be called on every exit path of a transaction.
type SPIDevice interface {
	Configure(ctx context.Context, freq physic.Frequency, mode spi.Mode) error
	Tx(ctx context.Context, w, r []byte) error
	Release(ctx context.Context) error
}
