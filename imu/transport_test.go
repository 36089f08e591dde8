package imu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// MockI2CBus is a mock implementation of sensors.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if args.Get(0) != nil {
		// Copy mock data to buffer if provided
		if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
			copy(buffer, data)
		}
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSPIDevice is a mock implementation of sensors.SPIDevice using
// testify/mock
type MockSPIDevice struct {
	mock.Mock
}

func (m *MockSPIDevice) Configure(ctx context.Context, freq physic.Frequency, mode spi.Mode) error {
	args := m.Called(ctx, freq, mode)
	return args.Error(0)
}

func (m *MockSPIDevice) Tx(ctx context.Context, w, r []byte) error {
	args := m.Called(ctx, w, r)
	if args.Get(0) != nil && r != nil {
		if data, ok := args.Get(0).([]byte); ok && len(data) <= len(r) {
			copy(r, data)
		}
	}
	return args.Error(1)
}

func (m *MockSPIDevice) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestI2C_ReadRegister(t *testing.T) {
	tests := []struct {
		name string
		dev  SubDevice
		addr byte
	}{
		{name: "gyro sub-device", dev: Gyroscope, addr: AddrGyro},
		{name: "accel/mag sub-device", dev: AccelMagTemp, addr: AddrAccelMag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			bus.On("WriteToAddr", mock.Anything, tt.addr, []byte{regWhoAmIXM}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, tt.addr, mock.Anything).Return([]byte{0x49}, nil).Once()
			bus.On("Release", mock.Anything).Return(nil).Once()

			tr := NewI2C(bus)
			val, err := tr.ReadRegister(context.Background(), tt.dev, regWhoAmIXM)
			assert.NoError(t, err)
			assert.Equal(t, byte(0x49), val)
			bus.AssertExpectations(t)
		})
	}
}

func TestI2C_AddressOverrides(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(0x6A), []byte{regWhoAmIG}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x6A), mock.Anything).Return([]byte{0xD4}, nil).Once()
	bus.On("Release", mock.Anything).Return(nil).Once()

	tr := NewI2C(bus, WithGyroAddress(0x6A), WithAccelMagAddress(0x1E))
	val, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xD4), val)
	bus.AssertExpectations(t)
}

func TestI2C_WriteRegister(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(AddrAccelMag), []byte{regCtrlReg1XM, 0x67}).Return(nil).Once()
	bus.On("Release", mock.Anything).Return(nil).Once()

	tr := NewI2C(bus)
	err := tr.WriteRegister(context.Background(), AccelMagTemp, regCtrlReg1XM, 0x67)
	assert.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestI2C_ReadBurst(t *testing.T) {
	bus := new(MockI2CBus)
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	bus.On("WriteToAddr", mock.Anything, byte(AddrAccelMag), []byte{autoIncrement | regOutXLA}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(AddrAccelMag), mock.MatchedBy(func(b []byte) bool {
		return len(b) == 6
	})).Return(data, nil).Once()
	bus.On("Release", mock.Anything).Return(nil).Once()

	tr := NewI2C(bus)
	var buf [6]byte
	err := tr.ReadBurst(context.Background(), AccelMagTemp, autoIncrement|regOutXLA, buf[:])
	assert.NoError(t, err)
	assert.Equal(t, data, buf[:])
	bus.AssertExpectations(t)
}

func TestI2C_ReleaseOnError(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockI2CBus)
		op        func(*I2C) error
	}{
		{
			name: "register select fails",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(AddrGyro), mock.Anything).
					Return(errors.New("nack")).Once()
			},
			op: func(tr *I2C) error {
				_, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
				return err
			},
		},
		{
			name: "read fails after select",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(AddrGyro), mock.Anything).Return(nil).Once()
				bus.On("ReadFromAddr", mock.Anything, byte(AddrGyro), mock.Anything).
					Return(nil, errors.New("nack")).Once()
			},
			op: func(tr *I2C) error {
				_, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
				return err
			},
		},
		{
			name: "write fails",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(AddrGyro), mock.Anything).
					Return(errors.New("nack")).Once()
			},
			op: func(tr *I2C) error {
				return tr.WriteRegister(context.Background(), Gyroscope, regCtrlReg1G, 0x0F)
			},
		},
		{
			name: "burst read fails",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(AddrGyro), mock.Anything).Return(nil).Once()
				bus.On("ReadFromAddr", mock.Anything, byte(AddrGyro), mock.Anything).
					Return(nil, errors.New("nack")).Once()
			},
			op: func(tr *I2C) error {
				var buf [6]byte
				return tr.ReadBurst(context.Background(), Gyroscope, autoIncrement|regOutXLG, buf[:])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			tt.setupMock(bus)
			bus.On("Release", mock.Anything).Return(nil).Once()

			err := tt.op(NewI2C(bus))
			assert.Error(t, err)
			assert.ErrorContains(t, err, "nack")
			bus.AssertExpectations(t)
		})
	}
}

func TestSPI_ReadRegister(t *testing.T) {
	dev := new(MockSPIDevice)
	dev.On("Configure", mock.Anything, spiClock, spiMode).Return(nil).Once()
	// read bit set on the address byte, value clocked out in the second byte
	dev.On("Tx", mock.Anything, []byte{regWhoAmIG | 0x80, 0x00}, mock.Anything).
		Return([]byte{0x00, 0xD4}, nil).Once()
	dev.On("Release", mock.Anything).Return(nil).Once()

	tr := NewSPI(dev, new(MockSPIDevice))
	val, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xD4), val)
	dev.AssertExpectations(t)
}

func TestSPI_WriteRegister_ClearsReadBit(t *testing.T) {
	dev := new(MockSPIDevice)
	dev.On("Configure", mock.Anything, spiClock, spiMode).Return(nil).Once()
	// register 0xA0 goes on the wire as 0x20
	dev.On("Tx", mock.Anything, []byte{0x20, 0x55}, mock.Anything).Return(nil, nil).Once()
	dev.On("Release", mock.Anything).Return(nil).Once()

	tr := NewSPI(new(MockSPIDevice), dev)
	err := tr.WriteRegister(context.Background(), AccelMagTemp, 0xA0, 0x55)
	assert.NoError(t, err)
	dev.AssertExpectations(t)
}

func TestSPI_ReadBurst(t *testing.T) {
	dev := new(MockSPIDevice)
	dev.On("Configure", mock.Anything, spiClock, spiMode).Return(nil).Once()
	dev.On("Tx", mock.Anything, []byte{autoIncrement | regOutXLA | 0x80, 0, 0, 0, 0, 0, 0}, mock.MatchedBy(func(r []byte) bool {
		return len(r) == 7
	})).Return([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, nil).Once()
	dev.On("Release", mock.Anything).Return(nil).Once()

	tr := NewSPI(new(MockSPIDevice), dev)
	var buf [6]byte
	err := tr.ReadBurst(context.Background(), AccelMagTemp, autoIncrement|regOutXLA, buf[:])
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, buf[:])
	dev.AssertExpectations(t)
}

func TestSPI_SubDeviceSelection(t *testing.T) {
	gyro := new(MockSPIDevice)
	gyro.On("Configure", mock.Anything, spiClock, spiMode).Return(nil).Once()
	gyro.On("Tx", mock.Anything, mock.Anything, mock.Anything).Return([]byte{0x00, 0xD4}, nil).Once()
	gyro.On("Release", mock.Anything).Return(nil).Once()
	xm := new(MockSPIDevice)

	tr := NewSPI(gyro, xm)
	_, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
	assert.NoError(t, err)
	gyro.AssertExpectations(t)
	xm.AssertNotCalled(t, "Tx", mock.Anything, mock.Anything, mock.Anything)
}

func TestSPI_ReleaseOnError(t *testing.T) {
	t.Run("configure fails", func(t *testing.T) {
		dev := new(MockSPIDevice)
		dev.On("Configure", mock.Anything, spiClock, spiMode).
			Return(errors.New("port closed")).Once()
		dev.On("Release", mock.Anything).Return(nil).Once()

		tr := NewSPI(dev, new(MockSPIDevice))
		_, err := tr.ReadRegister(context.Background(), Gyroscope, regWhoAmIG)
		assert.Error(t, err)
		assert.ErrorContains(t, err, "port closed")
		dev.AssertExpectations(t)
		dev.AssertNotCalled(t, "Tx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transfer fails", func(t *testing.T) {
		dev := new(MockSPIDevice)
		dev.On("Configure", mock.Anything, spiClock, spiMode).Return(nil).Once()
		dev.On("Tx", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("transfer aborted")).Once()
		dev.On("Release", mock.Anything).Return(nil).Once()

		tr := NewSPI(dev, new(MockSPIDevice))
		err := tr.WriteRegister(context.Background(), Gyroscope, regCtrlReg1G, 0x0F)
		assert.Error(t, err)
		assert.ErrorContains(t, err, "transfer aborted")
		dev.AssertExpectations(t)
	})
}
