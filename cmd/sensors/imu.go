package main

import (
	"context"
	"fmt"

	"github.com/gophertribe/sensors/adapter"
	"github.com/gophertribe/sensors/cmd/sensors/console"
	i2cbus "github.com/gophertribe/sensors/i2c"
	"github.com/gophertribe/sensors/imu"
	spibus "github.com/gophertribe/sensors/spi"
	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
)

var imuCmd = cli.Command{
	Name:  "imu",
	Usage: "lsm9ds0 9-axis inertial module",
	Subcommands: cli.Commands{
		&imuReadCmd,
		&imuRawCmd,
		&imuRangeCmd,
	},
}

// newTransport builds the register transport selected by the configuration.
// The returned cleanup function closes whatever the backend opened.
func newTransport(config busConfig) (imu.Transport, func(), error) {
	noop := func() {}
	switch config.Adapter {
	case "mcp2221":
		mcp2221 := adapter.NewMCP2221()
		if err := mcp2221.Init(); err != nil {
			return nil, noop, fmt.Errorf("adapter initialization error: %w", err)
		}
		tr := imu.NewI2C(mcp2221,
			imu.WithGyroAddress(byte(config.GyroAddr)),
			imu.WithAccelMagAddress(byte(config.AccelMagAddr)))
		return tr, func() { _ = mcp2221.Close() }, nil
	case "periph":
		bus, err := i2cbus.NewGenericBus(config.I2CBus)
		if err != nil {
			return nil, noop, fmt.Errorf("could not open i2c bus: %w", err)
		}
		tr := imu.NewI2C(bus,
			imu.WithGyroAddress(byte(config.GyroAddr)),
			imu.WithAccelMagAddress(byte(config.AccelMagAddr)))
		return tr, func() { _ = bus.Close() }, nil
	case "gobot":
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, noop, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2cbus.NewGobotBus(npi, config.GobotBus)
		tr := imu.NewI2C(bus,
			imu.WithGyroAddress(byte(config.GyroAddr)),
			imu.WithAccelMagAddress(byte(config.AccelMagAddr)))
		cleanup := func() {
			_ = bus.Close()
			_ = npi.I2cBusAdaptor.Finalize()
		}
		return tr, cleanup, nil
	case "spi":
		gyro, err := spibus.NewDevice(config.SPIGyroPort)
		if err != nil {
			return nil, noop, fmt.Errorf("could not open gyro spi port: %w", err)
		}
		xm, err := spibus.NewDevice(config.SPIAccelMagPort)
		if err != nil {
			_ = gyro.Close()
			return nil, noop, fmt.Errorf("could not open accel/mag spi port: %w", err)
		}
		cleanup := func() {
			_ = gyro.Close()
			_ = xm.Close()
		}
		return imu.NewSPI(gyro, xm), cleanup, nil
	}
	return nil, noop, fmt.Errorf("unknown adapter %q", config.Adapter)
}

func newSensor(c *cli.Context) (*imu.LSM9DS0, func(), error) {
	config, err := loadBusConfig(c)
	if err != nil {
		return nil, func() {}, err
	}
	tr, cleanup, err := newTransport(config)
	if err != nil {
		return nil, cleanup, err
	}
	s, err := imu.NewLSM9DS0(context.Background(), tr)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return s, cleanup, nil
}

var imuReadCmd = cli.Command{
	Name:  "read",
	Usage: "read all sensors in physical units",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		s, cleanup, err := newSensor(c)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		defer cleanup()
		ctx := context.Background()
		ax, ay, az, err := s.GetAcceleration(ctx)
		if err != nil {
			return console.Exit(1, "error reading acceleration: %s", console.Red(err))
		}
		mx, my, mz, err := s.GetMagneticField(ctx)
		if err != nil {
			return console.Exit(1, "error reading magnetic field: %s", console.Red(err))
		}
		gx, gy, gz, err := s.GetAngularRateDPS(ctx)
		if err != nil {
			return console.Exit(1, "error reading angular rate: %s", console.Red(err))
		}
		console.Printf("accel [m/s²]: %s %s %s\n", console.White(ax), console.White(ay), console.White(az))
		console.Printf("mag [gauss]:  %s %s %s\n", console.White(mx), console.White(my), console.White(mz))
		console.Printf("gyro [°/s]:   %s %s %s\n", console.White(gx), console.White(gy), console.White(gz))
		temp, err := s.GetTemperature(ctx)
		if err != nil {
			console.Errorf("error reading temperature: %s", console.Red(err))
			return nil
		}
		console.Printf("%s  %s°C\n", console.PictoThermometer, console.White(temp))
		return nil
	},
}

var imuRawCmd = cli.Command{
	Name:  "raw",
	Usage: "read all sensors as raw counts",
	Flags: busFlags,
	Action: func(c *cli.Context) error {
		s, cleanup, err := newSensor(c)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		defer cleanup()
		ctx := context.Background()
		ax, ay, az, err := s.ReadAccelRaw(ctx)
		if err != nil {
			return console.Exit(1, "error reading acceleration: %s", console.Red(err))
		}
		mx, my, mz, err := s.ReadMagRaw(ctx)
		if err != nil {
			return console.Exit(1, "error reading magnetic field: %s", console.Red(err))
		}
		gx, gy, gz, err := s.ReadGyroRaw(ctx)
		if err != nil {
			return console.Exit(1, "error reading angular rate: %s", console.Red(err))
		}
		temp, err := s.ReadTempRaw(ctx)
		if err != nil {
			return console.Exit(1, "error reading temperature: %s", console.Red(err))
		}
		console.Printf("accel: %#04x %#04x %#04x\n", ax, ay, az)
		console.Printf("mag:   %#04x %#04x %#04x\n", mx, my, mz)
		console.Printf("gyro:  %#04x %#04x %#04x\n", gx, gy, gz)
		console.Printf("temp:  %#04x\n", temp)
		return nil
	},
}

var imuRangeCmd = cli.Command{
	Name:  "range",
	Usage: "show or change full-scale ranges",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "accel",
			Usage: "accelerometer range: 2g, 4g, 6g, 8g or 16g",
		},
		&cli.StringFlag{
			Name:  "mag",
			Usage: "magnetometer gain: 2gauss, 4gauss, 8gauss or 12gauss",
		},
		&cli.StringFlag{
			Name:  "gyro",
			Usage: "gyroscope scale: 245dps, 500dps or 2000dps",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		s, cleanup, err := newSensor(c)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		defer cleanup()
		ctx := context.Background()
		if v := c.String("accel"); v != "" {
			val, err := imu.ParseAccelRange(v)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if err := s.SetAccelRange(ctx, val); err != nil {
				return console.Exit(1, "error setting accel range: %s", console.Red(err))
			}
		}
		if v := c.String("mag"); v != "" {
			val, err := imu.ParseMagGain(v)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if err := s.SetMagGain(ctx, val); err != nil {
				return console.Exit(1, "error setting mag gain: %s", console.Red(err))
			}
		}
		if v := c.String("gyro"); v != "" {
			val, err := imu.ParseGyroScale(v)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if err := s.SetGyroScale(ctx, val); err != nil {
				return console.Exit(1, "error setting gyro scale: %s", console.Red(err))
			}
		}
		ar, err := s.AccelRange(ctx)
		if err != nil {
			return console.Exit(1, "error reading accel range: %s", console.Red(err))
		}
		mg, err := s.MagGain(ctx)
		if err != nil {
			return console.Exit(1, "error reading mag gain: %s", console.Red(err))
		}
		gs, err := s.GyroScale(ctx)
		if err != nil {
			return console.Exit(1, "error reading gyro scale: %s", console.Red(err))
		}
		console.Printf("accel: %s\nmag:   %s\ngyro:  %s\n", console.White(ar), console.White(mg), console.White(gs))
		return nil
	},
}
