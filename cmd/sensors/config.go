package main

import (
	"fmt"
	"os"

	"github.com/gophertribe/sensors/cmd/sensors/console"
	"github.com/gophertribe/sensors/imu"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// busConfig selects the bus backend and its parameters. Values can come from
// a yaml file, command line flags override the file.
type busConfig struct {
	Adapter         string `yaml:"adapter"`
	I2CBus          string `yaml:"i2c_bus"`
	GobotBus        int    `yaml:"gobot_bus"`
	SPIGyroPort     string `yaml:"spi_gyro_port"`
	SPIAccelMagPort string `yaml:"spi_accel_mag_port"`
	GyroAddr        int    `yaml:"gyro_addr"`
	AccelMagAddr    int    `yaml:"accel_mag_addr"`
}

func defaultBusConfig() busConfig {
	return busConfig{
		Adapter:         "mcp2221",
		I2CBus:          "",
		GobotBus:        0,
		SPIGyroPort:     "SPI0.0",
		SPIAccelMagPort: "SPI0.1",
		GyroAddr:        imu.AddrGyro,
		AccelMagAddr:    imu.AddrAccelMag,
	}
}

func loadBusConfig(c *cli.Context) (busConfig, error) {
	config := defaultBusConfig()
	if path := c.String("config"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("could not read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &config); err != nil {
			return config, fmt.Errorf("could not parse config file %s: %w", path, err)
		}
		console.Debugf("loaded bus configuration from %s", path)
	}
	if c.IsSet("adapter") {
		config.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		config.I2CBus = c.String("bus")
	}
	if c.IsSet("gyro-addr") {
		config.GyroAddr = c.Int("gyro-addr")
	}
	if c.IsSet("xm-addr") {
		config.AccelMagAddr = c.Int("xm-addr")
	}
	return config, nil
}

var busFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "yaml file with bus configuration",
	},
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "bus backend: mcp2221, periph, gobot or spi",
		Value:   "mcp2221",
	},
	&cli.StringFlag{
		Name:  "bus",
		Usage: "i2c bus name for the periph backend",
	},
	&cli.IntFlag{
		Name:  "gyro-addr",
		Usage: "gyro sub-device i2c address",
		Value: imu.AddrGyro,
	},
	&cli.IntFlag{
		Name:  "xm-addr",
		Usage: "accel/mag sub-device i2c address",
		Value: imu.AddrAccelMag,
	},
}
