package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/machinelevel/sp433-pinup-weather/battery"
	"github.com/machinelevel/sp433-pinup-weather/panel"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

var ads1115Channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

func openEPD(rotation panel.Rotation) (*panel.EPD, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, nil, err
	}

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	if err := dev.Init(); err != nil {
		port.Close()
		return nil, nil, err
	}

	return panel.NewEPD(dev, panel.WithRotation(rotation)), func() error {
		dev.Halt()
		return port.Close()
	}, nil
}

// openBattery parses a battery source. A nil reader means no battery.
func openBattery(source string) (battery.Reader, func() error, error) {
	noop := func() error { return nil }

	kind, arg := source, ""
	if i := strings.IndexByte(source, ':'); i >= 0 {
		kind, arg = source[:i], source[i+1:]
	}

	switch kind {
	case "", "none":
		return nil, noop, nil
	case "fixed":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, nil, err
		}
		return battery.Fixed(v), noop, nil
	case "sysfs":
		if arg == "" {
			return nil, nil, fmt.Errorf("battery: sysfs needs a file")
		}
		return battery.NewSysfs(arg), noop, nil
	case "ads1115":
		channel := 0
		if arg != "" {
			var err error
			if channel, err = strconv.Atoi(arg); err != nil {
				return nil, nil, err
			}
		}
		if channel < 0 || channel >= len(ads1115Channels) {
			return nil, nil, fmt.Errorf("battery: no ads1115 channel %d", channel)
		}
		return openADS1115(ads1115Channels[channel])
	}

	return nil, nil, fmt.Errorf("battery: unknown source \"%s\"", kind)
}

func openADS1115(channel ads1x15.Channel) (battery.Reader, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, nil, err
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	pin, err := adc.PinForChannel(channel, 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	reader, err := battery.NewADC(pin, battery.DefaultDivider)
	if err != nil {
		pin.Halt()
		bus.Close()
		return nil, nil, err
	}

	return reader, func() error {
		pin.Halt()
		return bus.Close()
	}, nil
}
