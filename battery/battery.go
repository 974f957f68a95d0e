/*
Package battery reads the supply voltage that drives the on-screen battery
gauge.
*/
package battery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// DefaultDivider matches a pair of equal resistors halving the cell voltage
// before the ADC input.
const DefaultDivider = 2.0

var errBadDivider = errors.New("battery: divider must be positive")

// Reader returns the current cell voltage in volts.
type Reader interface {
	Volts() (float64, error)
}

// Sampler is the part of an analog.PinADC used by ADC.
type Sampler interface {
	Read() (analog.Sample, error)
}

// ADC reads the voltage through a resistor divider on an analog input.
type ADC struct {
	pin     Sampler
	divider float64
}

// NewADC returns an ADC reading pin, scaling each sample by divider.
func NewADC(pin Sampler, divider float64) (*ADC, error) {
	if !(divider > 0) {
		return nil, errBadDivider
	}
	return &ADC{pin: pin, divider: divider}, nil
}

func (a *ADC) Volts() (float64, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("battery: %w", err)
	}
	return float64(s.V) / float64(physic.Volt) * a.divider, nil
}

// Sysfs reads a power supply attribute reporting microvolts, such as
// /sys/class/power_supply/battery/voltage_now.
type Sysfs struct {
	fsys fs.FS
	name string
}

// NewSysfs returns a Sysfs reading the absolute path file.
func NewSysfs(file string) *Sysfs {
	return &Sysfs{fsys: os.DirFS("/"), name: strings.TrimPrefix(file, "/")}
}

func (s *Sysfs) Volts() (float64, error) {
	b, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return 0, fmt.Errorf("battery: %w", err)
	}
	uv, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("battery: %s: %w", s.name, err)
	}
	return float64(uv) / 1e6, nil
}

// Fixed always reports the same voltage.
type Fixed float64

func (f Fixed) Volts() (float64, error) {
	return float64(f), nil
}
