package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DriverSPI = "spi"
	DriverPWM = "pwm"
)

// Strip describes the physical strip and how it is wired.
type Strip struct {
	LedCount   int    `yaml:"led_count"`
	Driver     string `yaml:"driver"`   // "spi" | "pwm"
	SPIPort    string `yaml:"spi_port"` // "" picks the first port, e.g. "/dev/spidev0.0"
	FreqKHz    int    `yaml:"freq_khz"`
	GPIO       int    `yaml:"gpio"` // PWM data pin (BCM)
	DMA        int    `yaml:"dma"`
	Channel    int    `yaml:"channel"`
	Invert     bool   `yaml:"invert"`
	ColorOrder string `yaml:"color_order"`
}

func DefaultStrip() Strip {
	return Strip{
		LedCount:   120,
		Driver:     DriverSPI,
		FreqKHz:    800,
		GPIO:       18,
		DMA:        10,
		Channel:    0,
		ColorOrder: "GRB",
	}
}

// LoadStrip reads a strip file over the defaults. Keys absent from the file
// keep their default value.
func LoadStrip(path string) (Strip, error) {
	s := DefaultStrip()
	b, err := os.ReadFile(path)
	if err != nil {
		return s, &Error{Source: path, Err: err}
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, &Error{Source: path, Err: err}
	}
	if err := s.Validate(); err != nil {
		err.(*Error).Source = path
		return s, err
	}
	return s, nil
}

func SaveStrip(path string, s Strip) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (s Strip) Validate() error {
	switch {
	case s.LedCount < 0:
		return &Error{Field: "led_count", Err: fmt.Errorf("must not be negative, got %d", s.LedCount)}
	case s.Driver != DriverSPI && s.Driver != DriverPWM:
		return &Error{Field: "driver", Err: fmt.Errorf("unknown driver %q", s.Driver)}
	case s.FreqKHz <= 0:
		return &Error{Field: "freq_khz", Err: fmt.Errorf("must be positive, got %d", s.FreqKHz)}
	case s.Channel < 0 || s.Channel > 1:
		return &Error{Field: "channel", Err: fmt.Errorf("must be 0 or 1, got %d", s.Channel)}
	case len(s.ColorOrder) != 3:
		return &Error{Field: "color_order", Err: fmt.Errorf("want three letters like GRB, got %q", s.ColorOrder)}
	}
	return nil
}
