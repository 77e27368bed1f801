//go:build ws2811

package led

import (
	"errors"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/model"
	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

var stripTypes = map[string]int{
	"RGB": ws2811.WS2811StripRGB,
	"RBG": ws2811.WS2811StripRBG,
	"GRB": ws2811.WS2811StripGRB,
	"GBR": ws2811.WS2811StripGBR,
	"BRG": ws2811.WS2811StripBRG,
	"BGR": ws2811.WS2811StripBGR,
}

// PWM drives the strip through the rpi_ws281x library (PWM/PCM + DMA).
type PWM struct {
	mu      sync.Mutex
	dev     *ws2811.WS2811
	channel int
	count   int
	closed  bool
}

func OpenPWM(strip config.Strip) (Sink, error) {
	opt := ws2811.DefaultOptions
	opt.Frequency = strip.FreqKHz * 1000
	opt.DmaNum = strip.DMA
	ch := &opt.Channels[strip.Channel]
	ch.GpioPin = strip.GPIO
	ch.LedCount = strip.LedCount
	ch.Invert = strip.Invert
	ch.Brightness = 255
	if st, ok := stripTypes[strip.ColorOrder]; ok {
		ch.StripeType = st
	}

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, &DriverError{Op: "open", Err: err}
	}
	if err := dev.Init(); err != nil {
		return nil, &DriverError{Op: "init", Err: err}
	}
	return &PWM{dev: dev, channel: strip.Channel, count: strip.LedCount}, nil
}

func (p *PWM) Display(f model.Frame, brightness uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return &DriverError{Op: "display", Err: errors.New("pwm closed")}
	}
	p.dev.SetBrightness(p.channel, int(brightness))
	leds := p.dev.Leds(p.channel)
	for i := range leds {
		if i < len(f) {
			leds[i] = f[i].Color()
		} else {
			leds[i] = 0
		}
	}
	if err := p.dev.Render(); err != nil {
		return &DriverError{Op: "display", Err: err}
	}
	return nil
}

func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	done := make(chan error, 1)
	go func() {
		leds := p.dev.Leds(p.channel)
		for i := range leds {
			leds[i] = 0
		}
		done <- p.dev.Render()
	}()
	var err error
	select {
	case cerr := <-done:
		if cerr != nil {
			err = &DriverError{Op: "clear", Err: cerr}
		}
		p.dev.Fini()
	case <-time.After(ClearTimeout):
		err = &DriverError{Op: "clear", Err: errClearTimeout}
		go func() {
			<-done
			p.dev.Fini()
		}()
	}
	return err
}
