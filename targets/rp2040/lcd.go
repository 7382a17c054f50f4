//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780"
)

// lcd adapts the HD44780 driver to core.TextDisplay. The driver buffers
// a write and sends it on Display.
type lcd struct {
	dev        hd44780.Device
	cols, rows int
}

func newLCD(data []machine.Pin, e, rs machine.Pin, cols, rows int) (*lcd, error) {
	dev, err := hd44780.NewGPIO4Bit(data, e, rs, machine.NoPin)
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(hd44780.Config{Width: int16(cols), Height: int16(rows)}); err != nil {
		return nil, err
	}
	return &lcd{dev: dev, cols: cols, rows: rows}, nil
}

func (l *lcd) Size() (cols, rows int) {
	return l.cols, l.rows
}

func (l *lcd) Clear() error {
	l.dev.ClearDisplay()
	return nil
}

func (l *lcd) SetCursor(col, row int) error {
	l.dev.SetCursor(uint8(col), uint8(row))
	return nil
}

func (l *lcd) Write(b []byte) (int, error) {
	n, err := l.dev.Write(b)
	if err != nil {
		return n, err
	}
	return n, l.dev.Display()
}
