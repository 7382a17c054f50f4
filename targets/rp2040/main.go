//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"roboone/config"
	"roboone/core"
	"roboone/robot"
	"roboone/targets/pio"
)

// Board wiring
const (
	uartTX = machine.GPIO0
	uartRX = machine.GPIO1

	lcdRS = machine.GPIO2
	lcdE  = machine.GPIO3

	detectorBase = machine.GPIO10 // front, right, back, left

	speakerPin = machine.GPIO15

	tofSDA = machine.GPIO20
	tofSCL = machine.GPIO21
)

var (
	lcdData    = []machine.Pin{machine.GPIO4, machine.GPIO5, machine.GPIO6, machine.GPIO7}
	leftMotor  = motorPins{a1: machine.GPIO16, a2: machine.GPIO17, en: machine.GPIO18}
	rightMotor = motorPins{a1: machine.GPIO19, a2: machine.GPIO22, en: machine.GPIO8}
	rangerPins = []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2}

	restarts uint32
)

func main() {
	// Clear any watchdog state left over from before the reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	// Debug output goes to the USB port; the UART carries the command link
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	cfg := config.Default()

	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{
		BaudRate: uint32(cfg.Serial.Baud),
		TX:       uartTX,
		RX:       uartRX,
	}); err != nil {
		core.LogPrintln("[BOARD] uart: " + err.Error())
		return
	}

	board, err := newBoard(cfg, uart)
	if err != nil {
		core.LogPrintln("[BOARD] " + err.Error())
		return
	}

	// A failed run stops every task; start again with fresh queues
	for {
		runOnce(cfg, board)
		restarts++
		core.LogPrintln("[BOARD] restarting, count " + core.Itoa(int(restarts)))
		time.Sleep(time.Second)
	}
}

func newBoard(cfg *config.RobotConfig, uart *machine.UART) (robot.Board, error) {
	drive, err := newDrivetrain(leftMotor, rightMotor)
	if err != nil {
		return robot.Board{}, err
	}

	detectors := pio.NewDetectorSampler(0, 0)
	if err := detectors.Init(detectorBase, 1000); err != nil {
		return robot.Board{}, err
	}

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{SDA: tofSDA, SCL: tofSCL}); err != nil {
		return robot.Board{}, err
	}

	board := robot.Board{
		In:        uart,
		Out:       uart,
		Drive:     drive,
		Detectors: detectors,
		Distances: newRangers(i2c, rangerPins, len(cfg.Sensor.DistanceTags)),
	}

	// the robot runs without the display and speaker if they fail
	if d, err := newLCD(lcdData, lcdE, lcdRS, cfg.Display.Cols, cfg.Display.Rows); err == nil {
		board.Display = d
	} else {
		core.LogPrintln("[BOARD] lcd: " + err.Error())
	}
	if s, err := newSpeaker(speakerPin); err == nil {
		board.Tone = s
	} else {
		core.LogPrintln("[BOARD] speaker: " + err.Error())
	}
	return board, nil
}

// runOnce runs the robot until it fails, recovering from panics so that
// a bad task does not hang the board
func runOnce(cfg *config.RobotConfig, board robot.Board) {
	defer func() {
		if r := recover(); r != nil {
			board.Drive.SetSpeeds(0, 0)
			core.LogPrintln("[BOARD] panic")
			core.DumpTrace()
		}
	}()

	r, err := robot.New(cfg, board)
	if err != nil {
		core.LogPrintln("[BOARD] " + err.Error())
		return
	}
	if err := r.Run(context.Background()); err != nil {
		board.Drive.SetSpeeds(0, 0)
	}
}
