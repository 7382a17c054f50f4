//go:build !tinygo

// robo-sim runs the robot firmware on the host against a simulated world.
// Commands are read from stdin, or from a serial device when one is given,
// and responses written back the same way.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"roboone/config"
	"roboone/core"
	"roboone/display"
	"roboone/host/serial"
	"roboone/host/sim"
	"roboone/robot"
)

var (
	configPath  = flag.String("config", "", "YAML robot configuration (defaults when empty)")
	device      = flag.String("device", "", "Serve the robot on this serial device instead of stdin/stdout")
	debug       = flag.Bool("debug", false, "Print debug output to stderr")
	bearing     = flag.Float64("bearing", 135, "Starting bearing of the beacon, degrees clockwise from the front")
	distance    = flag.Float64("distance", 150, "Starting distance to the beacon in cm")
	writeConfig = flag.Bool("write-config", false, "Print the effective configuration as YAML and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *writeConfig {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(*debug)
	core.InitAsyncDebug()

	var (
		in  io.Reader = sim.TerminalReader{R: os.Stdin}
		out io.Writer = sim.TerminalWriter{W: os.Stdout}
	)
	if *device != "" {
		port, err := serial.Open(serial.FromRobotConfig(*device, cfg.Serial))
		if err != nil {
			return err
		}
		defer port.Close()
		in, out = port, port
	}

	world := sim.NewWorld(cfg.Motion, len(cfg.Sensor.DistanceTags), sim.Pose{
		Bearing:    *bearing,
		DistanceCM: *distance,
	}, nil)
	for ch := range cfg.Sensor.DistanceTags {
		world.SetWall(ch, float64(50+25*ch))
	}
	lcd := display.NewBuffer(cfg.Display.Cols, cfg.Display.Rows)

	r, err := robot.New(cfg, robot.Board{
		In:        in,
		Out:       out,
		Drive:     world,
		Detectors: world,
		Distances: world,
		Display:   lcd,
		Tone:      &sim.Speaker{},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = r.Run(ctx)

	pose := world.Pose()
	fmt.Fprintf(os.Stderr, "\nDisplay:\n%s\nBeacon at %.0f deg, %.0f cm; last homing run %+v\n",
		lcd.String(), pose.Bearing, pose.DistanceCM, r.Home().Context.LastRun)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
