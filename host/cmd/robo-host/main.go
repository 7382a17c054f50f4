//go:build !tinygo

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"roboone/host/link"
	"roboone/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 0, "Baud rate (0 uses the robot's configured rate)")
	raw     = flag.Bool("raw", false, "Send lines untagged and print every response as it arrives")
	timeout = flag.Duration("timeout", 30*time.Second, "How long to wait for a response")
)

func main() {
	flag.Parse()

	fmt.Println("RoboOne Host")
	fmt.Println("============")
	fmt.Println()

	cfg := serial.DefaultConfig(*device)
	if *baud > 0 {
		cfg.Baud = *baud
	}

	fmt.Printf("Connecting to robot on %s...\n", cfg.Device)
	conn, err := link.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	conn.OnUnsolicited(func(line string) {
		fmt.Printf("\n< %s\n", line)
	})

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()
			continue
		}

		if *raw {
			if err := conn.Send(line); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		resp, err := conn.Command(ctx, line)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(resp)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nRobot commands:")
	fmt.Println("  F|B <m> [M|S]  - Forwards/backwards, metres or m/s")
	fmt.Println("  R|L [deg]      - Turn right/left (default 90)")
	fmt.Println("  S              - Stop")
	fmt.Println("  H              - Home on the beacon")
	fmt.Println("  M <m>          - Travel a distance at the current speed")
	fmt.Println("  D V P I        - Distance, velocity, progress, info")
	fmt.Println("  *              - Read the distance sensors")
	fmt.Println("  A \"text\"       - Show text on the display")
	fmt.Println("  T \"notes\"      - Play a tune")
	fmt.Println("  E              - Echo mode")
	fmt.Println("\nHost commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}
