// Package main implements the sen NES emulator executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sen/internal/app"
	"sen/internal/cpu"
	"sen/internal/logger"
	"sen/internal/version"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to configuration file")
		backend    = flag.String("backend", "", "Presentation backend: ebitengine, headless or terminal")
		frames     = flag.Int("frames", -1, "Stop after this many frames (0 runs until quit)")
		debug      = flag.Bool("debug", false, "Echo log entries to stderr")
		trace      = flag.String("trace", "", "Write a CPU instruction trace to this file, - for stderr")
		stats      = flag.String("statsview", "", "Serve runtime statistics on this address")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVer {
		version.WriteBuildInfo(os.Stdout)
		return
	}

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(2)
	}
	romFile := flag.Arg(0)

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *frames >= 0 {
		config.Emulation.FrameLimit = *frames
	}
	if *debug {
		config.Debug.EnableLogging = true
	}
	if *trace != "" {
		config.Debug.CPUTrace = true
		config.Debug.TraceFile = *trace
		if *trace == "-" {
			config.Debug.TraceFile = ""
		}
	}
	if *stats != "" {
		config.Debug.Statsview = *stats
	}

	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.LoadROM(romFile); err != nil {
		application.Cleanup()
		log.Fatalf("Failed to load ROM: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := application.Run(ctx)
	stop()

	if err := application.Cleanup(); err != nil {
		log.Printf("Application cleanup error: %v", err)
	}

	if runErr != nil {
		log.Fatal(failureReport(os.Stderr, runErr))
	}

	s := application.GetStats()
	fmt.Printf("%d frames in %v (%.0f%% of real time)\n", s.FrameCount, s.Uptime.Round(time.Millisecond), s.EmulationSpeed)
}

// number of log entries shown before exiting on an emulation fault
const failureTail = 20

// failureReport writes the most recent log entries to w and returns the
// message to exit with.
func failureReport(w io.Writer, err error) string {
	fmt.Fprintf(w, "last %d log entries:\n", failureTail)
	logger.Tail(w, failureTail)

	var opErr *cpu.OpcodeError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("Halted on undefined opcode %#02x at %#04x: %v", opErr.Opcode, opErr.PC, err)
	}
	return fmt.Sprintf("Emulation failed: %v", err)
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "sen - NES emulator")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  sen [options] <rom.nes>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "EXAMPLES:")
	fmt.Fprintln(out, "  sen game.nes                         # Play in a window")
	fmt.Fprintln(out, "  sen -backend terminal game.nes       # Play in the terminal")
	fmt.Fprintln(out, "  sen -backend headless -frames 120 game.nes")
	fmt.Fprintln(out, "  sen -trace trace.log game.nes        # Log every instruction")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "CONTROLS:")
	fmt.Fprintln(out, "  Player 1:")
	fmt.Fprintln(out, "    Arrow Keys / WASD - D-Pad")
	fmt.Fprintln(out, "    J / Z             - A Button")
	fmt.Fprintln(out, "    K / X             - B Button")
	fmt.Fprintln(out, "    Enter             - Start")
	fmt.Fprintln(out, "    Space             - Select")
	fmt.Fprintln(out, "  Player 2:")
	fmt.Fprintln(out, "    1-4               - D-Pad")
	fmt.Fprintln(out, "    5 / 6             - A / B")
	fmt.Fprintln(out, "    7 / 8             - Start / Select")
	fmt.Fprintln(out, "  Special Keys:")
	fmt.Fprintln(out, "    Escape            - Quit")
	fmt.Fprintln(out, "    P                 - Pause / resume")
	fmt.Fprintln(out, "    F1                - Reset")
	fmt.Fprintln(out, "    F12               - Screenshot")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration is read from %s unless -config is given.\n", app.GetDefaultConfigPath())
}
