package main

import (
	"flag"
	"fmt"
	"os"

	"rasterscope/internal/config"
	"rasterscope/internal/debug"
	"rasterscope/internal/loader"
	"rasterscope/internal/ui"
)

func main() {
	// Parse command line flags
	help := flag.Bool("h", false, "Show help message")
	configPath := flag.String("c", "", "JSON config file")
	debugLog := flag.String("d", "", "Debug log file (e.g., debug.log)")
	logLevel := flag.String("l", "", "Log level: debug, info, warn, error (default: info)")
	aspectRatio := flag.Float64("a", 0, "Character aspect ratio - adjust for font width (1.0-4.0, default: 2.0)")
	preset := flag.String("p", "", "Color preset: heat, terrain, gray (default: heat)")
	hideGrid := flag.Bool("g", false, "Start with the lat/lon grid hidden")
	concurrency := flag.Int("j", 0, "Files decoded in parallel (default: 4)")
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.LogFile = *debugLog
		case "l":
			cfg.LogLevel = *logLevel
		case "a":
			cfg.Aspect = *aspectRatio
		case "p":
			cfg.Preset = *preset
		case "g":
			cfg.ShowGrid = !*hideGrid
		case "j":
			cfg.LoadConcurrency = *concurrency
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogFile != "" {
		if err := debug.Setup(cfg.LogFile, cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open debug log: %v\n", err)
		} else {
			defer debug.Close()
			debug.Info("rasterscope started", "config", *configPath, "level", cfg.LogLevel)
			fmt.Printf("Debug logging enabled: %s\n", cfg.LogFile)
		}
	}

	paths, err := loader.Expand(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ld := loader.New(cfg.LoaderOptions())
	app, err := ui.NewApp(cfg, ld)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create application: %v\n", err)
		os.Exit(1)
	}
	app.Open(paths)

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				debug.Error("panic", "value", fmt.Sprint(r))
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "rasterscope - Terminal viewer for georeferenced rasters")
	fmt.Fprintln(out, "\nUsage: rasterscope [options] [file.asc|file.asc.gz|file.zip|dir ...]")
	fmt.Fprintln(out, "\nOptions:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nKeys: wheel/+/- zoom, drag/hjkl pan, r reset, f fit layer, g grid,")
	fmt.Fprintln(out, "      p preset, up/down select, space show/hide, c clear, q quit")
}
