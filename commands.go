package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gr-butler/rainbow-weather/env"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
		bus        string
		spiPort    string
		brightness int
		noStatus   bool
	)
	interval := env.SensorInterval

	cmd := &cobra.Command{
		Use:           "weatherstation",
		Short:         "Rainbow HAT weather station",
		Long:          "Shows BMP280 temperature on the Rainbow HAT display and pressure on its LED strip.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				logger.SetLevel(logger.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := env.Args{Verbose: &verbose}
			flags := cmd.Flags()
			if flags.Changed("config") {
				args.Config = &configPath
			}
			if flags.Changed("bus") {
				args.Bus = &bus
			}
			if flags.Changed("spi") {
				args.SPI = &spiPort
			}
			if flags.Changed("brightness") {
				args.Brightness = &brightness
			}
			if flags.Changed("interval") {
				args.Interval = &interval
			}
			if flags.Changed("no-status") {
				args.NoStatus = &noStatus
			}
			cfg, err := buildConfig(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return newWeatherstation(newRainbowHat(cfg), cfg).Run(ctx)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (default $"+env.ConfigEnv+")")
	cmd.Flags().StringVar(&bus, "bus", env.I2CBus, "I²C bus")
	cmd.Flags().StringVar(&spiPort, "spi", env.SPIPort, "SPI port for the LED strip")
	cmd.Flags().IntVar(&brightness, "brightness", env.LedStripBrightness, "LED strip brightness 0-31")
	cmd.Flags().DurationVar(&interval, "interval", env.SensorInterval, "sensor sample interval")
	cmd.Flags().BoolVar(&noStatus, "no-status", false, "do not flash the status LED")

	cmd.AddCommand(newPreviewCmd())
	return cmd
}

func buildConfig(args env.Args) (env.Config, error) {
	path := ""
	if args.Config != nil {
		path = *args.Config
	}
	cfg, err := env.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(args)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	logger.Debugf("Config [%+v]", cfg)
	return cfg, nil
}

func newPreviewCmd() *cobra.Command {
	var (
		temperature float64
		noColor     bool
	)
	cmd := &cobra.Command{
		Use:   "preview PRESSURE_HPA...",
		Short: "Print the LED strip colours for pressure readings without touching hardware",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("temperature") {
				printDisplay(out, temperature)
			}
			for _, a := range args {
				p, err := parsePressure(a)
				if err != nil {
					return err
				}
				printStrip(out, p)
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "also show how a temperature (°C) is displayed")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	return cmd
}
