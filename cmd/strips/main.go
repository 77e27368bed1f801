// Command strips plays light patterns on an addressable LED strip, or on the
// terminal with --test.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreman2200/funtimes-strips/internal/config"
	"github.com/coreman2200/funtimes-strips/internal/detach"
	"github.com/coreman2200/funtimes-strips/internal/input"
	"github.com/coreman2200/funtimes-strips/internal/led"
	"github.com/coreman2200/funtimes-strips/internal/menu"
	"github.com/coreman2200/funtimes-strips/internal/monitor"
	"github.com/coreman2200/funtimes-strips/internal/player"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	os.Exit(exitCode(newRootCmd(os.Stdin, os.Stdout).Execute()))
}

func exitCode(err error) int {
	var ce *config.Error
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ce):
		return 2
	}
	return 1
}

func newRootCmd(stdin *os.File, stdout io.Writer) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "strips",
		Short:         "Play light patterns on an LED strip",
		Args:          cobra.MaximumNArgs(1), // --export-headless NAME
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(o.logLevel)
			err := run(cmd, o, args, stdin, stdout)
			if err != nil {
				log.Error().Err(err).Msg("strips")
			}
			return err
		},
	}
	o.register(cmd.Flags())
	return cmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// startDetached launches the background child.
var startDetached = detach.Start

func run(cmd *cobra.Command, o *options, args []string, stdin *os.File, stdout io.Writer) error {
	fs := cmd.Flags()
	if len(args) > 0 {
		// pflag leaves the value of a bare optional flag as a positional
		if !fs.Changed("export-headless") || o.exportHeadless != exportUnnamed {
			return flagError("args", "unexpected argument %q", args[0])
		}
		o.exportHeadless = args[0]
	}
	if o.showShortcuts {
		fmt.Fprintln(stdout, player.Shortcuts)
		return nil
	}

	var (
		cfg          config.Runtime
		err          error
		menuHeadless string
	)
	if !o.headless && !hasRunFlags(fs) && term.IsTerminal(int(stdin.Fd())) {
		cfg, menuHeadless, err = menu.Setup(menu.NewPrompter(stdin, stdout), config.HeadlessDir)
	} else {
		cfg, err = o.runtimeConfig(fs)
	}
	if err != nil {
		return err
	}

	if fs.Changed("export-headless") {
		name := o.exportHeadless
		if name == exportUnnamed {
			name = ""
		}
		path := config.ExportPath(config.HeadlessDir, name, cfg)
		if err := config.SaveHeadless(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported headless config to: %s\n", path)
		return nil
	}

	strip, err := o.strip(fs)
	if err != nil {
		return err
	}

	if menuHeadless != "" {
		if err := config.SaveHeadless(menuHeadless, cfg); err != nil {
			log.Warn().Err(err).Str("path", menuHeadless).Msg("could not rewrite headless config")
		}
	}

	if o.detach {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		pid, err := startDetached(exe, childArgs(fs, cfg))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Started in background (pid %d), logging to %s\nStop with: kill $(cat %s)\n",
			pid, detach.LogFile, detach.PidFile)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return play(ctx, cfg, strip, o, stdin, stdout)
}

func play(ctx context.Context, cfg config.Runtime, strip config.Strip, o *options, stdin *os.File, stdout io.Writer) error {
	sinkOpts := led.Options{Test: cfg.Test, SimStyle: o.simStyle, Out: stdout}
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sinkOpts.TTY = true
		sinkOpts.Width, _, _ = term.GetSize(int(f.Fd()))
	}
	if cfg.Test {
		fmt.Fprintln(stdout, "Running in --test mode (hardware disabled).")
	}
	log.Info().
		Bool("test", cfg.Test).
		Str("driver", strip.Driver).
		Int("leds", strip.LedCount).
		Str("pattern", cfg.Pattern.String()).
		Msg("Effective params")

	sink, err := led.Open(strip, sinkOpts)
	if err != nil {
		return err
	}

	var sources []input.Poller
	kb, err := input.OpenKeyboard(stdin, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("keyboard shortcuts disabled")
	} else {
		defer kb.Close()
		sources = append(sources, kb)
	}
	ext, err := input.NewExternal(cfg.Input, cfg.MaxBrightness, log.Logger)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("external brightness input disabled")
	case ext != nil:
		sources = append(sources, ext)
	}

	p := player.New(cfg, strip.LedCount, sink)
	p.Log = log.Logger
	p.Status = stdout
	p.Input = input.Merge(sources...)
	if exe, err := os.Executable(); err == nil {
		p.Launch = func(r config.Runtime) string {
			return detach.NohupLine(exe, detach.Args(r))
		}
	}

	if o.monitorAddr != "" {
		mon := monitor.New(log.Logger)
		if err := mon.Start(ctx, o.monitorAddr); err != nil {
			sink.Close()
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := mon.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("monitor shutdown")
			}
		}()
		p.Observer = mon
	}

	return p.Run(ctx)
}
