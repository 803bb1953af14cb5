package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/twobd/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	sceneName := flag.String("scene", "", "startup scene name (overrides config)")
	title := flag.String("title", "", "window title (overrides config)")
	width := flag.Int("width", 0, "window width (overrides config)")
	height := flag.Int("height", 0, "window height (overrides config)")
	headless := flag.Int("headless", 0, "run N frames without a window and exit")
	debug := flag.Bool("debug", false, "debug logging and on-screen stats")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *title != "" {
		cfg.Window.Title = *title
	}
	if *width > 0 {
		cfg.Window.Width = *width
	}
	if *height > 0 {
		cfg.Window.Height = *height
	}
	if *sceneName != "" {
		cfg.Scenes.Startup = *sceneName
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	viewer := NewViewer(log, cfg)
	defer viewer.Close()
	if err := viewer.LoadScenes(cfg.Scenes.Startup); err != nil {
		return err
	}

	if *headless > 0 {
		_, err := runHeadless(log, viewer, *headless, cfg.Window.Width, cfg.Window.Height)
		return err
	}

	if cfg.Scenes.HotReload {
		if err := viewer.Watch(); err != nil {
			log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	input, err := newKeyInput(cfg.Input.Bindings)
	if err != nil {
		return err
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game := NewGame(log, viewer, input, cfg.Window.Width, cfg.Window.Height, *debug)
	return ebiten.RunGame(game)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
