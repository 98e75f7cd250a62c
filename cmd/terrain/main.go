package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"mini-terrain/assets"
	"mini-terrain/internal/app"
	"mini-terrain/internal/config"
	"mini-terrain/internal/gpu/glbackend"
	"mini-terrain/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := pflag.StringP("config", "c", "", "TOML settings file, reloaded on change")
	shaderDir := pflag.String("shaders", "", "directory to load GLSL sources from instead of the embedded ones")
	debug := pflag.Bool("debug", false, "verbose console logging")
	pflag.Parse()

	log, err := logger.New(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*configPath, *shaderDir, log); err != nil {
		log.Error("terrain viewer failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(configPath, shaderDir string, log *zap.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	var shaders fs.FS = assets.Shaders
	if shaderDir == "" {
		shaderDir = cfg.ShaderDir
	}
	if shaderDir != "" {
		shaders = os.DirFS(shaderDir)
		log.Info("loading shaders from disk", zap.String("dir", shaderDir))
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	window, err := app.OpenWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := glbackend.New()
	if err != nil {
		return err
	}
	defer dev.Dispose()
	log.Info("OpenGL initialized", zap.String("version", dev.Version()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(cfg.Controls)
	if configPath != "" {
		go func() {
			if err := config.Watch(ctx, configPath, store, log); err != nil {
				log.Warn("settings hot reload disabled", zap.Error(err))
			}
		}()
	}

	viewer, err := app.New(window, cfg, store, dev, shaders, log)
	if err != nil {
		return err
	}
	defer viewer.Close()

	return viewer.Run(ctx)
}
