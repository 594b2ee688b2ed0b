package app

import (
	"log"

	"jvmproc/internal/config"
	"jvmproc/internal/daemon"
	"jvmproc/internal/registry"
)

// Options configures the top-level controller.
type Options struct {
	// ConfigPath points to the optional config file.
	ConfigPath string
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfgPath string
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	return &App{
		cfgPath: opts.ConfigPath,
	}
}

// ConfigPath returns the configured config file path (if any).
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// newLocalRegistry builds an in-process registry for calls that bypass the daemon.
var newLocalRegistry = func(cfgPath string) (*registry.Registry, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return daemon.NewRegistry(cfg, func(d registry.Degraded) {
		if d.PID < 0 {
			log.Printf("%s source unavailable: %v", d.Source, d.Err)
		}
	})
}
