package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alienfx-go/alienfx/cmd"
	"github.com/alienfx-go/alienfx/internal/api"
	"github.com/alienfx-go/alienfx/internal/config"
	"github.com/alienfx-go/alienfx/internal/controller"
	"github.com/alienfx-go/alienfx/internal/events"
	"github.com/alienfx-go/alienfx/internal/logging"
	"github.com/alienfx-go/alienfx/internal/metrics"
	"github.com/alienfx-go/alienfx/internal/registry"
	"github.com/alienfx-go/alienfx/internal/systemd"
	"github.com/alienfx-go/alienfx/internal/theme"
	"github.com/alienfx-go/alienfx/internal/transport"
	"github.com/alienfx-go/alienfx/internal/updater"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8039" toml:"server.port" env:"SERVER_PORT"`

	// Device settings
	DeviceModel string `help:"Force a device model instead of probing" toml:"device.model" env:"DEVICE_MODEL"`

	// Theme settings
	ThemesDir  string `help:"Theme directory (default: $XDG_CONFIG_HOME/alienfx)" toml:"themes.dir" env:"THEMES_DIR"`
	ThemeWatch bool   `help:"Re-apply the last theme when its file changes" default:"false" toml:"themes.watch" env:"THEMES_WATCH"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Update settings
	UpdateRepository string `help:"GitHub repository for self-update" default:"alienfx-go/alienfx" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases when updating" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Systemd settings
	ServiceName string `help:"Systemd unit managed via the API" default:"alienfxd.service" toml:"systemd.service" env:"SYSTEMD_SERVICE"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingController string `help:"Controller logging level" default:"info" toml:"logging.controller" env:"LOGGING_CONTROLLER"`
	LoggingTransport  string `help:"Transport logging level" default:"info" toml:"logging.transport" env:"LOGGING_TRANSPORT"`
	LoggingTheme      string `help:"Theme logging level" default:"info" toml:"logging.theme" env:"LOGGING_THEME"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"controller": opts.LoggingController,
				"transport":  opts.LoggingTransport,
				"theme":      opts.LoggingTheme,
				"api":        opts.LoggingAPI,
			},
		})

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Forward every log line onto the bus for the SSE log stream
		var logSeq atomic.Uint64
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        logSeq.Add(1),
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Find the device: forced model or probe ACPI then USB
		var model *registry.DeviceModel
		var err error
		if opts.DeviceModel != "" {
			model, err = registry.LookupName(opts.DeviceModel)
		} else {
			model, err = registry.Probe(registry.ProbeOptions{
				ListUSB: transport.EnumerateUSB,
			})
		}

		var ctrl *controller.Controller
		if err != nil {
			logger.Warn("No AlienFX device detected, device routes will return 503", "error", err)
		} else {
			tr, trErr := transport.New(model)
			if trErr != nil {
				logger.Error("Unsupported transport", "model", model.Name, "error", trErr)
				os.Exit(1)
			}
			ctrl, err = controller.New(model, metrics.Instrument(tr),
				controller.WithBus(eventBus),
				controller.WithLogger(logging.GetLogger("controller")))
			if err != nil {
				logger.Error("Failed to open device", "model", model.Name, "error", err)
				os.Exit(1)
			}
			logger.Info("Device detected", "model", model.Name, "transport", tr.Kind())
			eventBus.Publish(events.DeviceDetectedEvent{
				Model:     model.Name,
				Transport: string(tr.Kind()),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}

		// Theme store
		themesDir := opts.ThemesDir
		if themesDir == "" {
			themesDir = theme.DefaultDir()
		}
		themeStore, err := theme.NewStore(themesDir)
		if err != nil {
			logger.Error("Failed to open theme directory", "dir", themesDir, "error", err)
			os.Exit(1)
		}

		// Self-update service
		updateService, err := updater.NewService(&updater.Options{
			Repository: opts.UpdateRepository,
			Prerelease: opts.UpdatePrerelease,
		})
		if err != nil {
			logger.Warn("Update service unavailable", "error", err)
		}

		// Systemd manager for the restart endpoint; optional
		systemdManager, err := systemd.NewManager(context.Background())
		if err != nil {
			logger.Debug("Systemd D-Bus connection unavailable", "error", err)
			systemdManager = nil
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Controller:        ctrl,
			Themes:            themeStore,
			EventBus:          eventBus,
			UpdateService:     updateService,
			SystemdManager:    systemdManager,
			ServiceName:       opts.ServiceName,
			PrometheusHandler: promhttp.Handler(),
		})

		// Optional live reload: re-apply the last theme when its file changes
		var themeWatcher *config.Watcher[*theme.Theme]
		if opts.ThemeWatch && ctrl != nil {
			if last, lastErr := themeStore.LastApplied(); lastErr == nil && last != "" {
				themeWatcher = config.NewConfigWatcher(
					themeStore.Path(last),
					func(_ string) (*theme.Theme, error) { return themeStore.Load(last) },
					logging.GetLogger("theme"),
				)
				themeWatcher.OnReload(func(th *theme.Theme) {
					if applyErr := ctrl.ApplyTheme(th); applyErr != nil {
						logger.Error("Failed to re-apply theme", "theme", th.Name, "error", applyErr)
					}
				})
			}
		}

		hooks.OnStart(func() {
			if themeWatcher != nil {
				if watchErr := themeWatcher.Start(); watchErr != nil {
					logger.Warn("Failed to start theme watcher", "error", watchErr)
				}
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if themeWatcher != nil {
				if stopErr := themeWatcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping theme watcher", "error", stopErr)
				}
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if ctrl != nil {
				if closeErr := ctrl.Close(); closeErr != nil {
					logger.Error("Error closing device", "error", closeErr)
				}
			}
			if systemdManager != nil {
				systemdManager.Close()
			}
		})
	})

	cli.Root().Use = "alienfx"
	cli.Root().AddCommand(cmd.CreateSetCmd())
	cli.Root().AddCommand(cmd.CreateZonesCmd())
	cli.Root().AddCommand(cmd.CreateThemeCmd())
	cli.Root().AddCommand(cmd.CreateStatusCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
