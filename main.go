package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/magne4000/displayd/cmd"
	"github.com/magne4000/displayd/internal/api"
	"github.com/magne4000/displayd/internal/config"
	"github.com/magne4000/displayd/internal/events"
	"github.com/magne4000/displayd/internal/kms"
	"github.com/magne4000/displayd/internal/logging"
	"github.com/magne4000/displayd/internal/metrics"
	"github.com/magne4000/displayd/internal/vdisplay"
	"github.com/magne4000/displayd/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"displayd.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Metrics settings
	MetricsEnabled bool `help:"Enable Prometheus metrics endpoint" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingVdisplay string `help:"Display lifecycle logging level" default:"info" toml:"logging.vdisplay" env:"LOGGING_VDISPLAY"`
	LoggingKms      string `help:"KMS enumeration logging level" default:"info" toml:"logging.kms" env:"LOGGING_KMS"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP     string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
}

// devicePollInterval is how often the active display is drained for
// kernel notifications (mode changes, DPMS).
const devicePollInterval = time.Second

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"vdisplay": opts.LoggingVdisplay,
				"kms":      opts.LoggingKms,
				"api":      opts.LoggingAPI,
				"http":     opts.LoggingHTTP,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Event bus for in-process event handling
		eventBus := events.New()

		// Forward log entries to SSE subscribers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		var m *metrics.Metrics
		if opts.MetricsEnabled {
			m = metrics.New()
		}

		displayCfg, cfgErr := config.LoadDisplayConfig(opts.Config)
		if cfgErr != nil {
			logger.Warn("Failed to load display config, using defaults", "error", cfgErr)
		}

		enumerator := kms.NewSysfsEnumerator(kms.DefaultDRMPath)

		manager := vdisplay.NewManager(vdisplay.Options{
			DeviceAPI:         vdisplay.KernelDeviceAPI(),
			Enumerator:        enumerator,
			Capturer:          enumerator,
			EventBus:          eventBus,
			Metrics:           m,
			Logger:            logging.GetLogger("vdisplay"),
			DetectionPolicy:   vdisplay.DetectionPolicy(displayCfg.DetectionPolicy),
			DetectionInterval: time.Duration(displayCfg.DetectionIntervalMs) * time.Millisecond,
			DetectionAttempts: displayCfg.DetectionAttempts,
		})

		// Hot-reload of the [display] section
		watcher := config.NewConfigWatcher(opts.Config, config.LoadDisplayConfig, logger)
		watcher.OnReload(func(cfg config.DisplayConfig) {
			manager.ApplyConfig(vdisplay.RuntimeConfig{
				DetectionPolicy:     vdisplay.DetectionPolicy(cfg.DetectionPolicy),
				DetectionIntervalMs: cfg.DetectionIntervalMs,
				DetectionAttempts:   cfg.DetectionAttempts,
			})
		})

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Displays:     manager,
			EventBus:     eventBus,
		}
		if m != nil {
			apiOpts.PrometheusHandler = m.Handler()
		}

		server := api.NewServer(apiOpts)

		pollCtx, stopPolling := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			logger.Info("Starting displayd", "build", version.String())

			if !manager.CheckSupport() {
				logger.Warn("evdi kernel module is not loaded, display creation will fail",
					"hint", "install evdi-dkms and run: modprobe evdi")
			}

			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Failed to start config watcher, hot-reload disabled", "error", startErr)
			}

			// Drain kernel notifications for the active display
			go func() {
				ticker := time.NewTicker(devicePollInterval)
				defer ticker.Stop()
				for {
					select {
					case <-pollCtx.Done():
						return
					case <-ticker.C:
						if manager.IsActive() {
							manager.PollDeviceEvents()
						}
					}
				}
			}()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			stopPolling()

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			// The kernel keeps a connected display alive after the owning
			// process exits, so always tear down on the way out
			manager.Destroy()
		})
	})

	cli.Root().AddCommand(cmd.CreateProbeCmd())
	cli.Root().AddCommand(cmd.CreateEDIDCmd())

	cli.Run()
}
