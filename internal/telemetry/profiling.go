package telemetry

import (
	"log/slog"
	"os"

	"github.com/grafana/pyroscope-go"
)

func InitProfiling() (func(), error) {
	if !ProfilingEnabled() {
		slog.Debug("Pyroscope profiling is disabled")
		return func() {}, nil
	}

	server := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if server == "" {
		server = "http://localhost:4040"
	}

	cfg := pyroscope.Config{
		ApplicationName: ServiceName,
		ServerAddress:   server,
		Logger:          pyroscope.StandardLogger,
		Tags:            map[string]string{"version": Version},
	}
	if user, pass := os.Getenv("PYROSCOPE_BASIC_AUTH_USER"), os.Getenv("PYROSCOPE_BASIC_AUTH_PASSWORD"); user != "" && pass != "" {
		cfg.BasicAuthUser = user
		cfg.BasicAuthPassword = pass
	}

	profiler, err := pyroscope.Start(cfg)
	if err != nil {
		slog.Warn("Failed to start Pyroscope profiler", "error", err)
		return func() {}, nil
	}

	slog.Debug("Pyroscope profiling started", "server", server)

	return func() {
		if err := profiler.Stop(); err != nil {
			slog.Error("Error stopping Pyroscope profiler", "error", err)
		}
	}, nil
}
