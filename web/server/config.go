package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is the port the web server listens on
	DefaultPort = 8080
	// DefaultTileSize is the tile edge used for progressive SSE renders
	DefaultTileSize = 32
	// DefaultMaxPasses bounds how many progressive passes a render may request
	DefaultMaxPasses = 8
	// DefaultMaxPixels caps width*height of a single request
	DefaultMaxPixels = 2000 * 2000
	// DefaultPingInterval controls the keepalive cadence for live websocket connections
	DefaultPingInterval = 30 * time.Second
	// DefaultMaxMessageBytes limits inbound websocket frame size
	DefaultMaxMessageBytes int64 = 64 << 10
)

// Config captures the runtime tunables of the web server
type Config struct {
	Port            int
	StaticDir       string
	TileSize        int
	MaxPasses       int
	MaxPixels       int
	NumWorkers      int // 0 = use CPU count
	AllowedOrigins  []string
	PingInterval    time.Duration
	MaxMessageBytes int64
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		StaticDir:       "static/",
		TileSize:        DefaultTileSize,
		MaxPasses:       DefaultMaxPasses,
		MaxPixels:       DefaultMaxPixels,
		PingInterval:    DefaultPingInterval,
		MaxMessageBytes: DefaultMaxMessageBytes,
	}
}

// LoadConfig applies RAYTRACER_* environment overrides on top of base and
// reports every invalid value at once
func LoadConfig(base Config) (Config, error) {
	cfg := base

	var problems []string

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_PORT")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 || value > 65535 {
			problems = append(problems, fmt.Sprintf("RAYTRACER_PORT must be a port number, got %q", raw))
		} else {
			cfg.Port = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_STATIC_DIR")); raw != "" {
		cfg.StaticDir = raw
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_TILE_SIZE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("RAYTRACER_TILE_SIZE must be a positive integer, got %q", raw))
		} else {
			cfg.TileSize = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_MAX_PASSES")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("RAYTRACER_MAX_PASSES must be a positive integer, got %q", raw))
		} else {
			cfg.MaxPasses = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_WORKERS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("RAYTRACER_WORKERS must be a non-negative integer, got %q", raw))
		} else {
			cfg.NumWorkers = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_ALLOWED_ORIGINS")); raw != "" {
		cfg.AllowedOrigins = parseList(raw)
	}

	if raw := strings.TrimSpace(os.Getenv("RAYTRACER_PING_INTERVAL")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("RAYTRACER_PING_INTERVAL must be a positive duration, got %q", raw))
		} else {
			cfg.PingInterval = duration
		}
	}

	if len(problems) > 0 {
		return base, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
