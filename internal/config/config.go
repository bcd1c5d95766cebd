package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdfdeck/pdfdeck/internal/title"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Rasterization and OCR
	RasterDPI    int
	OCRLanguages []string

	// Deck rendering
	MaxImageWidthPx int

	// Title heuristic tunables, calibrated for RasterDPI=300.
	TitleHeaderBandPx    float64
	TitleSizeRatio       float64
	TitleMaxLineGapPx    float64
	TitleMaxFontDeltaPx  float64
	TitleMarkerScanLimit int
}

func Load() Config {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	titleDefaults := title.DefaultConfig()

	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PDFDECK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		RasterDPI:    envInt("RASTER_DPI", 300),
		OCRLanguages: envList("OCR_LANGUAGES", []string{"eng"}),

		MaxImageWidthPx: envInt("MAX_IMAGE_WIDTH_PX", 2000),

		TitleHeaderBandPx:    envFloat("TITLE_HEADER_BAND_PX", titleDefaults.HeaderBandPx),
		TitleSizeRatio:       envFloat("TITLE_SIZE_RATIO", titleDefaults.TitleSizeRatio),
		TitleMaxLineGapPx:    envFloat("TITLE_MAX_LINE_GAP_PX", titleDefaults.MaxLineGapPx),
		TitleMaxFontDeltaPx:  envFloat("TITLE_MAX_FONT_DELTA_PX", titleDefaults.MaxFontDeltaPx),
		TitleMarkerScanLimit: envInt("TITLE_MARKER_SCAN_LIMIT", titleDefaults.MarkerScanLimit),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.RasterDPI <= 0 {
		cfg.RasterDPI = 300
	}
	if cfg.MaxImageWidthPx <= 0 {
		cfg.MaxImageWidthPx = 2000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PDFDECK_API_KEY is required")
	}
	if c.TitleSizeRatio <= 0 {
		return fmt.Errorf("TITLE_SIZE_RATIO must be positive")
	}
	return nil
}

// TitleConfig assembles the title heuristic's tunables.
func (c Config) TitleConfig() title.Config {
	return title.Config{
		HeaderBandPx:    c.TitleHeaderBandPx,
		TitleSizeRatio:  c.TitleSizeRatio,
		MaxLineGapPx:    c.TitleMaxLineGapPx,
		MaxFontDeltaPx:  c.TitleMaxFontDeltaPx,
		MarkerScanLimit: c.TitleMarkerScanLimit,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
