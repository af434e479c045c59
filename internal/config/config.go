package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/capture"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat returns the float value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid float.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid boolean.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable
// named by key, or fallback if unset, empty, or not parseable.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// Config holds all runtime settings. Built once at startup and treated as
// immutable afterwards.
type Config struct {
	// Camera.
	CameraID    int
	Resolutions []capture.Resolution
	CameraFPS   int

	// Detection.
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64

	// Recognition pipeline.
	TickInterval        time.Duration
	SimilarityThreshold float64
	SmoothingWindow     int
	Cooldown            time.Duration

	// Enrollment.
	EnrollSamples  int
	EnrollInterval time.Duration

	// Storage.
	DataDir      string
	GesturesPath string
	HistoryPath  string

	// Speech.
	SpeechCommand  string
	SpeechLanguage string
	SpeechSlow     bool
	SpeechTimeout  time.Duration

	// Logging.
	LogLevel  string
	LogFormat string
}

// New builds a Config from MUDRA_* environment variables, falling back to
// defaults for anything unset.
func New() (*Config, error) {
	dataDir := GetEnv("MUDRA_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mudra")
	}

	resolutions, err := parseResolutions(GetEnv("MUDRA_RESOLUTIONS", ""))
	if err != nil {
		return nil, err
	}
	if len(resolutions) == 0 {
		resolutions = capture.DefaultResolutions()
	}

	return &Config{
		CameraID:    GetEnvInt("MUDRA_CAMERA_ID", 0),
		Resolutions: resolutions,
		CameraFPS:   GetEnvInt("MUDRA_CAMERA_FPS", capture.DefaultFPS),

		MaxHands:        GetEnvInt("MUDRA_MAX_HANDS", 2),
		MinConfidence:   GetEnvFloat("MUDRA_MIN_CONFIDENCE", 0.5),
		MinTrackingConf: GetEnvFloat("MUDRA_MIN_TRACKING_CONFIDENCE", 0.5),

		TickInterval:        GetEnvDuration("MUDRA_TICK_INTERVAL", 30*time.Millisecond),
		SimilarityThreshold: GetEnvFloat("MUDRA_SIMILARITY_THRESHOLD", 0.7),
		SmoothingWindow:     GetEnvInt("MUDRA_SMOOTHING_WINDOW", 5),
		Cooldown:            GetEnvDuration("MUDRA_COOLDOWN", 5*time.Second),

		EnrollSamples:  GetEnvInt("MUDRA_ENROLL_SAMPLES", 10),
		EnrollInterval: GetEnvDuration("MUDRA_ENROLL_INTERVAL", 100*time.Millisecond),

		DataDir:      dataDir,
		GesturesPath: GetEnv("MUDRA_GESTURES_PATH", filepath.Join(dataDir, "gestures.json")),
		HistoryPath:  GetEnv("MUDRA_HISTORY_PATH", filepath.Join(dataDir, "history.db")),

		SpeechCommand:  GetEnv("MUDRA_SPEECH_COMMAND", ""),
		SpeechLanguage: GetEnv("MUDRA_SPEECH_LANGUAGE", "en"),
		SpeechSlow:     GetEnvBool("MUDRA_SPEECH_SLOW", false),
		SpeechTimeout:  GetEnvDuration("MUDRA_SPEECH_TIMEOUT", 10*time.Second),

		LogLevel:  GetEnv("MUDRA_LOG_LEVEL", "info"),
		LogFormat: GetEnv("MUDRA_LOG_FORMAT", "text"),
	}, nil
}

// parseResolutions parses a comma-separated list of WxH pairs, for example
// "1920x1080,1280x720". An empty input yields an empty slice.
func parseResolutions(s string) ([]capture.Resolution, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []capture.Resolution
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, h, ok := strings.Cut(part, "x")
		if !ok {
			return nil, fmt.Errorf("invalid resolution %q, want WxH", part)
		}
		width, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("invalid resolution width %q", part)
		}
		height, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil || height <= 0 {
			return nil, fmt.Errorf("invalid resolution height %q", part)
		}
		out = append(out, capture.Resolution{Width: width, Height: height})
	}
	return out, nil
}
