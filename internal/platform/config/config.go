package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	Firebase  FirebaseConfig
	Events    EventsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// FirebaseConfig stores Firebase project settings used for token verification.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// EventsConfig names the Pub/Sub topic receiving order status-change events.
// An empty topic disables publishing.
type EventsConfig struct {
	ProjectID string
	Topic     string
}

// Load reads configuration from the environment, merging values from a .env
// file when present. Environment variables always win over file entries.
func Load() (Config, error) {
	if err := loadEnvFile(defaultEnvFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", defaultPort),
			ReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  getDurationEnv("HTTP_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:    firstNonEmpty(os.Getenv("FIRESTORE_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
			EmulatorHost: os.Getenv("FIRESTORE_EMULATOR_HOST"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       firstNonEmpty(os.Getenv("FIREBASE_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
			CredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		},
		Events: EventsConfig{
			ProjectID: firstNonEmpty(os.Getenv("EVENTS_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
			Topic:     os.Getenv("ORDER_EVENTS_TOPIC"),
		},
	}

	if cfg.Firestore.ProjectID == "" && cfg.Firestore.EmulatorHost == "" {
		return Config{}, errors.New("config: FIRESTORE_PROJECT_ID or FIRESTORE_EMULATOR_HOST is required")
	}

	return cfg, nil
}

// loadEnvFile applies KEY=VALUE pairs from the given file without overriding
// variables already present in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
