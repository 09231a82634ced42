package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all service configuration
type Config struct {
	Server ServerConfig
	TLS    TLSConfig
	Store  StoreConfig
	Events EventsConfig
	Log    LogConfig
	Export ExportConfig
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// TLSConfig holds TLS settings
type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string
}

// MongoConfig holds the hosted document store connection parameters
type MongoConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	AuthSource     string
	AppName        string
	ConnectTimeout time.Duration
}

// StoreConfig selects and configures the presentation store
type StoreConfig struct {
	Backend    string
	Mongo      MongoConfig
	SQLitePath string
}

// EventsConfig configures the optional change event publisher
type EventsConfig struct {
	RabbitURL string
	Exchange  string
}

// Enabled reports whether both broker parameters are set
func (e EventsConfig) Enabled() bool {
	return e.RabbitURL != "" && e.Exchange != ""
}

// LogConfig configures the logger
type LogConfig struct {
	Mode string
}

// ExportConfig configures the JSON export archive
type ExportConfig struct {
	ArchiveDir string
}

// Missing lists the environment names of required store parameters that are
// empty for the selected backend.
func (s StoreConfig) Missing() []string {
	var missing []string
	switch s.Backend {
	case BackendMongo:
		required := []struct {
			name  string
			value string
		}{
			{"MONGO_URI", s.Mongo.URI},
			{"MONGO_DATABASE", s.Mongo.Database},
			{"MONGO_USERNAME", s.Mongo.Username},
			{"MONGO_PASSWORD", s.Mongo.Password},
			{"MONGO_AUTH_SOURCE", s.Mongo.AuthSource},
			{"MONGO_APP_NAME", s.Mongo.AppName},
		}
		for _, r := range required {
			if strings.TrimSpace(r.value) == "" {
				missing = append(missing, r.name)
			}
		}
	case BackendSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			missing = append(missing, "DB_PATH")
		}
	case BackendMemory:
	default:
		missing = append(missing, "STORE_BACKEND")
	}
	return missing
}

// Complete reports whether the store can be constructed
func (s StoreConfig) Complete() bool {
	return len(s.Missing()) == 0
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() *Config {
	// A missing .env file is the normal production case
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function
func FromEnv(lookup func(string) (string, bool)) *Config {
	get := func(key, fallback string) string {
		if value, ok := lookup(key); ok {
			return value
		}
		return fallback
	}

	return &Config{
		Server: ServerConfig{
			Host:           get("SERVER_HOST", "0.0.0.0"),
			Port:           get("SERVER_PORT", "8080"),
			AllowedOrigins: splitList(get("ALLOWED_ORIGINS", "")),
			MaxUploadBytes: getInt64(get("MAX_UPLOAD_BYTES", ""), 25<<20),
		},
		TLS: TLSConfig{
			Enabled:    getBool(get("TLS_ENABLED", ""), false),
			CertFile:   get("TLS_CERT_FILE", ""),
			KeyFile:    get("TLS_KEY_FILE", ""),
			MinVersion: get("TLS_MIN_VERSION", "1.2"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(get("STORE_BACKEND", BackendMongo)),
			Mongo: MongoConfig{
				URI:            get("MONGO_URI", ""),
				Database:       get("MONGO_DATABASE", ""),
				Username:       get("MONGO_USERNAME", ""),
				Password:       get("MONGO_PASSWORD", ""),
				AuthSource:     get("MONGO_AUTH_SOURCE", ""),
				AppName:        get("MONGO_APP_NAME", ""),
				ConnectTimeout: getDuration(get("MONGO_CONNECT_TIMEOUT", ""), 10*time.Second),
			},
			SQLitePath: get("DB_PATH", "./data/timeline.db"),
		},
		Events: EventsConfig{
			RabbitURL: get("RABBITMQ_URI", ""),
			Exchange:  get("RABBITMQ_EXCHANGE", ""),
		},
		Log: LogConfig{
			Mode: get("LOG_MODE", "dev"),
		},
		Export: ExportConfig{
			ArchiveDir: get("EXPORT_ARCHIVE_DIR", ""),
		},
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getInt64(v string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
