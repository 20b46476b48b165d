package common

import (
	"encoding/hex"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Uploads  UploadsConfig
	Crypto   CryptoConfig
	OCR      OCRConfig
	OpenAI   OpenAIConfig
	Twilio   TwilioConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	Origin          string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the sqlite database configuration
type DatabaseConfig struct {
	Path string
}

// UploadsConfig holds file intake limits and storage location
type UploadsConfig struct {
	Dir           string
	MaxFileBytes  int64
	MaxBatchFiles int
}

// CryptoConfig holds the at-rest encryption key material
type CryptoConfig struct {
	KeyHex string
}

// OCRConfig holds the external text-extraction tool configuration.
type OCRConfig struct {
	Pdftotext     string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
}

// OpenAIConfig holds the optional chat-completion backend configuration.
// An empty APIKey selects the built-in mock responses.
type OpenAIConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// TwilioConfig holds the optional SMS alert configuration.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// LoadConfig loads configuration from a .env file (if present) and
// environment variables.
func LoadConfig() *Config {
	// Missing .env is fine; environment variables take over.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADDR", ":5174"),
			Origin:          getEnv("ORIGIN", "http://localhost:5173"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/medpass.db"),
		},
		Uploads: UploadsConfig{
			Dir:           getEnv("UPLOADS_DIR", "data/uploads"),
			MaxFileBytes:  getEnvAsInt64("MAX_FILE_BYTES", 20<<20),
			MaxBatchFiles: getEnvAsInt("MAX_BATCH_FILES", 10),
		},
		Crypto: CryptoConfig{
			KeyHex: getEnv("ENC_KEY", ""),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Tesseract:     getEnv("TESSERACT_PATH", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_DIR", ""),
		},
		OpenAI: OpenAIConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_SID", ""),
			AuthToken:  getEnv("TWILIO_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "ADDR is required", ErrInvalidInput)
	}
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	if c.Uploads.Dir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOADS_DIR is required", ErrInvalidInput)
	}
	if c.Crypto.KeyHex != "" {
		key, err := hex.DecodeString(c.Crypto.KeyHex)
		if err != nil || len(key) != 32 {
			return NewAppError("CONFIG_ERROR", "ENC_KEY must be 64 hex characters (32 bytes)", ErrInvalidInput)
		}
	}
	return nil
}

// UsesInsecureDefaultKey reports whether the process will fall back to the
// built-in development encryption key. Callers must warn loudly when true;
// the fallback exists only for local convenience and is not safe for real data.
func (c *Config) UsesInsecureDefaultKey() bool {
	return c.Crypto.KeyHex == ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
