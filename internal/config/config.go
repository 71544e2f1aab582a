package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed detector.yaml
var detectorYAML []byte

type Config struct {
	Embedding EmbeddingConfig
	Identity  IdentityConfig
	Database  DatabaseConfig
	Detector  DetectorConfig
}

type EmbeddingConfig struct {
	URL          string // face embedding service, defaults to http://localhost:8000
	Dim          int    // embedding dimensionality, defaults to 512
	MaxImageSize int    // frames above this dimension are downscaled before upload
}

type IdentityConfig struct {
	DBPath       string  // path of the JSON identity database (file backend)
	Threshold    float64 // minimum cosine similarity for a known match
	EnrollTarget int     // embeddings collected per enrollment
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (optional backend)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type DetectorConfig struct {
	Model           string    `yaml:"model"`
	ImageSize       int       `yaml:"image_size"`
	Margin          int       `yaml:"margin"`
	MinFaceSize     int       `yaml:"min_face_size"`
	StageThresholds []float64 `yaml:"stage_thresholds"`
}

type detectorFile struct {
	Detector DetectorConfig `yaml:"detector"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var detector detectorFile
	if err := yaml.Unmarshal(detectorYAML, &detector); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded detector.yaml: " + err.Error())
	}

	return &Config{
		Embedding: EmbeddingConfig{
			URL:          os.Getenv("EMBEDDING_URL"),
			Dim:          envInt("EMBEDDING_DIM", 512),
			MaxImageSize: envInt("EMBEDDING_MAX_IMAGE_SIZE", 1280),
		},
		Identity: IdentityConfig{
			DBPath:       envString("IDENTITY_DB_PATH", "faces_db.json"),
			Threshold:    envFloat("MATCH_THRESHOLD", 0.6),
			EnrollTarget: envInt("ENROLL_TARGET", 20),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Detector: detector.Detector,
	}
}
