package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	Port         string

	ChunkSize       int
	ChunkOverlap    int
	ChunkStoreBytes int
	UpsertBatch     int
	TopK            int
	ScoreThreshold  float64
	MaxContextChars int
	ExtractTimeout  time.Duration
	IngestWorkers   int
	IngestQueueSize int

	// VectorBackend selects the index implementation: "pgvector" or
	// "memory".
	VectorBackend string

	LogLevel  string
	LogFormat string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "docquery-docs"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "8080"),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		ChunkStoreBytes: getEnvInt("CHUNK_STORE_BYTES", 36000),
		UpsertBatch:     getEnvInt("UPSERT_BATCH", 100),
		TopK:            getEnvInt("TOP_K", 5),
		ScoreThreshold:  getEnvFloat("SCORE_THRESHOLD", 0.75),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 3000),
		ExtractTimeout:  getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
		IngestWorkers:   getEnvInt("INGEST_WORKERS", 2),
		IngestQueueSize: getEnvInt("INGEST_QUEUE_SIZE", 64),

		VectorBackend: getEnv("VECTOR_BACKEND", "pgvector"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.VectorBackend == "pgvector" && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
