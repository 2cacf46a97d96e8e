package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	YouTubeKey   string
	JWTSecret    string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	Port         string

	// Ingestion / retrieval tuning.
	ChunkMaxChars int
	EmbedBatch    int
	IngestWorkers int

	RetrieveTopK        int
	SimilarityThreshold float64
	HistoryWindow       int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "studyrag-pdfs"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		YouTubeKey:   getEnv("YOUTUBE_API_KEY", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "8080"),

		ChunkMaxChars: getEnvInt("CHUNK_MAX_CHARS", 500),
		EmbedBatch:    getEnvInt("EMBED_BATCH", 5),
		IngestWorkers: getEnvInt("INGEST_WORKERS", 2),

		RetrieveTopK:        getEnvInt("RETRIEVE_TOP_K", 5),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.7),
		HistoryWindow:       getEnvInt("HISTORY_WINDOW", 10),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
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
