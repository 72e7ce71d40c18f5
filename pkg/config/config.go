package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	OpenAI    OpenAIConfig
	Search    SearchConfig
	Taste     TasteConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	EmbeddingDim   int
	RateLimitRPM   int
	RateLimitBurst int
}

// SearchConfig holds the tunable knobs of the search and ranking pipeline.
// Any non-negative weight configuration is accepted.
type SearchConfig struct {
	// TopK is the number of results returned to the caller.
	TopK int
	// OverFetchFactor controls how many candidates are pulled from the
	// vector index per requested result, so the reranker and the MMR
	// selector have a pool to work with.
	OverFetchFactor int
	// Alpha weighs semantic similarity in the fused score.
	Alpha float64
	// Beta weighs the engagement prior in the fused score.
	Beta float64
	// Gamma is the penalty applied to hard-negative sites.
	Gamma float64
	// ExcludeHardNegatives drops disliked sites from personalized
	// results entirely instead of only penalizing them.
	ExcludeHardNegatives bool
	// Lambda balances relevance against redundancy in MMR selection.
	// 1.0 is pure relevance, 0.0 is pure diversity.
	Lambda float64
}

// TasteConfig holds the knobs of taste profile aggregation.
type TasteConfig struct {
	// EventWindow bounds history to the most recent N events. The raw
	// history is unbounded, so aggregation needs a documented cutoff.
	EventWindow int
	// DwellSaturationSeconds caps the dwell ramp so one long session
	// cannot dominate a profile.
	DwellSaturationSeconds float64
	// ViewEpsilon is the small positive weight of a bare view event.
	ViewEpsilon float64
	// PositiveThreshold and NegativeThreshold split aggregate weights
	// into positive/negative signal sets. Sites in between carry no
	// explicit signal.
	PositiveThreshold float64
	NegativeThreshold float64
	// NegativeDamping scales how strongly disliked-site embeddings are
	// subtracted from the taste vector.
	NegativeDamping float64
	// ProfileCacheTTLSeconds is the freshness window for cached
	// profiles.
	ProfileCacheTTLSeconds int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "sitelore"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDim:   getEnvAsInt("OPENAI_EMBEDDING_DIM", 384),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Search: SearchConfig{
			TopK:                 getEnvAsInt("SEARCH_TOP_K", 10),
			OverFetchFactor:      getEnvAsInt("SEARCH_OVER_FETCH_FACTOR", 4),
			Alpha:                getEnvAsFloat("RANK_ALPHA", 0.7),
			Beta:                 getEnvAsFloat("RANK_BETA", 0.2),
			Gamma:                getEnvAsFloat("RANK_GAMMA", 0.4),
			ExcludeHardNegatives: getEnvAsBool("RANK_EXCLUDE_HARD_NEGATIVES", true),
			Lambda:               getEnvAsFloat("MMR_LAMBDA", 0.7),
		},
		Taste: TasteConfig{
			EventWindow:            getEnvAsInt("TASTE_EVENT_WINDOW", 500),
			DwellSaturationSeconds: getEnvAsFloat("TASTE_DWELL_SATURATION_SECONDS", 120),
			ViewEpsilon:            getEnvAsFloat("TASTE_VIEW_EPSILON", 0.05),
			PositiveThreshold:      getEnvAsFloat("TASTE_POSITIVE_THRESHOLD", 0.5),
			NegativeThreshold:      getEnvAsFloat("TASTE_NEGATIVE_THRESHOLD", -0.5),
			NegativeDamping:        getEnvAsFloat("TASTE_NEGATIVE_DAMPING", 0.3),
			ProfileCacheTTLSeconds: getEnvAsInt("TASTE_PROFILE_CACHE_TTL_SECONDS", 300),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "sitelore-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// Validate rejects weight configurations the ranking pipeline cannot accept.
func (c *Config) Validate() error {
	s := c.Search
	if s.Alpha < 0 || s.Beta < 0 || s.Gamma < 0 {
		return fmt.Errorf("rank weights must be non-negative (alpha=%v beta=%v gamma=%v)", s.Alpha, s.Beta, s.Gamma)
	}
	if s.Lambda < 0 || s.Lambda > 1 {
		return fmt.Errorf("MMR lambda must be in [0,1], got %v", s.Lambda)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", s.TopK)
	}
	if s.OverFetchFactor < 1 {
		return fmt.Errorf("over_fetch_factor must be at least 1, got %d", s.OverFetchFactor)
	}
	t := c.Taste
	if t.PositiveThreshold < t.NegativeThreshold {
		return fmt.Errorf("positive threshold %v below negative threshold %v", t.PositiveThreshold, t.NegativeThreshold)
	}
	if t.DwellSaturationSeconds <= 0 {
		return fmt.Errorf("dwell saturation must be positive, got %v", t.DwellSaturationSeconds)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
