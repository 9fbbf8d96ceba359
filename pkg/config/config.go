package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Milvus    MilvusConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Document  DocumentConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type AuthConfig struct {
	Token string
}

type MilvusConfig struct {
	Endpoint       string
	CollectionName string
	VectorDim      int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

type RetrievalConfig struct {
	TopN        int
	MinScore    float64
	OverFetch   int
	MaxBoost    float64
	MaxParallel int
	TimeoutSec  int
}

type DocumentConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	DownloadTimeoutSec int
	MaxDownloadBytes   int64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/policylens")

	viper.SetEnvPrefix("POLICYLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 120)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "policy_chunks")
	viper.SetDefault("milvus.vectorDim", 1536)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("sqlite.path", "./data/policylens.db")

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("retrieval.topN", 4)
	viper.SetDefault("retrieval.minScore", 0.2)
	viper.SetDefault("retrieval.overFetch", 15)
	viper.SetDefault("retrieval.maxBoost", 0.0)
	viper.SetDefault("retrieval.maxParallel", 4)
	viper.SetDefault("retrieval.timeoutSec", 30)

	viper.SetDefault("document.chunkSize", 300)
	viper.SetDefault("document.chunkOverlap", 75)
	viper.SetDefault("document.downloadTimeoutSec", 60)
	viper.SetDefault("document.maxDownloadBytes", 52428800)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
