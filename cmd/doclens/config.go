package main

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings of the program.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Provider ProviderConfig `mapstructure:"provider"`
	Search   SearchConfig   `mapstructure:"search"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readtimeout"`
	WriteTimeout time.Duration `mapstructure:"writetimeout"`
	BodyLimit    int           `mapstructure:"bodylimit"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type DBConfig struct {
	Path       string `mapstructure:"path"`
	Dimensions int    `mapstructure:"dimensions"`
}

type CrawlConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	MaxPages          int           `mapstructure:"maxpages"`
	RPS               float64       `mapstructure:"rps"`
	Browser           bool          `mapstructure:"browser"`
	Sitemaps          bool          `mapstructure:"sitemaps"`
	Extractor         string        `mapstructure:"extractor"`
	NavigationTimeout time.Duration `mapstructure:"navigationtimeout"`
	IdleTimeout       time.Duration `mapstructure:"idletimeout"`
	ContentTimeout    time.Duration `mapstructure:"contenttimeout"`
	FetchTimeout      time.Duration `mapstructure:"fetchtimeout"`
}

type ProviderConfig struct {
	Name           string `mapstructure:"name"`
	APIKey         string `mapstructure:"apikey"`
	BaseURL        string `mapstructure:"baseurl"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embeddingmodel"`
	Dimensions     int    `mapstructure:"dimensions"`
}

type SearchConfig struct {
	Limit     int     `mapstructure:"limit"`
	Threshold float64 `mapstructure:"threshold"`
	Keywords  bool    `mapstructure:"keywords"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Extractor strategies.
const (
	ExtractorHeuristic   = "heuristic"
	ExtractorTrafilatura = "trafilatura"
	ExtractorReadability = "readability"
)

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LoadConfig reads configuration from defaults, an optional config file and
// DOCLENS_ environment variables, in increasing priority. A .env file in the
// working directory is loaded into the environment first. An empty path
// searches the working directory and $HOME/.doclens for doclens.yaml.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOCLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("doclens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".doclens"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = providerKeyFromEnv(cfg.Provider.Name)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4001)
	v.SetDefault("server.readtimeout", 30*time.Second)
	v.SetDefault("server.writetimeout", 5*time.Minute)
	v.SetDefault("server.bodylimit", 1<<20)

	v.SetDefault("db.path", defaultDBPath())
	v.SetDefault("db.dimensions", 0)

	v.SetDefault("crawl.concurrency", 4)
	v.SetDefault("crawl.maxpages", 50)
	v.SetDefault("crawl.rps", 1.0)
	v.SetDefault("crawl.browser", true)
	v.SetDefault("crawl.sitemaps", true)
	v.SetDefault("crawl.extractor", ExtractorHeuristic)
	v.SetDefault("crawl.navigationtimeout", 45*time.Second)
	v.SetDefault("crawl.idletimeout", 7*time.Second)
	v.SetDefault("crawl.contenttimeout", 7*time.Second)
	v.SetDefault("crawl.fetchtimeout", 10*time.Second)

	v.SetDefault("provider.name", ProviderGemini)
	v.SetDefault("provider.apikey", "")
	v.SetDefault("provider.baseurl", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.embeddingmodel", "")
	v.SetDefault("provider.dimensions", 0)

	v.SetDefault("search.limit", 10)
	v.SetDefault("search.threshold", 0.1)
	v.SetDefault("search.keywords", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// providerKeyFromEnv falls back to the provider's conventional variable.
func providerKeyFromEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "doclens.db"
	}
	return filepath.Join(home, ".doclens", "doclens.db")
}
