package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Auth modes
const (
	AuthModeBasic = "basic"
	AuthModeJWT   = "jwt"
)

// License levels accepted by annotations.required_license
var licenseLevels = []string{"basic", "standard", "gold", "platinum", "enterprise"}

// Config holds all configuration for the lookout service
type Config struct {
	API struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		TLS             bool          `mapstructure:"tls"`
		CertFile        string        `mapstructure:"cert_file"`
		KeyFile         string        `mapstructure:"key_file"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
		RateLimit       struct {
			RequestsPerSecond int      `mapstructure:"requests_per_second"`
			Burst             int      `mapstructure:"burst"`
			ExemptIPs         []string `mapstructure:"exempt_ips"` // IPs exempt from rate limiting
		} `mapstructure:"rate_limit"`
	} `mapstructure:"api"`

	Auth struct {
		Enabled        bool   `mapstructure:"enabled"`
		Mode           string `mapstructure:"mode"` // basic or jwt
		Username       string `mapstructure:"username"`
		Password       string `mapstructure:"password"`
		HashedPassword string
		BcryptCost     int    `mapstructure:"bcrypt_cost"`
		JWTSecret      string `mapstructure:"jwt_secret"`
		JWTIssuer      string `mapstructure:"jwt_issuer"`
	} `mapstructure:"auth"`

	Elasticsearch struct {
		Addresses          []string      `mapstructure:"addresses"`
		Username           string        `mapstructure:"username"`
		Password           string        `mapstructure:"password"`
		APIKey             string        `mapstructure:"api_key"`
		CloudID            string        `mapstructure:"cloud_id"`
		CACertFile         string        `mapstructure:"ca_cert_file"`
		InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
		MaxRetries         int           `mapstructure:"max_retries"`
		RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"elasticsearch"`

	Annotations struct {
		Index           string        `mapstructure:"index"`
		RequiredLicense string        `mapstructure:"required_license"`
		LicenseCacheTTL time.Duration `mapstructure:"license_cache_ttl"`
	} `mapstructure:"annotations"`

	Rules struct {
		FieldCacheTTL time.Duration `mapstructure:"field_cache_ttl"`
		MaxIndices    int           `mapstructure:"max_indices"` // cap on index suggestions
	} `mapstructure:"rules"`

	Entities struct {
		Namespace       string `mapstructure:"namespace"`
		FilterCacheSize int    `mapstructure:"filter_cache_size"`
	} `mapstructure:"entities"`

	Redis struct {
		Enabled   bool   `mapstructure:"enabled"`
		Addr      string `mapstructure:"addr"`
		Password  string `mapstructure:"password"`
		DB        int    `mapstructure:"db"`
		PoolSize  int    `mapstructure:"pool_size"`
		KeyPrefix string `mapstructure:"key_prefix"`
	} `mapstructure:"redis"`

	Secrets struct {
		Provider string `mapstructure:"provider"` // env, vault, aws
		Vault    struct {
			Address string `mapstructure:"address"`
			Token   string `mapstructure:"token"`
			Path    string `mapstructure:"path"`
		} `mapstructure:"vault"`
		AWS struct {
			Region    string `mapstructure:"region"`
			Endpoint  string `mapstructure:"endpoint"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			SecretID  string `mapstructure:"secret_id"`
		} `mapstructure:"aws"`
	} `mapstructure:"secrets"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

func setDefaults() {
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 5601)
	viper.SetDefault("api.tls", false)
	viper.SetDefault("api.allowed_origins", []string{})
	viper.SetDefault("api.read_timeout", 30*time.Second)
	viper.SetDefault("api.write_timeout", 60*time.Second)
	viper.SetDefault("api.shutdown_timeout", 15*time.Second)
	viper.SetDefault("api.max_body_bytes", 1<<20)
	viper.SetDefault("api.rate_limit.requests_per_second", 50)
	viper.SetDefault("api.rate_limit.burst", 100)

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.mode", AuthModeBasic)
	viper.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	viper.SetDefault("auth.jwt_issuer", "lookout")

	viper.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	viper.SetDefault("elasticsearch.max_retries", 3)
	viper.SetDefault("elasticsearch.request_timeout", 30*time.Second)

	viper.SetDefault("annotations.index", "observability-annotations")
	viper.SetDefault("annotations.required_license", "gold")
	viper.SetDefault("annotations.license_cache_ttl", time.Minute)

	viper.SetDefault("rules.field_cache_ttl", 5*time.Minute)
	viper.SetDefault("rules.max_indices", 1000)

	viper.SetDefault("entities.namespace", "default")
	viper.SetDefault("entities.filter_cache_size", 256)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.key_prefix", "lookout:")

	viper.SetDefault("secrets.provider", "env")

	viper.SetDefault("logging.level", "info")
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("LOOKOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Shorter names for the settings most often injected by deployments
	_ = viper.BindEnv("elasticsearch.addresses", "LOOKOUT_ES_ADDRESSES")
	_ = viper.BindEnv("elasticsearch.api_key", "LOOKOUT_ES_API_KEY")
	_ = viper.BindEnv("logging.level", "LOOKOUT_LOG_LEVEL")
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.Elasticsearch.Addresses = splitList(config.Elasticsearch.Addresses)
	config.API.AllowedOrigins = splitList(config.API.AllowedOrigins)

	if err := LoadSecrets(&config); err != nil {
		return nil, err
	}

	if err := validateAndHash(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// splitList expands comma separated entries, as set through environment variables
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateAndHash validates the config and hashes the basic auth password
func validateAndHash(config *Config) error {
	if config.Auth.Enabled && config.Auth.Mode == AuthModeJWT {
		if len(config.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters (256 bits) for security")
		}
	}

	if config.Auth.Password != "" {
		cost := config.Auth.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(config.Auth.Password), cost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		config.Auth.HashedPassword = string(hashed)
		config.Auth.Password = "" // clear plain password
	}

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d (must be 1-65535)", config.API.Port)
	}
	if config.API.Host == "" {
		return fmt.Errorf("invalid API host: host cannot be empty")
	}
	if config.API.TLS && (config.API.CertFile == "" || config.API.KeyFile == "") {
		return fmt.Errorf("api.cert_file and api.key_file are required when api.tls is enabled")
	}
	if config.API.RateLimit.RequestsPerSecond < 0 || config.API.RateLimit.Burst < 0 {
		return fmt.Errorf("api.rate_limit values must not be negative")
	}
	for _, ip := range config.API.RateLimit.ExemptIPs {
		if !isValidIPOrCIDR(strings.TrimSpace(ip)) {
			return fmt.Errorf("invalid rate limit exempt entry: %s (must be IP or CIDR)", ip)
		}
	}

	if config.Elasticsearch.CloudID == "" {
		if len(config.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("elasticsearch.addresses cannot be empty")
		}
		for _, addr := range config.Elasticsearch.Addresses {
			parsed, err := url.Parse(addr)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				return fmt.Errorf("invalid Elasticsearch address %q: must be an http(s) URL", addr)
			}
		}
	}
	if config.Elasticsearch.MaxRetries < 0 {
		return fmt.Errorf("elasticsearch.max_retries must not be negative, got %d", config.Elasticsearch.MaxRetries)
	}

	if err := validateIndexName(config.Annotations.Index); err != nil {
		return fmt.Errorf("invalid annotations.index: %w", err)
	}
	if !isLicenseLevel(config.Annotations.RequiredLicense) {
		return fmt.Errorf("annotations.required_license must be one of %s, got %q",
			strings.Join(licenseLevels, ", "), config.Annotations.RequiredLicense)
	}
	if config.Annotations.LicenseCacheTTL < time.Second || config.Annotations.LicenseCacheTTL > time.Hour {
		return fmt.Errorf("annotations.license_cache_ttl must be between 1s and 1h, got %v", config.Annotations.LicenseCacheTTL)
	}

	if config.Rules.FieldCacheTTL < 0 || config.Rules.FieldCacheTTL > 24*time.Hour {
		return fmt.Errorf("rules.field_cache_ttl must be between 0 and 24h, got %v", config.Rules.FieldCacheTTL)
	}

	if config.Entities.FilterCacheSize < 1 || config.Entities.FilterCacheSize > 100000 {
		return fmt.Errorf("entities.filter_cache_size must be between 1 and 100000, got %d", config.Entities.FilterCacheSize)
	}
	if config.Entities.Namespace == "" {
		return fmt.Errorf("entities.namespace cannot be empty")
	}

	if config.Redis.Enabled {
		if _, _, err := net.SplitHostPort(config.Redis.Addr); err != nil {
			return fmt.Errorf("invalid redis.addr %q: %w", config.Redis.Addr, err)
		}
	}

	if config.Auth.Enabled {
		switch config.Auth.Mode {
		case AuthModeBasic:
			if config.Auth.Username == "" {
				return fmt.Errorf("username cannot be empty when basic auth is enabled")
			}
			if config.Auth.HashedPassword == "" {
				return fmt.Errorf("authentication enabled but no password set")
			}
		case AuthModeJWT:
		default:
			return fmt.Errorf("invalid auth.mode %q (must be basic or jwt)", config.Auth.Mode)
		}
	}

	// SECURITY: Enforce HTTPS in production mode
	if os.Getenv("LOOKOUT_ENV") == "production" && !config.API.TLS {
		return fmt.Errorf("TLS must be enabled for API in production (LOOKOUT_ENV=production, api.tls=false)")
	}

	return nil
}

// validateIndexName applies the Elasticsearch index naming rules
func validateIndexName(name string) error {
	if name == "" {
		return fmt.Errorf("index name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("index name is longer than 255 bytes")
	}
	if name != strings.ToLower(name) {
		return fmt.Errorf("index name must be lowercase")
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "+") {
		return fmt.Errorf("index name cannot start with -, _ or +")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("index name cannot be . or ..")
	}
	if strings.ContainsAny(name, `\/*?"<>| ,#:`) {
		return fmt.Errorf("index name contains an illegal character")
	}
	return nil
}

func isLicenseLevel(level string) bool {
	for _, l := range licenseLevels {
		if l == level {
			return true
		}
	}
	return false
}

// isValidIPOrCIDR checks if a string is a valid IP address or CIDR
func isValidIPOrCIDR(ipStr string) bool {
	if ip := net.ParseIP(ipStr); ip != nil {
		return true
	}
	if _, _, err := net.ParseCIDR(ipStr); err == nil {
		return true
	}
	return false
}
