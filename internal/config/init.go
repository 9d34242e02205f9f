package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitializeViper initializes Viper from environment variables and config
// files. This must be called before Load().
func InitializeViper(cfgFile string) error {
	loadEnvFile()
	setupViper(cfgFile)
	setDefaults()
	readConfigFile()
	bindAPIKeyEnvVars()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper(cfgFile string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SHOGO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.shogo")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// bindAPIKeyEnvVars binds provider API key environment variables so that
// GROQ_API_KEY / OPENAI_API_KEY work without the SHOGO_ prefix.
func bindAPIKeyEnvVars() {
	_ = viper.BindEnv("ai.api_key", "SHOGO_AI_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")
}

// setDefaults registers default values for every configuration key.
func setDefaults() {
	viper.SetDefault("app.name", DefaultAppName)
	viper.SetDefault("app.environment", DefaultEnvironment)
	viper.SetDefault("app.debug", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.development", false)
	viper.SetDefault("logging.encoding", "console")

	viper.SetDefault("extractor.max_aux_pages", DefaultMaxAuxPages)

	viper.SetDefault("fetcher.timeout", DefaultFetchTimeout)
	viper.SetDefault("fetcher.max_retries", DefaultMaxRetries)
	viper.SetDefault("fetcher.retry_delay", DefaultRetryDelay)
	viper.SetDefault("fetcher.max_body_size", DefaultMaxBodySize)
	viper.SetDefault("fetcher.max_redirects", DefaultMaxRedirects)
	viper.SetDefault("fetcher.user_agent", DefaultUserAgent)

	viper.SetDefault("robots.enabled", true)
	viper.SetDefault("robots.cache_ttl", DefaultRobotsCacheTTL)
	viper.SetDefault("robots.timeout", DefaultRobotsTimeout)
	viper.SetDefault("robots.max_body_size", DefaultRobotsMaxBodySize)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.mode", ModeHybrid)
	viper.SetDefault("ai.provider", ProviderGroq)
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.confidence_threshold", DefaultConfidenceThreshold)
	viper.SetDefault("ai.max_content_length", DefaultMaxContentLength)
	viper.SetDefault("ai.timeout", DefaultAITimeout)

	viper.SetDefault("batch.workers", DefaultBatchWorkers)
	viper.SetDefault("batch.row_timeout", DefaultRowTimeout)
	viper.SetDefault("batch.delay", DefaultBatchDelay)
	viper.SetDefault("batch.random_delay", DefaultBatchRandomDelay)

	viper.SetDefault("storage.backend", BackendJSONL)
	viper.SetDefault("storage.jsonl_path", DefaultJSONLPath)
	viper.SetDefault("storage.postgres_dsn", "")
	viper.SetDefault("storage.elasticsearch.addresses", []string{DefaultESAddress})
	viper.SetDefault("storage.elasticsearch.index", DefaultESIndex)
	viper.SetDefault("storage.elasticsearch.username", "")
	viper.SetDefault("storage.elasticsearch.password", "")

	viper.SetDefault("server.address", DefaultServerAddress)
	viper.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viper.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viper.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	viper.SetDefault("server.security_enabled", false)
	viper.SetDefault("server.api_key", "")
}
