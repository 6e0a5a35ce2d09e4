package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	StockfishPath    string `mapstructure:"STOCKFISH_PATH"`
	EngineDepth      int    `mapstructure:"ENGINE_DEPTH"`
	EngineMaxDepth   int    `mapstructure:"ENGINE_MAX_DEPTH"`
	EngineTimeoutSec int    `mapstructure:"ENGINE_TIMEOUT_SEC"`
	EngineHashMB     int    `mapstructure:"ENGINE_HASH_MB"`
	EngineMultiPV    int    `mapstructure:"ENGINE_MULTIPV"`
	RedisUrl         string `mapstructure:"REDIS_URL"`
	MongoUri         string `mapstructure:"MONGO_URI"`
	IsLocalCors      bool   `mapstructure:"LOCAL_CORS"`
	PageLimitGames   int    `mapstructure:"PAGE_LIMIT_GAMES"`
	CacheTTLMinutes  int    `mapstructure:"CACHE_TTL_MINUTES"`
	MaxUploadMB      int    `mapstructure:"MAX_UPLOAD_MB"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENGINE_DEPTH", 15)
	viper.SetDefault("ENGINE_MAX_DEPTH", 25)
	viper.SetDefault("ENGINE_TIMEOUT_SEC", 30)
	viper.SetDefault("ENGINE_HASH_MB", 128)
	viper.SetDefault("ENGINE_MULTIPV", 3)
	viper.SetDefault("PAGE_LIMIT_GAMES", 10)
	viper.SetDefault("CACHE_TTL_MINUTES", 60)
	viper.SetDefault("MAX_UPLOAD_MB", 16)
}
