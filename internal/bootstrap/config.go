package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	SocketPort    string `mapstructure:"SOCKET_PORT"`
	GrpcPort      string `mapstructure:"GRPC_PORT"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	RedisChannel  string `mapstructure:"REDIS_CHANNEL"`
	MongoUri      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors   bool   `mapstructure:"LOCAL_CORS"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":    "8080",
	"SOCKET_PORT":    "8081",
	"GRPC_PORT":      "8082",
	"REDIS_URL":      "",
	"REDIS_CHANNEL":  "maedn:snapshots",
	"MONGO_URI":      "",
	"MONGO_DATABASE": "maedn",
	"LOCAL_CORS":     false,
	"LOG_LEVEL":      "info",
}

// Setup reads cfgPath (env format) and lets environment variables override
// it. A missing file is not an error; defaults apply.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
