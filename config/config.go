package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/matching-engine/pkg/engine/model"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
)

type InstrumentConfig struct {
	Symbol     string           `yaml:"symbol"`
	PriceScale model.PriceScale `yaml:"price_scale"`
}

type RedisFeedConfig struct {
	Channel string `yaml:"channel"`
	Buffer  int    `yaml:"buffer"`
}

type KafkaFeedConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Buffer  int      `yaml:"buffer"`
}

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
	Buffer  int    `yaml:"buffer"`
}

type FixConfig struct {
	ConfigFilepath string `yaml:"config_filepath"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	Instrument  *InstrumentConfig                `yaml:"instrument"`
	TradeDB     *postgres_wrapper.PostgresConfig `yaml:"trade_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	RedisFeed   *RedisFeedConfig                 `yaml:"redis_feed"`
	KafkaFeed   *KafkaFeedConfig                 `yaml:"kafka_feed"`
	Nats        *NatsConfig                      `yaml:"nats"`
	Fix         *FixConfig                       `yaml:"fix"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	if cfg.Instrument == nil {
		cfg.Instrument = &InstrumentConfig{Symbol: "DEFAULT", PriceScale: 2}
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
