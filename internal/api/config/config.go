package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

const envPrefix = "NOVII"

// LoadConfig 从文件加载配置并填充到 Cfg
// 加载顺序: 默认值 < configs/config.yaml < .env < 环境变量 (NOVII_DATABASE_DSN 形式)
func LoadConfig() error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5)
	v.SetDefault("server.allow_origins", []string{})

	// 无默认值的键也需注册，否则 AutomaticEnv 不会参与 Unmarshal
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.slow_threshold", 200)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.local_cap", 4096)
	v.SetDefault("redis.slow_threshold", 100)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "Novii")
	v.SetDefault("jwt.expiration", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.remote_address", "")
	v.SetDefault("log.remote_index", "logstash-novii")
	v.SetDefault("log.remote_token", "")

	v.SetDefault("elastic.enable", false)
	v.SetDefault("elastic.address", "")
	v.SetDefault("elastic.indices.profile_index", "novii_profiles")

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 5)
	v.SetDefault("kafka_interaction.topic", "novii.interactions")
	v.SetDefault("kafka_interaction.group_id", "novii-notification")

	v.SetDefault("story.ttl", 24)
	v.SetDefault("story.retention", 24*7)

	v.SetDefault("cron.counter_reconcile", "0 30 3 * * *")
	v.SetDefault("cron.story_sweep", "0 0 * * * *")
}

// Validate 校验启动必需的配置项
func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Story.TTL <= 0 {
		return errors.New("story.ttl must be positive")
	}
	if c.Kafka.Enable && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	if c.Elastic.Enable && c.Elastic.Address == "" {
		return errors.New("elastic.address is required when elastic is enabled")
	}
	return nil
}
