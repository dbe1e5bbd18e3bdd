package config

// Config 配置主体
type Config struct {
	Server           ServerConfig     `mapstructure:"server"`
	DB               DBConfig         `mapstructure:"database"`
	Redis            RedisConfig      `mapstructure:"redis"`
	JWT              JWTConfig        `mapstructure:"jwt"`
	Log              LogConfig        `mapstructure:"log"`
	Elastic          ElasticConfig    `mapstructure:"elastic"`
	Kafka            KafkaConfig      `mapstructure:"kafka"`
	KafkaInteraction KafkaTopicConfig `mapstructure:"kafka_interaction"`
	Story            StoryConfig      `mapstructure:"story"`
	Cron             CronConfig       `mapstructure:"cron"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string `mapstructure:"allow_origins"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN           string `mapstructure:"dsn"`
	MaxIdle       int    `mapstructure:"max_idle"`
	MaxOpen       int    `mapstructure:"max_open"`
	MaxLifetime   int    `mapstructure:"max_lifetime"`
	AutoMigrate   bool   `mapstructure:"auto_migrate"`
	SlowThreshold int    `mapstructure:"slow_threshold"`
}

// RedisConfig Redis配置，Addr 为空时使用进程内 LRU 缓存
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	PoolSize      int    `mapstructure:"pool_size"`
	LocalCap      int    `mapstructure:"local_cap"`
	SlowThreshold int    `mapstructure:"slow_threshold"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	Expiration int    `mapstructure:"expiration"`
}

// LogConfig 日志配置，RemoteAddress 为空时只输出到 stdout
type LogConfig struct {
	Level         string `mapstructure:"level"`
	RemoteAddress string `mapstructure:"remote_address"`
	RemoteIndex   string `mapstructure:"remote_index"`
	RemoteToken   string `mapstructure:"remote_token"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	ProfileIndex string `mapstructure:"profile_index"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaTopicConfig struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// StoryConfig 快拍配置，单位均为小时
type StoryConfig struct {
	TTL       int `mapstructure:"ttl"`
	Retention int `mapstructure:"retention"`
}

type CronConfig struct {
	CounterReconcile string `mapstructure:"counter_reconcile"`
	StorySweep       string `mapstructure:"story_sweep"`
}
