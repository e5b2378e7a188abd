package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Security     SecurityConfig     `mapstructure:"security"`
	Staging      StagingConfig      `mapstructure:"staging"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | sqlite_memory | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AdminIPs restricts /api/admin to the listed client addresses.
	// An empty slice allows any address (useful for local development only).
	AdminIPs []string `mapstructure:"admin_ips"`
}

type StagingConfig struct {
	// BatchTTL is how long an untouched staged batch survives before the
	// sweeper discards it.
	BatchTTL      time.Duration `mapstructure:"batch_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// LookupTimeout bounds a single availability fetch during a field edit.
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
}

type AvailabilityConfig struct {
	Mode string `mapstructure:"mode"` // local | remote
	// RemoteBaseURL and RemoteToken configure the upstream registry client
	// when mode is "remote".
	RemoteBaseURL string        `mapstructure:"remote_base_url"`
	RemoteToken   string        `mapstructure:"remote_token"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
}

type CatalogConfig struct {
	SeedDir        string        `mapstructure:"seed_dir"`
	ResyncInterval time.Duration `mapstructure:"resync_interval"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/armory.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.jwt_ttl_h", "12h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("staging.batch_ttl", "2h")
	v.SetDefault("staging.sweep_interval", "10m")
	v.SetDefault("staging.lookup_timeout", "3s")
	v.SetDefault("availability.mode", "local")
	v.SetDefault("availability.remote_timeout", "5s")
	v.SetDefault("catalog.seed_dir", "./data/catalog")
	v.SetDefault("catalog.resync_interval", "1h")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
