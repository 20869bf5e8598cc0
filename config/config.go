package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/thev1ndu/xp/logging"
)

// Config holds all application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	RCON        RCONConfig       `mapstructure:"rcon"`
	Site        SiteConfig       `mapstructure:"site"`
	Shop        ShopConfig       `mapstructure:"shop"`
	TokenStore  TokenStoreConfig `mapstructure:"token_store"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Kafka       KafkaConfig      `mapstructure:"kafka"`
	Logging     logging.Config   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RCONConfig holds the remote console connection and command vocabulary
type RCONConfig struct {
	Host     string         `mapstructure:"host"`
	Port     int            `mapstructure:"port"`
	Password string         `mapstructure:"password"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Commands CommandsConfig `mapstructure:"commands"`
}

// CommandsConfig holds command templates and the response markers the
// game server's plugins print. Placeholders: {player} {amount} {skill} {xp}.
type CommandsConfig struct {
	Balance             string `mapstructure:"balance"`
	Exists              string `mapstructure:"exists"`
	Withdraw            string `mapstructure:"withdraw"`
	Deposit             string `mapstructure:"deposit"`
	Grant               string `mapstructure:"grant"`
	DebitSuccessMarker  string `mapstructure:"debit_success_marker"`
	PlayerMissingMarker string `mapstructure:"player_missing_marker"`
}

// SiteConfig holds the shared site password and session cookie settings
type SiteConfig struct {
	Password      string        `mapstructure:"password"`
	PasswordHash  string        `mapstructure:"password_hash"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SecureCookie  bool          `mapstructure:"secure_cookie"`
}

// ShopConfig holds the skill catalog
type ShopConfig struct {
	Currency string                     `mapstructure:"currency"`
	Skills   map[string]decimal.Decimal `mapstructure:"skills"`
}

// TokenStoreConfig selects the registration token backend
type TokenStoreConfig struct {
	Driver    string `mapstructure:"driver"` // memory | redis
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
}

// DefaultSkills is the catalog used when none is configured (1 coin = 2 XP)
var DefaultSkills = map[string]decimal.Decimal{
	"farming":    decimal.NewFromInt(2),
	"foraging":   decimal.NewFromInt(2),
	"mining":     decimal.NewFromInt(2),
	"fishing":    decimal.NewFromInt(2),
	"excavation": decimal.NewFromInt(2),
	"archery":    decimal.NewFromInt(2),
	"defense":    decimal.NewFromInt(2),
	"fighting":   decimal.NewFromInt(2),
	"endurance":  decimal.NewFromInt(2),
	"agility":    decimal.NewFromInt(2),
	"alchemy":    decimal.NewFromInt(2),
}

// envKeys are bound explicitly so they can be set from the environment
// without appearing in the YAML file.
var envKeys = []string{
	"environment",
	"server.port",
	"rcon.host",
	"rcon.port",
	"rcon.password",
	"rcon.timeout",
	"site.password",
	"site.password_hash",
	"site.session_secret",
	"site.session_ttl",
	"token_store.driver",
	"redis.addr",
	"redis.password",
	"kafka.brokers",
	"logging.level",
	"logging.format",
}

// Load loads configuration from a YAML file using Viper.
// An empty filename loads from the environment only.
func Load(filename string) (*Config, error) {
	cfg, _, err := LoadWithViper(filename)
	return cfg, err
}

// LoadWithViper loads configuration and returns the viper instance for custom usage
func LoadWithViper(filename string) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(decodeHook())); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.setDefaults(); err != nil {
		return nil, nil, err
	}

	return &config, v, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook decodes YAML numbers and strings into decimal.Decimal
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint64:
		return decimal.NewFromString(strconv.FormatUint(v, 10))
	default:
		return nil, fmt.Errorf("cannot decode %T into decimal", data)
	}
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() error {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 25 * time.Second
	}

	if c.RCON.Host == "" {
		c.RCON.Host = "localhost"
	}
	if c.RCON.Port == 0 {
		c.RCON.Port = 25575
	}
	if c.RCON.Timeout == 0 {
		c.RCON.Timeout = 5 * time.Second
	}
	c.RCON.Commands.SetDefaults()

	if c.Site.SessionTTL == 0 {
		c.Site.SessionTTL = 24 * time.Hour
	}
	if c.Site.SessionSecret == "" {
		secret, err := randomHex(16)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.Site.SessionSecret = secret
	}

	if c.Shop.Currency == "" {
		c.Shop.Currency = "$"
	}
	if len(c.Shop.Skills) == 0 {
		c.Shop.Skills = make(map[string]decimal.Decimal, len(DefaultSkills))
		for k, v := range DefaultSkills {
			c.Shop.Skills[k] = v
		}
	}

	if c.TokenStore.Driver == "" {
		c.TokenStore.Driver = "memory"
	}
	if c.TokenStore.KeyPrefix == "" {
		c.TokenStore.KeyPrefix = "xpshop:token:"
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	return nil
}

// SetDefaults fills unset commands with the EssentialsX / AureliumSkills vocabulary
func (c *CommandsConfig) SetDefaults() {
	if c.Balance == "" {
		c.Balance = "bal {player}"
	}
	if c.Exists == "" {
		c.Exists = c.Balance
	}
	if c.Withdraw == "" {
		c.Withdraw = "eco take {player} {amount}"
	}
	if c.Deposit == "" {
		c.Deposit = "eco give {player} {amount}"
	}
	if c.Grant == "" {
		c.Grant = "skills xp add {player} {skill} {xp}"
	}
	if c.DebitSuccessMarker == "" {
		c.DebitSuccessMarker = "taken"
	}
	if c.PlayerMissingMarker == "" {
		c.PlayerMissingMarker = "not found"
	}
}

// Validate checks settings that have no safe default
func (c *Config) Validate() error {
	if c.RCON.Password == "" {
		return fmt.Errorf("rcon.password is required (RCON_PASSWORD)")
	}
	if c.Site.Password == "" && c.Site.PasswordHash == "" {
		return fmt.Errorf("site.password or site.password_hash is required")
	}
	switch c.TokenStore.Driver {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when token_store.driver is redis")
		}
	default:
		return fmt.Errorf("unknown token_store.driver %q", c.TokenStore.Driver)
	}
	return nil
}

// Addr returns the RCON host:port
func (c *RCONConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AuditTopic returns the Kafka topic for purchase events
func (c *KafkaConfig) AuditTopic() string {
	if t, ok := c.Topics["audit"]; ok && t != "" {
		return t
	}
	return "xpshop.purchases"
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
