package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Prices     PricesConfig     `mapstructure:"prices"`
	Checker    CheckerConfig    `mapstructure:"checker"`
	Timeframes TimeframesConfig `mapstructure:"timeframes"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SymbolRefresh string `mapstructure:"symbol_refresh"`
	CachePrune    string `mapstructure:"cache_prune"`
}

type PricesConfig struct {
	ProviderOrder []string        `mapstructure:"provider_order"`
	CacheTTL      time.Duration   `mapstructure:"cache_ttl"`
	Binance       BinanceConfig   `mapstructure:"binance"`
	CoinGecko     CoinGeckoConfig `mapstructure:"coingecko"`
	Stream        StreamConfig    `mapstructure:"stream"`
}

type BinanceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Quote   string        `mapstructure:"quote"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CoinGeckoConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	IDOverrides map[string]string `mapstructure:"id_overrides"`
}

type StreamConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	URL     string   `mapstructure:"url"`
	Symbols []string `mapstructure:"symbols"`
}

type CheckerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	TickTimeout time.Duration `mapstructure:"tick_timeout"`
}

type TimeframesConfig struct {
	Short time.Duration `mapstructure:"short"`
	Mid   time.Duration `mapstructure:"mid"`
	Long  time.Duration `mapstructure:"long"`
}

// Duration maps a signal timeframe to its expiry window. Unknown values
// fall back to the MID window.
func (t TimeframesConfig) Duration(timeframe string) time.Duration {
	switch strings.ToUpper(strings.TrimSpace(timeframe)) {
	case "SHORT":
		return t.Short
	case "LONG":
		return t.Long
	default:
		return t.Mid
	}
}

type NotifierConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.symbol_refresh", "@every 10m")
	v.SetDefault("cron.cache_prune", "@every 1m")
	v.SetDefault("prices.provider_order", []string{"coingecko", "binance"})
	v.SetDefault("prices.cache_ttl", "5m")
	v.SetDefault("prices.binance.base_url", "https://api.binance.com")
	v.SetDefault("prices.binance.quote", "USDT")
	v.SetDefault("prices.binance.timeout", "10s")
	v.SetDefault("prices.coingecko.base_url", "https://api.coingecko.com")
	v.SetDefault("prices.coingecko.timeout", "10s")
	v.SetDefault("prices.stream.enabled", false)
	v.SetDefault("prices.stream.url", "wss://stream.binance.com:9443/stream")
	v.SetDefault("prices.stream.symbols", []string{"BTC", "ETH"})
	v.SetDefault("checker.interval", "5m")
	v.SetDefault("checker.tick_timeout", "2m")
	v.SetDefault("timeframes.short", "24h")
	v.SetDefault("timeframes.mid", "168h")
	v.SetDefault("timeframes.long", "720h")
	v.SetDefault("notifier.kafka.enabled", false)
	v.SetDefault("notifier.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("notifier.kafka.topic", "signal-events")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
