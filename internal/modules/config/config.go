package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daily_trader/pkg/logger"
	"daily_trader/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	defaultConfigFile = "values_local.yaml"
)

type Config struct {
	Capital   Capital        `mapstructure:"capital" yaml:"capital"`
	Reconcile Reconcile      `mapstructure:"reconcile" yaml:"reconcile"`
	Open      Open           `mapstructure:"open" yaml:"open"`
	Close     Close          `mapstructure:"close" yaml:"close"`
	Screen    Screen         `mapstructure:"screen" yaml:"screen"`
	Sentiment Sentiment      `mapstructure:"sentiment" yaml:"sentiment"`
	Analyze   Analyze        `mapstructure:"analyze" yaml:"analyze"`
	SLTP      SLTP           `mapstructure:"sltp" yaml:"sltp"`
	Normalize Normalize      `mapstructure:"normalize" yaml:"normalize"`
	AI        AI             `mapstructure:"ai" yaml:"ai"`
	Report    Report         `mapstructure:"report" yaml:"report"`
	Mail      Mail           `mapstructure:"mail" yaml:"mail"`
	Telegram  Telegram       `mapstructure:"telegram" yaml:"telegram"`
	Journal   Journal        `mapstructure:"journal" yaml:"journal"`
	Log       logger.Config  `mapstructure:"log" yaml:"log"`
	Tracing   tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Health    Health         `mapstructure:"health" yaml:"health"`
	Paths     Paths          `mapstructure:"paths" yaml:"paths"`
	Pipeline  Pipeline       `mapstructure:"pipeline" yaml:"pipeline"`
}

type Capital struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	StreamURL  string        `mapstructure:"stream_url" yaml:"stream_url"`
	Identifier string        `mapstructure:"identifier" yaml:"identifier"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Password   string        `mapstructure:"password" yaml:"password"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryCount int           `mapstructure:"retry_count" yaml:"retry_count"`
	// лимит демо API 10 запросов в секунду
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	PingInterval      time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
}

type Reconcile struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
	// 0 = точное сравнение уровней
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

type Open struct {
	MaxPositions int     `mapstructure:"max_positions" yaml:"max_positions"`
	DefaultSize  float64 `mapstructure:"default_size" yaml:"default_size"`
	Direction    string  `mapstructure:"direction" yaml:"direction"`
	// передавать SL/TP сразу в ордере или только через reconcile
	AttachLevels bool `mapstructure:"attach_levels" yaml:"attach_levels"`
}

type Close struct {
	AfterBusinessDays int           `mapstructure:"after_business_days" yaml:"after_business_days"`
	Delay             time.Duration `mapstructure:"delay" yaml:"delay"`
	DryRun            bool          `mapstructure:"dry_run" yaml:"dry_run"`
}

type Screen struct {
	UniverseURL      string  `mapstructure:"universe_url" yaml:"universe_url"`
	MinPrice         float64 `mapstructure:"min_price" yaml:"min_price"`
	TradeableOnly    bool    `mapstructure:"tradeable_only" yaml:"tradeable_only"`
	Threads          int     `mapstructure:"threads" yaml:"threads"`
	HistoryDays      int     `mapstructure:"history_days" yaml:"history_days"`
	MinVolume        float64 `mapstructure:"min_volume" yaml:"min_volume"`
	MinPercentChange float64 `mapstructure:"min_percent_change" yaml:"min_percent_change"`
	RSIMin           float64 `mapstructure:"rsi_min" yaml:"rsi_min"`
	RSIMax           float64 `mapstructure:"rsi_max" yaml:"rsi_max"`
	TopX             int     `mapstructure:"top_x" yaml:"top_x"`
}

type Sentiment struct {
	// %s заменяется на экранированный запрос
	NewsURL      string        `mapstructure:"news_url" yaml:"news_url"`
	SocialURL    string        `mapstructure:"social_url" yaml:"social_url"`
	MaxItems     int           `mapstructure:"max_items" yaml:"max_items"`
	NewsWeight   float64       `mapstructure:"news_weight" yaml:"news_weight"`
	SocialWeight float64       `mapstructure:"social_weight" yaml:"social_weight"`
	Delay        time.Duration `mapstructure:"delay" yaml:"delay"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type Analyze struct {
	MaxHoldDays int           `mapstructure:"max_hold_days" yaml:"max_hold_days"`
	BanLimit    int           `mapstructure:"ban_limit" yaml:"ban_limit"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
}

type SLTP struct {
	EMABuffer   float64 `mapstructure:"ema_buffer" yaml:"ema_buffer"`
	PriceBuffer float64 `mapstructure:"price_buffer" yaml:"price_buffer"`
	NotionalRef float64 `mapstructure:"notional_ref" yaml:"notional_ref"`
}

type Normalize struct {
	Balance      float64 `mapstructure:"balance" yaml:"balance"`
	Leverage     float64 `mapstructure:"leverage" yaml:"leverage"`
	MaxPositions int     `mapstructure:"max_positions" yaml:"max_positions"`
}

type AI struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BatchSize   int           `mapstructure:"batch_size" yaml:"batch_size"`
}

type Report struct {
	Title string `mapstructure:"title" yaml:"title"`
}

type Mail struct {
	BaseURL   string   `mapstructure:"base_url" yaml:"base_url"`
	APIKey    string   `mapstructure:"api_key" yaml:"api_key"`
	SecretKey string   `mapstructure:"secret_key" yaml:"secret_key"`
	From      string   `mapstructure:"from" yaml:"from"`
	FromName  string   `mapstructure:"from_name" yaml:"from_name"`
	To        []string `mapstructure:"to" yaml:"to"`
	Subject   string   `mapstructure:"subject" yaml:"subject"`
}

type Telegram struct {
	Token  string `mapstructure:"token" yaml:"token"`
	ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
}

type Journal struct {
	// пустой DSN = журнал в памяти
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

type Health struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type Paths struct {
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	HistoryDir string `mapstructure:"history_dir" yaml:"history_dir"`
}

type Pipeline struct {
	Steps []string `mapstructure:"steps" yaml:"steps"`
}

// NewConfig читает .env, затем configs/$CONFIG_FILE, затем переменные окружения
// (capital.api_key -> CAPITAL_API_KEY).
func NewConfig() (*Config, error) {
	// .env может и не быть
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	configFileName := getenvDefault(configFilePathENV, defaultConfigFile)
	path := configFileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(getenvDefault(configDirENV, "configs"), configFileName)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capital.base_url", "https://demo-api-capital.backend-capital.com/api/v1")
	v.SetDefault("capital.stream_url", "wss://api-streaming-capital.backend-capital.com/connect")
	v.SetDefault("capital.timeout", "15s")
	v.SetDefault("capital.retry_count", 2)
	v.SetDefault("capital.requests_per_second", 10)
	v.SetDefault("capital.ping_interval", "5m")

	v.SetDefault("reconcile.max_attempts", 5)
	v.SetDefault("reconcile.delay", "1500ms")
	v.SetDefault("reconcile.tolerance", 0)

	v.SetDefault("open.max_positions", 5)
	v.SetDefault("open.default_size", 1)
	v.SetDefault("open.direction", "BUY")
	v.SetDefault("open.attach_levels", false)

	v.SetDefault("close.after_business_days", 10)
	v.SetDefault("close.delay", "300ms")

	v.SetDefault("screen.universe_url", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies")
	v.SetDefault("screen.min_price", 10)
	v.SetDefault("screen.threads", 5)
	v.SetDefault("screen.history_days", 60)
	v.SetDefault("screen.min_volume", 100000)
	v.SetDefault("screen.min_percent_change", 0.5)
	v.SetDefault("screen.rsi_min", 30)
	v.SetDefault("screen.rsi_max", 70)
	v.SetDefault("screen.top_x", 20)

	v.SetDefault("sentiment.news_url", "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en")
	v.SetDefault("sentiment.social_url", "https://www.reddit.com/search.rss?q=%s&sort=new")
	v.SetDefault("sentiment.max_items", 6)
	v.SetDefault("sentiment.news_weight", 0.7)
	v.SetDefault("sentiment.social_weight", 0.3)
	v.SetDefault("sentiment.delay", "700ms")
	v.SetDefault("sentiment.timeout", "10s")

	v.SetDefault("analyze.max_hold_days", 10)
	v.SetDefault("analyze.ban_limit", 3)
	v.SetDefault("analyze.delay", "250ms")

	v.SetDefault("sltp.ema_buffer", 0.98)
	v.SetDefault("sltp.price_buffer", 0.97)
	v.SetDefault("sltp.notional_ref", 10)

	v.SetDefault("normalize.balance", 5000)
	v.SetDefault("normalize.leverage", 5)
	v.SetDefault("normalize.max_positions", 50)

	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4-turbo")
	v.SetDefault("ai.temperature", 0)
	v.SetDefault("ai.timeout", "120s")
	v.SetDefault("ai.batch_size", 20)

	v.SetDefault("report.title", "AI Stock Report")

	v.SetDefault("mail.base_url", "https://api.mailjet.com")
	v.SetDefault("mail.from_name", "Daily Trader")
	v.SetDefault("mail.subject", "AI Stock Report")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", []string{})
	v.SetDefault("journal.max_conns", 4)
	v.SetDefault("log.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
	v.SetDefault("tracing.service_name", "daily_trader")
	v.SetDefault("health.addr", ":8080")

	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.history_dir", "history")
	v.SetDefault("pipeline.steps", []string{
		"universe", "technical", "sentiment", "rank", "comment", "sltp", "normalize",
		"report", "send", "archive", "analyze", "open", "close",
	})
}

// bindLegacyEnv короткие имена переменных, которые уже лежат в .env у старых скриптов.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("capital.identifier", "CAPITAL_IDENTIFIER")
	_ = v.BindEnv("capital.api_key", "CAPITAL_API_KEY")
	_ = v.BindEnv("capital.password", "CAPITAL_API_PASSWORD", "CAPITAL_PASSWORD")
	_ = v.BindEnv("ai.api_key", "OPENAI_API_KEY", "AI_API_KEY")
	_ = v.BindEnv("mail.api_key", "MAILJET_API_KEY", "MAIL_API_KEY")
	_ = v.BindEnv("mail.secret_key", "MAILJET_SECRET_KEY", "MAIL_SECRET_KEY")
	_ = v.BindEnv("telegram.token", "TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("journal.dsn", "DATABASE_DSN", "JOURNAL_DSN")
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// DataFile путь файла шага внутри data_dir.
func (c *Config) DataFile(name string) string {
	return filepath.Join(c.Paths.DataDir, name)
}
