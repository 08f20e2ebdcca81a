package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Postgres          Postgres
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	Sync              Sync
	GoogleDrive       GoogleDrive
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"24h"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Telegram struct {
	Token          string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout     time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
	AllowedChatIDs []int64       `env:"TELEGRAM_ALLOWED_CHAT_IDS"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug     bool          `env:"API_DEBUG"`
	Timeout   time.Duration `env:"API_TIMEOUT"`
	ZapperApi ZapperApi
	YahooApi  YahooApi
}

type ZapperApi struct {
	Url           string `env:"ZAPPER_API_URL"`
	ApiKey        string `env:"ZAPPER_API_KEY"`
	TokenPageSize int    `env:"ZAPPER_TOKEN_PAGE_SIZE" envDefault:"100"`
	AppPageSize   int    `env:"ZAPPER_APP_PAGE_SIZE" envDefault:"50"`
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL"`
}

type Cache struct {
	BalancesExpiration time.Duration `env:"CACHE_BALANCES_EXPIRATION" envDefault:"90s"`
	QuotesExpiration   time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"90s"`
}

type Jobs struct {
	WalletSyncInterval   time.Duration `env:"WALLET_SYNC_JOB_INTERVAL"`
	PriceSyncInterval    time.Duration `env:"PRICE_SYNC_JOB_INTERVAL"`
	DriveCleanupInterval time.Duration `env:"DRIVE_CLEANUP_JOB_INTERVAL"`
}

type Sync struct {
	WalletDelay time.Duration `env:"SYNC_WALLET_DELAY" envDefault:"1s"`
	TickerDelay time.Duration `env:"SYNC_TICKER_DELAY" envDefault:"500ms"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"168h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
