package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	AppPort    string `env:"APP_PORT" envDefault:"8080"`
	AppVersion string `env:"APP_VERSION" envDefault:"dev"`
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	DatabaseURL   string `env:"DATABASE_URL,required"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:""`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	WSAllowedOrigin    string   `env:"WS_ALLOWED_ORIGIN" envDefault:""`

	// Admin allowlists and the single credentials account.
	AdminEmails       []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminWallets      []string `env:"ADMIN_WALLETS" envSeparator:","`
	AdminLoginEmail   string   `env:"ADMIN_LOGIN_EMAIL"`
	AdminPasswordHash string   `env:"ADMIN_PASSWORD_HASH"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	CronSecret   string `env:"CRON_SECRET"`
	CronSchedule string `env:"CRON_SCHEDULE"`

	Solana struct {
		Network        string `env:"SOLANA_NETWORK" envDefault:"mainnet-beta"`
		RPCURL         string `env:"SOLANA_RPC_URL"`
		TreasuryWallet string `env:"TREASURY_WALLET"`
	}

	Fees struct {
		TokenCreationSOL string `env:"TOKEN_CREATION_FEE_SOL" envDefault:"0.1"`
		PoolCreationSOL  string `env:"POOL_CREATION_FEE_SOL" envDefault:"0.2"`
		CloneSOL         string `env:"CLONE_FEE_SOL" envDefault:"0.05"`
	}

	DefaultCommissionRate string `env:"DEFAULT_COMMISSION_RATE" envDefault:"0.10"`

	DexScreenerBaseURL string        `env:"DEXSCREENER_BASE_URL" envDefault:"https://api.dexscreener.com"`
	TrendingTTL        time.Duration `env:"TRENDING_TTL" envDefault:"60s"`
	TrendingLimit      int           `env:"TRENDING_LIMIT" envDefault:"30"`

	APIRateLimit   int           `env:"API_RATE_LIMIT" envDefault:"120"`
	APIRateWindow  time.Duration `env:"API_RATE_WINDOW" envDefault:"1m"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`

	SignInNonceTTL time.Duration `env:"SIGNIN_NONCE_TTL" envDefault:"5m"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env.Parse cannot express.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"TOKEN_CREATION_FEE_SOL": c.Fees.TokenCreationSOL,
		"POOL_CREATION_FEE_SOL":  c.Fees.PoolCreationSOL,
		"CLONE_FEE_SOL":          c.Fees.CloneSOL,
	} {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("invalid %s: must not be negative", name)
		}
	}

	rate, err := decimal.NewFromString(c.DefaultCommissionRate)
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_COMMISSION_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("invalid DEFAULT_COMMISSION_RATE: must be within [0,1]")
	}

	if c.Solana.TreasuryWallet != "" {
		raw, err := base58.Decode(c.Solana.TreasuryWallet)
		if err != nil || len(raw) != 32 {
			return errors.New("invalid TREASURY_WALLET: not a solana address")
		}
	} else if c.IsProduction() {
		return errors.New("TREASURY_WALLET is required in production")
	}

	if c.TrendingLimit <= 0 {
		return errors.New("invalid TRENDING_LIMIT: must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("invalid SESSION_TTL: must be positive")
	}

	c.AdminEmails = normalizeList(c.AdminEmails, strings.ToLower)
	c.AdminWallets = normalizeList(c.AdminWallets, nil)
	c.AdminLoginEmail = strings.ToLower(strings.TrimSpace(c.AdminLoginEmail))
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func normalizeList(in []string, fn func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if fn != nil {
			s = fn(s)
		}
		out = append(out, s)
	}
	return out
}
