package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseUri             string `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns        int    `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int    `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int    `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN               string `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string `envconfig:"LOG_FILE_PATH"`
	Host                    string `envconfig:"HOST" default:"localhost:3000"`
	Port                    int    `envconfig:"PORT" default:"3000"`
	APIKey                  string `envconfig:"API_KEY" required:"true"`
	DefaultRateLimit        int    `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit         int    `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int    `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus        bool   `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort          int    `envconfig:"PROMETHEUS_PORT" default:"9092"`
	WebhookUrl              string `envconfig:"WEBHOOK_URL"`

	// the gateway's fixed receiving address, shared by all invoices
	ReceivingAddress string `envconfig:"RECEIVING_ADDRESS" required:"true"`

	// tag grid: offsets {TagStep, 2*TagStep, ..., TagMax} at AmountPrecision
	// fractional digits. The default grid has 99 slots.
	TagStep         DecimalValue `envconfig:"TAG_STEP" default:"0.001"`
	TagMax          DecimalValue `envconfig:"TAG_MAX" default:"0.099"`
	AmountPrecision int32        `envconfig:"AMOUNT_PRECISION" default:"3"`

	PollInterval          int   `envconfig:"POLL_INTERVAL" default:"15"`          // in seconds
	FeedPageSize          int   `envconfig:"FEED_PAGE_SIZE" default:"50"`
	LedgerRetentionHours  int   `envconfig:"LEDGER_RETENTION_HOURS" default:"720"` // 30 days, must exceed feed redelivery lag
	TokenDecimalsFallback int32 `envconfig:"TOKEN_DECIMALS_FALLBACK" default:"18"`
	CreateRetries         int   `envconfig:"CREATE_RETRIES" default:"3"`

	Branding BrandingConfig
}

type BrandingConfig struct {
	Title string `envconfig:"BRANDING_TITLE" default:"Stablegate"`
	Desc  string `envconfig:"BRANDING_DESC" default:"Stable-coin payment gateway with amount-tagged invoices"`
	Url   string `envconfig:"BRANDING_URL" default:"https://github.com/stablegate"`
}

// envconfig has no decoder for decimal amounts, so config values that carry
// one get a custom Decode.

type DecimalValue struct {
	decimal.Decimal
}

func (dv *DecimalValue) Decode(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %q", value)
	}
	dv.Decimal = d
	return nil
}

func (c *Config) LedgerRetention() time.Duration {
	return time.Duration(c.LedgerRetentionHours) * time.Hour
}

// Validate checks the tag grid settings once at startup. A bad grid would
// silently break the uniqueness contract, so this is fatal.
func (c *Config) Validate() error {
	step := c.TagStep.Decimal
	max := c.TagMax.Decimal
	if !step.IsPositive() {
		return fmt.Errorf("TAG_STEP must be positive, got %s", step)
	}
	if max.LessThan(step) {
		return fmt.Errorf("TAG_MAX %s must be >= TAG_STEP %s", max, step)
	}
	if !max.Mod(step).IsZero() {
		return fmt.Errorf("TAG_MAX %s must be a multiple of TAG_STEP %s", max, step)
	}
	if !step.Round(c.AmountPrecision).Equal(step) || !max.Round(c.AmountPrecision).Equal(max) {
		return fmt.Errorf("tag grid values must fit in %d fractional digits", c.AmountPrecision)
	}
	return nil
}
