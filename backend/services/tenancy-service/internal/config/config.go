package config

import (
	"crypto/rsa"
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string

	StoreDriver string
	DBUrl       string

	RSAPublicKey  *rsa.PublicKey
	RSAPrivateKey *rsa.PrivateKey // optional; only used to print dev tokens for seeded users

	BusinessLocation   *time.Location
	BillingHorizonDays int
	ReminderWindowDays int
	JobsCronSpec       string
	SettlementTimeout  time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	EsewaSecretKey      string
	KhaltiSecretKey     string
	KhaltiBaseURL       string

	SendgridAPIKey     string
	SecurityAlertEmail string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromPhone    string
	SecurityAlertPhone string

	AMQPUrl      string
	AMQPExchange string

	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_AMQPEventMirror     bool
}

// envConfig is the raw environment surface. Flag fields are the fallbacks
// used when LaunchDarkly is not configured.
type envConfig struct {
	Env                 string        `env:"ENV" envDefault:"dev"`
	AppPort             string        `env:"APP_PORT" envDefault:"8080"`
	AppUrl              string        `env:"APP_URL" envDefault:"http://localhost:8080"`
	StoreDriver         string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DBUrl               string        `env:"DB_URL"`
	RSAPublicKeyB64     string        `env:"RSA_PUBLIC_KEY_BASE64"`
	RSAPrivateKeyB64    string        `env:"RSA_PRIVATE_KEY_BASE64"`
	BusinessTimezone    string        `env:"BUSINESS_TIMEZONE" envDefault:"Asia/Kathmandu"`
	BillingHorizonDays  int           `env:"BILLING_HORIZON_DAYS" envDefault:"7"`
	ReminderWindowDays  int           `env:"REMINDER_WINDOW_DAYS" envDefault:"7"`
	JobsCronSpec        string        `env:"JOBS_CRON_SPEC"`
	SettlementTimeout   time.Duration `env:"SETTLEMENT_TIMEOUT" envDefault:"10s"`
	StripeSecretKey     string        `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	EsewaSecretKey      string        `env:"ESEWA_SECRET_KEY"`
	KhaltiSecretKey     string        `env:"KHALTI_SECRET_KEY"`
	KhaltiBaseURL       string        `env:"KHALTI_BASE_URL"`
	SendgridAPIKey      string        `env:"SENDGRID_API_KEY"`
	SecurityAlertEmail  string        `env:"SECURITY_ALERT_EMAIL"`
	TwilioAccountSID    string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken     string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromPhone     string        `env:"TWILIO_FROM_PHONE"`
	SecurityAlertPhone  string        `env:"SECURITY_ALERT_PHONE"`
	AMQPUrl             string        `env:"AMQP_URL"`
	AMQPExchange        string        `env:"AMQP_EXCHANGE"`
	LDSDKKey            string        `env:"LD_SDK_KEY"`

	SeedDbWithTestData  bool   `env:"SEED_DB_WITH_TEST_DATA"`
	CORSHighSecurity    bool   `env:"CORS_HIGH_SECURITY"`
	SendgridFromEmail   string `env:"SENDGRID_FROM_EMAIL"`
	SendgridSandboxMode bool   `env:"SENDGRID_SANDBOX_MODE"`
	AMQPEventMirror     bool   `env:"AMQP_EVENT_MIRROR"`
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
)

var (
	AppName             = "tenancy-service"
	LDServerContextKey  = "tenancy-service"
	LDServerContextKind = "service"
)

func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	if err := utils.LoadDotEnv(); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load .env file")
	}

	var raw envConfig
	if err := utils.ParseEnv(&raw); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse environment")
	}

	cfg, err := fromEnv(raw)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	if raw.LDSDKKey != "" {
		loadFlags(cfg, raw.LDSDKKey)
	} else {
		utils.Logger.Info("LD_SDK_KEY not set; using env feature flag defaults")
	}
	if cfg.LDFlag_SendgridFromEmail == "" {
		cfg.LDFlag_SendgridFromEmail = constants.DefaultSendgridFromEmail
	}

	utils.Logger.Infof("Store driver: %s", cfg.StoreDriver)
	if cfg.StoreDriver == StoreDriverPostgres {
		utils.Logger.Infof("DB: %s", utils.RedactDBURL(cfg.DBUrl))
	}
	return cfg
}

func fromEnv(raw envConfig) (*Config, error) {
	driver := strings.ToLower(raw.StoreDriver)
	switch driver {
	case StoreDriverPostgres:
		if raw.DBUrl == "" {
			return nil, errMissing("DB_URL")
		}
	case StoreDriverMemory:
	default:
		return nil, errInvalid("STORE_DRIVER", raw.StoreDriver)
	}

	if raw.RSAPublicKeyB64 == "" {
		return nil, errMissing("RSA_PUBLIC_KEY_BASE64")
	}
	pubPEM, err := base64.StdEncoding.DecodeString(raw.RSAPublicKeyB64)
	if err != nil {
		return nil, errInvalid("RSA_PUBLIC_KEY_BASE64", "not base64")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, errInvalid("RSA_PUBLIC_KEY_BASE64", err.Error())
	}

	var privKey *rsa.PrivateKey
	if raw.RSAPrivateKeyB64 != "" {
		privPEM, err := base64.StdEncoding.DecodeString(raw.RSAPrivateKeyB64)
		if err != nil {
			return nil, errInvalid("RSA_PRIVATE_KEY_BASE64", "not base64")
		}
		privKey, err = jwt.ParseRSAPrivateKeyFromPEM(privPEM)
		if err != nil {
			return nil, errInvalid("RSA_PRIVATE_KEY_BASE64", err.Error())
		}
	}

	if raw.BillingHorizonDays < 0 || raw.BillingHorizonDays > constants.MaxHorizonDays {
		return nil, errInvalid("BILLING_HORIZON_DAYS", raw.BillingHorizonDays)
	}
	if raw.ReminderWindowDays < 0 || raw.ReminderWindowDays > constants.MaxHorizonDays {
		return nil, errInvalid("REMINDER_WINDOW_DAYS", raw.ReminderWindowDays)
	}
	settlementTimeout := raw.SettlementTimeout
	if settlementTimeout <= 0 {
		settlementTimeout = constants.DefaultSettlementTimeout
	}
	cronSpec := raw.JobsCronSpec
	if cronSpec == "" {
		cronSpec = constants.JobsCronSpec
	}
	khaltiURL := raw.KhaltiBaseURL
	if khaltiURL == "" {
		khaltiURL = constants.DefaultKhaltiBaseURL
	}
	exchange := raw.AMQPExchange
	if exchange == "" {
		exchange = constants.DefaultAMQPExchange
	}

	return &Config{
		OrganizationName:           OrganizationName,
		AppName:                    AppName,
		Env:                        raw.Env,
		AppPort:                    raw.AppPort,
		AppUrl:                     raw.AppUrl,
		StoreDriver:                driver,
		DBUrl:                      raw.DBUrl,
		RSAPublicKey:               pubKey,
		RSAPrivateKey:              privKey,
		BusinessLocation:           utils.LoadLocation(raw.BusinessTimezone),
		BillingHorizonDays:         raw.BillingHorizonDays,
		ReminderWindowDays:         raw.ReminderWindowDays,
		JobsCronSpec:               cronSpec,
		SettlementTimeout:          settlementTimeout,
		StripeSecretKey:            raw.StripeSecretKey,
		StripeWebhookSecret:        raw.StripeWebhookSecret,
		EsewaSecretKey:             raw.EsewaSecretKey,
		KhaltiSecretKey:            raw.KhaltiSecretKey,
		KhaltiBaseURL:              khaltiURL,
		SendgridAPIKey:             raw.SendgridAPIKey,
		SecurityAlertEmail:         raw.SecurityAlertEmail,
		TwilioAccountSID:           raw.TwilioAccountSID,
		TwilioAuthToken:            raw.TwilioAuthToken,
		TwilioFromPhone:            raw.TwilioFromPhone,
		SecurityAlertPhone:         raw.SecurityAlertPhone,
		AMQPUrl:                    raw.AMQPUrl,
		AMQPExchange:               exchange,
		LDFlag_SeedDbWithTestData:  raw.SeedDbWithTestData,
		LDFlag_CORSHighSecurity:    raw.CORSHighSecurity,
		LDFlag_SendgridFromEmail:   raw.SendgridFromEmail,
		LDFlag_SendgridSandboxMode: raw.SendgridSandboxMode,
		LDFlag_AMQPEventMirror:     raw.AMQPEventMirror,
	}, nil
}

// loadFlags overrides the env flag defaults with LaunchDarkly variations.
func loadFlags(cfg *Config, sdkKey string) {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(key string, fallback bool) bool {
		v, err := ldClient.BoolVariation(key, ctx, fallback)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
		}
		utils.Logger.Debugf("%s flag: %t", key, v)
		return v
	}

	cfg.LDFlag_SeedDbWithTestData = boolFlag("seed_db_with_test_data", cfg.LDFlag_SeedDbWithTestData)
	cfg.LDFlag_CORSHighSecurity = boolFlag("cors_high_security", cfg.LDFlag_CORSHighSecurity)
	cfg.LDFlag_SendgridSandboxMode = boolFlag("sendgrid_sandbox_mode", cfg.LDFlag_SendgridSandboxMode)
	cfg.LDFlag_AMQPEventMirror = boolFlag("amqp_event_mirror", cfg.LDFlag_AMQPEventMirror)

	sgFrom, err := ldClient.StringVariation("sendgrid_from_email", ctx, cfg.LDFlag_SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	cfg.LDFlag_SendgridFromEmail = sgFrom
}

func (c *Config) Close() {}
