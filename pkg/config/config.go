package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	VerifyLocal  = "local"
	VerifyRemote = "remote"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	App       AppConfig
	Database  DatabaseConfig
	SQLServer SQLServerConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Mail      MailConfig
	CORS      CORSConfig
	Log       LogConfig
	QC2       QC2Config
	Export    ExportConfig
	Metrics   MetricsConfig
}

// AppConfig carries values used to build links back into the web application.
type AppConfig struct {
	BaseURL string
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

// SQLServerConfig points at the warehouse SQL Server used for barcode lookups.
type SQLServerConfig struct {
	Server         string
	Port           int
	Database       string
	User           string
	Password       string
	Encrypt        bool
	TrustCert      bool
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig configures the managed identity provider and the admin allowlist.
type AuthConfig struct {
	ProviderURL    string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	VerifyMode     string
	AdminEmails    []string
}

// MailConfig configures transactional email delivery.
type MailConfig struct {
	ResendAPIKey string
	From         string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// QC2Config governs the read-only spreadsheet view.
type QC2Config struct {
	Enabled      bool
	Dir          string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportConfig tunes record exports. PDFFont is a TrueType font able to render CJK text.
type ExportConfig struct {
	PDFFont string
	CSVBOM  bool
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.App = AppConfig{BaseURL: strings.TrimRight(v.GetString("APP_URL"), "/")}

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:   v.GetString("DB_SQLITE_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.SQLServer = SQLServerConfig{
		Server:         v.GetString("SQL_SERVER"),
		Port:           v.GetInt("SQL_PORT"),
		Database:       v.GetString("SQL_DATABASE"),
		User:           v.GetString("SQL_USER"),
		Password:       v.GetString("SQL_PASSWORD"),
		Encrypt:        v.GetBool("SQL_ENCRYPT"),
		TrustCert:      v.GetBool("SQL_TRUST_CERT"),
		ConnectTimeout: parseMillis(v.GetString("SQL_CONNECT_TIMEOUT"), 15*time.Second),
		RequestTimeout: parseMillis(v.GetString("SQL_REQUEST_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		ProviderURL:    strings.TrimRight(v.GetString("AUTH_PROVIDER_URL"), "/"),
		AnonKey:        v.GetString("AUTH_ANON_KEY"),
		ServiceRoleKey: v.GetString("AUTH_SERVICE_ROLE_KEY"),
		JWTSecret:      v.GetString("AUTH_JWT_SECRET"),
		VerifyMode:     strings.ToLower(v.GetString("AUTH_VERIFY_MODE")),
		AdminEmails:    splitAndTrim(v.GetString("ADMIN_EMAILS")),
	}
	if cfg.Auth.ServiceRoleKey == "" {
		cfg.Auth.ServiceRoleKey = cfg.Auth.AnonKey
	}

	cfg.Mail = MailConfig{
		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		From:         v.GetString("EMAIL_FROM"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.QC2 = QC2Config{
		Enabled:      v.GetBool("ENABLE_QC2"),
		Dir:          v.GetString("QC2_DIR"),
		CacheEnabled: v.GetBool("QC2_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("QC2_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Export = ExportConfig{
		PDFFont: v.GetString("EXPORT_PDF_FONT"),
		CSVBOM:  v.GetBool("EXPORT_CSV_BOM"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("APP_URL", "http://localhost:3000")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "qc_report")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "./qc_report.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SQL_SERVER", "localhost")
	v.SetDefault("SQL_PORT", 1433)
	v.SetDefault("SQL_DATABASE", "")
	v.SetDefault("SQL_USER", "")
	v.SetDefault("SQL_PASSWORD", "")
	v.SetDefault("SQL_ENCRYPT", false)
	v.SetDefault("SQL_TRUST_CERT", false)
	v.SetDefault("SQL_CONNECT_TIMEOUT", "15000")
	v.SetDefault("SQL_REQUEST_TIMEOUT", "15000")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_PROVIDER_URL", "http://localhost:9999")
	v.SetDefault("AUTH_ANON_KEY", "")
	v.SetDefault("AUTH_SERVICE_ROLE_KEY", "")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_VERIFY_MODE", VerifyLocal)
	v.SetDefault("ADMIN_EMAILS", "")

	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "QC System <noreply@yourdomain.com>")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_QC2", true)
	v.SetDefault("QC2_DIR", "./test-folder")
	v.SetDefault("QC2_CACHE_ENABLED", false)
	v.SetDefault("QC2_CACHE_TTL", "10m")

	v.SetDefault("EXPORT_PDF_FONT", "")
	v.SetDefault("EXPORT_CSV_BOM", true)

	v.SetDefault("ENABLE_METRICS", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseMillis accepts either a bare millisecond count or a Go duration string.
func parseMillis(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw + "ms"); err == nil && d > 0 {
		return d
	}
	return parseDuration(raw, fallback)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
