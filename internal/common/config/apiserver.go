package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// minSecretLength is the shortest signing secret accepted for HS256 tokens
const minSecretLength = 32

type (
	APIServerConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		Tenancy    TenancyConfig    `yaml:"tenancy"`
		Cache      CacheConfig      `yaml:"cache"`
		Mail       MailConfig       `yaml:"mail"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		Tracing    TracingConfig    `yaml:"tracing"`
		I18n       I18nConfig       `yaml:"i18n"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
	}

	ServerConfig struct {
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // debug, release, test
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
		LogLevel string `yaml:"log_level"`
	}

	// JWTConfig holds two independent signing secrets: tenant users and super admins
	// never share a key or token audience.
	JWTConfig struct {
		UserSecret          string        `yaml:"user_secret"`
		SuperAdminSecret    string        `yaml:"super_admin_secret"`
		UserDuration        time.Duration `yaml:"user_duration"`
		ImpersonateDuration time.Duration `yaml:"impersonate_duration"`
		SuperAdminDuration  time.Duration `yaml:"super_admin_duration"`
		Issuer              string        `yaml:"issuer"`
	}

	TenancyConfig struct {
		Header             string                `yaml:"header"`
		ReservedSubdomains []string              `yaml:"reserved_subdomains"` // appended to the built-in list
		CacheTTL           time.Duration         `yaml:"cache_ttl"`
		Plans              map[string]PlanConfig `yaml:"plans"`
	}

	PlanConfig struct {
		MaxUsers    int `yaml:"max_users"`
		MaxVehicles int `yaml:"max_vehicles"`
	}

	CacheConfig struct {
		Type  string           `yaml:"type"` // memory or redis
		Redis CacheRedisConfig `yaml:"redis"`
	}

	CacheRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	MailConfig struct {
		Enabled            bool          `yaml:"enabled"`
		Host               string        `yaml:"host"`
		Port               int           `yaml:"port"`
		Username           string        `yaml:"username"`
		Password           string        `yaml:"password"`
		From               string        `yaml:"from"`
		TLSMode            string        `yaml:"tls_mode"` // auto, starttls, ssl, none
		InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
		Timeout            time.Duration `yaml:"timeout"`
		AdminRecipients    []string      `yaml:"admin_recipients"`
		PublicURL          string        `yaml:"public_url"`
	}
)

// applyDefaults fills zero values with the documented defaults
func (c *APIServerConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 20 << 20
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
		if c.Database.DBName == "" {
			c.Database.DBName = "./data/dealerhub.db"
		}
	}
	if c.JWT.UserDuration <= 0 {
		c.JWT.UserDuration = 7 * 24 * time.Hour
	}
	if c.JWT.ImpersonateDuration <= 0 {
		c.JWT.ImpersonateDuration = time.Hour
	}
	if c.JWT.SuperAdminDuration <= 0 {
		c.JWT.SuperAdminDuration = 24 * time.Hour
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "dealerhub"
	}
	if c.Tenancy.Header == "" {
		c.Tenancy.Header = "X-Tenant-Subdomain"
	}
	if c.Tenancy.CacheTTL <= 0 {
		c.Tenancy.CacheTTL = 30 * time.Second
	}
	if len(c.Tenancy.Plans) == 0 {
		c.Tenancy.Plans = DefaultPlans()
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "dealerhub:"
	}
	if c.Mail.TLSMode == "" {
		c.Mail.TLSMode = "auto"
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = 30 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "dealerhub"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "dealerhub-apiserver"
	}
	if c.I18n.DefaultLang == "" {
		c.I18n.DefaultLang = "en"
	}
}

// Validate checks the settings that cannot be defaulted
func (c *APIServerConfig) Validate() error {
	var errs []error
	if len(c.JWT.UserSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt.user_secret must be at least %d characters", minSecretLength))
	}
	if len(c.JWT.SuperAdminSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt.super_admin_secret must be at least %d characters", minSecretLength))
	}
	if c.JWT.UserSecret != "" && c.JWT.UserSecret == c.JWT.SuperAdminSecret {
		errs = append(errs, errors.New("jwt.user_secret and jwt.super_admin_secret must differ"))
	}
	if c.JWT.ImpersonateDuration >= c.JWT.UserDuration {
		errs = append(errs, errors.New("jwt.impersonate_duration must be shorter than jwt.user_duration"))
	}
	switch c.Database.Type {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database type: %s", c.Database.Type))
	}
	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported cache type: %s", c.Cache.Type))
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		errs = append(errs, errors.New("mail.host and mail.from are required when mail is enabled"))
	}
	for name := range c.Tenancy.Plans {
		if name != strings.ToUpper(name) {
			errs = append(errs, fmt.Errorf("plan name %q must be upper case", name))
		}
	}
	return errors.Join(errs...)
}

// DefaultPlans returns the quota table used when none is configured
func DefaultPlans() map[string]PlanConfig {
	return map[string]PlanConfig{
		"BASIC":        {MaxUsers: 3, MaxVehicles: 50},
		"PROFESSIONAL": {MaxUsers: 10, MaxVehicles: 250},
		"ENTERPRISE":   {MaxUsers: 0, MaxVehicles: 0},
	}
}

// Plan returns the quotas for the named plan and whether it exists
func (t *TenancyConfig) Plan(name string) (PlanConfig, bool) {
	p, ok := t.Plans[strings.ToUpper(name)]
	return p, ok
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		if c.DBName != ":memory:" && !strings.HasPrefix(c.DBName, "file:") {
			if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
				panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
			}
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
