package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	LLM          LLMConfig
	Generation   GenerationConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.LLM.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLLM reads only the provider settings, for tools that run without the api's database and port.
func LoadLLM() (LLMConfig, error) {
	var cfg LLMConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return LLMConfig{}, fmt.Errorf("parsing llm config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return LLMConfig{}, err
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"QUIZFINDERZ_APP_ENV" required:"true"`
	Port         string   `envconfig:"QUIZFINDERZ_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"QUIZFINDERZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"QUIZFINDERZ_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"QUIZFINDERZ_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUIZFINDERZ_DB_DSN"`
	Driver string `envconfig:"QUIZFINDERZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUIZFINDERZ_DB_HOST"`
	LegacyPort     int    `envconfig:"QUIZFINDERZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUIZFINDERZ_DB_USER"`
	LegacyPassword string `envconfig:"QUIZFINDERZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUIZFINDERZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUIZFINDERZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUIZFINDERZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUIZFINDERZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUIZFINDERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUIZFINDERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUIZFINDERZ_REDIS_URL"`
	Address      string        `envconfig:"QUIZFINDERZ_REDIS_ADDR"`
	Password     string        `envconfig:"QUIZFINDERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUIZFINDERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUIZFINDERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUIZFINDERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUIZFINDERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUIZFINDERZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUIZFINDERZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type LLMConfig struct {
	Provider        string        `envconfig:"QUIZFINDERZ_LLM_PROVIDER" default:"none"`
	APIKey          string        `envconfig:"QUIZFINDERZ_LLM_API_KEY"`
	BaseURL         string        `envconfig:"QUIZFINDERZ_LLM_BASE_URL" default:"https://api.openai.com/v1"`
	Model           string        `envconfig:"QUIZFINDERZ_LLM_MODEL" default:"gpt-4o-mini"`
	Timeout         time.Duration `envconfig:"QUIZFINDERZ_LLM_TIMEOUT" default:"15s"`
	MaxOutputTokens int           `envconfig:"QUIZFINDERZ_LLM_MAX_OUTPUT_TOKENS" default:"2000"`
	Temperature     float64       `envconfig:"QUIZFINDERZ_LLM_TEMPERATURE" default:"0.7"`
}

// ProviderName returns the parsed provider, defaulting to none.
func (l LLMConfig) ProviderName() enums.LLMProvider {
	provider, err := enums.ParseLLMProvider(strings.ToLower(strings.TrimSpace(l.Provider)))
	if err != nil {
		return enums.LLMProviderNone
	}
	return provider
}

// Enabled reports whether generative question requests can be issued.
func (l LLMConfig) Enabled() bool {
	return l.ProviderName() != enums.LLMProviderNone && strings.TrimSpace(l.APIKey) != ""
}

func (l LLMConfig) validate() error {
	if _, err := enums.ParseLLMProvider(strings.ToLower(strings.TrimSpace(l.Provider))); err != nil {
		return fmt.Errorf("%s: %w", EnvLLMProvider, err)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvLLMTimeout)
	}
	return nil
}

type GenerationConfig struct {
	MinQuestions int           `envconfig:"QUIZFINDERZ_GENERATION_MIN_QUESTIONS" default:"5"`
	MaxQuestions int           `envconfig:"QUIZFINDERZ_GENERATION_MAX_QUESTIONS" default:"7"`
	LockTTL      time.Duration `envconfig:"QUIZFINDERZ_GENERATION_LOCK_TTL" default:"2m"`
	MaxProducts  int           `envconfig:"QUIZFINDERZ_GENERATION_MAX_PRODUCTS" default:"100"`
}

type RateLimitConfig struct {
	GenerateWindow time.Duration `envconfig:"QUIZFINDERZ_RATE_LIMIT_GENERATE_WINDOW" default:"1m"`
	GenerateLimit  int           `envconfig:"QUIZFINDERZ_RATE_LIMIT_GENERATE_LIMIT" default:"5"`
	MemoryKeys     int           `envconfig:"QUIZFINDERZ_RATE_LIMIT_MEMORY_KEYS" default:"10000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUIZFINDERZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUIZFINDERZ_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = DBDriverSQLite
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
