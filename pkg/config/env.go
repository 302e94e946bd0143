package config

// EnvPrefix is handed to envconfig; every field carries its full name so the prefix is only a fallback.
const EnvPrefix = "QUIZFINDERZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "file:quizfinderz.db?cache=shared"
)

const (
	EnvAppEnv       = "QUIZFINDERZ_APP_ENV"
	EnvPort         = "QUIZFINDERZ_APP_PORT"
	EnvLogLevel     = "QUIZFINDERZ_LOG_LEVEL"
	EnvLogWarnStack = "QUIZFINDERZ_LOG_WARN_STACK"

	EnvDBDSN  = "QUIZFINDERZ_DB_DSN"
	EnvDBHost = "QUIZFINDERZ_DB_HOST"
	EnvDBUser = "QUIZFINDERZ_DB_USER"
	EnvDBName = "QUIZFINDERZ_DB_NAME"

	EnvRedisURL = "QUIZFINDERZ_REDIS_URL"

	EnvLLMProvider = "QUIZFINDERZ_LLM_PROVIDER"
	EnvLLMAPIKey   = "QUIZFINDERZ_LLM_API_KEY"
	EnvLLMModel    = "QUIZFINDERZ_LLM_MODEL"
	EnvLLMTimeout  = "QUIZFINDERZ_LLM_TIMEOUT"

	EnvUseSQLite = "QUIZFINDERZ_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
