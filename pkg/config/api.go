package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	LogLevel           string
	MetricsEnabled     bool
	AuditPageSize      int
	CashFlowMonthsBack int
	InviteTTL          time.Duration
	KafkaBrokers       []string
	KafkaTopic         string
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	LoadDotenv()
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://harmony:harmony@db:5432/harmony?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		LogLevel:           GetString("LOG_LEVEL", "info"),
		MetricsEnabled:     GetBool("METRICS_ENABLED", true),
		AuditPageSize:      GetInt("AUDIT_PAGE_SIZE", 50),
		CashFlowMonthsBack: GetInt("CASH_FLOW_MONTHS_BACK", 6),
		InviteTTL:          time.Duration(GetInt("INVITE_TTL_HOURS", 168)) * time.Hour,
		KafkaBrokers:       GetStrings("KAFKA_BROKERS", nil),
		KafkaTopic:         GetString("KAFKA_MUTATION_TOPIC", "workspace_mutations"),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
