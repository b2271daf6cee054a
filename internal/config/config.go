package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/platform/resilience"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	HTTP        HTTPConfig
	DB          DBConfig
	Cache       CacheConfig
	Provider    ProviderConfig
	Sync        SyncConfig
	Matching    MatchingConfig
	Redis       RedisConfig
	Backup      BackupConfig
	QStash      QStashConfig
	Schedule    ScheduleConfig
	Uptrace     UptraceConfig
	BetterStack BetterStackConfig
	Pyroscope   PyroscopeConfig
	Pprof       PprofConfig
}

type HTTPConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	InternalJobToken   string
}

// DBConfig selects postgres when URL is set; otherwise repositories are in memory.
type DBConfig struct {
	URL                    string
	DisablePreparedBinary  bool
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetime        time.Duration
	SeedMemoryRepositories bool
}

// DSN returns URL with disable_prepared_binary_result=yes appended when
// DisablePreparedBinary is set and the URL does not choose a value.
func (c DBConfig) DSN() string {
	raw := strings.TrimSpace(c.URL)
	if !c.DisablePreparedBinary || raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type ProviderConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
}

type SyncConfig struct {
	Season         int
	WeeksPerSeason int
	MaxRangeDays   int
}

type MatchingConfig struct {
	NameWeight                  float64
	TeamWeight                  float64
	PositionWeight              float64
	MinimumConfidenceThreshold  float64
	AutoLinkConfidenceThreshold float64
	Workers                     int
	NicknamesFile               string
}

type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	LockKey      string
	LockTTL      time.Duration
	ReportStream string
	StreamMaxLen int64
}

type BackupConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

type QStashConfig struct {
	Enabled        bool
	BaseURL        string
	Token          string
	TargetBaseURL  string
	Retries        int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type ScheduleConfig struct {
	Spec     string
	Timezone string
}

type UptraceConfig struct {
	Enabled     bool
	DSN         string
	LogsEnabled bool
}

type BetterStackConfig struct {
	Enabled  bool
	Endpoint string
	Token    string
	Timeout  time.Duration
	MinLevel logging.Level
}

type PyroscopeConfig struct {
	Enabled           bool
	ServerAddress     string
	AppName           string
	AuthToken         string
	BasicAuthUser     string
	BasicAuthPassword string
	UploadRate        time.Duration
}

type PprofConfig struct {
	Enabled bool
	Addr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "gridiron-sync"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	loaders := []func(*Config) error{
		loadHTTP,
		loadDB,
		loadCache,
		loadProvider,
		loadSync,
		loadMatching,
		loadRedis,
		loadBackup,
		loadQStash,
		loadSchedule,
		loadUptrace,
		loadBetterStack,
		loadPyroscope,
		loadPprof,
	}
	for _, load := range loaders {
		if err := load(&cfg); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func loadHTTP(cfg *Config) error {
	swaggerDefault := "true"
	if cfg.AppEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return err
	}
	// Inline sync runs can take minutes.
	writeTimeout, err := getEnvAsDuration("APP_WRITE_TIMEOUT", "10m")
	if err != nil {
		return err
	}

	origins := splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(origins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	cfg.HTTP = HTTPConfig{
		Addr:               getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: origins,
		SwaggerEnabled:     swaggerEnabled,
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	return nil
}

// LoadDB reads only the DB section, for tools that never start the service.
func LoadDB() (DBConfig, error) {
	var cfg Config
	if err := loadDB(&cfg); err != nil {
		return DBConfig{}, err
	}
	return cfg.DB, nil
}

func loadDB(cfg *Config) error {
	disablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	maxOpen, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if maxOpen < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	maxIdle, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if maxIdle < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	lifetime, err := getEnvAsDuration("DB_CONN_MAX_LIFETIME", "30m")
	if err != nil {
		return err
	}
	seed, err := strconv.ParseBool(getEnv("MEMORY_SEED_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse MEMORY_SEED_ENABLED: %w", err)
	}

	cfg.DB = DBConfig{
		URL:                    strings.TrimSpace(getEnv("DB_URL", "")),
		DisablePreparedBinary:  disablePreparedBinary,
		MaxOpenConns:           maxOpen,
		MaxIdleConns:           maxIdle,
		ConnMaxLifetime:        lifetime,
		SeedMemoryRepositories: seed,
	}
	return nil
}

func loadCache(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	ttl, err := getEnvAsDuration("CACHE_TTL", "60s")
	if err != nil {
		return err
	}

	cfg.Cache = CacheConfig{Enabled: enabled, TTL: ttl}
	return nil
}

func loadProvider(cfg *Config) error {
	timeout, err := getEnvAsDuration("PROVIDER_TIMEOUT", "20s")
	if err != nil {
		return err
	}
	maxAttempts, err := getEnvAsInt("PROVIDER_MAX_ATTEMPTS", 3)
	if err != nil {
		return fmt.Errorf("parse PROVIDER_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts < 1 {
		return fmt.Errorf("PROVIDER_MAX_ATTEMPTS must be >= 1")
	}
	backoff, err := getEnvAsDuration("PROVIDER_RETRY_BACKOFF", "1s")
	if err != nil {
		return err
	}
	maxBackoff, err := getEnvAsDuration("PROVIDER_RETRY_MAX_BACKOFF", "10s")
	if err != nil {
		return err
	}
	breaker, err := loadCircuitBreaker("PROVIDER")
	if err != nil {
		return err
	}

	cfg.Provider = ProviderConfig{
		BaseURL: strings.TrimSpace(getEnv("PROVIDER_BASE_URL", "https://api.sportsdata.io/v3/nfl")),
		APIKey:  strings.TrimSpace(getEnv("PROVIDER_API_KEY", "")),
		Timeout: timeout,
		Retry: resilience.NormalizeRetryConfig(resilience.RetryConfig{
			MaxAttempts: maxAttempts,
			Backoff:     backoff,
			MaxBackoff:  maxBackoff,
		}),
		CircuitBreaker: breaker,
	}
	return nil
}

func loadSync(cfg *Config) error {
	season, err := getEnvAsInt("SYNC_SEASON", 0)
	if err != nil {
		return fmt.Errorf("parse SYNC_SEASON: %w", err)
	}
	if season < 0 {
		return fmt.Errorf("SYNC_SEASON must be >= 0")
	}
	weeks, err := getEnvAsInt("SYNC_WEEKS_PER_SEASON", 18)
	if err != nil {
		return fmt.Errorf("parse SYNC_WEEKS_PER_SEASON: %w", err)
	}
	if weeks < 1 {
		return fmt.Errorf("SYNC_WEEKS_PER_SEASON must be >= 1")
	}
	maxRange, err := getEnvAsInt("SYNC_MAX_RANGE_DAYS", 400)
	if err != nil {
		return fmt.Errorf("parse SYNC_MAX_RANGE_DAYS: %w", err)
	}
	if maxRange < 1 {
		return fmt.Errorf("SYNC_MAX_RANGE_DAYS must be >= 1")
	}

	cfg.Sync = SyncConfig{Season: season, WeeksPerSeason: weeks, MaxRangeDays: maxRange}
	return nil
}

func loadMatching(cfg *Config) error {
	out := MatchingConfig{NicknamesFile: strings.TrimSpace(getEnv("MATCH_NICKNAMES_FILE", ""))}

	floats := []struct {
		key      string
		fallback float64
		target   *float64
	}{
		{"MATCH_NAME_WEIGHT", 0.60, &out.NameWeight},
		{"MATCH_TEAM_WEIGHT", 0.25, &out.TeamWeight},
		{"MATCH_POSITION_WEIGHT", 0.15, &out.PositionWeight},
		{"MATCH_MIN_CONFIDENCE", 0.50, &out.MinimumConfidenceThreshold},
		{"MATCH_AUTO_LINK_CONFIDENCE", 0.85, &out.AutoLinkConfidenceThreshold},
	}
	for _, item := range floats {
		value, err := getEnvAsFloat(item.key, item.fallback)
		if err != nil {
			return fmt.Errorf("parse %s: %w", item.key, err)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be within [0, 1]", item.key)
		}
		*item.target = value
	}
	if sum := out.NameWeight + out.TeamWeight + out.PositionWeight; sum <= 0 || sum > 1.0001 {
		return fmt.Errorf("MATCH_*_WEIGHT must sum to (0, 1], got %.4f", sum)
	}
	if out.MinimumConfidenceThreshold > out.AutoLinkConfidenceThreshold {
		return fmt.Errorf("MATCH_MIN_CONFIDENCE must be <= MATCH_AUTO_LINK_CONFIDENCE")
	}

	workers, err := getEnvAsInt("MATCH_WORKERS", 0)
	if err != nil {
		return fmt.Errorf("parse MATCH_WORKERS: %w", err)
	}
	if workers < 0 {
		return fmt.Errorf("MATCH_WORKERS must be >= 0")
	}
	out.Workers = workers

	cfg.Matching = out
	return nil
}

func loadRedis(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	db, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	lockTTL, err := getEnvAsDuration("REDIS_LOCK_TTL", "10m")
	if err != nil {
		return err
	}
	maxLen, err := getEnvAsInt("REDIS_REPORT_STREAM_MAXLEN", 1000)
	if err != nil {
		return fmt.Errorf("parse REDIS_REPORT_STREAM_MAXLEN: %w", err)
	}
	if maxLen < 1 {
		return fmt.Errorf("REDIS_REPORT_STREAM_MAXLEN must be >= 1")
	}

	addr := strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379"))
	if enabled && addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}

	cfg.Redis = RedisConfig{
		Enabled:      enabled,
		Addr:         addr,
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           db,
		LockKey:      strings.TrimSpace(getEnv("REDIS_LOCK_KEY", "gridiron-sync:run-lock")),
		LockTTL:      lockTTL,
		ReportStream: strings.TrimSpace(getEnv("REDIS_REPORT_STREAM", "sync.reports.nfl")),
		StreamMaxLen: int64(maxLen),
	}
	return nil
}

func loadBackup(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("BACKUP_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse BACKUP_ENABLED: %w", err)
	}
	useSSL, err := strconv.ParseBool(getEnv("BACKUP_USE_SSL", "false"))
	if err != nil {
		return fmt.Errorf("parse BACKUP_USE_SSL: %w", err)
	}

	out := BackupConfig{
		Enabled:   enabled,
		Endpoint:  strings.TrimSpace(getEnv("BACKUP_ENDPOINT", "localhost:9000")),
		AccessKey: strings.TrimSpace(getEnv("BACKUP_ACCESS_KEY", "")),
		SecretKey: strings.TrimSpace(getEnv("BACKUP_SECRET_KEY", "")),
		Bucket:    strings.TrimSpace(getEnv("BACKUP_BUCKET", "gridiron-sync")),
		Region:    strings.TrimSpace(getEnv("BACKUP_REGION", "")),
		Prefix:    strings.TrimSpace(getEnv("BACKUP_PREFIX", "roster-backups")),
		UseSSL:    useSSL,
	}
	if enabled {
		if out.AccessKey == "" || out.SecretKey == "" {
			return fmt.Errorf("BACKUP_ACCESS_KEY and BACKUP_SECRET_KEY are required when BACKUP_ENABLED=true")
		}
		if out.Bucket == "" {
			return fmt.Errorf("BACKUP_BUCKET is required when BACKUP_ENABLED=true")
		}
	}

	cfg.Backup = out
	return nil
}

func loadQStash(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	retries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if retries < 0 {
		return fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	breaker, err := loadCircuitBreaker("QSTASH")
	if err != nil {
		return err
	}

	out := QStashConfig{
		Enabled:        enabled,
		BaseURL:        strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		Token:          strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		TargetBaseURL:  strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
		Retries:        retries,
		CircuitBreaker: breaker,
	}
	if enabled {
		if out.Token == "" {
			return fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if out.TargetBaseURL == "" {
			return fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if cfg.HTTP.InternalJobToken == "" {
			return fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	cfg.QStash = out
	return nil
}

func loadSchedule(cfg *Config) error {
	tz := strings.TrimSpace(getEnv("SCHEDULE_TIMEZONE", "America/New_York"))
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("parse SCHEDULE_TIMEZONE: %w", err)
	}

	cfg.Schedule = ScheduleConfig{
		Spec:     strings.TrimSpace(getEnv("SCHEDULE_SPEC", "0 6 * * 2")),
		Timezone: tz,
	}
	return nil
}

func loadUptrace(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	dsn := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if dsn == "" {
		dsn = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if enabled && dsn == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	logsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	cfg.Uptrace = UptraceConfig{Enabled: enabled, DSN: dsn, LogsEnabled: logsEnabled}
	return nil
}

func loadBetterStack(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	endpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if enabled && endpoint == "" {
		return fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	timeout, err := getEnvAsDuration("BETTERSTACK_TIMEOUT", "3s")
	if err != nil {
		return err
	}

	cfg.BetterStack = BetterStackConfig{
		Enabled:  enabled,
		Endpoint: endpoint,
		Token:    strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		Timeout:  timeout,
		MinLevel: parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error")),
	}
	return nil
}

func loadPyroscope(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	serverAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if enabled && serverAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	uploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return err
	}
	appName := strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if enabled && appName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	cfg.Pyroscope = PyroscopeConfig{
		Enabled:           enabled,
		ServerAddress:     serverAddress,
		AppName:           appName,
		AuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		BasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		BasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		UploadRate:        uploadRate,
	}
	return nil
}

func loadPprof(cfg *Config) error {
	enabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	cfg.Pprof = PprofConfig{Enabled: enabled, Addr: strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))}
	return nil
}

func loadCircuitBreaker(prefix string) (resilience.CircuitBreakerConfig, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseFloat(value, 64)
}

// getEnvAsDuration parses a positive duration.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
