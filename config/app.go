package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig is everything the server reads from the environment.
type AppConfig struct {
	Port     string
	LogLevel string

	MongoURI string
	MongoDB  string

	PostgresURI string
	RedisAddr   string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	GCSBucket string

	GCPProject  string
	GCPLocation string
	LLMModel    string
	LLMTimeout  time.Duration
	STTLanguage string
	// STTEncoding names a speech RecognitionConfig encoding, e.g. LINEAR16 or WEBM_OPUS.
	STTEncoding   string
	STTSampleRate int

	AssistantID        string
	MaxInterview       time.Duration
	WarningThreshold   time.Duration
	WarningDismiss     time.Duration
	TranscriptMode     string
	ConcurrencyLimit   int
	ConcurrencySpec    string
	ReportWorkers      int
	ReportCacheTTL     time.Duration
	MaxResumeUploadMB  int64
	ActiveSessionTTL   time.Duration
	RequireAdminClaims bool
	EnforceEmailDomain bool
}

// Load reads AppConfig from the process environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Port:     envOrDefault("PORT", "8080"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  envOrDefault("MONGO_DB", "octavia"),

		PostgresURI: os.Getenv("POSTGRES_URI"),
		RedisAddr:   firstEnv("REDIS_ADDR", "REDIS_URI", "REDIS_URL"),

		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),
		JWTAudience: os.Getenv("AUTH_JWT_AUDIENCE"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		GCPProject:  os.Getenv("GCP_PROJECT"),
		GCPLocation: envOrDefault("GCP_LOCATION", "us-central1"),
		LLMModel:    envOrDefault("LLM_MODEL", "gemini-1.5-flash"),
		STTLanguage: envOrDefault("STT_LANGUAGE", "en-US"),
		STTEncoding: strings.ToUpper(envOrDefault("STT_ENCODING", "LINEAR16")),

		AssistantID:     envOrDefault("VOICE_ASSISTANT_ID", "octavia-interviewer"),
		TranscriptMode:  strings.ToLower(envOrDefault("TRANSCRIPT_MODE", "replace")),
		ConcurrencySpec: envOrDefault("CONCURRENCY_REFRESH_SCHEDULE", "@every 5m"),

		RequireAdminClaims: os.Getenv("REQUIRE_ADMIN_CLAIMS") == "true",
		EnforceEmailDomain: os.Getenv("ENFORCE_STUDENT_EMAIL_DOMAINS") == "true",
	}

	var err error
	if cfg.MaxInterview, err = durationSeconds("INTERVIEW_MAX_SECONDS", 900); err != nil {
		return AppConfig{}, err
	}
	if cfg.WarningThreshold, err = durationSeconds("INTERVIEW_WARNING_SECONDS", 120); err != nil {
		return AppConfig{}, err
	}
	if cfg.WarningDismiss, err = durationSeconds("INTERVIEW_WARNING_DISMISS_SECONDS", 5); err != nil {
		return AppConfig{}, err
	}
	if cfg.ReportCacheTTL, err = durationSeconds("REPORT_CACHE_TTL_SECONDS", 3600); err != nil {
		return AppConfig{}, err
	}
	if cfg.ActiveSessionTTL, err = durationSeconds("ACTIVE_SESSION_TTL_SECONDS", 1200); err != nil {
		return AppConfig{}, err
	}
	if cfg.LLMTimeout, err = durationSeconds("LLM_TIMEOUT_SECONDS", 30); err != nil {
		return AppConfig{}, err
	}
	if cfg.STTSampleRate, err = intEnv("STT_SAMPLE_RATE_HZ", 16000); err != nil {
		return AppConfig{}, err
	}
	if cfg.ConcurrencyLimit, err = intEnv("VOICE_CONCURRENCY_LIMIT", 10); err != nil {
		return AppConfig{}, err
	}
	if cfg.ReportWorkers, err = intEnv("REPORT_WORKERS", 2); err != nil {
		return AppConfig{}, err
	}
	uploadMB, err := intEnv("MAX_RESUME_UPLOAD_MB", 10)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.MaxResumeUploadMB = int64(uploadMB)

	if cfg.ConcurrencyLimit <= 0 {
		return AppConfig{}, fmt.Errorf("VOICE_CONCURRENCY_LIMIT must be > 0, got %d", cfg.ConcurrencyLimit)
	}
	if cfg.STTSampleRate < 0 {
		return AppConfig{}, fmt.Errorf("STT_SAMPLE_RATE_HZ must be >= 0, got %d", cfg.STTSampleRate)
	}
	if cfg.WarningThreshold >= cfg.MaxInterview {
		return AppConfig{}, fmt.Errorf("INTERVIEW_WARNING_SECONDS must be below INTERVIEW_MAX_SECONDS")
	}
	switch cfg.TranscriptMode {
	case "replace", "accumulate":
	default:
		return AppConfig{}, fmt.Errorf("TRANSCRIPT_MODE must be replace or accumulate, got %q", cfg.TranscriptMode)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func durationSeconds(key string, fallback int) (time.Duration, error) {
	n, err := intEnv(key, fallback)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return time.Duration(n) * time.Second, nil
}
