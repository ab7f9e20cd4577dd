package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Collaborator API base URLs
	VisitSchedulerBaseURL  string
	PrisonAPIBaseURL       string
	ContactRegistryBaseURL string
	AlertsAPIBaseURL       string
	GovUKBaseURL           string

	// APIAuthToken is attached as a bearer token on outbound collaborator
	// calls. Token acquisition/rotation is handled outside this service.
	APIAuthToken string

	// CollaboratorTimeout is the per-call budget for a single collaborator
	// lookup during the availability fan-out.
	CollaboratorTimeout time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	HolidayCacheTTL time.Duration

	// Review-mode policy. Which signals trigger a manual session review is
	// operational configuration, not algorithm.
	ReviewAlertCodes       []string
	ReviewRestrictionTypes []string

	// Scheduled-event sub-types that outrank a social visit.
	HigherPriorityEventSubTypes []string

	// ReviewHolidayBufferDays extends the review-mode holiday exclusion by N
	// days beyond each bank holiday. 0 means only dates up to and including
	// the holiday are unavailable.
	ReviewHolidayBufferDays int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VisitSchedulerBaseURL:  getEnv("VISIT_SCHEDULER_BASE_URL", ""),
		PrisonAPIBaseURL:       getEnv("PRISON_API_BASE_URL", ""),
		ContactRegistryBaseURL: getEnv("CONTACT_REGISTRY_BASE_URL", ""),
		AlertsAPIBaseURL:       getEnv("ALERTS_API_BASE_URL", ""),
		GovUKBaseURL:           getEnv("GOVUK_BASE_URL", "https://www.gov.uk"),

		APIAuthToken: getEnv("API_AUTH_TOKEN", ""),

		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 10*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		HolidayCacheTTL: getEnvAsDuration("HOLIDAY_CACHE_TTL", 24*time.Hour),

		ReviewAlertCodes:       getEnvAsSlice("REVIEW_ALERT_CODES", []string{"UPIU", "RCDR", "URCU", "URS"}),
		ReviewRestrictionTypes: getEnvAsSlice("REVIEW_RESTRICTION_TYPES", []string{"PREINF", "DIHCON"}),

		HigherPriorityEventSubTypes: getEnvAsSlice("HIGHER_PRIORITY_EVENT_SUB_TYPES",
			[]string{"MEDE", "MEDO", "MEOT", "VLB", "VLLA", "VLPA"}),

		ReviewHolidayBufferDays: getEnvAsInt("REVIEW_HOLIDAY_BUFFER_DAYS", 0),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable as a slice,
// trimming whitespace and dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
