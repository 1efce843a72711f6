package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is loaded once at process start
// and injected into every component constructor.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Group    GroupConfig
	Impact   ImpactConfig
	Route    RouteConfig
	Identity IdentityConfig
	Geocode  GeocodeConfig
	GenAI    GenAIConfig
	Email    EmailConfig
}

// GroupConfig controls buying-group defaults.
type GroupConfig struct {
	DefaultMinBusinesses int
	DefaultDeadlineHours int
}

// ImpactConfig holds the constants behind the savings/impact math.
type ImpactConfig struct {
	BaselineDeliveryMiles     float64
	ConsolidatedDeliveryMiles float64
	CityProjectionBusinesses  int
}

// RouteConfig controls the delivery route planner.
type RouteConfig struct {
	GoogleMapsAPIKey  string
	RequestTimeoutSec int
	AvgSpeedMPH       float64
	StopBufferMinutes float64
	MaxCandidates     int
}

// IdentityConfig points at the external identity provider.
type IdentityConfig struct {
	SupabaseURL       string
	SupabaseAnonKey   string
	RequestTimeoutSec int
}

// GeocodeConfig controls the geocoding provider.
type GeocodeConfig struct {
	GoogleMapsAPIKey  string
	RequestTimeoutSec int
}

// GenAIConfig controls the generative-text provider.
type GenAIConfig struct {
	APIKey            string
	Model             string
	RequestTimeoutSec int
}

// EmailConfig controls the SMTP provider.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	mapsKey := strings.TrimSpace(getenv("GOOGLE_MAPS_API_KEY", ""))

	return Config{
		AppName:     getenv("APP_SERVICE", "greensupply"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "greensupply"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Group: GroupConfig{
			DefaultMinBusinesses: getenvInt("GROUP_DEFAULT_MIN_BUSINESSES", 5),
			DefaultDeadlineHours: getenvInt("GROUP_DEFAULT_DEADLINE_HOURS", 72),
		},
		Impact: ImpactConfig{
			BaselineDeliveryMiles:     getenvFloat("IMPACT_BASELINE_DELIVERY_MILES", 5.0),
			ConsolidatedDeliveryMiles: getenvFloat("IMPACT_CONSOLIDATED_DELIVERY_MILES", 8.0),
			CityProjectionBusinesses:  getenvInt("IMPACT_CITY_PROJECTION_BUSINESSES", 4000),
		},
		Route: RouteConfig{
			GoogleMapsAPIKey:  mapsKey,
			RequestTimeoutSec: getenvInt("ROUTE_REQUEST_TIMEOUT_SEC", 12),
			AvgSpeedMPH:       getenvFloat("ROUTE_AVG_SPEED_MPH", 22.0),
			StopBufferMinutes: getenvFloat("ROUTE_STOP_BUFFER_MINUTES", 4.0),
			MaxCandidates:     getenvInt("ROUTE_MAX_CANDIDATES", 10),
		},
		Identity: IdentityConfig{
			SupabaseURL:       strings.TrimSpace(getenv("SUPABASE_URL", "")),
			SupabaseAnonKey:   strings.TrimSpace(getenv("SUPABASE_ANON_KEY", "")),
			RequestTimeoutSec: getenvInt("IDENTITY_REQUEST_TIMEOUT_SEC", 10),
		},
		Geocode: GeocodeConfig{
			GoogleMapsAPIKey:  mapsKey,
			RequestTimeoutSec: getenvInt("GEOCODE_REQUEST_TIMEOUT_SEC", 10),
		},
		GenAI: GenAIConfig{
			APIKey:            strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			Model:             getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			RequestTimeoutSec: getenvInt("GENAI_REQUEST_TIMEOUT_SEC", 20),
		},
		Email: EmailConfig{
			SMTPHost:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     strings.TrimSpace(getenv("SMTP_FROM_EMAIL", "")),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
