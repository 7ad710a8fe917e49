package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// SessionSecret signs the HS256 session tokens issued at login and
	// verified by the API middleware.
	SessionSecret string

	SMS SMSConfig

	// PortalAllowedOrigins is a comma-separated allowlist of origins allowed
	// to call the portal API from the browser. Example:
	//   https://portal.campus.edu,http://localhost:5173
	PortalAllowedOrigins []string

	// PreferredAdminMatch is a name/email fragment favored when resolving
	// the admin approver from the directory (the transport office keeps a
	// designated processing admin). Optional.
	PreferredAdminMatch string

	// ReminderCronSpec schedules the stalled-approval nudge job.
	// Empty disables the job.
	ReminderCronSpec string

	// ReminderPendingHours is how long a request may sit at one stage
	// before the current approver is nudged.
	ReminderPendingHours int
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type SMSConfig struct {
	// GatewayURL is the base URL of the campus SMS gateway. Empty disables
	// SMS delivery (notifications are still persisted).
	GatewayURL string
	APIKey     string

	// CallbackSecret verifies HMAC signatures on delivery-status callbacks.
	CallbackSecret string

	SenderName string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "travelink"),
			User:     env("DB_USER", "travelink"),
			Password: env("DB_PASSWORD", "travelink"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SMS: SMSConfig{
			GatewayURL:     os.Getenv("SMS_GATEWAY_URL"),
			APIKey:         os.Getenv("SMS_API_KEY"),
			CallbackSecret: os.Getenv("SMS_CALLBACK_SECRET"),
			SenderName:     env("SMS_SENDER_NAME", "TRAVELINK"),
		},

		PortalAllowedOrigins: envList("PORTAL_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		PreferredAdminMatch:  os.Getenv("PREFERRED_ADMIN_MATCH"),

		ReminderCronSpec:     env("REMINDER_CRON", "0 8 * * *"),
		ReminderPendingHours: envInt("REMINDER_PENDING_HOURS", 48),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			s := v[start:i]
			start = i + 1
			// trim spaces
			for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
				s = s[1:]
			}
			for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
				s = s[:len(s)-1]
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
