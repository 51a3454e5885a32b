package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string

	// Offline mirror + connectivity probing.
	OfflineDBPath  string
	HealthProbeURL string
	ProbeInterval  time.Duration

	// French national address API (BAN).
	GeocodeBaseURL string

	LogLevel  string
	LogFormat string
}

func Load() Config {
	// Local development convenience; a missing file is fine.
	_ = godotenv.Load(".env")

	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	probeInterval := 30 * time.Second
	if s := getenv("PROBE_INTERVAL_SECONDS", ""); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			probeInterval = time.Duration(n) * time.Second
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
		OfflineDBPath:                getenv("OFFLINE_DB_PATH", "openmats.db"),
		HealthProbeURL:               getenv("HEALTH_PROBE_URL", "https://firestore.googleapis.com/"),
		ProbeInterval:                probeInterval,
		GeocodeBaseURL:               getenv("GEOCODE_BASE_URL", "https://api-adresse.data.gouv.fr"),
		LogLevel:                     getenv("LOG_LEVEL", "info"),
		LogFormat:                    getenv("LOG_FORMAT", "json"),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
