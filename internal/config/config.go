package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// AppEnv is the running environment (development/production).
	AppEnv string
	// ServerPort is the HTTP port to listen on.
	ServerPort string
	// PublicBaseURL is the externally reachable server address used in
	// download links. Empty means the server derives one from the port.
	PublicBaseURL string
	// MySQLDSN is the connection string for the MySQL database.
	MySQLDSN string
	// AWSRegion is the AWS region for S3 uploads.
	AWSRegion string
	// S3Bucket is the target S3 bucket name.
	S3Bucket string
	// S3Endpoint is an optional custom endpoint (for non-AWS S3 providers like MinIO/Contabo).
	S3Endpoint string
	// S3PathStyle enables path-style addressing (required for some S3 providers).
	S3PathStyle bool
	// StorageType determines where converted files land: "local" or "s3".
	StorageType string
	// LocalStoragePath is the directory for locally stored output.
	LocalStoragePath string
	// SpoolDir receives uploaded input files until their job finishes.
	SpoolDir string
	// MaxUploadSize caps the accepted input file size in bytes.
	MaxUploadSize int64
	// SMTP settings for email notifications.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	// WorkerCount is the number of concurrent conversion jobs allowed.
	WorkerCount int
	// MaxParseConcurrency restricts how many inputs are parsed at once.
	MaxParseConcurrency int64
	// DefaultTimeout is the maximum duration for a conversion job.
	DefaultTimeout time.Duration
	// Compression wraps stored output: "none", "gzip" or "lz4".
	Compression string
	// AttachFile enables sending the output as an email attachment (if small enough).
	AttachFile bool
	// APISecret is the shared secret for HMAC-SHA256 request signing.
	APISecret string
	// JWTSecret signs dashboard session tokens.
	JWTSecret string
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
	// AllowedOrigins is a list of CORS allowed domains.
	AllowedOrigins []string
	// DefaultLang is the report language used when a request names none.
	DefaultLang string

	// Scan profile pushed to connected agents.
	AgentColumns       int
	AgentTolerateExtra bool
	AgentFormat        string
	AgentDelimiter     string
	AgentScanInterval  time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		AllowedOrigins:      getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", ""),
		MySQLDSN:            getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/dbname?parseTime=true"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:            getEnv("S3_BUCKET", "my-conversion-bucket"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3PathStyle:         getEnvBool("S3_PATH_STYLE", false),
		StorageType:         getEnv("STORAGE_TYPE", "local"),
		LocalStoragePath:    getEnv("LOCAL_STORAGE_PATH", "./converted"),
		SpoolDir:            getEnv("SPOOL_DIR", os.TempDir()),
		MaxUploadSize:       int64(getEnvInt("MAX_UPLOAD_SIZE", 50*1024*1024)),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASS", ""),
		SMTPFrom:            getEnv("SMTP_FROM", "noreply@example.com"),
		WorkerCount:         getEnvInt("WORKER_COUNT", 5),
		MaxParseConcurrency: int64(getEnvInt("MAX_PARSE_CONCURRENCY", 3)),
		DefaultTimeout:      getEnvDuration("DEFAULT_TIMEOUT", 15*time.Minute),
		Compression:         getEnv("COMPRESSION", "none"),
		AttachFile:          getEnvBool("EMAIL_ATTACH_FILE", false),
		APISecret:           getEnv("API_SECRET", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),
		DefaultLang:         getEnv("DEFAULT_LANG", "en"),
		AgentColumns:        getEnvInt("AGENT_COLUMNS", 4),
		AgentTolerateExtra:  getEnvBool("AGENT_TOLERATE_EXTRA", false),
		AgentFormat:         getEnv("AGENT_FORMAT", "excel"),
		AgentDelimiter:      getEnv("AGENT_DELIMITER", "%"),
		AgentScanInterval:   getEnvDuration("AGENT_SCAN_INTERVAL", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		// detailed parsing could happen here, for now split by comma
		// basic implementation
		var result []string
		start := 0
		for i := 0; i < len(value); i++ {
			if value[i] == ',' {
				result = append(result, value[start:i])
				start = i + 1
			}
		}
		result = append(result, value[start:])
		return result
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
