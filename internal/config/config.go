package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	MinIO   MinIOConfig
	CORS    CORSConfig
	Media   MediaConfig
	WebRTC  WebRTCConfig
	Push    PushConfig
	Sweeper SweeperConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type MinIOConfig struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CORSConfig struct {
	Origins []string
}

// MediaConfig carries the per-type upload policies for the media gateway.
type MediaConfig struct {
	MaxUploadSize      int64
	ImageExtensions    []string
	VideoExtensions    []string
	AudioExtensions    []string
	DocumentExtensions []string
}

// WebRTCConfig holds the ICE server list handed to clients and the secret
// used to mint short-lived signaling session tokens.
type WebRTCConfig struct {
	STUNServers []string
	TURNServers []string
	TURNUser    string
	TURNSecret  string
	TokenSecret string
	TokenExpiry time.Duration
}

type PushConfig struct {
	CredentialsFile string
}

type SweeperConfig struct {
	Interval time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment variables")
	}

	sweeperInterval, err := time.ParseDuration(getEnv("SWEEPER_INTERVAL", "15s"))
	if err != nil || sweeperInterval <= 0 || sweeperInterval > 20*time.Second {
		sweeperInterval = 15 * time.Second
	}

	tokenExpiry, err := time.ParseDuration(getEnv("WEBRTC_TOKEN_EXPIRY", "1h"))
	if err != nil {
		tokenExpiry = time.Hour
	}

	return &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "startuphub"),
			Password: getEnv("DB_PASSWORD", "startuphub"),
			Name:     getEnv("DB_NAME", "startuphub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "startuphub-media"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		Media: MediaConfig{
			MaxUploadSize:      getEnvInt64("MEDIA_MAX_UPLOAD_SIZE", 50<<20),
			ImageExtensions:    splitEnv("MEDIA_IMAGE_EXTENSIONS", "jpg,jpeg,png,gif,webp"),
			VideoExtensions:    splitEnv("MEDIA_VIDEO_EXTENSIONS", "mp4,webm,mov"),
			AudioExtensions:    splitEnv("MEDIA_AUDIO_EXTENSIONS", "mp3,ogg,wav,webm,m4a"),
			DocumentExtensions: splitEnv("MEDIA_DOCUMENT_EXTENSIONS", "pdf,doc,docx,txt,zip"),
		},
		WebRTC: WebRTCConfig{
			STUNServers: splitEnv("WEBRTC_STUN_SERVERS", "stun:stun.l.google.com:19302,stun:stun1.l.google.com:19302"),
			TURNServers: splitEnv("WEBRTC_TURN_SERVERS", ""),
			TURNUser:    getEnv("WEBRTC_TURN_USER", ""),
			TURNSecret:  getEnv("WEBRTC_TURN_SECRET", ""),
			TokenSecret: getEnv("WEBRTC_TOKEN_SECRET", "default-secret"),
			TokenExpiry: tokenExpiry,
		},
		Push: PushConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Sweeper: SweeperConfig{
			Interval: sweeperInterval,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
