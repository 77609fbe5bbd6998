package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevInsecureJWTSecret is used only when ENV=dev and JWT_SECRET is unset.
// Config.JWTSecretInsecure is set whenever it is in effect.
const DevInsecureJWTSecret = "coursehub-dev-insecure-secret-change-me"

// DBMemory selects the in-process store instead of Postgres.
const DBMemory = "memory"

type Config struct {
	// App
	Env string // dev / test / staging / prod

	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Auth / Security
	JWTSecret         string
	JWTSecretInsecure bool
	JWTIssuer         string
	AccessTokenTTL    time.Duration
	BcryptCost        int

	// Email verification
	OTPTTL           time.Duration
	EmailSendTimeout time.Duration
	ResendCooldown   time.Duration

	// Infrastructure
	DBAddr         string
	DBDebug        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Email transport
	EmailDriver  string // smtp | log
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPInsecure bool

	// Photo storage
	StorageDriver  string // local | s3
	UploadDir      string
	MaxPhotoBytes  int64
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// Rate limiting (per minute)
	RLRegister int
	RLLogin    int
	RLVerify   int
	RLResend   int

	// Seeding
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

// Load reads configuration from the environment, after merging an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("ENV", "dev"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer:         getEnv("JWT_ISSUER", "coursehub"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RabbitURL:         getEnv("RABBIT_URL", ""),
		RabbitExchange:    getEnv("RABBIT_EXCHANGE", "coursehub.events"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:          getEnv("SMTP_FROM", "no-reply@coursehub.local"),
		SMTPFromName:      getEnv("SMTP_FROM_NAME", "CourseHub"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads/profiles"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Admin"),
	}

	// signing secret
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("missing required env var: JWT_SECRET")
		}
		cfg.JWTSecret = DevInsecureJWTSecret
		cfg.JWTSecretInsecure = true
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EmailSendTimeout, err = getDuration("EMAIL_SEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResendCooldown, err = getDuration("RESEND_COOLDOWN", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.Env != "test" && (cfg.BcryptCost < 10 || cfg.BcryptCost > 12) {
		return nil, fmt.Errorf("BCRYPT_COST must be between 10 and 12, got %d", cfg.BcryptCost)
	}

	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.RLRegister, err = getInt("RL_REGISTER_PER_MIN", 5); err != nil {
		return nil, err
	}
	if cfg.RLLogin, err = getInt("RL_LOGIN_PER_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.RLVerify, err = getInt("RL_VERIFY_PER_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.RLResend, err = getInt("RL_RESEND_PER_MIN", 5); err != nil {
		return nil, err
	}

	maxPhoto, err := getInt("MAX_PHOTO_BYTES", 5*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxPhotoBytes = int64(maxPhoto)

	cfg.DBDebug = getBool("DB_DEBUG", false)
	cfg.SMTPInsecure = getBool("SMTP_INSECURE", cfg.IsDev())
	cfg.S3UsePathStyle = getBool("S3_USE_PATH_STYLE", true)

	// database
	defDB := ""
	if cfg.IsDev() {
		defDB = DBMemory
	}
	cfg.DBAddr = getEnv("DB_ADDR", defDB)
	switch {
	case cfg.DBAddr == "":
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	case cfg.DBAddr == DBMemory:
	case strings.HasPrefix(cfg.DBAddr, "postgres://"), strings.HasPrefix(cfg.DBAddr, "postgresql://"):
	default:
		return nil, fmt.Errorf("DB_ADDR must be a postgres:// url or %q", DBMemory)
	}

	// email
	defDriver := "smtp"
	if cfg.IsDev() {
		defDriver = "log"
	}
	cfg.EmailDriver = strings.ToLower(getEnv("EMAIL_DRIVER", defDriver))
	switch cfg.EmailDriver {
	case "log":
		if !cfg.IsDev() && cfg.Env != "test" {
			return nil, fmt.Errorf("EMAIL_DRIVER=log is only allowed in dev/test")
		}
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("missing required env var: SMTP_HOST")
		}
	default:
		return nil, fmt.Errorf("unknown EMAIL_DRIVER %q", cfg.EmailDriver)
	}

	// storage
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", "local"))
	switch cfg.StorageDriver {
	case "local":
		if cfg.UploadDir == "" {
			return nil, fmt.Errorf("missing required env var: UPLOAD_DIR")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("missing required env var: S3_BUCKET")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// seed credentials travel together
	if (cfg.SeedAdminEmail == "") != (cfg.SeedAdminPassword == "") {
		return nil, fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration for %s must be positive: %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
