package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	PoseDetectorWebsocket = "websocket"
	PoseDetectorGemini    = "gemini"
)

type Env struct {
	AppEnv           string        `validate:"required,oneof=development production test"`
	Host             string        `validate:"omitempty,ip|hostname"`
	Port             string        `validate:"required,numeric"`
	LogLevel         string        `validate:"omitempty,oneof=panic fatal error warn warning info debug trace"`
	StaticDir        string        `validate:"omitempty,dir"`
	CORSAllowOrigins string        `validate:"required"`
	BodyLimitMB      int           `validate:"min=1,max=100"`
	RequestTimeout   time.Duration `validate:"gt=0s"`
	PoseDetector     string        `validate:"required,oneof=websocket gemini"`
	PoseDetectionURL string        `validate:"required,url"`
	GeminiAPIKey     string        `validate:"required_if=PoseDetector gemini"`
	GeminiModelName  string
}

// LoadDotEnv copies .env into the process environment without overriding variables that are already set.
func LoadDotEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// LoadEnv reads the configuration from the process environment, filling defaults, and validates it.
func LoadEnv(v *validator.Validate) (*Env, error) {
	bodyLimit, err := strconv.Atoi(getEnv("BODY_LIMIT_MB", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid BODY_LIMIT_MB: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	env := &Env{
		AppEnv:           getEnv("APP_ENV", "development"),
		Host:             getEnv("APP_HOST", "0.0.0.0"),
		Port:             getEnv("APP_PORT", "8000"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		StaticDir:        os.Getenv("STATIC_DIR"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		BodyLimitMB:      bodyLimit,
		RequestTimeout:   timeout,
		PoseDetector:     getEnv("POSE_DETECTOR", PoseDetectorWebsocket),
		PoseDetectionURL: getEnv("AI_POSE_DETECTION_URL", "ws://localhost:8765/pose/ws"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModelName:  os.Getenv("GEMINI_MODEL_NAME"),
	}

	if err := v.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return env, nil
}

func (e *Env) Address() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

func NewValidator() *validator.Validate {
	return validator.New()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
