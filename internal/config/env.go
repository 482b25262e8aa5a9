package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskline/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskline/"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
}

type AdvisorEnv struct {
	AdvisorURL        string `envconfig:"ADVISOR_URL" default:"https://gigachat.devices.sberbank.ru/api/v1/chat/completions"`
	AdvisorCredential string `envconfig:"ADVISOR_CREDENTIAL"`
	AdvisorModel      string `envconfig:"ADVISOR_MODEL" default:"GigaChat"`
}

type SchedulerEnv struct {
	ReminderLead time.Duration `envconfig:"REMINDER_LEAD" default:"24h"`
}

type Env struct {
	BaseEnv
	StorageEnv
	AdvisorEnv
	SchedulerEnv
}

const namespace = "TASKLINE"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func AdvisorEnvFromEnv(env *Env) *AdvisorEnv {
	return &env.AdvisorEnv
}

func SchedulerEnvFromEnv(env *Env) *SchedulerEnv {
	return &env.SchedulerEnv
}
