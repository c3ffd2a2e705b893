// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/mailcraft/internal/editor"
	"github.com/dmitrymomot/mailcraft/pkg/db"
	"github.com/dmitrymomot/mailcraft/pkg/jwt"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/mailer"
	"github.com/dmitrymomot/mailcraft/pkg/mailer/resend"
	"github.com/dmitrymomot/mailcraft/pkg/redis"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root configuration. Package configs are embedded as-is.
type Config struct {
	HTTP      HTTP
	Templates Templates
	Jobs      Jobs
	Log       logger.Config
	Database  db.Config
	Redis     redis.Config
	JWT       jwt.Config
	Editor    editor.Config
	Mail      mailer.Config
	Resend    resend.Config
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type Templates struct {
	// EnforceOwnership scopes templates to their creator. When false every
	// caller shares one template space and identity is optional.
	EnforceOwnership  bool          `env:"TEMPLATES_ENFORCE_OWNERSHIP" envDefault:"true"`
	AutosaveRetention time.Duration `env:"AUTOSAVE_RETENTION" envDefault:"168h"`
	PurgeSchedule     string        `env:"AUTOSAVE_PURGE_SCHEDULE" envDefault:"0 3 * * *"`
}

// Jobs sizes the queues. The default queue only runs the periodic purge.
type Jobs struct {
	MaxAttempts    int           `env:"JOB_MAX_ATTEMPTS" envDefault:"3"`
	EmailWorkers   int           `env:"JOB_EMAIL_WORKERS" envDefault:"10"`
	DefaultWorkers int           `env:"JOB_DEFAULT_WORKERS" envDefault:"2"`
	Timeout        time.Duration `env:"JOB_TIMEOUT" envDefault:"1m"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the environment. Missing .env files are ignored and variables already set
// in the environment win over file values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Jobs.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1, got %d", c.Jobs.MaxAttempts))
	}
	if c.Jobs.EmailWorkers < 1 {
		errs = append(errs, fmt.Errorf("JOB_EMAIL_WORKERS must be at least 1, got %d", c.Jobs.EmailWorkers))
	}
	if c.Jobs.DefaultWorkers < 1 {
		errs = append(errs, fmt.Errorf("JOB_DEFAULT_WORKERS must be at least 1, got %d", c.Jobs.DefaultWorkers))
	}
	if c.Templates.AutosaveRetention <= 0 {
		errs = append(errs, errors.New("AUTOSAVE_RETENTION must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}
