package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string   `env:"HTTP_PORT" envDefault:"4000"`
	AppEnv          string   `env:"APP_ENV" envDefault:"development"`
	DatabaseURL     string   `env:"DATABASE_URL,required"`
	JWTSecret       string   `env:"JWT_SECRET,required"`
	SenderEmail     string   `env:"SENDER_EMAIL"`
	SenderName      string   `env:"SENDER_NAME"`
	SMTPHost        string   `env:"SMTP_HOST"`
	SMTPPort        int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string   `env:"SMTP_USER"`
	SMTPPass        string   `env:"SMTP_PASS"`
	SMTPUseTLS      bool     `env:"SMTP_USE_TLS" envDefault:"false"`
	FrontendOrigins []string `env:"FRONTEND_ORIGINS" envSeparator:","`
	RedisAddr       string   `env:"REDIS_ADDR"`
	RedisPassword   string   `env:"REDIS_PASSWORD"`
	RedisDB         int      `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction indica si el servicio corre en modo producción.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
