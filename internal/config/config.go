package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	// Cloud SQL unix socket name; overrides DBHost when set.
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	FirebaseProjectID   string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS_FILE"`

	StorageBucket string `env:"STORAGE_BUCKET"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	TypingTTLSeconds   int `env:"TYPING_TTL_SECONDS" envDefault:"6"`
	PresenceTTLSeconds int `env:"PRESENCE_TTL_SECONDS" envDefault:"60"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
