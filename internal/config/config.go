package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DB       *DBconfig
	RabbitMq *RabbitMqconfig
	Srv      *Serviceconfig
	App      *Appconfig
	Mail     *Mailconfig
	Log      *Loggerconfig
}

type DBconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMqconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type Serviceconfig struct {
	DemandServicePort string `yaml:"demand_service"`
	AuthServicePort   string `yaml:"auth_service"`
}

type Appconfig struct {
	JwtSecret string `yaml:"jwt_secret"`

	// Delivery proximity gate, meters.
	GeofenceRadiusMeters float64 `yaml:"geofence_radius_meters"`

	// Defaults for the nearest-pending query.
	NearestMaxRadiusMeters float64 `yaml:"nearest_max_radius_meters"`
	NearestLimit           int     `yaml:"nearest_limit"`

	ClassifierURL string `yaml:"classifier_url"`
}

type Mailconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Loggerconfig struct {
	Level string `yaml:"level"`
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			fmt.Printf("using default for %v\n", key)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "hatbazar_user"),
			Password: getEnv("DB_PASSWORD", "hatbazar_pass"),
			Database: getEnv("DB_NAME", "hatbazar_db"),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Srv: &Serviceconfig{
			DemandServicePort: getEnv("DEMAND_SERVICE_PORT", "3000"),
			AuthServicePort:   getEnv("AUTH_SERVICE_PORT", "3001"),
		},
		App: &Appconfig{
			JwtSecret:              getEnv("JWT_SECRET", "dev-secret-change-me"),
			GeofenceRadiusMeters:   getEnvFloat("GEOFENCE_RADIUS_METERS", 50),
			NearestMaxRadiusMeters: getEnvFloat("NEAREST_MAX_RADIUS_METERS", 5000),
			NearestLimit:           getEnvInt("NEAREST_LIMIT", 5),
			ClassifierURL:          getEnv("CLASSIFIER_URL", "http://localhost:3010/tags"),
		},
		Mail: &Mailconfig{
			Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("EMAIL_PORT", 587),
			User:     getEnv("EMAIL_HOST_USER", ""),
			Password: getEnv("EMAIL_HOST_PASSWORD", ""),
			From:     getEnv("DEFAULT_FROM_EMAIL", ""),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
