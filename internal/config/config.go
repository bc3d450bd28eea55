package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUrl     string
	Port      string
	JWTSecret string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, falling back to environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		// DSN must carry parseTime=true so DATETIME columns scan into time.Time.
		DBUrl:     os.Getenv("DB_URL"),
		Port:      port,
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}
