package dsn

import (
	"fmt"
	"os"
)

// FromEnv собирает строку подключения к Postgres из переменных окружения.
// DB_DSN, если задан, используется как есть.
func FromEnv() string {
	if raw := os.Getenv("DB_DSN"); raw != "" {
		return raw
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := getenv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	dbname := os.Getenv("DB_NAME")
	sslmode := getenv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, dbname, sslmode)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
