package config

import (
	"fmt"
	"os"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// ApiEnv reports the running environment. Background fanout (kafka, pusher,
// FCM, mail) is skipped entirely when this returns "test".
func ApiEnv() string {
	env := os.Getenv("API_ENV")
	if env == "" {
		return "local"
	}
	return env
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// PendingReviewReminderAge is how long a transaction may sit in pending
// before the hourly sweep nudges the admins about it.
const PendingReviewReminderAge = 48 * time.Hour

// PendingReviewReminderInterval is how often the reminder sweep runs.
const PendingReviewReminderInterval = time.Hour
