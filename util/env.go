package util

import (
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// EnvOrDefault returns the value of key, or fallback when the variable is unset or blank.
func EnvOrDefault(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func EnvOrDefaultInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warnf("Ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return i
}

// LocationOrDie returns the zone used to bucket acquisitions by calendar day.
func LocationOrDie() *time.Location {
	loc, err := time.LoadLocation(EnvOrDefault("TZ", "UTC"))
	if err != nil {
		log.Fatalf("Bad location configured %v", err)
	}
	return loc
}
