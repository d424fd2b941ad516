package config

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Logging configures logrus. With a non-empty dir output goes to
// <dir>/<service>.log instead of stderr.
func Logging(service, dir string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	if dir == "" {
		return
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnf("unable to create folder for log %s", err)
		return
	}

	logFilePath := filepath.Join(dir, service+".log")
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Warnf("failed to open log file %s: %v", logFilePath, err)
		return
	}

	log.SetOutput(file)
	log.Infof("log to file started for service: %s", service)
}
