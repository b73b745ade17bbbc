// Package logging configures the process-wide structured logger: rotated
// file output plus console mirror.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to both stderr and a size-rotated file under
// dir. quiet drops the console mirror, for TUI mode where stderr would
// corrupt the display.
func New(dir string, quiet bool) (*logrus.Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "homesoc.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if quiet {
		log.SetOutput(rotated)
	} else {
		log.SetOutput(io.MultiWriter(rotated, os.Stderr))
	}
	return log, nil
}
