package logger

import (
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

var log = zap.NewNop()

// Init replaces the package logger. With verbose enabled the logger runs at
// debug level, which is also the level raw token values are logged at.
func Init(verbose bool) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	log = l
}

func Sync() {
	_ = log.Sync()
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// Digest returns the hex sha256 of a token so it can be correlated across
// log lines without logging the token itself.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
