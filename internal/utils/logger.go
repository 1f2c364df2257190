package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger builds the process-wide logger. Pack runs are interactive, so
// output goes to stderr as bare console lines carrying the level and message; the
// document on stdout or disk stays free of log noise.
func NewApplicationLogger() (*zap.Logger, error) {
	loggerConfiguration := zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalLevelEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return loggerConfiguration.Build()
}
