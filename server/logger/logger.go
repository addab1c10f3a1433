package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the sugared logger used throughout the raksha server.
// The development encoding with colored levels matches the colored request
// log & worker log prefixes, since the server is operated from a terminal.
func NewLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	zapLogger, err := cfg.Build()
	if err != nil {
		log.Panicf("unable to build logger: %v", err)
	}
	defer zapLogger.Sync()

	return zapLogger.Sugar()
}
