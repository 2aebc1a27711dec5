package logger

import "go.uber.org/zap"

// New returns a development logger for APP_ENV=development and a JSON
// production logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "development" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New that falls back to a no-op logger.
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
