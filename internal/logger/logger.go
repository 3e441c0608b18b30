package logger

import "go.uber.org/zap"

// New builds the process logger. Development mode gets human-readable output,
// everything else the production JSON encoder.
func New(environment string) (*zap.Logger, error) {
	if environment == "development" || environment == "test" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
