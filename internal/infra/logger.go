// README: Structured logger construction.
package infra

import "go.uber.org/zap"

// NewLogger returns a JSON production logger, or a console logger in development.
func NewLogger(production bool) (*zap.Logger, error) {
	if !production {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stdout"}
	return config.Build()
}
