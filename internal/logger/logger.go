package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide sugared logger. Init replaces it; before Init it
// is a no-op so packages can log safely from tests.
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

func Init(mode string) error {
	var cfg zap.Config
	switch mode {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()
	return nil
}

func Sync() {
	_ = Log.Sync()
}
