package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers split by concern, each writing its own file under logs/.
var (
	ErrorLogger    *zap.Logger
	AuditLogger    *zap.Logger
	RequestLogger  *zap.Logger
	SecurityLogger *zap.Logger
	SystemLogger   *zap.Logger
)

func newLogger(filePath string, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// No writable log dir (e.g. under go test): log to stderr instead.
		return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level))
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(file), level))
}

func InitLoggers() {
	_ = os.MkdirAll("logs", 0755)
	ErrorLogger = newLogger("logs/errors.log", zapcore.ErrorLevel)
	AuditLogger = newLogger("logs/audit.log", zapcore.InfoLevel)
	RequestLogger = newLogger("logs/request.log", zapcore.InfoLevel)
	SecurityLogger = newLogger("logs/security.log", zapcore.WarnLevel)
	SystemLogger = newLogger("logs/system.log", zapcore.InfoLevel)
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
