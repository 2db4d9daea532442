package logger

import (
	"os"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      = zap.NewNop()
	sentryOn bool
)

// Init 初始化全局 logger；format 支持 json / console
func Init(level, format string) error {
	var lv zapcore.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lv)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// EnableSentry 让 Error 级别日志同步上报 Sentry（需先 sentry.Init）
func EnableSentry() { sentryOn = true }

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
	if sentryOn {
		sentry.CaptureMessage(msg)
	}
}

func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

func Sync() { _ = log.Sync() }

// L 返回底层 *zap.Logger，供需要子 logger 的场景使用
func L() *zap.Logger { return log }
