package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type zapDriver struct {
	sugar *zap.SugaredLogger
}

func (d *zapDriver) Write(lvl Lvl, msg string, ctx ...interface{}) {
	switch lvl {
	case LvlFatal:
		// 不退出进程，由调用方决定后续处理
		d.sugar.Errorw(msg, append(ctx, "fatal", true)...)
	case LvlError:
		d.sugar.Errorw(msg, ctx...)
	case LvlWarn:
		d.sugar.Warnw(msg, ctx...)
	case LvlInfo:
		d.sugar.Infow(msg, ctx...)
	default:
		d.sugar.Debugw(msg, ctx...)
	}
}

func (d *zapDriver) Sync() error {
	return d.sugar.Sync()
}

func zapLevel(lvl string) (zapcore.Level, error) {
	switch lvl {
	case "debug", "trace":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error", "fatal":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.DebugLevel, fmt.Errorf("unknown log level %q", lvl)
}

func (lc *LogConf) fileWriter(path string) zapcore.WriteSyncer {
	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    lc.RotateSize,
		MaxBackups: lc.RotateBackups,
		MaxAge:     lc.RotateMaxAge,
	})
	if lc.Async {
		return &zapcore.BufferedWriteSyncer{WS: ws, Size: lc.BufSize}
	}
	return ws
}

// OpenMLog create and open log stream using LogConfig
func OpenMLog(lc *LogConf, logDir string) (LogDriver, error) {
	infoFile := filepath.Join(logDir, lc.Filename+".log")
	wfFile := filepath.Join(logDir, lc.Filename+".log.wf")
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create log dir failed.err:%v", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "t"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch lc.Fmt {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	lvLevel, err := zapLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level error.err:%v", err)
	}

	// prints log level from `lvLevel` up to base log, warn and above also to wf log
	cores := []zapcore.Core{
		zapcore.NewCore(enc, lc.fileWriter(infoFile), lvLevel),
		zapcore.NewCore(enc.Clone(), lc.fileWriter(wfFile), zapcore.WarnLevel),
	}
	if lc.Console {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), lvLevel))
	}

	xlog := zap.New(zapcore.NewTee(cores...)).With(zap.String("module", lc.Module))
	return &zapDriver{sugar: xlog.Sugar()}, nil
}
