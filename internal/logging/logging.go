// Package logging builds the zap loggers used by the server and the client.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// fileWriter rotates at 10 MB and keeps three compressed backups.
func fileWriter(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
}

func parseLevel(level string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}

// NewServer returns a JSON logger on stdout, teed into a rotating file when
// file is set.
func NewServer(level, file string) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl),
	}
	if file != "" {
		cores = append(cores, zapcore.NewCore(enc, fileWriter(file), lvl))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// NewClient never writes to the terminal; without a file it discards.
func NewClient(level, file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewNop(), nil
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, fileWriter(file), lvl)), nil
}
