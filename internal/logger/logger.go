package logger

import (
	"io"
	"os"
	"strings"

	"delivery-pricing/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger обёртка над logrus с настройками из конфигурации
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New создает логгер по конфигурации. Неизвестный уровень трактуется как info.
func New(cfg *config.LoggerConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	var (
		out  io.Writer = os.Stdout
		file *os.File
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			l.WithError(err).WithField("file", cfg.File).Warn("Failed to open log file, using stdout")
		} else {
			file = f
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	l.SetOutput(out)

	return &Logger{Logger: l, file: file}
}

// Close закрывает файл логов, если он был открыт; после закрытия вывод идёт только в stdout.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.SetOutput(os.Stdout)
	err := l.file.Close()
	l.file = nil
	return err
}
