package logger

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Глобальный логгер сервиса. Нулевое значение zerolog.Logger ничего не пишет,
// поэтому до вызова Init логирование безопасно выключено (удобно в тестах).
var log zerolog.Logger

// build собирает логгер поверх произвольного writer: JSON, timestamp в
// RFC3339Nano и поле service в каждой записи.
// Нераспознанный уровень молча заменяется на info.
func build(w io.Writer, serviceName, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Init настраивает вывод логов в stdout
func Init(serviceName string, level string) {
	log = build(os.Stdout, serviceName, level)
}

// InitWithWriter настраивает вывод логов в переданный writer
func InitWithWriter(serviceName string, level string, w io.Writer) {
	log = build(w, serviceName, level)
}

// InitLogstash дублирует логи в stdout и по TCP в Logstash
func InitLogstash(addr string, serviceName string, level string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}

	log = build(zerolog.MultiLevelWriter(os.Stdout, conn), serviceName, level)

	return nil
}

func Info() *zerolog.Event {
	return log.Info()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

func With() zerolog.Context {
	return log.With()
}

// WithFields возвращает дочерний логгер с дополнительными полями
func WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
