// Package sl добавляет небольшие помощники для структурированных логов slog.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут лога с ключом "error",
// чтобы ошибки во всех логах выводились единообразно:
//
//	log.Error("insert payment failed", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
