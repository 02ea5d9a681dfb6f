package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
)

// PanicError is returned by RecoverMiddleware when a handler panicked.
type PanicError struct{ Value any }

func (e *PanicError) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// Code reports a stable error code for handler summaries.
func (e *PanicError) Code() string { return "panic" }

// RecoverMiddleware logs handler panics and returns them as *PanicError.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(tghelpers.BuildContext(c), "tg", "panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = &PanicError{Value: r}
			}
		}()
		return next(c)
	}
}
