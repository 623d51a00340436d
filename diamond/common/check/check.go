package check

import (
	"github.com/NilFoundation/diamond/diamond/common/logging"
)

// These are for wiring code (flag registration, templates known at compile time).
// Library code returns errors.

// PanicIfErr calls panic(err) if err is not nil.
func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}

// LogAndPanicIfErrf logs the error with the provided logger and message and panics if err is not nil.
func LogAndPanicIfErrf(err error, logger logging.Logger, format string, args ...any) {
	if err != nil {
		logger.Error().Err(err).Msgf(format, args...)
		panic(err)
	}
}
