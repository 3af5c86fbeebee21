package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// appendError writes err under key and lifts the cockroachdb/errors stack trace
// into its own field. Typed errors that know how to marshal themselves are also
// written as an object under "<key>_detail".
func appendError(e *zerolog.Event, key string, err error) {
	e.Str(key, err.Error())
	if st := extractStacktrace(err); st != "" {
		e.Str(StacktraceAttrKey, st)
	}
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		e.Object(key+"_detail", m)
	}
}

// extractStacktrace returns the first stack trace recorded in err's chain.
func extractStacktrace(err error) string {
	for cur := err; cur != nil; cur = errors.UnwrapOnce(cur) {
		if details := errors.GetSafeDetails(cur).SafeDetails; len(details) > 0 && details[0] != "" {
			return details[0]
		}
	}
	return ""
}
