// Package observability provides the ambient logging stack: a thin wrapper
// over log/slog that carries a base set of tags through derived loggers,
// the way the teacher's CoreLogger does once its telemetry-upload concerns
// are stripped out (see DESIGN.md).
package observability

import (
	"io"
	"log/slog"
	"maps"
)

// Tags are structured key/value pairs held as a CoreLogger's base tag set,
// shared with every logger derived from it via With.
type Tags map[string]string

// NewTags builds a Tags from a mix of slog.Attr and string/value pairs,
// ignoring incomplete trailing pairs and anything else.
func NewTags(args ...any) Tags {
	var done bool
	tags := Tags{}
	for len(args) > 0 && !done {
		switch x := args[0].(type) {
		case slog.Attr:
			tags[x.Key] = x.Value.String()
			args = args[1:]
		case string:
			if len(args) < 2 {
				done = true
				break
			}
			attr := slog.Any(x, args[1])
			tags[attr.Key] = attr.Value.String()
			args = args[2:]
		default:
			args = args[1:]
		}
	}
	return tags
}

// CoreLogger wraps *slog.Logger with a base set of tags inherited by every
// derived logger (With). The base tags are kept for GetTags and are not
// added to the records the embedded slog.Logger writes; only args given to
// With appear on emitted messages.
type CoreLogger struct {
	*slog.Logger

	baseTags Tags
}

// NewCoreLogger wraps logger with an empty base tag set.
func NewCoreLogger(logger *slog.Logger) *CoreLogger {
	return &CoreLogger{Logger: logger, baseTags: make(Tags)}
}

// SetGlobalTags merges tags into the base set shared by this logger and
// every logger derived from it.
func (cl *CoreLogger) SetGlobalTags(tags Tags) {
	maps.Copy(cl.baseTags, tags)
}

// With returns a derived logger that includes args in every message and
// shares this logger's base tags.
func (cl *CoreLogger) With(args ...any) *CoreLogger {
	return &CoreLogger{
		Logger:   cl.Logger.With(args...),
		baseTags: cl.baseTags,
	}
}

// withArgs merges args with the logger's base tags, base tags winning.
func (cl *CoreLogger) withArgs(args ...any) Tags {
	tags := NewTags(args...)
	maps.Copy(tags, cl.baseTags)
	return tags
}

// GetTags returns the tags associated with the logger. Used for testing.
func (cl *CoreLogger) GetTags() Tags { return cl.baseTags }

// NewNoOpLogger returns a logger that discards all messages, for tests and
// other callers that need a logger with no output.
func NewNoOpLogger() *CoreLogger {
	return NewCoreLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}
