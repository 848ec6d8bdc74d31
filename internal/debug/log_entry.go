package debug

import (
	"fmt"

	"github.com/google/uuid"
)

// LogLevel represents the severity level of a log entry.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "NONE"
	case LogLevelError:
		return "ERROR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Component represents the engine subsystem that produced a log entry.
type Component string

const (
	ComponentGraph   Component = "graph"
	ComponentFX      Component = "fx"
	ComponentAudioIO Component = "audioio"
	ComponentBackend Component = "backend"
	ComponentBuilder Component = "builder"
	ComponentCAPI    Component = "capi"
)

// LogEntry represents a single log entry. TraceID is a fresh random id
// that Logger.Log generates for each entry; entries emitted during the same
// audio period or API call do not share one. It is distinct from any
// node's ref_id, which is a stable identity.
type LogEntry struct {
	Component Component
	Level     LogLevel
	Message   string
	KeyVals   []interface{}
	TraceID   uuid.UUID
}

// Format formats the log entry as a plain string, for contexts that
// don't go through the charmbracelet/log sink (e.g. a future debug panel
// rendering GetRecentEntries directly).
func (e *LogEntry) Format() string {
	return fmt.Sprintf("[%s] [%s] %s: %s", e.TraceID.String()[:8], e.Component, e.Level, e.Message)
}
