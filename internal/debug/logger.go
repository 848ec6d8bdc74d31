// Package debug provides the engine's diagnostic logging sink: a
// component-tagged, non-blocking, channel-drained wrapper so that nothing
// on the audio callback's pull path — including its own panic-recovery
// branch — ever blocks on log I/O.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Logger is the engine-wide diagnostic sink. Producers call Log/Logf,
// which enqueue onto a buffered channel and return immediately; one
// goroutine drains the channel, keeps a recent-entries ring buffer for
// introspection, and forwards each entry to the underlying
// charmbracelet/log logger. A full channel drops the entry rather than
// blocking the caller.
type Logger struct {
	sink *log.Logger

	entries    []LogEntry
	entriesMu  sync.RWMutex
	maxEntries int
	writeIndex int
	entryCount int

	componentEnabled map[Component]bool
	componentMu      sync.RWMutex

	minLevel LogLevel
	levelMu  sync.RWMutex

	logChan  chan LogEntry
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewLogger constructs a Logger writing formatted entries to w (typically
// os.Stderr) and retaining the last maxEntries for introspection. Every
// component starts disabled; logging is opt-in.
func NewLogger(w io.Writer, maxEntries int) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if maxEntries < 100 {
		maxEntries = 100
	}

	l := &Logger{
		sink:             log.New(w),
		entries:          make([]LogEntry, maxEntries),
		maxEntries:       maxEntries,
		componentEnabled: make(map[Component]bool),
		minLevel:         LogLevelInfo,
		logChan:          make(chan LogEntry, 1000),
		shutdown:         make(chan struct{}),
	}

	for _, c := range []Component{ComponentGraph, ComponentFX, ComponentAudioIO, ComponentBackend, ComponentBuilder, ComponentCAPI} {
		l.componentEnabled[c] = false
	}

	l.wg.Add(1)
	go l.processLogs()

	return l
}

func (l *Logger) processLogs() {
	defer l.wg.Done()

	for {
		select {
		case e := <-l.logChan:
			l.addEntry(e)
		case <-l.shutdown:
			for {
				select {
				case e := <-l.logChan:
					l.addEntry(e)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) addEntry(e LogEntry) {
	l.entriesMu.Lock()
	l.entries[l.writeIndex] = e
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries
	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
	l.entriesMu.Unlock()

	l.emit(e)
}

func (l *Logger) emit(e LogEntry) {
	sub := l.sink.With("component", string(e.Component), "trace_id", e.TraceID.String())
	switch e.Level {
	case LogLevelDebug:
		sub.Debug(e.Message, e.KeyVals...)
	case LogLevelWarning:
		sub.Warn(e.Message, e.KeyVals...)
	case LogLevelError:
		sub.Error(e.Message, e.KeyVals...)
	default:
		sub.Info(e.Message, e.KeyVals...)
	}
}

// Log enqueues a log entry for component at level, tagged with a trace id
// generated for this entry alone. Non-blocking: a full queue drops the
// entry.
func (l *Logger) Log(component Component, level LogLevel, message string, keyvals ...interface{}) {
	l.componentMu.RLock()
	enabled := l.componentEnabled[component]
	l.componentMu.RUnlock()
	if !enabled {
		return
	}

	l.levelMu.RLock()
	minLevel := l.minLevel
	l.levelMu.RUnlock()
	if level < minLevel {
		return
	}

	e := LogEntry{
		Component: component,
		Level:     level,
		Message:   message,
		KeyVals:   keyvals,
		TraceID:   uuid.New(),
	}

	select {
	case l.logChan <- e:
	default:
	}
}

// Logf logs a printf-style message with no structured fields.
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.Log(component, level, fmt.Sprintf(format, args...))
}

// GetEntries returns every retained entry, oldest first.
func (l *Logger) GetEntries() []LogEntry {
	l.entriesMu.RLock()
	defer l.entriesMu.RUnlock()

	if l.entryCount == 0 {
		return []LogEntry{}
	}

	out := make([]LogEntry, l.entryCount)
	if l.entryCount < l.maxEntries {
		copy(out, l.entries[:l.entryCount])
	} else {
		for i := 0; i < l.entryCount; i++ {
			out[i] = l.entries[(l.writeIndex+i)%l.maxEntries]
		}
	}
	return out
}

// GetRecentEntries returns the most recent count entries (oldest first
// within that window), for an eventual debug panel.
func (l *Logger) GetRecentEntries(count int) []LogEntry {
	all := l.GetEntries()
	if count >= len(all) {
		return all
	}
	return all[len(all)-count:]
}

// SetComponentEnabled enables or disables logging for a component.
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.componentMu.Lock()
	defer l.componentMu.Unlock()
	l.componentEnabled[component] = enabled
}

// IsComponentEnabled reports whether a component is currently enabled.
func (l *Logger) IsComponentEnabled(component Component) bool {
	l.componentMu.RLock()
	defer l.componentMu.RUnlock()
	return l.componentEnabled[component]
}

// SetMinLevel sets the minimum level entries must meet to be emitted.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.minLevel = level
}

// MinLevel returns the current minimum level.
func (l *Logger) MinLevel() LogLevel {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.minLevel
}

// Shutdown drains whatever is already queued, then returns.
func (l *Logger) Shutdown() {
	close(l.shutdown)
	l.wg.Wait()
}
