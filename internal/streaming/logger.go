package streaming

import (
	"fmt"
	"log"
)

// Logger forwards generator progress lines to a streaming manager while
// also writing them to an underlying log.Logger.
type Logger struct {
	manager *Manager
	runID   string
	next    *log.Logger
}

// NewLogger wraps next so that every line logged during a generation run
// is also published as an event tagged with runID. A nil next falls back
// to log.Default().
func NewLogger(manager *Manager, runID string, next *log.Logger) *Logger {
	if next == nil {
		next = log.Default()
	}
	return &Logger{
		manager: manager,
		runID:   runID,
		next:    next,
	}
}

// Printf publishes the formatted line as a notice event and forwards it
// to the underlying logger.
func (l *Logger) Printf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	l.manager.Publish(Event{
		Type:    EventNotice,
		RunID:   l.runID,
		Message: message,
	})
	l.next.Printf("[gen %s] %s", l.runID, message)
}
