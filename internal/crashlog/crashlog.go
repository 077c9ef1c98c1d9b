package crashlog

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/logging"
)

const writeTimeout = 5 * time.Second

// Sink stores error log entries.
type Sink interface {
	InsertErrorLog(ctx context.Context, e db.ErrorLog) error
}

// Logger persists errors and panics to the error_logs table.
// Safe for concurrent use from multiple goroutines.
type Logger struct {
	sink Sink
}

var (
	global   *Logger
	globalMu sync.Mutex
)

// Init sets up the global crash logger. Passing nil turns persistence off.
func Init(sink Sink) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if sink == nil {
		global = nil
		return
	}
	global = &Logger{sink: sink}
}

func current() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// LogPanic records a recovered panic with a stack trace.
// Safe to call even if Init() was never called (logs only).
func LogPanic(module string, r any, ctx map[string]string) {
	msg := fmt.Sprintf("%v", r)
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	stackStr := string(stack[:n])

	logging.L().Error("panic recovered", "module", module, "panic", msg, "stack", stackStr)

	if l := current(); l != nil {
		l.insert("panic", module, msg, stackStr, ctx)
	}
}

// LogError records an error with optional context.
func LogError(module string, err error, ctx map[string]string) {
	if err == nil {
		return
	}
	if l := current(); l != nil {
		l.insert("error", module, err.Error(), "", ctx)
	}
}

func (l *Logger) insert(level, module, message, stacktrace string, ctx map[string]string) {
	var ctxJSON string
	if len(ctx) > 0 {
		if b, err := json.Marshal(ctx); err == nil {
			ctxJSON = string(b)
		}
	}

	c, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := l.sink.InsertErrorLog(c, db.ErrorLog{
		Level:      level,
		Module:     module,
		Message:    message,
		Stacktrace: stacktrace,
		Context:    ctxJSON,
	}); err != nil {
		logging.Warnf("crashlog: %v", err)
	}
}
