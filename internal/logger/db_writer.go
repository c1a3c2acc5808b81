package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "github.com/tndevelopers2024/medagg-crm-sub002/internal/common/models"

	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	Scope     string
	AdAccount string
	FormID    string
	RunID     string
	Caller    string // Function name
}

// InsertFunc persists one log record.
type InsertFunc func(ctx context.Context, record common_models.Log) error

// DBLogWriter handles the async writing
type DBLogWriter struct {
	insert  InsertFunc
	logChan chan LogEntry
	appId   string
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(insert InsertFunc, appId string, buffer int) *DBLogWriter {
	if buffer <= 0 {
		buffer = 1000
	}
	writer := &DBLogWriter{
		insert:  insert,
		logChan: make(chan LogEntry, buffer),
		appId:   appId,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	// Start the background worker immediately
	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook. Entries logged after Close are dropped;
// logChan is never closed so late writers cannot panic.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case <-w.quit:
		return
	default:
	}

	select {
	case <-w.quit:
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the sync
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the buffered ones to be written.
func (w *DBLogWriter) Close() {
	w.once.Do(func() {
		close(w.quit)
	})
	<-w.done
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for {
		select {
		case entry := <-w.logChan:
			w.write(entry)
		case <-w.quit:
			for {
				select {
				case entry := <-w.logChan:
					w.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *DBLogWriter) write(entry LogEntry) {
	record := common_models.Log{
		Message:      entry.Message,
		LogLevelId:   mapLevelToInt(entry.Level),
		Scope:        entry.Scope,
		AdAccount:    entry.AdAccount,
		FormID:       entry.FormID,
		RunID:        entry.RunID,
		Caller:       entry.Caller,
		AppId:        w.appId,
		CreatedOnUtc: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// errors are ignored to keep the app running
	_ = w.insert(ctx, record)
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
