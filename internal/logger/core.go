package logger

import (
	"go.uber.org/zap/zapcore"
)

// EntryWriter receives the log entries the DB core decides to persist.
type EntryWriter interface {
	AddLog(entry LogEntry)
}

// DBCore is a custom Zap Core that tees warn-and-above entries to the logs collection
type DBCore struct {
	zapcore.Core
	writer EntryWriter
	fields []zapcore.Field
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer EntryWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps fields attached through logger.With so Write can still see them.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= zapcore.WarnLevel {
		le := LogEntry{
			Level:   entry.Level,
			Message: entry.Message,
			Caller:  entry.Caller.Function,
		}
		for _, f := range c.fields {
			le.apply(f)
		}
		for _, f := range fields {
			le.apply(f)
		}
		c.writer.AddLog(le)
	}

	// The wrapped core still prints to console
	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (e *LogEntry) apply(f zapcore.Field) {
	if f.Type != zapcore.StringType {
		return
	}
	switch f.Key {
	case "scope":
		e.Scope = f.String
	case "ad_account":
		e.AdAccount = f.String
	case "form_id":
		e.FormID = f.String
	case "run_id":
		e.RunID = f.String
	}
}
