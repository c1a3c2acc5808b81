package logger

import (
	"context"
	"sync"
	"testing"

	common_models "github.com/tndevelopers2024/medagg-crm-sub002/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type captureWriter struct {
	entries []LogEntry
}

func (c *captureWriter) AddLog(entry LogEntry) {
	c.entries = append(c.entries, entry)
}

func TestDBCoreForwardsWarningsWithScopeFields(t *testing.T) {
	base, observed := observer.New(zapcore.DebugLevel)
	writer := &captureWriter{}
	log := zap.New(NewDBCore(base, writer)).With(zap.String("ad_account", "act_1"))

	log.Info("page fetched", zap.String("form_id", "F1"))
	log.Warn("form sync failed", zap.String("scope", "form"), zap.String("form_id", "F1"))

	assert.Equal(t, 2, observed.Len(), "console core still receives every entry")
	require.Len(t, writer.entries, 1)
	got := writer.entries[0]
	assert.Equal(t, "form sync failed", got.Message)
	assert.Equal(t, "form", got.Scope)
	assert.Equal(t, "act_1", got.AdAccount)
	assert.Equal(t, "F1", got.FormID)
}

func TestDBLogWriterDrainsOnClose(t *testing.T) {
	var mu sync.Mutex
	var records []common_models.Log
	w := NewDBLogWriter(func(ctx context.Context, r common_models.Log) error {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, r)
		return nil
	}, "test-app", 10)

	w.AddLog(LogEntry{Level: zapcore.ErrorLevel, Message: "boom", Scope: "lead-upsert"})
	w.AddLog(LogEntry{Level: zapcore.WarnLevel, Message: "slow"})
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, records, 2)
	assert.Equal(t, 40, records[0].LogLevelId)
	assert.Equal(t, "lead-upsert", records[0].Scope)
	assert.Equal(t, "test-app", records[1].AppId)
}

func TestDBLogWriterDropsEntriesAfterClose(t *testing.T) {
	var mu sync.Mutex
	var records []common_models.Log
	w := NewDBLogWriter(func(ctx context.Context, r common_models.Log) error {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, r)
		return nil
	}, "test-app", 10)

	w.AddLog(LogEntry{Level: zapcore.WarnLevel, Message: "before close"})
	w.Close()

	assert.NotPanics(t, func() {
		w.AddLog(LogEntry{Level: zapcore.WarnLevel, Message: "after close"})
	})
	assert.NotPanics(t, w.Close, "second close is a no-op")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, records, 1)
	assert.Equal(t, "before close", records[0].Message)
}

func TestDBLogWriterConcurrentWritersDuringClose(t *testing.T) {
	w := NewDBLogWriter(func(ctx context.Context, r common_models.Log) error { return nil }, "test-app", 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				w.AddLog(LogEntry{Level: zapcore.ErrorLevel, Message: "sync failed"})
			}
		}()
	}
	w.Close()
	wg.Wait()
}
