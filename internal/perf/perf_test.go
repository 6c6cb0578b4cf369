package perf

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestTimer_SlowWarning(t *testing.T) {
	logger, buf := bufferLogger()

	timer := NewTimer("validate", logger, 0)
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	assert.Positive(t, elapsed)
	assert.Contains(t, buf.String(), "msg=validate ")
	assert.Contains(t, buf.String(), "validate_slow")
}

func TestTimer_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() { NewTimer("x", nil, time.Second).Stop() })
}

func TestRecorder(t *testing.T) {
	logger, buf := bufferLogger()
	r := NewRecorder("parse", logger, 20*time.Millisecond)

	r.Record(10 * time.Millisecond)
	r.Record(30 * time.Millisecond)
	r.Record(20 * time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 10*time.Millisecond, stats.MinDuration)
	assert.Equal(t, 30*time.Millisecond, stats.MaxDuration)
	assert.Equal(t, 20*time.Millisecond, stats.AvgDuration())
	assert.Equal(t, int64(2), stats.SlowOps)

	r.LogStats(slog.LevelInfo)
	assert.Contains(t, buf.String(), "parse_stats")
	assert.Contains(t, buf.String(), "count=3")
}

func TestRecorder_Empty(t *testing.T) {
	logger, buf := bufferLogger()
	r := NewRecorder("parse", logger, time.Second)

	stats := r.Stats()
	assert.Zero(t, stats.MinDuration)
	assert.Zero(t, stats.AvgDuration())

	r.LogStats(slog.LevelInfo)
	assert.Empty(t, buf.String())
}

func TestRecorder_Time(t *testing.T) {
	r := NewRecorder("op", nil, time.Hour)
	called := false
	r.Time(func() { called = true })

	assert.True(t, called)
	assert.Equal(t, int64(1), r.Stats().Count)
}
