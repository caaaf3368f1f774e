package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/titanicprep/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", SamplesKey, 3, FeaturesKey, 4)
	logger.Warn("careful")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, 3.0, entries[0][SamplesKey])
	assert.Equal(t, 4.0, entries[0][FeaturesKey])
	assert.Equal(t, "warn", entries[1]["level"])

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, LevelDebug))
	assert.True(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestZerologLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ComponentKey, "runner", RunIDKey, "abc")

	logger.Info("stage done", OperationKey, OperationLoad)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "runner", entries[0][ComponentKey])
	assert.Equal(t, "abc", entries[0][RunIDKey])
	assert.Equal(t, OperationLoad, entries[0][OperationKey])
}

func TestZerologLoggerErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	err := perrors.NewSchemaError("Survived", "required target column missing")
	logger.Error("preprocessing failed", err, OperationKey, OperationFitTransform)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry[ErrAttrKey], "required target column missing")
	assert.Equal(t, OperationFitTransform, entry[OperationKey])

	detail, ok := entry[ErrorDetailKey].(map[string]interface{})
	require.True(t, ok, "expected structured error detail, got %v", entry[ErrorDetailKey])
	assert.Equal(t, "SchemaError", detail["type"])
	assert.Equal(t, "Survived", detail["column"])
}

func TestZerologLoggerErrorAsField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Error("write failed", ErrAttrKey, fmt.Errorf("disk full"), PathKey, "/tmp/out")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "disk full", entries[0][ErrAttrKey])
	assert.Equal(t, "/tmp/out", entries[0][PathKey])
}

func TestZerologWarnFunc(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	restore := logger.InstallWarnings()
	perrors.Warn(perrors.NewEmptyFeatureWarning("Deck", "median"))
	restore()

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	warning, ok := entries[0]["warning"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Deck", warning["column"])
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("nothing")
	assert.False(t, logger.Enabled(context.Background(), LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				var vErr *perrors.ValidationError
				require.Error(t, err)
				assert.True(t, perrors.As(err, &vErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestLogger(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	testLogger.Debug("dropped")
	testLogger.With(ComponentKey, "preprocessing").Info("fitted", FeaturesKey, 11)
	testLogger.Error("failed", fmt.Errorf("boom"), PathKey, "x.csv")

	assert.False(t, testLogger.ContainsMessage("dropped"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "preprocessing"))
	assert.True(t, testLogger.ContainsField(FeaturesKey, 11.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))
	assert.True(t, testLogger.ContainsField(PathKey, "x.csv"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
