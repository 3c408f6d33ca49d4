package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_UsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	child := zerolog.New(&buf).With().Str(FieldRequestID, "req-1").Logger()
	ctx := WithLogger(context.Background(), child)

	Ctx(ctx).Warn().Str(FieldUserID, "u1").Msg("scoped")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "u1", line[FieldUserID])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "scoped", line["message"])
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))

	prev := global
	t.Cleanup(func() { global = prev })

	var buf bytes.Buffer
	global = zerolog.New(&buf)
	L().Info().Msg("global")
	Ctx(context.Background()).Error().Msg("fallback")

	assert.Contains(t, buf.String(), `"message":"global"`)
	assert.Contains(t, buf.String(), `"message":"fallback"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
