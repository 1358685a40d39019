package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "lexicon")
	t.Setenv("NER_BACKEND", "heuristic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.MinTextRunes)
	assert.True(t, cfg.KeywordOverrides)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ThrottleMin)
	assert.Equal(t, 1500*time.Millisecond, cfg.ThrottleMax)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.ModelCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MIN_TEXT_RUNES", "100")
	t.Setenv("KEYWORD_OVERRIDES", "false")
	t.Setenv("THROTTLE_MIN", "0s")
	t.Setenv("THROTTLE_MAX", "250ms")
	t.Setenv("FETCH_RATE_PER_SEC", "0")
	t.Setenv("MODEL_CACHE_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendOpenAI, cfg.ModelBackend)
	assert.Equal(t, 100, cfg.MinTextRunes)
	assert.False(t, cfg.KeywordOverrides)
	assert.Equal(t, time.Duration(0), cfg.ThrottleMin)
	assert.Equal(t, 250*time.Millisecond, cfg.ThrottleMax)
	assert.Zero(t, cfg.FetchRatePerSec)
	assert.Zero(t, cfg.ModelCacheTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"gemini without key", Config{ModelBackend: BackendGemini, NERBackend: BackendHeuristic}, "GEMINI_API_KEY"},
		{"openai ner without key", Config{ModelBackend: BackendLexicon, NERBackend: BackendOpenAI}, "OPENAI_API_KEY"},
		{"unknown backend", Config{ModelBackend: "vader", NERBackend: BackendHeuristic}, "MODEL_BACKEND"},
		{"inverted throttle", Config{ModelBackend: BackendLexicon, NERBackend: BackendHeuristic, ThrottleMin: time.Second}, "THROTTLE_MAX"},
		{"ok offline", Config{ModelBackend: BackendLexicon, NERBackend: BackendHeuristic}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
