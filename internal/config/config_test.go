package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"GROQ_API_KEY": "gsk-1"}))
	require.Equal(t, "gsk-1", cfg.APIKey)
	require.Equal(t, "https://api.groq.com/openai/v1", cfg.BaseURL)
	require.Equal(t, "llama-3.1-8b-instant", cfg.Model)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.PublicKeyExposed)
	require.False(t, cfg.NeedsAWS())
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingKeyFailsFast(t *testing.T) {
	cfg := FromEnv(envMap(nil))
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFromEnv_PublicKeyIsNeverUsed(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"NEXT_PUBLIC_GROQ_API_KEY": "gsk-public"}))
	require.Empty(t, cfg.APIKey)
	require.True(t, cfg.PublicKeyExposed)
	require.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
}

func TestFromEnv_ParamKeyNeedsAWS(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"GROQ_API_KEY_PARAM": "/khata/groq-api-key"}))
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.NeedsAWS())

	cfg = FromEnv(envMap(map[string]string{"GROQ_API_KEY": "gsk-1", "CHAT_LOG_TABLE": "chat-log"}))
	require.True(t, cfg.NeedsAWS())
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"GROQ_BASE_URL": "not a url",
		"LOG_LEVEL":     "loud",
		"LOG_FORMAT":    "xml",
		"PORT":          "eighty",
	}))
	err := cfg.ValidateServer()
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.ErrorContains(t, err, "GROQ_BASE_URL")
	require.ErrorContains(t, err, "LOG_LEVEL")
	require.ErrorContains(t, err, "LOG_FORMAT")
	require.ErrorContains(t, err, "PORT")
}

func TestValidate_IgnoresPortOutsideServer(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"GROQ_API_KEY": "gsk-1", "PORT": "eighty"}))
	require.NoError(t, cfg.Validate())

	err := cfg.ValidateServer()
	require.ErrorContains(t, err, "PORT")
	require.NotErrorIs(t, err, ErrMissingAPIKey)

	cfg = FromEnv(envMap(map[string]string{"GROQ_API_KEY": "gsk-1", "PORT": "9090"}))
	require.NoError(t, cfg.ValidateServer())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	l := cfg.NewLogger(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	cfg.LogFormat = "text"
	cfg.NewLogger(&buf).Warn("plain")
	require.Contains(t, buf.String(), "msg=plain")
}

func TestLoad_ReadsEnvLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("GROQ_MODEL=llama-test\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("GROQ_API_KEY", "gsk-env")
	t.Setenv("GROQ_MODEL", "")
	require.NoError(t, os.Unsetenv("GROQ_MODEL"))

	cfg := Load()
	require.Equal(t, "gsk-env", cfg.APIKey)
	require.Equal(t, "llama-test", cfg.Model)
}
