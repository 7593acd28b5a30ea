package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "shelld.log")
	logger := Setup("shelld", "test", Options{Writer: &buf, File: file, Level: slog.LevelDebug})
	logger.Debug("dispatched", "call", "claim_spirit", MaskField("signature", "0xdeadbeef"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "dispatched", line["message"])
	require.Equal(t, "DEBUG", line["severity"])
	require.Equal(t, "shelld", line["service"])
	require.Equal(t, "test", line["env"])
	require.Equal(t, "claim_spirit", line["call"])
	require.Equal(t, RedactedValue, line["signature"])
	require.FileExists(t, file)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("passphrase", "hunter2").Value.String())
	require.Equal(t, RedactedValue, MaskField("note", "secret text").Value.String())
	require.Equal(t, "", MaskField("signature", "").Value.String())
	require.Contains(t, SensitiveKeys(), "signature")
}

func TestIsSensitive(t *testing.T) {
	require.True(t, IsSensitive("Signature"))
	require.True(t, IsSensitive("whitelist_signature"))
	require.True(t, IsSensitive(" passphrase "))
	require.False(t, IsSensitive("call"))
	require.False(t, IsSensitive("signer"))
}

func TestSetupRedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("shelld", "test", Options{Writer: &buf, Level: slog.LevelInfo})
	logger.Info("keystore unlocked",
		slog.String("passphrase", "hunter2"),
		slog.Any("seed", []byte{1, 2, 3}),
		slog.String("sender", "0xabc"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, RedactedValue, line["passphrase"])
	require.Equal(t, RedactedValue, line["seed"])
	require.Equal(t, "0xabc", line["sender"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}
