package startup

import (
	"encoding/hex"
	"log/slog"
	"testing"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/logging"
	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/security"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func TestEnsureSecretsGeneratesMissingKeys(t *testing.T) {
	prevJWT, prevAES := config.JWTSecret, config.AESKey
	t.Cleanup(func() {
		config.JWTSecret, config.AESKey = prevJWT, prevAES
	})

	config.JWTSecret, config.AESKey = "", ""
	if err := ensureSecrets(quietLogger(t)); err != nil {
		t.Fatalf("ensureSecrets: %v", err)
	}

	if len(config.JWTSecret) != 64 {
		t.Errorf("generated JWT secret length = %d, want 64 hex chars", len(config.JWTSecret))
	}
	if len(config.AESKey) != 64 {
		t.Errorf("generated AES key length = %d, want 64 hex chars", len(config.AESKey))
	}
	if _, err := hex.DecodeString(config.AESKey); err != nil {
		t.Errorf("generated AES key is not hex: %v", err)
	}

	// The generated key must actually seal and open a view marker.
	sealed, err := security.SealViewMarker("viewer1", "s1", config.AESKey)
	if err != nil {
		t.Fatalf("SealViewMarker with generated key: %v", err)
	}
	viewer, story, err := security.OpenViewMarker(sealed, config.AESKey)
	if err != nil {
		t.Fatalf("OpenViewMarker: %v", err)
	}
	if viewer != "viewer1" || story != "s1" {
		t.Errorf("marker roundtrip = (%q, %q), want (viewer1, s1)", viewer, story)
	}
}

func TestEnsureSecretsKeepsConfiguredKeys(t *testing.T) {
	prevJWT, prevAES := config.JWTSecret, config.AESKey
	t.Cleanup(func() {
		config.JWTSecret, config.AESKey = prevJWT, prevAES
	})

	config.JWTSecret = "configured-jwt-secret"
	config.AESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	if err := ensureSecrets(quietLogger(t)); err != nil {
		t.Fatalf("ensureSecrets: %v", err)
	}

	if config.JWTSecret != "configured-jwt-secret" {
		t.Error("ensureSecrets must not replace a configured JWT secret")
	}
	if config.AESKey != "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef" {
		t.Error("ensureSecrets must not replace a configured AES key")
	}
}
