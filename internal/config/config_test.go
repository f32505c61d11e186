package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejectsBadVectorSize(t *testing.T) {
	cfg := Default()
	cfg.StandardVectorSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero vector size")
	}
}

func TestValidateRequiresPassphraseWhenEncrypted(t *testing.T) {
	cfg := Default()
	cfg.EncryptionEnabled = true
	cfg.EncryptionPassphraseEnv = "CORVUS_TEST_UNSET_PASSPHRASE"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when encryption enabled without passphrase env set")
	}
}

func TestApplyEnvDoesNotOverrideExplicitFields(t *testing.T) {
	t.Setenv(EnvDataDir, "/from/env")
	cfg := Default()
	cfg.DataDir = "/explicit"
	cfg.ApplyEnv()
	if cfg.DataDir != "/explicit" {
		t.Fatalf("expected explicit DataDir to win, got %q", cfg.DataDir)
	}
}
