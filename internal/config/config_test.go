package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MATCHPOINT_DATABASE_URL", "")
	t.Setenv("IDENTITY_URL", "http://identity.local")

	if _, err := Load(); err == nil {
		t.Fatal("want error without DATABASE_URL")
	}
}

func TestLoadRequiresIdentityURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matchpoint")
	t.Setenv("IDENTITY_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("want error without IDENTITY_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matchpoint")
	t.Setenv("IDENTITY_URL", "http://identity.local/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("APIPort = %d, want 8000", cfg.APIPort)
	}
	if cfg.IdentityURL != "http://identity.local" {
		t.Errorf("IdentityURL = %q, want trailing slash trimmed", cfg.IdentityURL)
	}
	if cfg.StorageBucket != "avatars" {
		t.Errorf("StorageBucket = %q, want avatars", cfg.StorageBucket)
	}
	if cfg.AvatarMaxBytes != 5*1024*1024 {
		t.Errorf("AvatarMaxBytes = %d, want 5 MiB", cfg.AvatarMaxBytes)
	}
	if !cfg.MaintenanceEnabled {
		t.Error("MaintenanceEnabled = false, want true by default")
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development default")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_INT", "42")
	t.Setenv("X_INT_BAD", "not-a-number")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_LIST", "a, b ,,c")

	if got := envOr("X_STR", "fb"); got != "value" {
		t.Errorf("envOr = %q", got)
	}
	if got := envOr("X_MISSING", "fb"); got != "fb" {
		t.Errorf("envOr fallback = %q", got)
	}
	if got := envInt("X_INT", 1); got != 42 {
		t.Errorf("envInt = %d", got)
	}
	if got := envInt("X_INT_BAD", 7); got != 7 {
		t.Errorf("envInt bad value = %d, want fallback", got)
	}
	if !envBool("X_BOOL", false) {
		t.Error("envBool = false, want true")
	}
	got := envList("X_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("envList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("envList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
