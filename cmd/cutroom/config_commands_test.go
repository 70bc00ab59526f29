package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out := mustRunCLI(t, env, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("config init replaced an existing file without --overwrite")
	}
	out = mustRunCLI(t, env, "config", "init", "--path", target, "--overwrite")
	requireContains(t, out, "Wrote sample configuration")
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "show")
	requireContains(t, out, "# Config path: "+env.configPath)
	requireContains(t, out, "[paths]")
	requireContains(t, out, "[export]")
	requireContains(t, out, env.cfg.Paths.LibraryDir)
}

func TestConfigShowFallsBackToDefaults(t *testing.T) {
	setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.toml")

	out, _, err := runCLI(t, []string{"config", "show"}, missing)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# File does not exist; showing defaults")
	requireContains(t, out, "default_codec")
	requireContains(t, out, "h264")
}

func TestConfigPathPrintsLocation(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "path")
	requireContains(t, out, env.configPath)
}
