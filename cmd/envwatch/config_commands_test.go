package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing config to be refused, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigInitSkipsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[paths\n"), 0o644); err != nil {
		t.Fatalf("write broken config: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "validate"}, broken); err == nil {
		t.Fatal("expected validate to fail on a broken config")
	}
	target := filepath.Join(dir, "fresh.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, broken); err != nil {
		t.Fatalf("config init should not load the config: %v", err)
	}
}

func TestConfigShowAppliesFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	override := filepath.Join(env.baseDir, "data", "other.jsonl")

	out, _, err := runCLI(t, []string{"--input", override, "--poll-interval", "2.5", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath+" (exists: yes)")
	requireContains(t, out, override)
	requireContains(t, out, "poll_interval = 2.5")
	requireContains(t, out, env.cfg.Paths.OutputLog)
}

func TestGlobalFlagsAreValidated(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"--output", env.cfg.Paths.InputLog, "config", "show"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "paths.output_log") {
		t.Fatalf("expected same input/output to be rejected, got %v", err)
	}
	_, _, err = runCLI(t, []string{"--poll-interval", "0", "config", "show"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--poll-interval") {
		t.Fatalf("expected zero poll interval to be rejected, got %v", err)
	}
}
