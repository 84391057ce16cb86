package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelfsync/internal/config"
)

func TestConfigInitAndValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SHELFSYNC_AGENT_NAS_2_API_KEY", "")

	target := filepath.Join(home, "conf", "shelfsync.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") || !strings.Contains(out, "SHELFSYNC_AGENT_<NAME>_API_KEY") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing-file error, got %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	for _, want := range []string{
		"Agents: 2 (minimum copies 2)",
		"nas-1",
		"192.168.1.11:3000",
		"warning: agent nas-2 has no api_key; set it or export SHELFSYNC_AGENT_NAS_2_API_KEY",
		"Configuration valid",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("validate output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "agent nas-1 has no api_key") {
		t.Fatalf("nas-1 has a key in the file:\n%s", out)
	}

	t.Setenv("SHELFSYNC_AGENT_NAS_2_API_KEY", "from-env")
	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate with env key: %v", err)
	}
	if strings.Contains(out, "warning:") {
		t.Fatalf("expected no key warnings once the env key is set:\n%s", out)
	}
}

func TestConfigInitStdout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, _, err := runCLI(t, []string{"config", "init", "--stdout"}, "")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	if out != config.Sample() {
		t.Fatalf("expected the sample on stdout, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "shelfsync")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written under HOME, got %v", err)
	}
}

func TestConfigValidateRejectsEmptyAgents(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	target := filepath.Join(home, "empty.toml")
	if err := os.WriteFile(target, []byte("[manager]\nminimum_copies = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "validate"}, target)
	if err == nil || !strings.Contains(err.Error(), "at least one [[agents]] entry") {
		t.Fatalf("expected agent validation error, got %v", err)
	}
}
