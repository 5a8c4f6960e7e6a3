package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Default(t *testing.T) {
	setupCmdTest(t, nil, "")

	out, _, err := run(t, "config")
	if err != nil {
		t.Fatalf("config command failed: %v", err)
	}
	for _, key := range []string{"api.base_url", "session.credentials_file", "report.default_type"} {
		if !strings.Contains(out, key) {
			t.Errorf("config output missing %q:\n%s", key, out)
		}
	}
}

func TestConfig_JSONMasksToken(t *testing.T) {
	setupCmdTest(t, nil, "")
	t.Setenv("BRAGCTL_GITHUB_TOKEN", "ghp_supersecretvalue1234")

	out, _, err := run(t, "config", "--json")
	if err != nil {
		t.Fatalf("config --json failed: %v", err)
	}
	if strings.Contains(out, "supersecret") {
		t.Errorf("token leaked in config output:\n%s", out)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nGot: %s", err, out)
	}
	gh, _ := got["GitHub"].(map[string]any)
	if gh["Token"] != "****1234" {
		t.Errorf("masked token = %v, want ****1234", gh["Token"])
	}
}

func TestConfig_Path(t *testing.T) {
	env := setupCmdTest(t, nil, "")
	path := filepath.Join(env.dir, ".bragctl.yaml")
	if err := os.WriteFile(path, []byte("import:\n  concurrency: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "config", "--path")
	if err != nil {
		t.Fatalf("config --path failed: %v", err)
	}
	if !strings.Contains(out, ".bragctl.yaml") {
		t.Errorf("expected config file path, got:\n%s", out)
	}
}

func TestConfig_PathWithoutFile(t *testing.T) {
	setupCmdTest(t, nil, "")

	out, _, err := run(t, "config", "--path")
	if err != nil {
		t.Fatalf("config --path failed: %v", err)
	}
	if !strings.Contains(out, "No config file found") {
		t.Errorf("expected defaults notice, got:\n%s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"ghp_abcdefgh9876": "****9876",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
