package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestRenderConfig_ParsesAsYAML(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := RenderConfig(ConfigData{
		Host:        "127.0.0.1",
		Port:        8080,
		AppSecret:   "s3cr3t-value",
		VerifyToken: "tok-value",
		Channels:    []string{"facebook", "threads"},
		StoreDriver: "file",
		StorePath:   "/var/lib/hubhook/events.json",
	})
	if err != nil {
		t.Fatalf("RenderConfig failed: %v", err)
	}

	var parsed struct {
		Host             string   `yaml:"host"`
		Port             int      `yaml:"port"`
		AppSecret        string   `yaml:"app_secret"`
		VerifyToken      string   `yaml:"verify_token"`
		EnforceSignature bool     `yaml:"enforce_signature"`
		Channels         []string `yaml:"channels"`
		Store            struct {
			Driver string `yaml:"driver"`
			Path   string `yaml:"path"`
		} `yaml:"store"`
		Log struct {
			File string `yaml:"file"`
		} `yaml:"log"`
	}
	if err := yaml.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Rendered config is not valid YAML: %v\n%s", err, out)
	}

	if parsed.Port != 8080 || parsed.AppSecret != "s3cr3t-value" || parsed.VerifyToken != "tok-value" {
		t.Errorf("Unexpected values: %+v", parsed)
	}
	if !parsed.EnforceSignature {
		t.Error("Expected enforce_signature true")
	}
	if len(parsed.Channels) != 2 || parsed.Channels[1] != "threads" {
		t.Errorf("Unexpected channels: %v", parsed.Channels)
	}
	if parsed.Store.Driver != "file" || parsed.Store.Path != "/var/lib/hubhook/events.json" {
		t.Errorf("Unexpected store: %+v", parsed.Store)
	}
	if parsed.Log.File != "" {
		t.Errorf("Expected no log file, got %s", parsed.Log.File)
	}
}

func TestRenderSystemdService(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := RenderSystemdService(ServiceData{
		User:       "hubhook",
		Group:      "hubhook",
		WorkingDir: "/var/lib/hubhook",
		Binary:     "/usr/local/bin/hubhook",
		ConfigFile: "/etc/hubhook/hubhook.yaml",
	})
	if err != nil {
		t.Fatalf("RenderSystemdService failed: %v", err)
	}

	for _, want := range []string{
		"User=hubhook",
		"ExecStart=/usr/local/bin/hubhook serve --config /etc/hubhook/hubhook.yaml",
		"ReadWritePaths=/var/lib/hubhook",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in unit:\n%s", want, out)
		}
	}
}

func TestGetTemplate_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0755); err != nil {
		t.Fatalf("Failed to create templates dir: %v", err)
	}
	override := "User={{.User}} custom\n"
	if err := os.WriteFile(filepath.Join(dir, "templates", "systemd-service.template"), []byte(override), 0644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}

	out, err := RenderSystemdService(ServiceData{User: "alice"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out != "User=alice custom\n" {
		t.Errorf("Expected override to win, got %q", out)
	}
}

func TestGetTemplate_Unknown(t *testing.T) {
	if _, err := GetTemplate("nginx-site"); err == nil {
		t.Error("Expected error for unknown template")
	}
}

func TestValidateTemplate(t *testing.T) {
	for _, name := range ListTemplates() {
		if !ValidateTemplate(name) {
			t.Errorf("Expected %s to be valid", name)
		}
	}
	if ValidateTemplate("bogus") {
		t.Error("Expected bogus to be invalid")
	}
}
