package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hubhook/internal/channel"
	"hubhook/internal/config"
	"hubhook/internal/eventlog"
	"hubhook/internal/server"
)

const testSecret = "test-secret-at-least-32-chars-long-for-cli"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestSetupLogging_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closeLog, err := setupLogging(&console, "", slog.LevelInfo)
	if err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	defer closeLog()

	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	if strings.Contains(console.String(), "hidden") {
		t.Error("Expected debug message to be filtered at info level")
	}
	if !strings.Contains(console.String(), `"msg":"shown"`) {
		t.Errorf("Expected JSON log line, got %s", console.String())
	}
}

func TestSetupLogging_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "hubhook.log")

	var console bytes.Buffer
	logger, closeLog, err := setupLogging(&console, logPath, slog.LevelDebug)
	if err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger.Debug("to both")
	if err := closeLog(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(console.String(), "to both") {
		t.Error("Expected message in file and console")
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm()&0007 != 0 {
		t.Errorf("Expected log file closed to others, got %o", info.Mode().Perm())
	}
}

func TestSignCommand(t *testing.T) {
	payload := `{"entry":[{"id":"1"}]}`

	out, err := execute(t, payload, "sign", "--secret", testSecret)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	expected, _ := server.Sign([]byte(payload), testSecret, server.AlgoSHA1)
	if strings.TrimSpace(out) != expected {
		t.Errorf("Expected %s, got %s", expected, out)
	}
	if err := server.VerifySignature([]byte(payload), strings.TrimSpace(out), testSecret); err != nil {
		t.Errorf("Expected printed signature to verify: %v", err)
	}
}

func TestFilterRecords(t *testing.T) {
	now := time.Now()
	records := []eventlog.Record{
		eventlog.NewRecord(channel.Threads, []byte(`{}`), now),
		eventlog.NewRecord(channel.Facebook, []byte(`{}`), now),
		eventlog.NewRecord(channel.Facebook, []byte(`{}`), now),
		eventlog.NewRecord(channel.Instagram, []byte(`{}`), now),
	}

	if got := filterRecords(records, "", 0); len(got) != 4 {
		t.Errorf("Expected all 4 records, got %d", len(got))
	}
	if got := filterRecords(records, channel.Facebook, 0); len(got) != 2 {
		t.Errorf("Expected 2 facebook records, got %d", len(got))
	}
	got := filterRecords(records, "", 2)
	if len(got) != 2 || got[0].ID != records[0].ID {
		t.Errorf("Expected first 2 records, got %v", got)
	}
}

// TestGatewayRoundTrip posts signed events to a file-backed gateway and
// reads them back with the events command.
func TestGatewayRoundTrip(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "events.json")

	store, err := eventlog.Open(eventlog.DriverFile, storePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	srv := server.NewServer(channel.NewRegistry(channel.All()), store,
		slog.New(slog.NewTextHandler(os.Stderr, nil)), server.Options{
			VerifyToken:      "round-trip-token",
			AppSecret:        testSecret,
			EnforceSignature: true,
		})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	post := func(path, body string) int {
		sig, _ := server.Sign([]byte(body), testSecret, server.AlgoSHA256)
		req, _ := http.NewRequestWithContext(context.Background(), "POST", ts.URL+path, strings.NewReader(body))
		req.Header.Set(server.SignatureHeader256, sig)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := post("/facebook", `{"entry": [{"id": "1"}]}`); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if code := post("/threads", `{"entry":[{"id":"2"}]}`); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out, err := execute(t, "", "events", "--store", "file", "--store-path", storePath, "--channel", "facebook")
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}

	var records []eventlog.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("Failed to decode events output: %v\n%s", err, out)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 facebook record, got %d", len(records))
	}
	if records[0].Source != channel.Facebook {
		t.Errorf("Expected facebook source, got %s", records[0].Source)
	}

	var compacted bytes.Buffer
	json.Compact(&compacted, records[0].Body)
	if compacted.String() != `{"entry":[{"id":"1"}]}` {
		t.Errorf("Unexpected body: %s", compacted.String())
	}
}

func TestInitCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hubhook.yaml")

	out, err := execute(t, "", "init", "--output", cfgPath, "--app-secret", testSecret)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Verify token:") {
		t.Errorf("Expected token in output, got %s", out)
	}

	cfg := config.NewConfig()
	if err := cfg.LoadFromFile(cfgPath); err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		t.Errorf("Generated config is invalid: %v", problems)
	}
	if cfg.AppSecret != testSecret || cfg.Store.Driver != eventlog.DriverFile {
		t.Errorf("Unexpected config: %+v", cfg)
	}

	if _, err := execute(t, "", "init", "--output", cfgPath); err == nil {
		t.Error("Expected init to refuse overwriting without --force")
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	// Register restores before godotenv mutates the process environment
	for _, key := range []string{"PORT", "TOKEN", "HUBHOOK_PORT"} {
		t.Setenv(key, "placeholder")
		os.Unsetenv(key)
	}
	t.Setenv("TOKEN", "from-process-env")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=7001\nTOKEN=from-dotenv\n"), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	prevEnv, prevConfig := envFile, configFile
	envFile, configFile = path, filepath.Join(dir, "hubhook.yaml")
	t.Cleanup(func() { envFile, configFile = prevEnv, prevConfig })

	if err := os.WriteFile(configFile, []byte("host: 127.0.0.1\n"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, _, err := loadConfig(tokenCmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Port != 7001 {
		t.Errorf("Expected port from env file, got %d", cfg.Port)
	}
	if cfg.VerifyToken != "from-process-env" {
		t.Errorf("Expected process env to win over env file, got %s", cfg.VerifyToken)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected host from config file, got %s", cfg.Host)
	}
}
