package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frontier-tools/solarmap/internal/testutil"
	"github.com/frontier-tools/solarmap/pkg/collector"
	"github.com/frontier-tools/solarmap/pkg/sink"
)

func testAppConfig(baseURL, output string) appConfig {
	return appConfig{
		baseURL:   baseURL,
		output:    output,
		pageLimit: 100,
		userAgent: "solarmap-test/0.0.0",
		logLevel:  "error",
	}
}

func TestRun_Success(t *testing.T) {
	mock := testutil.NewMockGateway(testutil.MakeSystems(250))
	defer mock.Close()

	output := filepath.Join(t.TempDir(), "mapping.json")
	var out bytes.Buffer

	code := run(testAppConfig(mock.URL(), output), &out)
	if code != 0 {
		t.Fatalf("run() = %d, want 0; output: %s", code, out.String())
	}

	if !strings.Contains(out.String(), "Created mapping with 250 solar systems.") {
		t.Errorf("summary missing count: %q", out.String())
	}
	if !strings.Contains(out.String(), "'System-0000' -> 30000000") {
		t.Errorf("summary missing sample: %q", out.String())
	}
	if !strings.Contains(out.String(), "...") {
		t.Errorf("summary missing ellipsis for >5 entries: %q", out.String())
	}

	loaded, err := sink.Load(output)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 250 {
		t.Errorf("persisted mapping size = %d, want 250", loaded.Len())
	}
}

func TestRun_TotalFailure(t *testing.T) {
	mock := testutil.NewMockGateway(testutil.MakeSystems(250))
	defer mock.Close()
	mock.FailAt(0, -1, 404) // client error: fails fast without backoff

	output := filepath.Join(t.TempDir(), "mapping.json")
	var out bytes.Buffer

	code := run(testAppConfig(mock.URL(), output), &out)
	if code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}

	if !strings.Contains(out.String(), "Failed to create mapping.") {
		t.Errorf("failure message missing: %q", out.String())
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file expected on total failure")
	}
}

func TestRun_EmptyCollection(t *testing.T) {
	mock := testutil.NewMockGateway(nil)
	defer mock.Close()

	output := filepath.Join(t.TempDir(), "mapping.json")
	var out bytes.Buffer

	code := run(testAppConfig(mock.URL(), output), &out)
	if code != 1 {
		t.Fatalf("run() = %d, want 1 (empty mapping is the failure signal)", code)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file expected for an empty mapping")
	}
}

func TestRun_PartialMappingStillPersisted(t *testing.T) {
	mock := testutil.NewMockGateway(testutil.MakeSystems(250))
	defer mock.Close()
	mock.FailAt(100, -1, 404)

	output := filepath.Join(t.TempDir(), "mapping.json")
	var out bytes.Buffer

	code := run(testAppConfig(mock.URL(), output), &out)
	if code != 1 {
		t.Fatalf("run() = %d, want 1 for an incomplete run", code)
	}

	loaded, err := sink.Load(output)
	if err != nil {
		t.Fatalf("Load() error = %v; the partial mapping should be persisted", err)
	}
	if loaded.Len() != 100 {
		t.Errorf("persisted mapping size = %d, want 100", loaded.Len())
	}
}

func TestPrintSummary_SmallMapping(t *testing.T) {
	m := collector.NewMapping()
	m.Set("Nod", 1)
	m.Set("Gemini", 2)

	var out bytes.Buffer
	printSummary(&out, m)

	if !strings.Contains(out.String(), "Created mapping with 2 solar systems.") {
		t.Errorf("summary = %q", out.String())
	}
	if strings.Contains(out.String(), "...") {
		t.Errorf("no ellipsis expected for <=5 entries: %q", out.String())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "https://gateway.example.com")
	t.Setenv("OUTPUT_FILE", "out.json")
	t.Setenv("PAGE_LIMIT", "50")
	t.Setenv("LOG_PRETTY", "true")

	cfg := configFromEnv()

	if cfg.baseURL != "https://gateway.example.com" {
		t.Errorf("baseURL = %q", cfg.baseURL)
	}
	if cfg.output != "out.json" {
		t.Errorf("output = %q", cfg.output)
	}
	if cfg.pageLimit != 50 {
		t.Errorf("pageLimit = %d", cfg.pageLimit)
	}
	if !cfg.logPretty {
		t.Error("logPretty = false, want true")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("PAGE_LIMIT", "not a number")

	cfg := configFromEnv()

	if cfg.baseURL != "https://blockchain-gateway-stillness.live.tech.evefrontier.com" {
		t.Errorf("baseURL = %q, want default gateway", cfg.baseURL)
	}
	if cfg.output != "solar_systems_mapping.json" {
		t.Errorf("output = %q", cfg.output)
	}
	if cfg.pageLimit != 100 {
		t.Errorf("pageLimit = %d, want 100 fallback", cfg.pageLimit)
	}
}
