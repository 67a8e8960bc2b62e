package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/cache"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[clean]
min_length = 2.5
min_points = 4
prune_degree = [0, 1]

[join]
displacement = 1.5

[export]
scale = 0.5

[cache]
backend = "badger"
dir = "/tmp/skel"
ttl = "1h"
namespace = "lab"

[server]
addr = ":9000"
timeout = "10s"
`)

	cfg, err := loadConfig(path, true, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Clean.MinLength != 2.5 || cfg.Clean.MinPoints != 4 {
		t.Errorf("Clean = %+v", cfg.Clean)
	}
	if !reflect.DeepEqual(cfg.Clean.PruneDegrees, []int{0, 1}) {
		t.Errorf("PruneDegrees = %v, want [0 1]", cfg.Clean.PruneDegrees)
	}
	if cfg.Join.Displacement != 1.5 {
		t.Errorf("Join.Displacement = %v, want 1.5", cfg.Join.Displacement)
	}
	if cfg.Export.Scale != 0.5 {
		t.Errorf("Export.Scale = %v, want 0.5", cfg.Export.Scale)
	}
	if cfg.Cache.Backend != cache.BackendBadger || cfg.Cache.Dir != "/tmp/skel" || cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if got := cfg.Cache.Keyer().StatsKey("abc"); got != "lab:stats:abc" {
		t.Errorf("Cache.Keyer().StatsKey() = %q, want lab:stats:abc", got)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Timeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[join]\ndisplacement = 2\n")

	cfg, err := loadConfig(path, true, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	def := DefaultConfig()
	if !reflect.DeepEqual(cfg.Clean, def.Clean) {
		t.Errorf("Clean = %+v, want defaults %+v", cfg.Clean, def.Clean)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cache.BackendFile)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := loadConfig(missing, false, log.New(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadConfig() implicit missing file error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}

	_, err = loadConfig(missing, true, log.New(&bytes.Buffer{}))
	if code := errs.GetCode(err); code != errs.ErrCodeFileNotFound {
		t.Errorf("loadConfig() explicit missing file code = %q, want %q", code, errs.ErrCodeFileNotFound)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[clean\nmin_points = 3"},
		{"type", "[clean]\nmin_points = \"three\""},
		{"min points", "[clean]\nmin_points = 1"},
		{"negative length", "[clean]\nmin_length = -1"},
		{"negative degree", "[clean]\nprune_degree = [-1]"},
		{"negative displacement", "[join]\ndisplacement = -2"},
		{"scale", "[export]\nscale = -1"},
		{"namespace", "[cache]\nnamespace = \"a/b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content), true, log.New(&bytes.Buffer{}))
			if code := errs.GetCode(err); code != errs.ErrCodeInvalidConfig {
				t.Errorf("loadConfig() code = %q, want %q (err %v)", code, errs.ErrCodeInvalidConfig, err)
			}
		})
	}
}

func TestLoadConfigUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[clean]\nmin_points = 5\nmin_lenght = 2\n")

	var buf bytes.Buffer
	cfg, err := loadConfig(path, true, log.New(&buf))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Clean.MinPoints != 5 {
		t.Errorf("MinPoints = %d, want 5", cfg.Clean.MinPoints)
	}
	if !strings.Contains(buf.String(), "clean.min_lenght") {
		t.Errorf("log = %q, want the unknown key reported", buf.String())
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, configFileName)
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	want = filepath.Join(home, ".config", appName, configFileName)
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
