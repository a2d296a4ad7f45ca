package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvConf(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "env.yaml")
	content := []byte("rootPath: " + dir + "\n" +
		"dataDir: mydata\n" +
		"keyDir: mykeys\n" +
		"metricSwitch: true\n")
	if err := os.WriteFile(cfgFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	econf, err := LoadEnvConf(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if econf.RootPath != dir {
		t.Fatalf("root path want %s got %s", dir, econf.RootPath)
	}
	if econf.DataDir != "mydata" || econf.KeyDir != "mykeys" {
		t.Fatalf("unexpected dirs: %+v", econf)
	}
	if !econf.MetricSwitch {
		t.Fatal("metric switch should be enabled")
	}
	// 未配置的字段保持默认值
	if econf.LogConf != "log.yaml" || econf.StateDir != "state" {
		t.Fatalf("defaults lost: %+v", econf)
	}
	if got := econf.GenDataAbsPath("x"); got != filepath.Join(dir, "mydata", "x") {
		t.Fatalf("unexpected data path %s", got)
	}
}

func TestLoadEnvConfMissingFile(t *testing.T) {
	_, err := LoadEnvConf(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvConfEnvOverride(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(cfgFile, []byte("dataDir: mydata\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTEST_DATADIR", "other")
	t.Setenv(EnvRootPath, dir)

	econf, err := LoadEnvConf(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if econf.DataDir != "other" || econf.RootPath != dir {
		t.Fatalf("env override not applied: %+v", econf)
	}
}
