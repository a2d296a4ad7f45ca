package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogging(t *testing.T) {
	tmpdir := t.TempDir()

	conf := GetDefLogConf()
	conf.Console = false
	conf.Level = "info"
	InitMLogWithConf(conf, tmpdir)

	log, err := NewLogger("", "test")
	if err != nil {
		t.Fatal(err)
	}
	log.SetCommField("ledger", "attest")
	log.SetInfoField("once", "yes")
	log.Info("mint attestation", "id", 7)
	log.Debug("dropped by level filter")
	log.Warn("verification rejected", "caller", "bob")

	body, err := os.ReadFile(filepath.Join(tmpdir, conf.Filename+".log"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(body)
	for _, want := range []string{"mint attestation", "verification rejected", "ledger", "once"} {
		if !strings.Contains(text, want) {
			t.Fatalf("log file misses %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "dropped by level filter") {
		t.Fatal("debug record should be filtered")
	}

	wf, err := os.ReadFile(filepath.Join(tmpdir, conf.Filename+".log.wf"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(wf), "mint attestation") || !strings.Contains(string(wf), "verification rejected") {
		t.Fatalf("wf log should only hold warn and above:\n%s", wf)
	}
}

func TestLvlFromString(t *testing.T) {
	cases := map[string]Lvl{"fatal": LvlFatal, "error": LvlError, "warn": LvlWarn, "info": LvlInfo, "xx": LvlDebug}
	for in, want := range cases {
		if got := LvlFromString(in); got != want {
			t.Fatalf("LvlFromString(%s) = %d, want %d", in, got, want)
		}
	}
}

func BenchmarkMLogging(b *testing.B) {
	conf := GetDefLogConf()
	conf.Console = false
	log, err := OpenMLog(conf, b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	logHandle = log
	logConf = conf

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l, _ := NewLogger("", "test")
			l.Info("test logging benchmark", "key1", "k1", "key2", "k2")
		}
	})
}
