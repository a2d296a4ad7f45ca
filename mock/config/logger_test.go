package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/Calnunes/ZK-Access-Control-System/logger"
)

func TestInfo(t *testing.T) {
	InitFakeLogger()

	wg := &sync.WaitGroup{}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(num int) {
			defer wg.Done()
			log, err := logger.NewLogger("", "test"+strconv.Itoa(num))
			if err != nil {
				t.Errorf("new logger fail.err:%v", err)
				return
			}
			log.SetInfoField("test key", num)
			log.Info("test info", "a", true, "b", 1, "num", num)
			log.Debug("test debug", "a", 1, "b", 2, "c", 3, "num", num)
			log.Warn("test warn", "num", num)
			log.Fatal("test fatal", "a", 1, "b", 2, "c", 3, "num", num)
		}(i)
	}
	wg.Wait()

	if _, err := os.Stat(filepath.Join(dir, "data/logger", "attest.log")); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestMockEnvConf(t *testing.T) {
	econf, err := GetMockEnvConf()
	if err != nil {
		t.Fatal(err)
	}
	if econf.KeyDir != "keys" || econf.LedgerConf != "ledger.yaml" {
		t.Fatalf("unexpected env conf %+v", econf)
	}
	if got := econf.GenConfFilePath(econf.LedgerConf); got != GetLedgerConfFilePath() {
		t.Fatalf("conf path %s, want %s", got, GetLedgerConfFilePath())
	}
}

func TestRemoveDir(t *testing.T) {
	logDir := filepath.Join(dir, "data")
	if err := os.RemoveAll(logDir); err != nil {
		t.Errorf("remove dir fail.err:%v", err)
	}
}
