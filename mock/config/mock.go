package config

import (
	"path/filepath"
	"testing"

	xconf "github.com/Calnunes/ZK-Access-Control-System/common/config"
	"github.com/Calnunes/ZK-Access-Control-System/common/utils"
	"github.com/Calnunes/ZK-Access-Control-System/logger"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
	"github.com/Calnunes/ZK-Access-Control-System/storage/leveldb"
)

var dir = utils.GetCurFileDir()

// GetMockEnvConf loads conf/env.yaml of this package, or paths[0] relative to it,
// rooted at this package directory.
func GetMockEnvConf(paths ...string) (*xconf.EnvConf, error) {
	path := "conf/env.yaml"
	if len(paths) > 0 {
		path = paths[0]
	}
	econf, err := xconf.LoadEnvConf(filepath.Join(dir, path))
	if err != nil {
		return nil, err
	}
	econf.RootPath = dir
	return econf, nil
}

func GetLogConfFilePath() string {
	return filepath.Join(dir, "conf/log.yaml")
}

func GetLedgerConfFilePath() string {
	return filepath.Join(dir, "conf/ledger.yaml")
}

func InitFakeLogger() {
	logger.InitMLog(GetLogConfFilePath(), filepath.Join(dir, "data/logger"))
}

// NewFakeLogger initializes the global log once and returns a logger for subMod.
func NewFakeLogger(subMod string) logger.Logger {
	InitFakeLogger()
	log, err := logger.NewLogger("", subMod)
	if err != nil {
		panic(err)
	}
	return log
}

// NewMemDatabase returns an in-memory leveldb closed when tb finishes.
func NewMemDatabase(tb testing.TB) storage.Database {
	tb.Helper()
	db, err := leveldb.NewMemDatabase()
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(db.Close)
	return db
}
