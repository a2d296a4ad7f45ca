package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"

	xconf "github.com/Calnunes/ZK-Access-Control-System/common/config"
	xctx "github.com/Calnunes/ZK-Access-Control-System/common/context"
	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/contract/attest"
	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/contract/kernel"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/keystore"
	"github.com/Calnunes/ZK-Access-Control-System/logger"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
	"github.com/Calnunes/ZK-Access-Control-System/storage/leveldb"
)

var metricsOnce sync.Once

// Runtime holds the configuration and databases of one command run.
type Runtime struct {
	EnvConf    *xconf.EnvConf
	LedgerConf *attest.LedgerConf
	Log        logger.Logger

	keyDB   storage.Database
	stateDB storage.Database
	host    *kernel.Host
}

func NewRuntime(envCfgPath string) (*Runtime, error) {
	envConf, err := xconf.LoadEnvConf(envCfgPath)
	if err != nil {
		return nil, err
	}
	ledgerConf, err := attest.LoadLedgerConf(envConf.GenConfFilePath(envConf.LedgerConf))
	if err != nil {
		return nil, err
	}

	// 初始化日志
	logger.InitMLog(envConf.GenConfFilePath(envConf.LogConf), envConf.GenDirAbsPath(envConf.LogDir))
	log, err := logger.NewLogger("", "attest")
	if err != nil {
		return nil, err
	}
	if envConf.MetricSwitch {
		metricsOnce.Do(metrics.RegisterMetrics)
	}

	r := &Runtime{
		EnvConf:    envConf,
		LedgerConf: ledgerConf,
		Log:        log,
	}
	r.keyDB, err = storage.CreateKVInstance(leveldb.DriverName, envConf.GenDataAbsPath(envConf.KeyDir), nil)
	if err != nil {
		return nil, err
	}
	r.stateDB, err = storage.CreateKVInstance(leveldb.DriverName, envConf.GenDataAbsPath(envConf.StateDir), nil)
	if err != nil {
		r.keyDB.Close()
		return nil, err
	}
	return r, nil
}

func (r *Runtime) Relation() (age.Relation, error) {
	return age.ParseRelation(r.LedgerConf.Relation)
}

func (r *Runtime) Keystore() *keystore.Keystore {
	return keystore.New(r.keyDB, cache.NoExpiration)
}

// Host returns the contract host with the ledger registered. The ledger
// verifies against the configured key bundle.
func (r *Runtime) Host() (*kernel.Host, error) {
	if r.host != nil {
		return r.host, nil
	}
	verifier, err := r.Keystore().LoadVerifier(r.LedgerConf.KeyName)
	if err != nil {
		return nil, fmt.Errorf("load verifier %s, run setup first: %w", r.LedgerConf.KeyName, err)
	}
	host, err := kernel.NewHost(r.stateDB, r.Log)
	if err != nil {
		return nil, err
	}
	attest.NewLedger(verifier).RegisterKernMethods(host.GetKernRegistry())
	r.host = host
	return host, nil
}

func (r *Runtime) Invoke(caller, method string, args map[string][]byte) (*base.Response, error) {
	host, err := r.Host()
	if err != nil {
		return nil, err
	}
	return host.Invoke(xctx.NewBaseCtx(context.Background(), r.Log), &kernel.InvokeRequest{
		Contract: attest.ContractName,
		Method:   method,
		Caller:   caller,
		Args:     args,
	})
}

func (r *Runtime) Close() {
	if r.EnvConf.MetricSwitch {
		dumpMetrics(r)
	}
	r.keyDB.Close()
	r.stateDB.Close()
}
