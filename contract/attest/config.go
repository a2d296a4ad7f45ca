package attest

import (
	"fmt"

	"github.com/Calnunes/ZK-Access-Control-System/common/config"
)

// LedgerConf is the ledger deployment config.
type LedgerConf struct {
	Name   string `yaml:"name,omitempty"`
	Symbol string `yaml:"symbol,omitempty"`
	// IDBase is the identifier of the first attestation
	IDBase uint32 `yaml:"idBase,omitempty"`
	// Relation proved by holders: threshold or square
	Relation string `yaml:"relation,omitempty"`
	// KeyName selects the key bundle in the keystore
	KeyName string `yaml:"keyName,omitempty"`
	// Admin is the identity that initializes the ledger
	Admin string `yaml:"admin,omitempty"`
}

func LoadLedgerConf(cfgFile string) (*LedgerConf, error) {
	cfg := GetDefLedgerConf()
	err := config.LoadYamlConf(cfgFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("load ledger envconfig failed.err:%s", err)
	}
	return cfg, nil
}

func GetDefLedgerConf() *LedgerConf {
	return &LedgerConf{
		Name:     "Age Verification Token",
		Symbol:   "AGE",
		IDBase:   0,
		Relation: "threshold",
		KeyName:  "default",
		Admin:    "admin",
	}
}
