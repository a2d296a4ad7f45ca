package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Calnunes/ZK-Access-Control-System/common/utils"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. ATTEST_DATADIR.
	EnvPrefix = "ATTEST"
	// EnvRootPath takes precedence over rootPath in env.yaml.
	EnvRootPath = EnvPrefix + "_ROOT_PATH"
)

// EnvConf locates the config files and data directories of an attest node.
// Relative directories resolve against RootPath.
type EnvConf struct {
	RootPath string `yaml:"rootPath,omitempty"`
	ConfDir  string `yaml:"confDir,omitempty"`
	DataDir  string `yaml:"dataDir,omitempty"`
	LogDir   string `yaml:"logDir,omitempty"`
	// key bundles, under DataDir
	KeyDir string `yaml:"keyDir,omitempty"`
	// ledger state and event log, under DataDir
	StateDir string `yaml:"stateDir,omitempty"`

	LogConf    string `yaml:"logConf,omitempty"`
	LedgerConf string `yaml:"ledgerConf,omitempty"`

	MetricSwitch bool `yaml:"metricSwitch,omitempty"`
}

func GetDefEnvConf() *EnvConf {
	return &EnvConf{
		RootPath:   utils.GetCurRootDir(),
		ConfDir:    "conf",
		DataDir:    "data",
		LogDir:     "logs",
		KeyDir:     "keys",
		StateDir:   "state",
		LogConf:    "log.yaml",
		LedgerConf: "ledger.yaml",
	}
}

// LoadEnvConf reads env.yaml, conf/env.yaml next to the binary when no path is given.
// Root path priority: ATTEST_ROOT_PATH, then the file, then the binary's parent dir.
func LoadEnvConf(cfgFile ...string) (*EnvConf, error) {
	path := filepath.Join(utils.GetCurFileDir(), "conf/env.yaml")
	if len(cfgFile) > 0 {
		path = cfgFile[0]
	}

	cfg := GetDefEnvConf()
	if err := LoadYamlConf(path, cfg); err != nil {
		return nil, fmt.Errorf("load env conf failed.err:%v", err)
	}
	if rt := os.Getenv(EnvRootPath); rt != "" && utils.FileIsExist(rt) {
		cfg.RootPath = rt
	}
	return cfg, nil
}

func (t *EnvConf) GenDirAbsPath(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(t.RootPath, dir)
}

func (t *EnvConf) GenDataAbsPath(dir string) string {
	return filepath.Join(t.GenDirAbsPath(t.DataDir), dir)
}

func (t *EnvConf) GenConfFilePath(fName string) string {
	return filepath.Join(t.GenDirAbsPath(t.ConfDir), fName)
}

// LoadYamlConf decodes cfgFile into out by yaml tag names. Keys present in the
// file can be overridden with ATTEST_<KEY> environment variables.
func LoadYamlConf(cfgFile string, out interface{}) error {
	if cfgFile == "" || !utils.FileIsExist(cfgFile) {
		return fmt.Errorf("conf file not found.path:%s", cfgFile)
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read conf failed.path:%s,err:%v", cfgFile, err)
	}

	err := v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return fmt.Errorf("decode conf failed.path:%s,err:%v", cfgFile, err)
	}
	return nil
}
