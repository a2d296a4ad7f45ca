package logger

import (
	"fmt"

	"github.com/Calnunes/ZK-Access-Control-System/common/config"
)

// LogConf is the log envconfig of node
type LogConf struct {
	Module   string `yaml:"module,omitempty"`
	Filename string `yaml:"filename,omitempty"`
	// 日志格式：logfmt、json
	Fmt string `yaml:"fmt,omitempty"`
	// 日志输出级别：debug、trace、info、warn、error
	Level string `yaml:"level,omitempty"`
	// 单个日志文件切割大小（单位：MB）
	RotateSize int `yaml:"rotateSize,omitempty"`
	// 保留的历史日志文件个数
	RotateBackups int `yaml:"rotateBackups,omitempty"`
	// 历史日志保留天数
	RotateMaxAge int `yaml:"rotateMaxAge,omitempty"`
	// 是否输出到标准输出
	Console bool `yaml:"console,omitempty"`
	// 设置日志模式是否是异步
	Async bool `yaml:"async,omitempty"`
	// 设置异步模式下缓冲区大小
	BufSize int `yaml:"bufSize,omitempty"`
}

func LoadLogConf(cfgFile string) (*LogConf, error) {
	cfg := GetDefLogConf()
	err := config.LoadYamlConf(cfgFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("load log envconfig failed.err:%s", err)
	}

	return cfg, nil
}

func GetDefLogConf() *LogConf {
	return &LogConf{
		Module:        "attest",
		Filename:      "attest",
		Fmt:           "logfmt",
		Level:         "debug",
		RotateSize:    128,
		RotateBackups: 24,
		RotateMaxAge:  7,
		Console:       true,
		Async:         false,
		BufSize:       102400,
	}
}
