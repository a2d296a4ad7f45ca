package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

var (
	logIdMu   sync.Mutex
	logIdRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// FileIsExist 判断文件或目录是否存在
func FileIsExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// GetCurFileDir returns the directory of the caller's source file.
func GetCurFileDir() string {
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}

// GetCurRootDir returns the parent of the directory holding the running binary.
func GetCurRootDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(filepath.Dir(exe))
}

// GenLogId 生成日志id：时间戳(微秒) + 随机数
func GenLogId() string {
	logIdMu.Lock()
	r := logIdRand.Int63n(1 << 30)
	logIdMu.Unlock()
	return fmt.Sprintf("%d_%d", time.Now().UnixNano()/1e3, r)
}

// GetFuncCall returns "file:line" and the function name `callDepth` frames up.
func GetFuncCall(callDepth int) (string, string) {
	pc, file, line, ok := runtime.Caller(callDepth)
	if !ok {
		return "???:0", "???"
	}

	funcName := "???"
	if f := runtime.FuncForPC(pc); f != nil {
		funcName = filepath.Ext(f.Name())
		if len(funcName) > 0 {
			funcName = funcName[1:]
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line), funcName
}
