package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/Calnunes/ZK-Access-Control-System/common/utils"
)

// Reserve base key
const (
	CommFieldLogId   = "logid"
	CommFieldSubMod  = "submod"
	CommFieldPid     = "pid"
	CommFieldCall    = "call"
	DefaultCallDepth = 4
)

// Lvl is a type for predefined log levels.
type Lvl int

// List of predefined log Levels
const (
	LvlFatal Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
)

var lvlNames = map[string]Lvl{
	"fatal": LvlFatal,
	"error": LvlError,
	"warn":  LvlWarn,
	"info":  LvlInfo,
	"debug": LvlDebug,
}

var (
	logHandle LogDriver
	logConf   *LogConf
	once      sync.Once // 日志实例采用单例模式
	lock      sync.RWMutex
)

// LvlFromString maps a config level name to Lvl, unknown names log everything.
func LvlFromString(lvlString string) Lvl {
	if lvl, ok := lvlNames[lvlString]; ok {
		return lvl
	}
	return LvlDebug
}

// LogDriver 底层日志库约束接口
type LogDriver interface {
	Write(lvl Lvl, msg string, ctx ...interface{})
}

type Logger interface {
	GetLogId() string
	SetCommField(key string, value interface{})
	SetInfoField(key string, value interface{})
	Fatal(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

type LoggerImpl struct {
	driver    LogDriver
	logId     string
	subMod    string
	pid       int
	callDepth int
	minLvl    Lvl

	mu         sync.Mutex
	commFields []interface{}
	// attached to the next Info record only
	infoFields []interface{}
}

func InitMLog(cfgFile, logDir string) {
	cfg, err := LoadLogConf(cfgFile)
	if err != nil {
		panic(fmt.Sprintf("Load log envconfig fail.path:%s err:%s", cfgFile, err))
	}
	InitMLogWithConf(cfg, logDir)
}

// InitMLogWithConf initializes the global log handle from an already loaded config.
// Only the first call takes effect.
func InitMLogWithConf(cfg *LogConf, logDir string) {
	lock.Lock()
	defer lock.Unlock()

	once.Do(func() {
		lg, err := OpenMLog(cfg, logDir)
		if err != nil {
			panic(fmt.Sprintf("Open log fail.dir:%s err:%s", logDir, err))
		}
		logConf, logHandle = cfg, lg
	})
}

// NewLogger 使用NewLogger请先调用InitMLog全局初始化
func NewLogger(logId, subMod string) (*LoggerImpl, error) {
	lock.RLock()
	defer lock.RUnlock()
	if logConf == nil || logHandle == nil {
		return nil, fmt.Errorf("log not init")
	}

	if logId == "" {
		logId = utils.GenLogId()
	}
	if subMod == "" {
		subMod = logConf.Module
	}
	return &LoggerImpl{
		driver:    logHandle,
		logId:     logId,
		subMod:    subMod,
		pid:       os.Getpid(),
		callDepth: DefaultCallDepth,
		minLvl:    LvlFromString(logConf.Level),
	}, nil
}

func (t *LoggerImpl) GetLogId() string {
	return t.logId
}

func (t *LoggerImpl) SetCommField(key string, value interface{}) {
	if key == "" || value == nil {
		return
	}
	t.mu.Lock()
	t.commFields = append(t.commFields, key, value)
	t.mu.Unlock()
}

func (t *LoggerImpl) SetInfoField(key string, value interface{}) {
	if key == "" || value == nil {
		return
	}
	t.mu.Lock()
	t.infoFields = append(t.infoFields, key, value)
	t.mu.Unlock()
}

func (t *LoggerImpl) Fatal(msg string, ctx ...interface{}) { t.write(LvlFatal, msg, ctx) }
func (t *LoggerImpl) Error(msg string, ctx ...interface{}) { t.write(LvlError, msg, ctx) }
func (t *LoggerImpl) Warn(msg string, ctx ...interface{})  { t.write(LvlWarn, msg, ctx) }
func (t *LoggerImpl) Info(msg string, ctx ...interface{})  { t.write(LvlInfo, msg, ctx) }
func (t *LoggerImpl) Debug(msg string, ctx ...interface{}) { t.write(LvlDebug, msg, ctx) }

func (t *LoggerImpl) write(lvl Lvl, msg string, ctx []interface{}) {
	if t == nil || t.driver == nil || lvl > t.minLvl {
		return
	}
	t.driver.Write(lvl, msg, t.fields(lvl, ctx)...)
}

// fields orders the record as base fields, common fields, info fields, then ctx.
// A leading logid pair in ctx overrides the logger's own id.
func (t *LoggerImpl) fields(lvl Lvl, ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx[:len(ctx)-1:len(ctx)-1], "unknow", ctx[len(ctx)-1])
	}

	logId := interface{}(t.logId)
	if len(ctx) > 1 && fmt.Sprintf("%v", ctx[0]) == CommFieldLogId {
		logId, ctx = ctx[1], ctx[2:]
	}
	fileLine, _ := utils.GetFuncCall(t.callDepth)
	out := []interface{}{
		CommFieldLogId, logId,
		CommFieldSubMod, t.subMod,
		CommFieldCall, fileLine,
		CommFieldPid, t.pid,
	}

	t.mu.Lock()
	out = append(out, t.commFields...)
	if lvl == LvlInfo {
		out = append(out, t.infoFields...)
		t.infoFields = t.infoFields[:0]
	}
	t.mu.Unlock()
	return append(out, ctx...)
}
