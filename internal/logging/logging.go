package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logs go to stderr: stdout belongs to command output (effect lists,
// alfred JSON) that other tools parse.
var cfg = zap.Config{
	Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
	Development: false,
	Encoding:    "console",
	EncoderConfig: zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	},
	OutputPaths:      []string{"stderr"},
	ErrorOutputPaths: []string{"stderr"},
}

var (
	mu     sync.Mutex
	levels = make(map[string]zap.AtomicLevel)
	base   = zap.InfoLevel
)

// New builds a named sugared logger. Each name keeps its own atomic level so
// verbosity can be raised after the logger has been handed out.
func New(name string) *zap.SugaredLogger {
	c := cfg
	c.Level = levelFor(name)
	return zap.Must(c.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
}

// SetLevel adjusts every known logger and the default for future ones.
func SetLevel(level zapcore.Level) {
	mu.Lock()
	defer mu.Unlock()

	base = level
	for _, l := range levels {
		l.SetLevel(level)
	}
}

func levelFor(name string) zap.AtomicLevel {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := levels[name]; ok {
		return l
	}
	levels[name] = zap.NewAtomicLevelAt(base)
	return levels[name]
}
