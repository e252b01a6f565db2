package mlog

import (
	"strings"
	"sync/atomic"
)

type Logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Notice(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Fatal(v ...any)

	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Noticef(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	Fatalf(format string, v ...any)

	IsLevelEnabled(level Level) bool
}

type holder struct {
	l Logger
}

// 未设置 logger 时所有输出都被丢弃
var logger atomic.Pointer[holder]

func SetLogger(l Logger) {
	if l == nil {
		logger.Store(nil)
		return
	}
	logger.Store(&holder{l: l})
}

func current() Logger {
	if h := logger.Load(); h != nil {
		return h.l
	}
	return nil
}

func UseStdLogger(level Level) {
	SetLogger(newStdoutLogger(level))
}

type Level uint32

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	NoticeLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// ParseLevel maps a level name to a Level, falling back to def for unknown names.
func ParseLevel(s string, def Level) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarnLevel
	case "notice":
		return NoticeLevel
	case "info":
		return InfoLevel
	case "debug":
		return DebugLevel
	case "trace":
		return TraceLevel
	}
	return def
}

func (lv Level) String() string {
	switch lv {
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case NoticeLevel:
		return "notice"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case TraceLevel:
		return "trace"
	}
	return "unknown"
}

// IsLevelEnabled reports whether the installed logger would emit level.
// Callers use it to skip building expensive arguments.
func IsLevelEnabled(level Level) bool {
	l := current()
	return l != nil && l.IsLevelEnabled(level)
}

func Tracef(format string, a ...any) {
	if l := current(); l != nil {
		l.Tracef(format, a...)
	}
}

func Debugf(format string, a ...any) {
	if l := current(); l != nil {
		l.Debugf(format, a...)
	}
}

func Info(a ...any) {
	if l := current(); l != nil {
		l.Info(a...)
	}
}

func Infof(format string, a ...any) {
	if l := current(); l != nil {
		l.Infof(format, a...)
	}
}

func Warnf(format string, a ...any) {
	if l := current(); l != nil {
		l.Warnf(format, a...)
	}
}

func Errorf(format string, a ...any) {
	if l := current(); l != nil {
		l.Errorf(format, a...)
	}
}
