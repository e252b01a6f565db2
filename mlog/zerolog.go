package mlog

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// zeroLogger adapts zerolog to Logger. Notice has no zerolog counterpart and
// is written at info level with notice=true.
type zeroLogger struct {
	level Level
	zl    zerolog.Logger
}

// UseZerolog installs a zerolog backed logger writing to w. With console set
// the output is human readable, otherwise one JSON object per line.
func UseZerolog(w io.Writer, level Level, console bool) {
	SetLogger(newZeroLogger(w, level, console))
}

func newZeroLogger(w io.Writer, level Level, console bool) *zeroLogger {
	if w == nil {
		w = os.Stdout
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{level: level, zl: zl}
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case FatalLevel:
		return zerolog.FatalLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case NoticeLevel, InfoLevel:
		return zerolog.InfoLevel
	case DebugLevel:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}

func (l *zeroLogger) IsLevelEnabled(level Level) bool {
	return l.level >= level
}

func (l *zeroLogger) event(level Level) *zerolog.Event {
	if !l.IsLevelEnabled(level) {
		return nil
	}
	switch level {
	case FatalLevel:
		return l.zl.Fatal()
	case ErrorLevel:
		return l.zl.Error()
	case WarnLevel:
		return l.zl.Warn()
	case NoticeLevel:
		return l.zl.Info().Bool("notice", true)
	case InfoLevel:
		return l.zl.Info()
	case DebugLevel:
		return l.zl.Debug()
	}
	return l.zl.Trace()
}

func (l *zeroLogger) log(level Level, v ...any) {
	if e := l.event(level); e != nil {
		e.Msg(fmt.Sprint(v...))
	}
}

func (l *zeroLogger) logf(level Level, format string, v ...any) {
	if e := l.event(level); e != nil {
		e.Msgf(format, v...)
	}
}

func (l *zeroLogger) Trace(v ...any)                  { l.log(TraceLevel, v...) }
func (l *zeroLogger) Tracef(format string, v ...any)  { l.logf(TraceLevel, format, v...) }
func (l *zeroLogger) Debug(v ...any)                  { l.log(DebugLevel, v...) }
func (l *zeroLogger) Debugf(format string, v ...any)  { l.logf(DebugLevel, format, v...) }
func (l *zeroLogger) Info(v ...any)                   { l.log(InfoLevel, v...) }
func (l *zeroLogger) Infof(format string, v ...any)   { l.logf(InfoLevel, format, v...) }
func (l *zeroLogger) Notice(v ...any)                 { l.log(NoticeLevel, v...) }
func (l *zeroLogger) Noticef(format string, v ...any) { l.logf(NoticeLevel, format, v...) }
func (l *zeroLogger) Warn(v ...any)                   { l.log(WarnLevel, v...) }
func (l *zeroLogger) Warnf(format string, v ...any)   { l.logf(WarnLevel, format, v...) }
func (l *zeroLogger) Error(v ...any)                  { l.log(ErrorLevel, v...) }
func (l *zeroLogger) Errorf(format string, v ...any)  { l.logf(ErrorLevel, format, v...) }
func (l *zeroLogger) Fatal(v ...any)                  { l.log(FatalLevel, v...) }
func (l *zeroLogger) Fatalf(format string, v ...any)  { l.logf(FatalLevel, format, v...) }
