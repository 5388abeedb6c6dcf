// Package logging provides the leveled logger that scribe passes to its
// generator and server. It is built once at startup; nothing here is global.
package logging

import (
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract used throughout scribe.
// Arguments after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options select the level and output format of the logger.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // console, json, pretty
}

// New creates the root logger.
func New(opts Options) (Logger, error) {
	var options []glog.Option

	switch strings.ToLower(strings.TrimSpace(opts.Level)) {
	case "":
	case "trace":
		options = append(options, glog.WithLevel(glog.Trace))
	case "debug":
		options = append(options, glog.WithLevel(glog.Debug))
	case "info":
		options = append(options, glog.WithLevel(glog.Info))
	case "warn", "warning":
		options = append(options, glog.WithLevel(glog.Warn))
	case "error":
		options = append(options, glog.WithLevel(glog.Error))
	default:
		return nil, fmt.Errorf("logging: unsupported level %q", opts.Level)
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", opts.Format)
	}

	root := glog.NewLogger(options...)
	return &gologger{root: root, inner: root}, nil
}

// Named returns a child logger scoped to name if l supports it, or l itself.
func Named(l Logger, name string) Logger {
	g, ok := l.(*gologger)
	if !ok || name == "" {
		return l
	}
	var inner glog.Logger = g.root.GetLogger(name)
	return &gologger{root: g.root, inner: inner}
}

// gologger adapts go-logger to Logger.
type gologger struct {
	root  *glog.BaseLogger
	inner glog.Logger
}

func (l *gologger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *gologger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *gologger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *gologger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
