/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 30 13:41:33 2017 mstenber
 * Last modified: Mon Oct 12 10:02:41 2026 mstenber
 * Edit time:     121 min
 *
 */

// mlog is maybe-log, or Markus' log. It is a small wrapper of
// standard 'log' used for tracing actor calls and tree surgery:
//
// - environment-variable (MLOG) and 'flag' (-mlog) based choice of
// what to print, as a regular expression matched against the file tag
// given to Printf2 (or the caller's file name in Printf). What is not
// printed costs next to nothing; by default, everything is off.
//
// - call stack depth is used to indent the output, so nested calls
// between actors are visible at a glance.
package mlog

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fingon/go-actree/util/gid"
)

var logMode = log.Ltime | log.Lmicroseconds
var logger = log.New(os.Stderr, "", logMode)

const (
	StateUninitialized int32 = iota
	StateInitializing
	StateDisabled
	StateEnabled
)

// status is accessed only atomically
var status int32 = StateUninitialized

var mutex sync.Mutex

// Everything else must be used only with mutex held
var flagPattern *string
var pattern string
var patternRegexp *regexp.Regexp
var file2Debug map[string]bool
var minDepth int
var callers []uintptr

const maxDepth = 100

// DumpGids controls whether the goroutine id is prefixed to the
// output. Actor calls run in their own goroutines, so it is on by
// default.
var DumpGids = true

func init() {
	flagPattern = flag.String("mlog", "", "Enable logging based on the given file regular expression")
	Reset()
}

// Reset resets the module to its factory default state. The first
// subsequent log call re-reads MLOG / -mlog.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	atomic.StoreInt32(&status, StateUninitialized)
	minDepth = maxDepth
	callers = make([]uintptr, maxDepth)
}

// IsEnabled can be used to check if mlog is in use at all before
// doing something expensive (such as dumping a whole node).
func IsEnabled() bool {
	st := atomic.LoadInt32(&status)
	return st != StateDisabled
}

// SetLogger overrides the logger used as output. The returned undo
// function restores the previous one.
func SetLogger(l *log.Logger) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	oldLogger := logger
	logger = l
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = oldLogger
	}
}

// SetPattern sets the pattern by hand, overriding the environment
// and flag provided values. The returned undo function restores the
// previous pattern.
func SetPattern(p string) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	oldPattern := pattern
	initializeWithPattern(p)
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		initializeWithPattern(oldPattern)
	}
}

func initializeWithPattern(p string) {
	pattern = p
	if p == "" {
		atomic.StoreInt32(&status, StateDisabled)
		return
	}
	patternRegexp = regexp.MustCompile(p)
	file2Debug = make(map[string]bool)
	atomic.StoreInt32(&status, StateEnabled)
}

func initialize() {
	if !atomic.CompareAndSwapInt32(&status, StateUninitialized, StateInitializing) {
		return
	}
	p := os.Getenv("MLOG")
	if flagPattern != nil && *flagPattern != "" {
		p = *flagPattern
	}
	initializeWithPattern(p)
}

// Printf is drop-in replacement of log.Printf. It does
// runtime.Caller() to find the file tag if MLOG is enabled at all,
// so Printf2 is preferable in anything that is called often.
func Printf(format string, args ...interface{}) {
	st := atomic.LoadInt32(&status)
	if st == StateDisabled {
		return
	}
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	Printf2(file, format, args...)
}

// Printf2 is the premier choice instead of Printf. It is supplied
// with the tag of the file (e.g. "bptree/node"), and therefore has
// no runtime penalty to speak of when MLOG matches only some files.
func Printf2(file string, format string, args ...interface{}) {
	st := atomic.LoadInt32(&status)
	if st == StateDisabled {
		return
	}
	mutex.Lock()
	defer mutex.Unlock()
	if st < StateDisabled {
		initialize()
		st = atomic.LoadInt32(&status)
		if st <= StateDisabled {
			return
		}
	}
	debug, ok := file2Debug[file]
	if !ok {
		debug = patternRegexp.MatchString(file)
		file2Debug[file] = debug
	}
	if !debug {
		return
	}
	depth := runtime.Callers(1, callers)
	if depth < minDepth {
		minDepth = depth
	}
	depth -= minDepth
	if depth > 0 {
		format = fmt.Sprint(strings.Repeat(".", depth), format)
	}
	if DumpGids {
		format = fmt.Sprintf("%8d %s", gid.GetGoroutineID(), format)
	}
	logger.Printf(format, args...)
}

// Panicf logs the message (always, regardless of pattern) and
// panics. It is used for broken internal invariants only.
func Panicf(format string, args ...interface{}) {
	mutex.Lock()
	l := logger
	mutex.Unlock()
	l.Panicf(format, args...)
}
