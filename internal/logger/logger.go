// Package logger is the emulator's central log. Entries are kept in a bounded
// ring so that recent activity can be printed on demand, and can optionally
// be echoed to a writer as they arrive.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// Tags used by the emulator subsystems.
const (
	TagApp       = "app"
	TagAPU       = "apu"
	TagCartridge = "cartridge"
	TagConsole   = "console"
	TagCPU       = "cpu"
	TagGraphics  = "graphics"
	TagInput     = "input"
	TagMemory    = "memory"
	TagPPU       = "ppu"
)

// maximum number of entries kept by the central logger
const maxCentral = 256

// Entry is a single log event. Consecutive identical events are collapsed
// into one entry with a repeat count.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("[%s] %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	return s.String()
}

type logger struct {
	mu       sync.Mutex
	max      int
	entries  []Entry
	echo     *log.Logger
	disabled map[string]bool
}

var central = newLogger(maxCentral)

func newLogger(max int) *logger {
	return &logger{
		max: max,
		// register writes happen every frame; keep them out of the ring
		// unless asked for
		disabled: map[string]bool{TagAPU: true},
	}
}

func (l *logger) enabled(tag string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.disabled[tag]
}

func (l *logger) log(tag, detail string) {
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled[tag] {
		return
	}

	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		l.entries[n-1].Repeated++
		l.entries[n-1].Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		if len(l.entries) > l.max {
			l.entries = l.entries[len(l.entries)-l.max:]
		}
	}

	if l.echo != nil {
		l.echo.Printf("[%s] %s", tag, detail)
	}
}

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf is the formatted variant of Log. Formatting is skipped for disabled
// tags.
func Logf(tag, format string, args ...interface{}) {
	if !central.enabled(tag) {
		return
	}
	central.log(tag, fmt.Sprintf(format, args...))
}

// Enabled reports whether entries with the tag are recorded.
func Enabled(tag string) bool {
	return central.enabled(tag)
}

// Enable starts recording the named tags.
func Enable(tags ...string) {
	central.mu.Lock()
	defer central.mu.Unlock()
	for _, t := range tags {
		delete(central.disabled, t)
	}
}

// Disable stops recording the named tags.
func Disable(tags ...string) {
	central.mu.Lock()
	defer central.mu.Unlock()
	for _, t := range tags {
		central.disabled[t] = true
	}
}

// SetEcho prints every new entry to output. A nil writer stops the echo.
func SetEcho(output io.Writer) {
	central.mu.Lock()
	defer central.mu.Unlock()
	if output == nil {
		central.echo = nil
		return
	}
	central.echo = log.New(output, "", log.Ltime|log.Lmicroseconds)
}

// Write prints every entry in the log to output.
func Write(output io.Writer) {
	Tail(output, maxCentral)
}

// Tail prints the most recent number of entries to output.
func Tail(output io.Writer, number int) {
	central.mu.Lock()
	defer central.mu.Unlock()

	start := len(central.entries) - number
	if start < 0 {
		start = 0
	}
	for _, e := range central.entries[start:] {
		io.WriteString(output, e.String())
		io.WriteString(output, "\n")
	}
}

// Clear removes every entry.
func Clear() {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.entries = central.entries[:0]
}

// Entries returns a copy of the current log.
func Entries() []Entry {
	central.mu.Lock()
	defer central.mu.Unlock()
	e := make([]Entry, len(central.entries))
	copy(e, central.entries)
	return e
}
