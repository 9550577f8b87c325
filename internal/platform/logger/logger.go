package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Logger es la interfaz que reciben repositorios, adapters y router.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Out por defecto es os.Stdout. En tests se inyecta un buffer.
	Out io.Writer
}

// sink comparte writer + mutex entre todos los loggers derivados con With.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

type stdLogger struct {
	sink   *sink
	level  Level
	format Format
	base   map[string]any
	now    func() time.Time
}

func New(opts Options) Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	format := opts.Format
	if format == "" {
		format = FormatText
	}

	base := map[string]any{}
	if app := strings.TrimSpace(opts.App); app != "" {
		base["app"] = app
	}

	return &stdLogger{
		sink:   &sink{out: out},
		level:  opts.Level,
		format: format,
		base:   base,
		now:    time.Now,
	}
}

func (l *stdLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) != "" {
			merged[k] = v
		}
	}

	cp := *l
	cp.base = merged
	return &cp
}

func (l *stdLogger) Debug(msg string, fields map[string]any) { l.write(Debug, msg, fields) }
func (l *stdLogger) Info(msg string, fields map[string]any)  { l.write(Info, msg, fields) }
func (l *stdLogger) Warn(msg string, fields map[string]any)  { l.write(Warn, msg, fields) }
func (l *stdLogger) Error(msg string, fields map[string]any) { l.write(Error, msg, fields) }

func (l *stdLogger) write(lvl Level, msg string, fields map[string]any) {
	if lvl < l.level {
		return
	}

	entry := make(map[string]any, len(l.base)+len(fields)+3)
	for k, v := range l.base {
		entry[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) != "" {
			entry[k] = v
		}
	}
	entry["ts"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = lvl.String()
	entry["msg"] = msg

	var line string
	if l.format == FormatJSON {
		b, err := json.Marshal(entry)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"level": lvl.String(), "msg": msg, "log_error": err.Error()})
		}
		line = string(b)
	} else {
		line = formatText(entry)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line+"\n")
}

// formatText ordena las keys para que la salida sea estable.
func formatText(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		v := fmt.Sprint(m[k])
		if strings.ContainsAny(v, " \t\"=") {
			v = fmt.Sprintf("%q", v)
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	return sb.String()
}

type nop struct{}

// Nop descarta todo. Útil como default y en tests.
func Nop() Logger { return nop{} }

func (n nop) With(map[string]any) Logger   { return n }
func (nop) Debug(string, map[string]any) {}
func (nop) Info(string, map[string]any)  {}
func (nop) Warn(string, map[string]any)  {}
func (nop) Error(string, map[string]any) {}
