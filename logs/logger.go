package logs

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/reusee/relic/cmds"
	"github.com/reusee/relic/modes"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
	"github.com/xyproto/env/v2"
)

var level = new(slog.LevelVar)

func init() {
	if str := env.Str("LOG_LEVEL"); str != "" {
		if l, err := parseLevel(str); err == nil {
			level.Set(l)
		}
	}

	cmds.Define("-log-debug", cmds.Func(func() {
		level.Set(slog.LevelDebug)
	}).Desc("set log level to debug"))
	cmds.Define("-log-info", cmds.Func(func() {
		level.Set(slog.LevelInfo)
	}).Desc("set log level to info"))
	cmds.Define("-log-warn", cmds.Func(func() {
		level.Set(slog.LevelWarn)
	}).Desc("set log level to warn"))
	cmds.Define("-log-error", cmds.Func(func() {
		level.Set(slog.LevelError)
	}).Desc("set log level to error"))
}

type Logger = *slog.Logger

// parseLevel accepts slog level names and the WARNING spelling.
func parseLevel(str string) (slog.Level, error) {
	str = strings.ToUpper(strings.TrimSpace(str))
	if str == "WARNING" {
		str = "WARN"
	}
	var l slog.Level
	err := l.UnmarshalText([]byte(str))
	return l, err
}

func SetLevel(l slog.Level) {
	level.Set(l)
}

// Logger writes text to Writer unless running as a systemd service, and to the
// journal when one is reachable. Development mode adds source locations and
// leaves the journal alone.
func (Module) Logger(
	writer Writer,
	mode modes.Mode,
) Logger {
	var handlers []slog.Handler
	development := mode == modes.ModeDevelopment

	isSystemdService := false
	cgroupPath, err := getCgroupPath()
	if err == nil && !development {
		isSystemdService = strings.HasSuffix(
			path.Dir(cgroupPath),
			".service",
		)
	}

	// local
	var terminalHandler slog.Handler
	if !isSystemdService {
		terminalHandler = slog.NewTextHandler(
			writer,
			&slog.HandlerOptions{
				Level:     level,
				AddSource: development,
			},
		)
		handlers = append(handlers, terminalHandler)
	}

	if development {
		return slog.New(&Handler{
			Handler: slogmulti.Fanout(handlers...),
		})
	}

	// systemd journal
	journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		if terminalHandler != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		}
	} else {
		handlers = append(handlers, journalHandler)
	}

	return slog.New(&Handler{
		Handler: slogmulti.Fanout(handlers...),
	})
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	str = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
	return str
}

func getCgroupPath() (string, error) {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	parts := strings.Split(string(content), ":")
	if len(parts) >= 3 {
		return parts[2], nil
	}
	return "", nil
}
