package main

import (
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/reusee/relic/debugs"
)

func newReadLine() (debugs.ReadLine, func(), error) {
	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".relic_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "dbg> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		return nil, nil, wrap(err)
	}
	return rl.Readline, func() {
		rl.Close()
	}, nil
}
