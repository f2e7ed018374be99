package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
)

var shellCommands = []string{
	"login", "register", "logout", "status", "refresh", "reset-password",
	"update-password", "can", "open", "roles", "help", "exit",
}

// shell runs an interactive prompt until exit, EOF or ctx is cancelled.
func (a *app) shell(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, c := range shellCommands {
			if strings.HasPrefix(c, strings.ToLower(input)) {
				out = append(out, c)
			}
		}
		return out
	})

	historyPath := a.historyPath()
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer a.saveHistory(line, historyPath)

	a.println(usage)
	for ctx.Err() == nil {
		input, err := line.Prompt(a.cfg.GetAppName() + "> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := strings.Fields(input)
		if len(args) == 0 {
			continue
		}
		line.AppendHistory(input)
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := a.execute(ctx, line, args); err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			a.println("! " + err.Error())
		}
	}
	return nil
}

func (a *app) historyPath() string {
	return filepath.Join(filepath.Dir(a.cfg.GetStorePath()), "history")
}

func (a *app) saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Debug().Err(err).Msg("could not save shell history")
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
