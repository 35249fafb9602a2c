package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	mankai "github.com/grastello/Mankai/core"
	"github.com/grastello/Mankai/session"
)

const continuationPrompt = "...> "

func repl(in *mankai.Interpreter, cfg Config) error {
	var store *session.Store
	if cfg.DB != "" {
		var err error
		store, err = session.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := restore(in, store); err != nil {
			return err
		}
		in.OnDefine = func(name string, val mankai.Value) {
			if err := store.SaveBinding(name, val); err != nil {
				log.Printf("save binding %s: %v", name, err)
			}
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetWordCompleter(func(l string, pos int) (string, []string, string) {
		return completeWord(in.Env, l, pos)
	})

	if cfg.History != "" {
		if f, err := os.Open(cfg.History); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	var pending strings.Builder
	for {
		prompt := cfg.Prompt
		if pending.Len() > 0 {
			prompt = continuationPrompt
		}
		text, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			pending.Reset()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}

		pending.WriteString(text)
		pending.WriteString("\n")
		src := pending.String()
		forms, err := mankai.ParseAll(src)
		if errors.Is(err, mankai.ErrIncomplete) {
			continue
		}
		pending.Reset()
		if strings.TrimSpace(src) != "" {
			line.AppendHistory(strings.TrimSpace(src))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		for _, form := range forms {
			trace, val, err := in.EvalTraced(form)
			if store != nil {
				if rerr := store.RecordTrace(*trace); rerr != nil {
					log.Printf("record trace: %v", rerr)
				}
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println(val)
		}
	}

	if cfg.History != "" {
		f, err := os.Create(cfg.History)
		if err != nil {
			log.Printf("write history: %v", err)
		} else {
			line.WriteHistory(f)
			f.Close()
		}
	}
	if store != nil {
		if err := store.SaveBindings(in.Env.Bindings()); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// restore seeds in with the bindings recorded in store, skipping names
// that are now reserved.
func restore(in *mankai.Interpreter, store *session.Store) error {
	bindings, err := store.LoadBindings()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	for name, val := range bindings {
		if in.Env.IsReserved(name) {
			continue
		}
		in.Env.Define(name, val)
	}
	return nil
}

// completeWord completes the identifier under the cursor against special
// forms, native functions, constants and current bindings.
func completeWord(env *mankai.Environment, l string, pos int) (string, []string, string) {
	r := []rune(l)
	start := pos
	for start > 0 && !strings.ContainsRune(" \t()\"", r[start-1]) {
		start--
	}
	prefix := string(r[start:pos])
	if prefix == "" {
		return string(r[:pos]), nil, string(r[pos:])
	}

	var matches []string
	for _, name := range completionNames(env) {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return string(r[:start]), matches, string(r[pos:])
}

func completionNames(env *mankai.Environment) []string {
	names := append(env.ReservedNames(), env.Names()...)
	sort.Strings(names)
	return names
}
