package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterh/liner"

	mankai "github.com/grastello/Mankai/core"
	"github.com/grastello/Mankai/session"
)

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "serve" {
		serve(cfg)
		return
	}

	in := mankai.NewInterpreter()
	in.MaxDepth = cfg.MaxDepth
	for _, path := range cfg.Prelude {
		if failed := runFile(in, path, io.Discard, os.Stderr); failed > 0 {
			log.Fatalf("prelude %s: %d forms failed", path, failed)
		}
	}

	if len(args) > 0 {
		failed := 0
		for _, path := range args {
			failed += runFile(in, path, io.Discard, os.Stderr)
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	// We assume the terminal starts in cooked mode.
	if mode, _ := liner.TerminalMode(); mode != nil {
		if err := repl(in, cfg); err != nil {
			log.Fatalf("repl: %v", err)
		}
		return
	}

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("read stdin: %v", err)
	}
	if runSource(in, "<stdin>", string(src), os.Stdout, os.Stderr) > 0 {
		os.Exit(1)
	}
}

func serve(cfg Config) {
	opts := mankai.ServerOptions{MaxDepth: cfg.MaxDepth}

	var store *session.Store
	if cfg.DB != "" {
		var err error
		store, err = session.Open(cfg.DB)
		if err != nil {
			log.Fatalf("session: %v", err)
		}
		opts.Recorder = store
	}

	srv, err := mankai.NewServer(cfg.Sock, opts)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down...")
		srv.Shutdown()
	}()

	log.Printf("mankai listening on %s", cfg.Sock)
	srv.Run()

	if store != nil {
		if err := store.Close(); err != nil {
			log.Printf("close session: %v", err)
		}
	}
}

func runFile(in *mankai.Interpreter, path string, stdout, stderr io.Writer) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
		return 1
	}
	return runSource(in, path, string(src), stdout, stderr)
}

// runSource evaluates every top-level form of src in turn. Values are
// written to stdout, errors to stderr; a failing form does not stop the
// forms after it. It returns the number of failures.
func runSource(in *mankai.Interpreter, name, src string, stdout, stderr io.Writer) int {
	forms, err := mankai.ParseAll(src)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return in.EvalProgram(forms, func(form *mankai.Sexp, val mankai.Value, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s: %v\n", name, form, err)
			return
		}
		fmt.Fprintln(stdout, val)
	})
}
