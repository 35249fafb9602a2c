package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	mankai "github.com/grastello/Mankai/core"
)

const usage = `usage:
  mankai-cli eval SOURCE
  mankai-cli bindings
  mankai-cli traces [LIMIT]
  mankai-cli reset
  mankai-cli < request.json`

func main() {
	sockPath := os.Getenv("MANKAI_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/mankai.sock"
	}

	msg, err := buildRequest(os.Args[1:], os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		os.Exit(2)
	}

	// Add id if missing
	if _, ok := msg["id"]; !ok {
		msg["id"] = mankai.NextID()
	}

	// Connect to server
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := mankai.WriteMsg(conn, msg); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	resp, err := mankai.ReadMsg(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "receive: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if ok, _ := resp["ok"].(bool); !ok {
		os.Exit(1)
	}
}

// buildRequest turns command-line arguments into a request. With no
// arguments the request is read from stdin as JSON.
func buildRequest(args []string, stdin io.Reader) (map[string]any, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return msg, nil
	}

	switch op := args[0]; op {
	case "eval":
		if len(args) != 2 {
			return nil, fmt.Errorf("eval: expected one SOURCE argument")
		}
		return map[string]any{"op": op, "source": args[1]}, nil
	case "bindings", "reset":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected no arguments", op)
		}
		return map[string]any{"op": op}, nil
	case "traces":
		msg := map[string]any{"op": op}
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("traces: LIMIT must be a non-negative integer")
			}
			msg["limit"] = n
		} else if len(args) > 2 {
			return nil, fmt.Errorf("traces: expected at most one LIMIT argument")
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", op)
	}
}
