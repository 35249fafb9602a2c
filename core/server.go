package mankai

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
)

// Recorder persists session state on behalf of a Server.
type Recorder interface {
	LoadBindings() (map[string]Value, error)
	SaveBinding(name string, val Value) error
	ClearBindings() error
	RecordTrace(t Trace) error
}

// ServerOptions configures a Server.
type ServerOptions struct {
	MaxDepth  int      // passed to the Interpreter; zero means unbounded
	MaxTraces int      // size of the in-memory trace ring; default 1000
	Recorder  Recorder // optional
}

// Server exposes one Interpreter over a unix socket. A single actor
// goroutine owns the interpreter, so connections never touch it directly.
type Server struct {
	interp    *Interpreter
	opts      ServerOptions
	requests  chan serverRequest
	done      chan struct{}
	closeOnce sync.Once
	listener  net.Listener
	traces    []Trace
}

type serverRequest struct {
	msg      map[string]any
	response chan map[string]any
}

// NewServer restores any recorded bindings and listens on sockPath.
func NewServer(sockPath string, opts ServerOptions) (*Server, error) {
	s, err := newServer(opts)
	if err != nil {
		return nil, err
	}

	// Clean up a stale socket
	os.Remove(sockPath)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	s.listener = listener
	return s, nil
}

func newServer(opts ServerOptions) (*Server, error) {
	if opts.MaxTraces <= 0 {
		opts.MaxTraces = 1000
	}
	s := &Server{
		opts:     opts,
		requests: make(chan serverRequest, 64),
		done:     make(chan struct{}),
	}
	s.interp = s.newInterpreter()

	if opts.Recorder != nil {
		bindings, err := opts.Recorder.LoadBindings()
		if err != nil {
			return nil, fmt.Errorf("load bindings: %w", err)
		}
		restored := 0
		for name, val := range bindings {
			if s.interp.Env.IsReserved(name) {
				log.Printf("skipping recorded binding for reserved name %q", name)
				continue
			}
			s.interp.Env.Define(name, val)
			restored++
		}
		if restored > 0 {
			log.Printf("restored %d bindings", restored)
		}
	}
	return s, nil
}

func (s *Server) newInterpreter() *Interpreter {
	in := NewInterpreter()
	in.MaxDepth = s.opts.MaxDepth
	if s.opts.Recorder != nil {
		rec := s.opts.Recorder
		in.OnDefine = func(name string, val Value) {
			if err := rec.SaveBinding(name, val); err != nil {
				log.Printf("save binding %s: %v", name, err)
			}
		}
	}
	return in
}

// Run starts the actor goroutine and accepts connections. Blocks until shutdown.
func (s *Server) Run() {
	go s.actorLoop()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

// Shutdown stops accepting connections and stops the actor.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		if s.listener != nil {
			s.listener.Close()
		}
		close(s.done)
	})
}

// actorLoop is the single goroutine that owns the interpreter.
func (s *Server) actorLoop() {
	for {
		select {
		case req := <-s.requests:
			req.response <- s.handleRequest(req.msg)
		case <-s.done:
			return
		}
	}
}

// sendToActor sends a request to the actor and waits for the response.
func (s *Server) sendToActor(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)
	resp := make(chan map[string]any, 1)
	select {
	case s.requests <- serverRequest{msg: msg, response: resp}:
	case <-s.done:
		return errorResponse(id, "server is shutting down")
	}
	select {
	case r := <-resp:
		return r
	case <-s.done:
		return errorResponse(id, "server is shutting down")
	}
}

func (s *Server) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)

	op, _ := msg["op"].(string)
	switch op {
	case "":
		return s.manual(id)
	case "eval":
		return s.handleEval(id, msg)
	case "bindings":
		return s.handleBindings(id)
	case "traces":
		return s.handleTraces(id, msg)
	case "reset":
		return s.handleReset(id)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func (s *Server) manual(id string) map[string]any {
	var natives []any
	for _, name := range s.interp.Env.ReservedNames() {
		if s.interp.Env.IsNativeFunction(name) {
			natives = append(natives, name)
		}
	}
	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name": "mankai",
			"ops": map[string]any{
				"eval":     "Evaluate every form in a program. Params: source (string)",
				"bindings": "List the current bindings as text.",
				"traces":   "Recent evaluations. Params: limit (number, optional)",
				"reset":    "Discard all bindings and traces.",
			},
			"natives": natives,
			"forms":   []any{"if!", "set!"},
		},
	}
}

func (s *Server) handleEval(id string, msg map[string]any) map[string]any {
	source, ok := msg["source"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'source' string")
	}
	forms, err := ParseAll(source)
	if err != nil {
		return errorResponse(id, fmt.Sprintf("parse: %s", err))
	}

	results := make([]any, 0, len(forms))
	for _, form := range forms {
		trace, val, err := s.interp.EvalTraced(form)
		s.appendTrace(trace)

		if err != nil {
			results = append(results, map[string]any{"form": trace.Source, "ok": false, "error": err.Error()})
			continue
		}
		goVal, err := ValueToGo(val)
		if err != nil {
			results = append(results, map[string]any{"form": trace.Source, "ok": false, "error": fmt.Sprintf("serialize result: %s", err)})
			continue
		}
		results = append(results, map[string]any{"form": trace.Source, "ok": true, "value": goVal, "text": val.String()})
	}
	return map[string]any{"id": id, "ok": true, "value": results}
}

func (s *Server) handleBindings(id string) map[string]any {
	bindings := make(map[string]any)
	for name, val := range s.interp.Env.Bindings() {
		bindings[name] = val.String()
	}
	return map[string]any{"id": id, "ok": true, "value": bindings}
}

func (s *Server) handleTraces(id string, msg map[string]any) map[string]any {
	n := len(s.traces)
	if raw, ok := msg["limit"]; ok {
		limit, ok := raw.(float64)
		if !ok || limit < 0 {
			return errorResponse(id, "traces: 'limit' must be a non-negative number")
		}
		if limit < float64(n) {
			n = int(limit)
		}
	}

	start := len(s.traces) - n
	result := make([]any, n)
	for i := 0; i < n; i++ {
		t := s.traces[start+i]
		entry := map[string]any{"source": t.Source, "timestamp": t.Timestamp}
		if t.Error != "" {
			entry["error"] = t.Error
		} else {
			entry["result"] = t.Result.String()
		}
		result[i] = entry
	}
	return map[string]any{"id": id, "ok": true, "value": result}
}

func (s *Server) handleReset(id string) map[string]any {
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.ClearBindings(); err != nil {
			return errorResponse(id, fmt.Sprintf("reset: %s", err))
		}
	}
	s.interp = s.newInterpreter()
	s.traces = nil
	return map[string]any{"id": id, "ok": true, "value": "reset"}
}

// appendTrace records a trace and enforces the MaxTraces cap.
func (s *Server) appendTrace(t *Trace) {
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.RecordTrace(*t); err != nil {
			log.Printf("record trace: %v", err)
		}
	}
	s.traces = append(s.traces, *t)
	if len(s.traces) > s.opts.MaxTraces {
		// Drop oldest traces
		excess := len(s.traces) - s.opts.MaxTraces
		s.traces = s.traces[excess:]
	}
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}

// --- Connection handling ---

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("read client message: %v", err)
			}
			return
		}

		resp := s.sendToActor(msg)
		if err := WriteMsg(conn, resp); err != nil {
			log.Printf("write client response: %v", err)
			return
		}
	}
}
