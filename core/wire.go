package mankai

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
)

// MaxMsgSize bounds the body of a single framed message.
const MaxMsgSize = 16 << 20

var msgCounter uint64

// NextID returns a fresh request id for clients that omit one.
func NextID() string {
	n := atomic.AddUint64(&msgCounter, 1)
	return fmt.Sprintf("r%d", n)
}

// WriteMsg writes msg as a 4-byte big-endian length followed by JSON.
func WriteMsg(w io.Writer, msg map[string]any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if len(data) > MaxMsgSize {
		return fmt.Errorf("message of %d bytes exceeds limit of %d", len(data), MaxMsgSize)
	}
	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// ReadMsg reads one message written by WriteMsg. It returns io.EOF
// unwrapped when the peer closed the connection between messages.
func ReadMsg(r io.Reader) (map[string]any, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read length: %w", err)
	}
	if length > MaxMsgSize {
		return nil, fmt.Errorf("message of %d bytes exceeds limit of %d", length, MaxMsgSize)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return msg, nil
}
