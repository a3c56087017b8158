package hook

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event records one decision in the append-only event log.
type Event struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Policy    string    `json:"policy,omitempty"`
	Verdict   string    `json:"verdict"`
	Reason    string    `json:"reason,omitempty"`
}

// EventLog appends decisions to a JSONL file. A nil *EventLog discards
// everything. Write failures never affect the verdict.
type EventLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewEventLog returns a log writing to path.
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *EventLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record appends an event for the given decision.
func (l *EventLog) Record(inv *Invocation, d Decision) error {
	if l == nil || l.path == "" {
		return nil
	}
	ev := Event{
		ID:      ulid.Make().String(),
		Time:    l.now().UTC(),
		Policy:  d.Policy,
		Verdict: d.Verdict.String(),
		Reason:  d.Message,
	}
	if inv != nil {
		ev.SessionID = inv.SessionID
		ev.Tool = inv.ToolName
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // write complete, close best-effort
	}()
	_, err = f.Write(append(data, '\n'))
	return err
}

// Tail returns up to n most recent events. Unparseable lines are skipped.
func (l *EventLog) Tail(n int) ([]Event, error) {
	if l == nil || l.path == "" {
		return nil, nil
	}
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readEvents(f, n)
}

func readEvents(r io.Reader, n int) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
		if n > 0 && len(events) > n {
			events = events[1:]
		}
	}
	return events, scanner.Err()
}
