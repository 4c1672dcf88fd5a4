// ABOUTME: User-facing notices raised by the gateway and page controllers
// ABOUTME: Notifier is implemented by the TUI toast stack and the CLI stderr printer
package api

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// NoticeKind classifies a notice for styling and routing.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
	// NoticeSessionExpired is raised on any 401; shells redirect to login on it.
	NoticeSessionExpired
)

const (
	MessageSessionExpired = "Session expired. Please log in again."
	MessageLoadFailed     = "Failed to load data. Please try again."
)

type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// WriterNotifier prints notices as single lines, used by the CLI.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "•"
	switch notice.Kind {
	case NoticeSuccess:
		prefix = "✓"
	case NoticeError, NoticeSessionExpired:
		prefix = "✗"
	}
	if notice.Title != "" {
		fmt.Fprintf(n.w, "%s %s: %s\n", prefix, notice.Title, notice.Message)
		return
	}
	fmt.Fprintf(n.w, "%s %s\n", prefix, notice.Message)
}

// RecordingNotifier keeps every notice; used by tests and the CLI summary.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *RecordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *RecordingNotifier) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

type quietKey struct{}

// Quiet marks ctx so the gateway skips its generic failure notice. Callers that report
// failures themselves (naming the action) use it. Session-expired notices are always raised.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

func isQuiet(ctx context.Context) bool {
	q, _ := ctx.Value(quietKey{}).(bool)
	return q
}
