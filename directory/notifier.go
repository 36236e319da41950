package directory

import (
	"fmt"
	"sync"
	"time"
)

// DefaultNoticeDuration is how long a notice stays up.
const DefaultNoticeDuration = 5 * time.Second

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

func (k NoticeKind) String() string {
	if k == NoticeError {
		return "error"
	}
	return "info"
}

// Notice is an advisory status message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Notifier holds at most one [Notice] and clears it after a fixed duration.
// Posting a new notice replaces the current one and restarts the countdown.
// A nil *Notifier discards everything.
type Notifier struct {
	duration time.Duration
	onNotice func(Notice)

	mu      sync.Mutex
	current *Notice
	gen     uint64
	timer   *time.Timer
}

// NewNotifier returns a [Notifier]; onNotice, when not nil, is called with every posted notice.
func NewNotifier(duration time.Duration, onNotice func(Notice)) *Notifier {
	return &Notifier{duration: duration, onNotice: onNotice}
}

func (n *Notifier) Infof(format string, args ...any) {
	n.post(Notice{Kind: NoticeInfo, Text: fmt.Sprintf(format, args...)})
}

func (n *Notifier) Errorf(format string, args ...any) {
	n.post(Notice{Kind: NoticeError, Text: fmt.Sprintf(format, args...)})
}

func (n *Notifier) post(notice Notice) {
	if n == nil {
		return
	}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = &notice
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.duration, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen == gen {
			n.current = nil
		}
	})
	n.mu.Unlock()

	if n.onNotice != nil {
		n.onNotice(notice)
	}
}

// Current returns the notice on display, if any.
func (n *Notifier) Current() (Notice, bool) {
	if n == nil {
		return Notice{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// Stop clears the current notice and its pending timer.
func (n *Notifier) Stop() {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
	}
}
