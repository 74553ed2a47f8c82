package notifications

import (
	"context"
	"sync"
)

// maxRecorded bounds a long-lived recorder; older notices fall off.
const maxRecorded = 50

// Recorder keeps the latest notices so a caller can hand them back to the
// user, and optionally forwards each one.
type Recorder struct {
	mu      sync.Mutex
	next    Notifier
	notices []Notice
}

func NewRecorder(next Notifier) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Notify(ctx context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	if len(r.notices) > maxRecorded {
		r.notices = append([]Notice(nil), r.notices[len(r.notices)-maxRecorded:]...)
	}
	r.mu.Unlock()

	if c, ok := ctx.Value(collectorKey{}).(*collector); ok {
		c.add(n)
	}

	if r.next != nil {
		r.next.Notify(ctx, n)
	}
}

func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Drain returns and forgets everything recorded so far.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.notices
	r.notices = nil
	return out
}

type collectorKey struct{}

type collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *collector) add(n Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

// Collect returns a context under which every notice a Recorder receives is
// also gathered for this caller alone, and a func returning them in order.
// Concurrent calls sharing one Recorder each see only their own notices.
func Collect(ctx context.Context) (context.Context, func() []Notice) {
	c := &collector{}
	return context.WithValue(ctx, collectorKey{}, c), func() []Notice {
		c.mu.Lock()
		defer c.mu.Unlock()

		out := make([]Notice, len(c.notices))
		copy(out, c.notices)
		return out
	}
}
