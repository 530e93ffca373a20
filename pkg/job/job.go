// Package job carries progress reporting and cooperative cancellation
// through long running operations.
package job

import (
	"context"
	"sync"
)

// Job is the progress and cancellation context of one unit of work.
type Job interface {
	Context() context.Context
	IsCancelled() bool
	// SetProgress sets the completed fraction of this job, 0..1.
	SetProgress(fraction float64)
	Progress() float64
	SetHint(hint string)
	// NewSubJob returns a job whose whole progress covers fraction of this
	// job, starting at the current progress.
	NewSubJob(fraction float64) Job
	// Complete sets the progress to 1 and marks the job finished.
	Complete()
	IsCompleted() bool
	// ShouldProceed records description as the hint and reports whether
	// the job is neither cancelled nor failed.
	ShouldProceed(description string) bool
	SetErrorMessage(msg string)
	ErrorMessage() string
}

// Event is emitted on every hint or progress change.
type Event struct {
	Hint      string
	Progress  float64 // of the root job
	Completed bool    // root job completed
	Error     string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Task is the Job implementation over a context.Context.
type Task struct {
	ctx   context.Context
	hooks Hooks

	parent *Task
	start  float64 // parent progress when this sub-job was created
	span   float64 // share of the parent covered by this sub-job

	mu        sync.Mutex
	active    *Task // innermost running sub-job, for hints
	progress  float64
	hint      string
	errMsg    string
	completed bool
}

// New creates a root job cancelled together with ctx.
func New(ctx context.Context, hooks Hooks) *Task {
	return &Task{ctx: ctx, hooks: hooks}
}

// Context implements Job.
func (t *Task) Context() context.Context { return t.ctx }

// IsCancelled implements Job.
func (t *Task) IsCancelled() bool {
	return t.ctx.Err() != nil
}

// SetProgress implements Job.
func (t *Task) SetProgress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	t.mu.Lock()
	t.progress = fraction
	t.mu.Unlock()
	if t.parent != nil {
		t.parent.SetProgress(t.start + fraction*t.span)
		return
	}
	t.notify()
}

// Progress implements Job.
func (t *Task) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// SetHint implements Job.
func (t *Task) SetHint(hint string) {
	t.mu.Lock()
	t.hint = hint
	t.mu.Unlock()
	t.root().notify()
}

// Hint returns the hint of this job prefixed by the hints of its parents.
func (t *Task) Hint() string {
	t.mu.Lock()
	h := t.hint
	t.mu.Unlock()
	if t.parent == nil {
		return h
	}
	ph := t.parent.Hint()
	switch {
	case ph == "":
		return h
	case h == "":
		return ph
	default:
		return ph + " / " + h
	}
}

// NewSubJob implements Job.
func (t *Task) NewSubJob(fraction float64) Job {
	sub := &Task{
		ctx:    t.ctx,
		hooks:  t.hooks,
		parent: t,
		start:  t.Progress(),
		span:   fraction,
	}
	t.mu.Lock()
	t.active = sub
	t.mu.Unlock()
	return sub
}

// Complete implements Job.
func (t *Task) Complete() {
	t.mu.Lock()
	t.completed = true
	msg := t.errMsg
	t.mu.Unlock()
	if t.parent != nil {
		t.parent.clearActive(t)
		if msg != "" && t.parent.ErrorMessage() == "" {
			t.parent.SetErrorMessage(msg)
		}
	}
	if !t.IsCancelled() && msg == "" {
		t.SetProgress(1)
		return
	}
	t.root().notify()
}

// IsCompleted implements Job.
func (t *Task) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// ShouldProceed implements Job.
func (t *Task) ShouldProceed(description string) bool {
	t.SetHint(description)
	return !t.IsCancelled() && t.ErrorMessage() == ""
}

// SetErrorMessage implements Job.
func (t *Task) SetErrorMessage(msg string) {
	t.mu.Lock()
	t.errMsg = msg
	t.mu.Unlock()
	t.root().notify()
}

// ErrorMessage implements Job.
func (t *Task) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

func (t *Task) root() *Task {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (t *Task) clearActive(sub *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == sub {
		t.active = nil
	}
}

// currentHint follows the chain of active sub-jobs to the innermost hint.
func (t *Task) currentHint() string {
	t.mu.Lock()
	active := t.active
	t.mu.Unlock()
	if active != nil {
		return active.currentHint()
	}
	return t.Hint()
}

// notify is called on the root job only.
func (t *Task) notify() {
	t.mu.Lock()
	ev := Event{Progress: t.progress, Completed: t.completed, Error: t.errMsg}
	t.mu.Unlock()
	ev.Hint = t.currentHint()
	emit(t.hooks, ev)
}
