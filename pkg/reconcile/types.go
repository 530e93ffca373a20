package reconcile

import (
	"time"

	"github.com/glorpus-work/tally/pkg/detect"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/legacy"
)

// Stage names a step of the refresh pass.
type Stage string

// Stages in execution order.
const (
	StageExternalDeletions Stage = "external-deletions"
	StageLegacyMigration   Stage = "legacy-migration"
	StageLoad              Stage = "load"
	StageSweep             Stage = "sweep"
	StageLegacyKnown       Stage = "legacy-known"
	StageConflate          Stage = "conflate"
)

// Outcome is the aggregate result of a pass.
type Outcome string

// Pass outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string // stage|detector|done|cancelled|error
	ID    string // stage or detector name
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Recorder receives timing and outcome measurements of a pass.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	ObserveDetector(name string, observed, cleared int, err error)
	ObservePass(outcome string, installed int, degraded bool)
}

// Pass ties the inventory, its evidence sources and the legacy layout
// together for one refresh.
type Pass struct {
	Store *inventory.Store
	KV    kvstore.Store
	Env   *detect.Env
	// Legacy is optional; without it both legacy stages are skipped.
	Legacy *legacy.Scanner
	// Detectors overrides detect.Sweep(Env) when set.
	Detectors []detect.Detector
	Recorder  Recorder
	Hooks     Hooks // Hooks for progress and event notifications
}

// Result is what a pass reports to its caller.
type Result struct {
	Outcome Outcome
	Message string
	// Err is errors.ErrCancelled or the fatal stage error.
	Err error
	// Degraded aggregates persistence failures. A successful pass with
	// Degraded set completed, but not every change is durable.
	Degraded error
	// Reports holds the sweep result per detector name.
	Reports   map[string]detect.Report
	Installed int
}
