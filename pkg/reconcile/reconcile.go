// Package reconcile runs the refresh pass that merges every evidence source
// into the inventory: external deletions, legacy migration, the persisted
// store, the detector sweep, known legacy folders and nested directory
// conflation, in that order.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/detect"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/job"
)

type step struct {
	id   Stage
	hint string
	// progress of the pass once the stage finished; zero when the stage
	// reports through a sub-job
	progress float64
	run      func(j job.Job, res *Result) error
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (p *Pass) steps() []step {
	return []step{
		{StageExternalDeletions, "Detecting directories deleted externally", 0.2, func(job.Job, *Result) error {
			if n := ScanExternalDeletions(p.Store, p.Env.FS); n > 0 {
				logger.Info("cleared externally deleted directories", logger.Fields{"count": n})
			}
			return nil
		}},
		{StageLegacyMigration, "Migrating the legacy directory layout", 0.4, func(job.Job, *Result) error {
			if p.Legacy == nil {
				return nil
			}
			_, err := p.Legacy.Migrate(p.KV)
			return err
		}},
		{StageLoad, "Reading the package database", 0.5, func(j job.Job, res *Result) error {
			sub := j.NewSubJob(0.1)
			rep, err := detect.NewRegistryDB(p.Env).Detect(sub, p.Store)
			if err != nil {
				return err
			}
			res.Reports["registry-db"] = rep
			return nil
		}},
		{StageSweep, "Detecting software", 0, func(j job.Job, res *Result) error {
			p.sweep(j.NewSubJob(0.2), res)
			return nil
		}},
		{StageLegacyKnown, "Detecting known packages in the legacy directory", 0.9, func(job.Job, *Result) error {
			if p.Legacy == nil {
				return nil
			}
			if _, err := p.Legacy.RegisterKnown(p.Store, p.Env.Catalog); err != nil {
				logger.Warn("legacy directory not readable", logger.Fields{"dir": p.Legacy.Base(), "error": err})
			}
			return nil
		}},
		{StageConflate, "Clearing package versions in nested directories", 1, func(job.Job, *Result) error {
			if n := Conflate(p.Store, p.Env.Platform.Root()); n > 0 {
				logger.Info("cleared nested installations", logger.Fields{"count": n})
			}
			return nil
		}},
	}
}

// Refresh runs all stages. Cancellation is checked before every stage and
// before every detector; a failed stage halts the rest of the pass. An
// incomplete Env fails the pass before the first stage.
// Records persisted before a cancellation or failure stay persisted.
func (p *Pass) Refresh(j job.Job) Result {
	res := Result{Outcome: OutcomeSuccess, Reports: make(map[string]detect.Report)}
	if err := p.Env.Validate(); err != nil {
		res.Outcome, res.Err, res.Message = OutcomeFailed, err, err.Error()
		return p.finish(j, res)
	}

	for _, st := range p.steps() {
		if j.IsCancelled() {
			res.Outcome, res.Err = OutcomeCancelled, errors.ErrCancelled
			break
		}
		j.SetHint(st.hint)
		emit(p.Hooks, Event{Phase: "stage", ID: string(st.id), Msg: st.hint})

		start := time.Now()
		err := st.run(j, &res)
		if p.Recorder != nil {
			p.Recorder.ObserveStage(string(st.id), time.Since(start))
		}
		if err != nil {
			res.Outcome, res.Err = OutcomeFailed, err
			res.Message = fmt.Sprintf("%s: %v", st.hint, err)
			break
		}
		if st.progress > 0 {
			j.SetProgress(st.progress)
		}
	}
	if res.Outcome == OutcomeSuccess && j.IsCancelled() {
		res.Outcome, res.Err = OutcomeCancelled, errors.ErrCancelled
	}
	return p.finish(j, res)
}

func (p *Pass) finish(j job.Job, res Result) Result {
	res.Degraded = p.Store.WriteErrors()
	for _, r := range p.Store.Records() {
		if r.Installed() {
			res.Installed++
		}
	}

	switch res.Outcome {
	case OutcomeFailed:
		logger.Error("refresh failed", logger.Fields{"error": res.Message})
		j.SetErrorMessage(res.Message)
		emit(p.Hooks, Event{Phase: "error", Msg: res.Message})
	case OutcomeCancelled:
		res.Message = "refresh cancelled"
		logger.Warn(res.Message)
		emit(p.Hooks, Event{Phase: "cancelled", Msg: res.Message})
	default:
		if res.Degraded != nil {
			logger.Warn("refresh completed with persistence failures", logger.Fields{"error": res.Degraded})
		}
		emit(p.Hooks, Event{Phase: "done", Msg: fmt.Sprintf("%d installed", res.Installed)})
	}
	if p.Recorder != nil {
		p.Recorder.ObservePass(string(res.Outcome), res.Installed, res.Degraded != nil)
	}
	j.Complete()
	return res
}

func (p *Pass) detectors() []detect.Detector {
	if p.Detectors != nil {
		return p.Detectors
	}
	return detect.Sweep(p.Env)
}

// sweep runs the detectors in order. A detector error only costs that
// detector's evidence.
func (p *Pass) sweep(j job.Job, res *Result) {
	dets := p.detectors()
	for _, d := range dets {
		if j.IsCancelled() {
			break
		}
		emit(p.Hooks, Event{Phase: "detector", ID: d.Name()})
		sub := j.NewSubJob(1 / float64(len(dets)))
		sub.SetHint(d.Name())

		start := time.Now()
		rep, err := d.Detect(sub, p.Store)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("detector failed", logger.Fields{"detector": d.Name(), "error": err})
		}
		logger.Debug("detector finished", logger.Fields{
			"detector": d.Name(),
			"observed": rep.Observed,
			"cleared":  rep.Cleared,
			"took":     time.Since(start).String(),
		})
		if p.Recorder != nil {
			p.Recorder.ObserveDetector(d.Name(), rep.Observed, rep.Cleared, err)
		}
		res.Reports[d.Name()] = rep
		if !sub.IsCompleted() {
			sub.Complete()
		}
	}
	j.Complete()
}
