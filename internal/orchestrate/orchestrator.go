// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives the business adapters across a tiered table of
// geographic targets and persists what they find.
//
// A run moves Idle → Running → Done. It ends Failed only when the
// configuration is unusable, and Aborted when its context is cancelled.
// Adapter, validation and persistence failures are recorded in the report
// and never stop the run.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/internal/normalize"
	"github.com/pdiddy/votewallet/internal/source"
	"github.com/pdiddy/votewallet/pkg/types"
)

// MaxTier is the lowest-priority tier.
const MaxTier = 4

// ConfigurationError reports a run that cannot start.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Reason }

// Gateway is the persistence the orchestrator writes through.
type Gateway interface {
	UpsertBusiness(ctx context.Context, c types.BusinessCandidate) (string, error)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator runs adapters over tier targets.
type Orchestrator struct {
	Adapters []source.Adapter
	Gateway  Gateway
	Config   types.OrchestratorConfig
	Key      dedupe.KeyFunc
	Logger   *slog.Logger
	Sleep    SleepFunc
	Now      func() time.Time

	mu    sync.Mutex
	state types.RunState
}

// New returns an Orchestrator with the identity strategy from cfg.
func New(adapters []source.Adapter, gw Gateway, cfg types.OrchestratorConfig, logger *slog.Logger) (*Orchestrator, error) {
	key, err := dedupe.KeyFuncFor(cfg.IdentityStrategy)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Adapters: adapters,
		Gateway:  gw,
		Config:   cfg,
		Key:      key,
		Logger:   logger,
		Sleep:    httputil.Sleep,
		Now:      time.Now,
		state:    types.RunIdle,
	}, nil
}

// State returns the current run state.
func (o *Orchestrator) State() types.RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s types.RunState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Validate checks that a run over targets can start.
func (o *Orchestrator) Validate(targets []types.TierTarget) error {
	var errs []error
	if len(o.Adapters) == 0 {
		errs = append(errs, &ConfigurationError{Reason: "no adapters configured"})
	}
	if o.Gateway == nil {
		errs = append(errs, &ConfigurationError{Reason: "no persistence gateway configured"})
	}
	if len(targets) == 0 {
		errs = append(errs, &ConfigurationError{Reason: "no targets configured"})
	}
	if o.Config.BatchSize <= 0 {
		errs = append(errs, &ConfigurationError{Reason: fmt.Sprintf("batch size must be positive, got %d", o.Config.BatchSize)})
	}
	for _, t := range targets {
		if t.Tier < 1 || t.Tier > MaxTier {
			errs = append(errs, &ConfigurationError{Reason: fmt.Sprintf("target %s: tier must be 1..%d, got %d", t.State, MaxTier, t.Tier)})
		}
		if t.Quota <= 0 {
			errs = append(errs, &ConfigurationError{Reason: fmt.Sprintf("target %s: quota must be positive, got %d", t.State, t.Quota)})
		}
	}
	return errors.Join(errs...)
}

// Run processes targets tier by tier in ascending order. It returns an
// error only for configuration problems; every other failure is reported
// in the RunReport. A cancelled ctx stops the run between targets and the
// partial report is returned with state Aborted.
func (o *Orchestrator) Run(ctx context.Context, targets []types.TierTarget) (types.RunReport, error) {
	report := types.RunReport{StartedAt: o.Now(), Errors: []string{}}

	if err := o.Validate(targets); err != nil {
		o.setState(types.RunFailed)
		report.State = types.RunFailed
		report.Errors = append(report.Errors, err.Error())
		report.FinishedAt = o.Now()
		return report, err
	}

	o.setState(types.RunRunning)
	report.State = types.RunRunning
	tiers := groupByTier(targets)
	persisted := 0

	for i, tier := range tiers {
		o.Logger.Info("starting tier", "tier", tier.n, "targets", len(tier.targets))
		tr := types.TierReport{Tier: tier.n, States: []types.TargetReport{}}

		aborted := false
		for _, target := range tier.targets {
			if ctx.Err() != nil {
				aborted = true
				break
			}
			rep := o.runTarget(ctx, target, &persisted)
			tr.States = append(tr.States, rep)
			tr.TotalTarget += rep.Target
			tr.TotalActual += rep.Processed
			tr.TotalSuccess += rep.Success
			for _, e := range rep.Errors {
				report.Errors = append(report.Errors, target.State+": "+e)
			}
			report.TotalFailed += rep.Failed
		}
		report.Tiers = append(report.Tiers, tr)
		report.TotalTarget += tr.TotalTarget
		report.TotalActual += tr.TotalActual
		report.TotalSuccess += tr.TotalSuccess

		if !aborted && i < len(tiers)-1 && o.Config.TierDelay > 0 {
			o.Logger.Info("tier complete, pausing", "tier", tier.n, "delay", o.Config.TierDelay)
			aborted = o.Sleep(ctx, o.Config.TierDelay) != nil
		}
		if aborted || ctx.Err() != nil {
			return o.abort(ctx, report), nil
		}
	}

	o.setState(types.RunDone)
	report.State = types.RunDone
	report.FinishedAt = o.Now()
	o.Logger.Info("run complete",
		"target", report.TotalTarget, "actual", report.TotalActual,
		"success", report.TotalSuccess, "failed", report.TotalFailed)
	return report, nil
}

func (o *Orchestrator) abort(ctx context.Context, report types.RunReport) types.RunReport {
	o.setState(types.RunAborted)
	report.State = types.RunAborted
	report.Errors = append(report.Errors, fmt.Sprintf("run aborted: %v", context.Cause(ctx)))
	report.FinishedAt = o.Now()
	o.Logger.Warn("run aborted", "success", report.TotalSuccess, "err", context.Cause(ctx))
	return report
}

// runTarget collects, normalizes, dedupes and persists one target.
// persisted counts businesses across the whole run for batch pacing.
func (o *Orchestrator) runTarget(ctx context.Context, target types.TierTarget, persisted *int) types.TargetReport {
	rep := types.TargetReport{
		State:  target.State,
		Name:   target.Name,
		Tier:   target.Tier,
		Target: target.Quota,
		Errors: []string{},
	}
	log := o.Logger.With("state", target.State, "tier", target.Tier)

	var raws []types.RawBusiness
	for _, a := range o.Adapters {
		remaining := target.Quota - len(raws)
		if remaining <= 0 {
			break
		}
		recs, err := a.Collect(ctx, target, remaining)
		if err != nil {
			if ctx.Err() != nil {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s: interrupted: %v", a.Name(), ctx.Err()))
				break
			}
			log.Warn("adapter failed", "adapter", a.Name(), "err", err)
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", a.Name(), err))
			continue
		}
		if len(recs) > remaining {
			recs = recs[:remaining]
		}
		log.Debug("adapter collected", "adapter", a.Name(), "records", len(recs))
		raws = append(raws, recs...)
	}
	rep.Collected = len(raws)

	candidates := make([]types.BusinessCandidate, 0, len(raws))
	for _, r := range raws {
		c, err := normalize.Normalize(r)
		if err != nil {
			rep.Skipped++
			rep.Errors = append(rep.Errors, "skipped: "+err.Error())
			continue
		}
		candidates = append(candidates, c)
	}
	deduped := dedupe.Dedupe(candidates, o.Key)

	for _, c := range deduped.Candidates {
		if ctx.Err() != nil {
			break
		}
		rep.Processed++
		if _, err := o.Gateway.UpsertBusiness(ctx, c); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, fmt.Sprintf("upsert %q: %v", c.Name, err))
			log.Warn("upsert failed", "name", c.Name, "err", err)
		} else {
			rep.Success++
		}
		*persisted++
		if *persisted%o.Config.BatchSize == 0 && o.Config.BatchDelay > 0 {
			log.Debug("batch complete, pausing", "persisted", *persisted, "delay", o.Config.BatchDelay)
			if o.Sleep(ctx, o.Config.BatchDelay) != nil {
				break
			}
		}
	}

	log.Info("target complete",
		"collected", rep.Collected, "processed", rep.Processed,
		"success", rep.Success, "failed", rep.Failed, "skipped", rep.Skipped,
		"duplicates", deduped.Removed)
	return rep
}

type tierGroup struct {
	n       int
	targets []types.TierTarget
}

// groupByTier buckets targets by tier in ascending order, keeping the
// declared order within each tier.
func groupByTier(targets []types.TierTarget) []tierGroup {
	byTier := make(map[int][]types.TierTarget)
	for _, t := range targets {
		byTier[t.Tier] = append(byTier[t.Tier], t)
	}
	groups := make([]tierGroup, 0, len(byTier))
	for n, ts := range byTier {
		groups = append(groups, tierGroup{n: n, targets: ts})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].n < groups[j].n })
	return groups
}

// Filter returns the targets in tier (0 for all) whose state is listed in
// states (empty for all).
func Filter(targets []types.TierTarget, tier int, states []string) []types.TierTarget {
	want := make(map[string]bool, len(states))
	for _, s := range states {
		want[normalize.State(s)] = true
	}
	var out []types.TierTarget
	for _, t := range targets {
		if tier > 0 && t.Tier != tier {
			continue
		}
		if len(want) > 0 && !want[t.State] {
			continue
		}
		out = append(out, t)
	}
	return out
}
