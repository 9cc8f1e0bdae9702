// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TierTarget is one geographic unit scheduled for ingestion.
type TierTarget struct {
	// State is the USPS code of the state-equivalent (e.g. "IL").
	State string `json:"state" yaml:"state" mapstructure:"state"`

	// Name is the display name (e.g. "Illinois").
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// Tier is 1..4; higher tiers have lower priority and smaller quotas.
	Tier int `json:"tier" yaml:"tier" mapstructure:"tier"`

	// Quota is the maximum number of records requested for this unit.
	Quota int `json:"quota" yaml:"quota" mapstructure:"quota"`

	// Cities are the named sub-locations adapters visit.
	Cities []string `json:"cities" yaml:"cities" mapstructure:"cities"`
}

// RunState is the orchestrator state machine position.
type RunState string

const (
	RunIdle    RunState = "idle"
	RunRunning RunState = "running"
	RunDone    RunState = "done"
	RunFailed  RunState = "failed"
	RunAborted RunState = "aborted"
)

// TargetReport summarizes one target within a run.
type TargetReport struct {
	State     string   `json:"state" yaml:"state"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Tier      int      `json:"tier" yaml:"tier"`
	Target    int      `json:"target" yaml:"target"`
	Collected int      `json:"collected" yaml:"collected"`
	Processed int      `json:"processed" yaml:"processed"`
	Success   int      `json:"success" yaml:"success"`
	Failed    int      `json:"failed" yaml:"failed"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Errors    []string `json:"errors" yaml:"errors"`
}

// TierReport rolls up the targets of one tier.
type TierReport struct {
	Tier         int            `json:"tier" yaml:"tier"`
	States       []TargetReport `json:"states" yaml:"states"`
	TotalTarget  int            `json:"totalTarget" yaml:"total_target"`
	TotalActual  int            `json:"totalActual" yaml:"total_actual"`
	TotalSuccess int            `json:"totalSuccess" yaml:"total_success"`
}

// RunReport is the whole-run summary.
type RunReport struct {
	State        RunState     `json:"state" yaml:"state"`
	Tiers        []TierReport `json:"tiers" yaml:"tiers"`
	Errors       []string     `json:"errors" yaml:"errors"`
	StartedAt    time.Time    `json:"startedAt" yaml:"started_at"`
	FinishedAt   time.Time    `json:"finishedAt" yaml:"finished_at"`
	TotalTarget  int          `json:"totalTarget" yaml:"total_target"`
	TotalActual  int          `json:"totalActual" yaml:"total_actual"`
	TotalSuccess int          `json:"totalSuccess" yaml:"total_success"`
	TotalFailed  int          `json:"totalFailed" yaml:"total_failed"`
}
