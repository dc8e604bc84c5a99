package pipeline

import "time"

// Event is a pipeline occurrence delivered on the Bus.
type Event interface {
	Name() string
	GetRunID() string
}

// RunStarted is published when a run begins.
type RunStarted struct {
	RunID   string `json:"run_id"`
	Trigger string `json:"trigger"`
}

func (RunStarted) Name() string       { return "RunStarted" }
func (e RunStarted) GetRunID() string { return e.RunID }

// StageCompleted is published after each successful stage.
type StageCompleted struct {
	RunID    string        `json:"run_id"`
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

func (StageCompleted) Name() string       { return "StageCompleted" }
func (e StageCompleted) GetRunID() string { return e.RunID }

// StageFailed is published when a stage aborts the run.
type StageFailed struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func (StageFailed) Name() string       { return "StageFailed" }
func (e StageFailed) GetRunID() string { return e.RunID }

// RunFinished is published exactly once per run with the terminal outcome.
type RunFinished struct {
	RunID    string        `json:"run_id"`
	Outcome  string        `json:"outcome"` // success | failed | canceled
	Scheme   string        `json:"scheme,omitempty"`
	Duration time.Duration `json:"duration"`
}

func (RunFinished) Name() string       { return "RunFinished" }
func (e RunFinished) GetRunID() string { return e.RunID }
