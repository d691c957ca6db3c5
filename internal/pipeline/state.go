package pipeline

import (
	"sync"
	"time"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// RunStatus represents the overall status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ExtractionState is the terminal state of the extraction stage.
// Aborted means partial data: downstream stages still run with
// whatever was collected.
type ExtractionState string

const (
	ExtractionDone    ExtractionState = "done"
	ExtractionAborted ExtractionState = "aborted"
)

// ExtractionResult carries the terminal state of extraction and, when
// aborted, the recorded reason.
type ExtractionResult struct {
	State        ExtractionState `json:"state"`
	Reason       string          `json:"reason,omitempty"`
	PagesFetched int             `json:"pages_fetched"`
	PagesFailed  int             `json:"pages_failed"`
}

// RunState is the shared state of one pipeline run. Stages read the
// artifacts of their predecessors and publish their own through it.
type RunState struct {
	mu        sync.RWMutex
	ID        string
	StartTime time.Time
	Status    RunStatus
	Err       error

	stages map[string]*StageState

	// Extraction artifacts
	RawListings []domain.RawListing
	RawPath     string
	Extraction  ExtractionResult

	// Transformation artifacts
	Properties   []domain.NormalizedProperty
	Completeness map[string]float64

	// Loading artifacts
	OutputPaths  []string
	OutputErrors []string
	MetadataPath string

	// Validation artifact
	Report *domain.DatasetReport
}

// NewRunState creates the state for a new run
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		StartTime: time.Now(),
		Status:    RunStatusPending,
		stages:    make(map[string]*StageState),
	}
}

// SetStage registers the state of a stage
func (r *RunState) SetStage(id string, state *StageState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[id] = state
}

// GetStage returns the state of a stage, or nil if unknown
func (r *RunState) GetStage(id string) *StageState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stages[id]
}

// Stages returns the registered stage states keyed by ID
func (r *RunState) Stages() map[string]*StageState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*StageState, len(r.stages))
	for id, s := range r.stages {
		out[id] = s
	}
	return out
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed with the given error
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusFailed
	r.Err = err
}

// GetStatus returns the current run status
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// Duration returns the elapsed time since the run started
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return time.Since(r.StartTime)
}
