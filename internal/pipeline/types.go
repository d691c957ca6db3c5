package pipeline

import (
	"time"
)

// Stage identifiers
const (
	StageIDExtraction     = "extraction"
	StageIDTransformation = "transformation"
	StageIDLoading        = "loading"
	StageIDValidation     = "validation"
)

// Stage names
const (
	StageNameExtraction     = "Data Extraction"
	StageNameTransformation = "Data Transformation"
	StageNameLoading        = "Data Loading"
	StageNameValidation     = "Data Validation"
)

// Default per-stage timeouts. Extraction is network bound and gets the
// largest budget.
const (
	DefaultStageTimeout          = 10 * time.Minute
	DefaultExtractionTimeout     = 30 * time.Minute
	DefaultTransformationTimeout = 5 * time.Minute
	DefaultLoadingTimeout        = 10 * time.Minute
	DefaultValidationTimeout     = 1 * time.Minute
)

// RetryConfig defines retry behavior for stages
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// StageTimeout returns the timeout for the given stage ID.
func StageTimeout(stageID string) time.Duration {
	switch stageID {
	case StageIDExtraction:
		return DefaultExtractionTimeout
	case StageIDTransformation:
		return DefaultTransformationTimeout
	case StageIDLoading:
		return DefaultLoadingTimeout
	case StageIDValidation:
		return DefaultValidationTimeout
	default:
		return DefaultStageTimeout
	}
}
