package domain

import (
	"time"
)

// DatasetReport summarizes one pipeline run. It is created once by the
// validation stage, persisted alongside the dataset artifacts, and
// returned to the caller for success/failure branching. It is never
// mutated after creation.
type DatasetReport struct {
	RunID               string             `json:"run_id"`
	RunTimestamp        time.Time          `json:"run_timestamp"`
	TotalRaw            int                `json:"total_raw"`
	TotalNormalized     int                `json:"total_normalized"`
	AverageQuality      float64            `json:"average_quality"`
	CompletenessByField map[string]float64 `json:"completeness_by_field"`
	OutputFilePaths     []string           `json:"output_file_paths"`
	Success             bool               `json:"success"`
	FailureReasons      []string           `json:"failure_reasons"`
}
