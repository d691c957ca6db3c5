package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// ValidationStage judges the run against the configured thresholds and
// produces the DatasetReport. Every violated threshold is enumerated;
// the stage itself never fails the run.
type ValidationStage struct {
	thresholds config.ThresholdConfig
	search     config.SearchConfig
	paths      *config.Paths
}

// NewValidationStage creates the validation stage.
func NewValidationStage(thresholds config.ThresholdConfig, search config.SearchConfig, paths *config.Paths) *ValidationStage {
	return &ValidationStage{
		thresholds: thresholds,
		search:     search,
		paths:      paths,
	}
}

func (s *ValidationStage) ID() string   { return StageIDValidation }
func (s *ValidationStage) Name() string { return StageNameValidation }

// Validate checks the stage preconditions.
func (s *ValidationStage) Validate(state *RunState) error {
	return nil
}

// Execute builds the DatasetReport and persists it. A run with an
// empty dataset still gets a valid report with success=false.
func (s *ValidationStage) Execute(ctx context.Context, state *RunState) error {
	logger := infrastructure.LoggerFromContext(ctx)

	report := BuildReport(state, s.thresholds)
	state.Report = report

	reportPath := s.paths.ReportPath(s.search, state.StartTime)
	if err := exporter.WriteJSONFile(reportPath, report); err != nil {
		logger.ErrorContext(ctx, "failed to write run report",
			slog.String("path", reportPath),
			slog.String("error", err.Error()))
	} else {
		logger.InfoContext(ctx, "run report written",
			slog.String("path", reportPath))
	}

	logger.InfoContext(ctx, "validation finished",
		slog.Bool("success", report.Success),
		slog.Float64("average_quality", report.AverageQuality),
		slog.Int("failure_reasons", len(report.FailureReasons)))
	return nil
}

// BuildReport derives the DatasetReport from the run state. It is
// separated from Execute so a failed run can still synthesize a
// report.
func BuildReport(state *RunState, thresholds config.ThresholdConfig) *domain.DatasetReport {
	avgQuality := averageQuality(state.Properties)

	var reasons []string
	if len(state.Properties) < thresholds.MinRecords {
		reasons = append(reasons, fmt.Sprintf(
			"record count %d below minimum %d", len(state.Properties), thresholds.MinRecords))
	}
	if avgQuality < thresholds.MinAverageQuality {
		reasons = append(reasons, fmt.Sprintf(
			"average quality %.1f below minimum %.1f", avgQuality, thresholds.MinAverageQuality))
	}
	if len(state.OutputPaths) == 0 {
		reasons = append(reasons, "no output files were written")
	}

	outputs := make([]string, 0, len(state.OutputPaths)+1)
	outputs = append(outputs, state.OutputPaths...)
	if state.MetadataPath != "" {
		outputs = append(outputs, state.MetadataPath)
	}

	completeness := state.Completeness
	if completeness == nil {
		completeness = map[string]float64{}
	}

	return &domain.DatasetReport{
		RunID:               state.ID,
		RunTimestamp:        state.StartTime,
		TotalRaw:            len(state.RawListings),
		TotalNormalized:     len(state.Properties),
		AverageQuality:      avgQuality,
		CompletenessByField: completeness,
		OutputFilePaths:     outputs,
		Success:             len(reasons) == 0,
		FailureReasons:      reasons,
	}
}

func averageQuality(properties []domain.NormalizedProperty) float64 {
	if len(properties) == 0 {
		return 0
	}
	sum := 0
	for i := range properties {
		sum += properties[i].QualityScore
	}
	return float64(sum) / float64(len(properties))
}
