package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
)

// LoadingStage persists the normalized dataset in every requested
// format. Formats are written best-effort: one failed writer is
// recorded and the rest still run.
type LoadingStage struct {
	exp     *exporter.Exporter
	formats []string
}

// NewLoadingStage creates the loading stage.
func NewLoadingStage(exp *exporter.Exporter, formats []string) *LoadingStage {
	return &LoadingStage{exp: exp, formats: formats}
}

func (s *LoadingStage) ID() string   { return StageIDLoading }
func (s *LoadingStage) Name() string { return StageNameLoading }

// Validate checks the stage preconditions.
func (s *LoadingStage) Validate(state *RunState) error {
	if s.exp == nil {
		return fmt.Errorf("no exporter configured")
	}
	if len(s.formats) == 0 {
		return fmt.Errorf("no output formats requested")
	}
	return nil
}

// Execute writes one file per requested format plus the metadata
// artifact. It only errors on a broken configuration; per-format
// failures end up in the run state for the validator to judge.
func (s *LoadingStage) Execute(ctx context.Context, state *RunState) error {
	logger := infrastructure.LoggerFromContext(ctx)

	stats := exporter.ComputeStatistics(state.Properties, state.Completeness)

	for _, format := range s.formats {
		path, err := s.exportFormat(format, state, stats)
		if err != nil {
			outErr := NewOutputError(StageIDLoading, format, err)
			state.OutputErrors = append(state.OutputErrors, outErr.Error())
			logger.ErrorContext(ctx, "format export failed",
				slog.String("format", format),
				slog.String("error", err.Error()))
			continue
		}
		state.OutputPaths = append(state.OutputPaths, path)
		logger.InfoContext(ctx, "format exported",
			slog.String("format", format),
			slog.String("path", path))
	}

	metaPath, err := s.exp.ExportMetadata(stats, state.StartTime)
	if err != nil {
		outErr := NewOutputError(StageIDLoading, "metadata", err)
		state.OutputErrors = append(state.OutputErrors, outErr.Error())
		logger.ErrorContext(ctx, "metadata export failed",
			slog.String("error", err.Error()))
	} else {
		state.MetadataPath = metaPath
	}

	logger.InfoContext(ctx, "loading finished",
		slog.Int("outputs", len(state.OutputPaths)),
		slog.Int("failures", len(state.OutputErrors)))
	return nil
}

func (s *LoadingStage) exportFormat(format string, state *RunState, stats *exporter.Statistics) (string, error) {
	switch format {
	case "csv":
		return s.exp.ExportCSV(state.Properties, state.StartTime)
	case "json":
		return s.exp.ExportJSON(state.Properties, state.StartTime)
	case "parquet":
		return s.exp.ExportParquet(state.Properties, state.StartTime)
	case "xlsx":
		return s.exp.ExportExcel(state.Properties, stats, state.StartTime)
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}
