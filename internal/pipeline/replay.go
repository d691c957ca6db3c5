package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
)

// Replay stage identifiers
const (
	StageIDReplay   = "replay"
	StageNameReplay = "Raw Dataset Replay"
)

// ReplayStage substitutes extraction with a previously written raw
// dataset, so transformation and loading can be re-run without
// re-scraping.
type ReplayStage struct {
	rawPath string
}

// NewReplayStage creates a replay stage for the given raw dataset
// artifact.
func NewReplayStage(rawPath string) *ReplayStage {
	return &ReplayStage{rawPath: rawPath}
}

func (s *ReplayStage) ID() string   { return StageIDReplay }
func (s *ReplayStage) Name() string { return StageNameReplay }

// Validate checks that the raw dataset exists.
func (s *ReplayStage) Validate(state *RunState) error {
	if s.rawPath == "" {
		return fmt.Errorf("no raw dataset path given")
	}
	if _, err := os.Stat(s.rawPath); err != nil {
		return fmt.Errorf("raw dataset not readable: %w", err)
	}
	return nil
}

// Execute points the run at the raw dataset; the transformation stage
// reads it back.
func (s *ReplayStage) Execute(ctx context.Context, state *RunState) error {
	state.RawPath = s.rawPath
	infrastructure.LoggerFromContext(ctx).InfoContext(ctx, "replaying raw dataset",
		slog.String("path", s.rawPath))
	return nil
}
