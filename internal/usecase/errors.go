package usecase

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the generation pipeline. Stages before
// publishing are fail-fast; the publish loop never aborts the batch.
type Stage string

const (
	StageResolveEpic  Stage = "resolve_epic"
	StageRankPages    Stage = "rank_pages"
	StageFetchContent Stage = "fetch_content"
	StageGenerate     Stage = "generate"
	StagePublish      Stage = "publish"
)

// Sentinel aborts for the empty-input cases of stages 2 and 3.
var (
	ErrNoPages        = errors.New("no wiki pages found")
	ErrNoRelatedPages = errors.New("no related wiki pages found")
	ErrPagesNotFound  = errors.New("wiki pages not found")
)

// StageError tags a fail-fast abort with the stage that produced it so the
// transport layer can map it to a response status.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
