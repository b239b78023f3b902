package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and API mapping.
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindExternalCall         Kind = "ExternalCallError"
	KindIsolatedStageFailure Kind = "IsolatedStageFailure"
	KindFatalFlow            Kind = "FatalFlowError"
	KindNotFound             Kind = "NotFoundError"
	KindConflict             Kind = "ConflictError"
)

// Stage names the pipeline stage an error originated from. Escalation always
// crosses exactly one level (call -> stage -> flow), so the stage pins the
// point of failure.
type Stage string

const (
	StagePreprocessing   Stage = "preprocessing"
	StageTopicExtraction Stage = "topic_extraction"
	StageQuestionGen     Stage = "question_generation"
	StageEvaluation      Stage = "evaluation"
	StageSessionStore    Stage = "session_store"
)

// Error is the application error type carried across service boundaries.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, stage Stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

func Wrap(kind Kind, stage Stage, message string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// Sentinel errors matched with errors.Is. They may be wrapped into *Error
// for stage attribution.
var (
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrMalformedTopicList   = errors.New("generator returned a malformed topic list")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidTransition    = errors.New("invalid phase transition")
	ErrIncompleteSubmission = errors.New("response batch does not cover every question")
	ErrSessionNotReady      = errors.New("session is not ready for this operation")
	ErrEvaluationNotReady   = errors.New("evaluation report is not ready")
	ErrFlowCancelled        = errors.New("session flow cancelled")
)

// KindOf extracts the Kind from err, defaulting to FatalFlowError for
// unclassified failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrIncompleteSubmission),
		errors.Is(err, ErrSessionNotReady):
		return KindValidation
	case errors.Is(err, ErrSessionNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition):
		return KindConflict
	case errors.Is(err, ErrEmbeddingUnavailable):
		return KindExternalCall
	}
	return KindFatalFlow
}

// StageOf extracts the Stage from err, if attributed.
func StageOf(err error) Stage {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}
