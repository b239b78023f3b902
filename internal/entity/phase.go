package entity

// Phase is the lifecycle state of an interview session. Transitions are
// monotonic; Failed is terminal and reachable from any non-terminal phase.
type Phase string

const (
	PhaseCreated             Phase = "created"
	PhasePreprocessing       Phase = "preprocessing"
	PhaseTopicsReady         Phase = "topics_ready"
	PhaseGeneratingQuestions Phase = "generating_questions"
	PhaseQuestionsReady      Phase = "questions_ready"
	PhaseAwaitingResponses   Phase = "awaiting_responses"
	PhaseEvaluating          Phase = "evaluating"
	PhaseCompleted           Phase = "completed"
	PhaseFailed              Phase = "failed"
)

var phaseSuccessors = map[Phase]Phase{
	PhaseCreated:             PhasePreprocessing,
	PhasePreprocessing:       PhaseTopicsReady,
	PhaseTopicsReady:         PhaseGeneratingQuestions,
	PhaseGeneratingQuestions: PhaseQuestionsReady,
	PhaseQuestionsReady:      PhaseAwaitingResponses,
	PhaseAwaitingResponses:   PhaseEvaluating,
	PhaseEvaluating:          PhaseCompleted,
}

// IsTerminal reports whether no further transition may leave p.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// CanTransition reports whether next is a valid successor of p.
func (p Phase) CanTransition(next Phase) bool {
	if next == PhaseFailed {
		return !p.IsTerminal()
	}
	return phaseSuccessors[p] == next
}

// AtLeast reports whether p is at or past the target phase on the success
// path. Failed sessions are never "at least" anything.
func (p Phase) AtLeast(target Phase) bool {
	order := []Phase{
		PhaseCreated, PhasePreprocessing, PhaseTopicsReady,
		PhaseGeneratingQuestions, PhaseQuestionsReady,
		PhaseAwaitingResponses, PhaseEvaluating, PhaseCompleted,
	}
	pi, ti := -1, -1
	for i, ph := range order {
		if ph == p {
			pi = i
		}
		if ph == target {
			ti = i
		}
	}
	return pi >= 0 && ti >= 0 && pi >= ti
}
