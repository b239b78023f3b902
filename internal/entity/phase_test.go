package entity

import "testing"

func TestPhaseCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
		want bool
	}{
		{"created to preprocessing", PhaseCreated, PhasePreprocessing, true},
		{"preprocessing to topics_ready", PhasePreprocessing, PhaseTopicsReady, true},
		{"topics_ready to generating_questions", PhaseTopicsReady, PhaseGeneratingQuestions, true},
		{"generating_questions to questions_ready", PhaseGeneratingQuestions, PhaseQuestionsReady, true},
		{"questions_ready to awaiting_responses", PhaseQuestionsReady, PhaseAwaitingResponses, true},
		{"awaiting_responses to evaluating", PhaseAwaitingResponses, PhaseEvaluating, true},
		{"evaluating to completed", PhaseEvaluating, PhaseCompleted, true},

		{"no skipping ahead", PhaseCreated, PhaseTopicsReady, false},
		{"no moving backwards", PhaseEvaluating, PhaseAwaitingResponses, false},
		{"no self transition", PhasePreprocessing, PhasePreprocessing, false},
		{"completed is terminal", PhaseCompleted, PhaseEvaluating, false},

		{"failed reachable from created", PhaseCreated, PhaseFailed, true},
		{"failed reachable from evaluating", PhaseEvaluating, PhaseFailed, true},
		{"failed not reachable from completed", PhaseCompleted, PhaseFailed, false},
		{"failed not reachable from failed", PhaseFailed, PhaseFailed, false},
		{"no leaving failed", PhaseFailed, PhaseCreated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	if !PhaseCompleted.IsTerminal() || !PhaseFailed.IsTerminal() {
		t.Error("completed and failed must be terminal")
	}
	for _, p := range []Phase{PhaseCreated, PhasePreprocessing, PhaseTopicsReady, PhaseGeneratingQuestions, PhaseQuestionsReady, PhaseAwaitingResponses, PhaseEvaluating} {
		if p.IsTerminal() {
			t.Errorf("%s must not be terminal", p)
		}
	}
}

func TestPhaseAtLeast(t *testing.T) {
	if !PhaseQuestionsReady.AtLeast(PhaseTopicsReady) {
		t.Error("questions_ready should be at least topics_ready")
	}
	if PhaseCreated.AtLeast(PhaseEvaluating) {
		t.Error("created should not be at least evaluating")
	}
	if PhaseFailed.AtLeast(PhaseCreated) {
		t.Error("failed is never at least anything")
	}
}
