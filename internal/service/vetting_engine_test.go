package service

import (
	"testing"

	"thrivingcare-api/internal/domain"
)

func inProgressCandidate(step int) domain.Candidate {
	return domain.Candidate{
		ID:            "c1",
		FirstName:     "Dana",
		Phone:         "+15551234567",
		VettingStatus: domain.VettingInProgress,
		VettingStep:   step,
		Active:        true,
	}
}

func TestEngineDecide_AnswerAdvancesOneStep(t *testing.T) {
	questions := DefaultQuestions()
	engine := NewVettingEngine(questions, nil)

	for step := 1; step < len(questions); step++ {
		tr := engine.Decide(inProgressCandidate(step), "some answer")
		if tr.Disposition != DispositionAnswer {
			t.Fatalf("step %d: expected answer disposition, got %v", step, tr.Disposition)
		}
		if tr.NextStep != step+1 {
			t.Fatalf("step %d: expected next step %d, got %d", step, step+1, tr.NextStep)
		}
		if tr.NextStatus != domain.VettingInProgress {
			t.Fatalf("step %d: expected in_progress, got %s", step, tr.NextStatus)
		}
		if tr.Question == nil || tr.Question.Step != step {
			t.Fatalf("step %d: logged question mismatch: %+v", step, tr.Question)
		}
		if tr.Reply != questions[step].Prompt {
			t.Fatalf("step %d: expected next prompt verbatim, got %q", step, tr.Reply)
		}
	}
}

func TestEngineDecide_FinalAnswerCompletes(t *testing.T) {
	questions := DefaultQuestions()
	engine := NewVettingEngine(questions, nil)
	last := len(questions)

	tr := engine.Decide(inProgressCandidate(last), "YES")
	if !tr.Completed {
		t.Fatalf("expected completion flag")
	}
	if tr.NextStep != last+1 || tr.NextStatus != domain.VettingCompleted {
		t.Fatalf("expected step %d / completed, got %d / %s", last+1, tr.NextStep, tr.NextStatus)
	}
	if tr.Reply != completionText {
		t.Fatalf("expected completion message, got %q", tr.Reply)
	}
}

func TestEngineDecide_TangentialQuestionKeepsState(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)
	cand := inProgressCandidate(4)

	tr := engine.Decide(cand, "what's the pay like in Austin?")
	if tr.Disposition != DispositionQuestion {
		t.Fatalf("expected question disposition, got %v", tr.Disposition)
	}
	if tr.NextStep != 0 || tr.Completed {
		t.Fatalf("tangential question must not touch vetting state: %+v", tr)
	}
	if tr.PendingPrompt != DefaultQuestions()[3].Prompt {
		t.Fatalf("expected pending step-4 prompt, got %q", tr.PendingPrompt)
	}
}

func TestEngineDecide_OptOutPreservesStep(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)

	// STOP contiene keyword de trabajo en contexto, igual gana como comando.
	tr := engine.Decide(inProgressCandidate(3), "STOP")
	if tr.Disposition != DispositionOptOut {
		t.Fatalf("expected opt-out, got %v", tr.Disposition)
	}
	if tr.NextStep != 0 {
		t.Fatalf("opt-out must not carry a step transition: %+v", tr)
	}
}

func TestEngineDecide_HelpRepeatsPendingPrompt(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)

	tr := engine.Decide(inProgressCandidate(2), "HELP")
	if tr.Disposition != DispositionHelp {
		t.Fatalf("expected help, got %v", tr.Disposition)
	}
	want := helpText + "\n\n" + DefaultQuestions()[1].Prompt
	if tr.Reply != want {
		t.Fatalf("expected help plus pending prompt, got %q", tr.Reply)
	}
}

func TestEngineDecide_CompletedRoutesToEngagement(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)
	cand := inProgressCandidate(6)
	cand.VettingStatus = domain.VettingCompleted

	for _, text := range []string{"TX, CA", "what's next", "random note"} {
		tr := engine.Decide(cand, text)
		if tr.Disposition != DispositionEngagement {
			t.Fatalf("text=%q: expected engagement, got %v", text, tr.Disposition)
		}
	}
}

func TestEngineCompletionPercent(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)

	cases := []struct {
		step   int
		status domain.VettingStatus
		want   int
	}{
		{1, domain.VettingInProgress, 0},
		{3, domain.VettingInProgress, 40},
		{5, domain.VettingInProgress, 80},
		{6, domain.VettingCompleted, 100},
	}
	for _, tc := range cases {
		c := inProgressCandidate(tc.step)
		c.VettingStatus = tc.status
		if got := engine.CompletionPercent(c); got != tc.want {
			t.Fatalf("step=%d: expected %d%%, got %d%%", tc.step, tc.want, got)
		}
	}
}

func TestEnginePendingPromptStable(t *testing.T) {
	engine := NewVettingEngine(DefaultQuestions(), nil)
	cand := inProgressCandidate(3)

	first := engine.PendingPrompt(cand)
	for i := 0; i < 5; i++ {
		if got := engine.PendingPrompt(cand); got != first {
			t.Fatalf("iteration %d: prompt changed from %q to %q", i, first, got)
		}
	}
	if first != DefaultQuestions()[2].Prompt {
		t.Fatalf("unexpected pending prompt %q", first)
	}
}

func TestQuestionSequenceIsContiguous(t *testing.T) {
	questions := DefaultQuestions()
	for i, q := range questions {
		if q.Step != i+1 {
			t.Fatalf("question %s: expected step %d, got %d", q.ID, i+1, q.Step)
		}
		if q.ID == "" || q.Prompt == "" || q.Field == "" {
			t.Fatalf("question %d incomplete: %+v", i, q)
		}
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
}

func TestDefaultQuestionsReturnsCopy(t *testing.T) {
	a := DefaultQuestions()
	a[0].Prompt = "mutated"
	b := DefaultQuestions()
	if b[0].Prompt == "mutated" {
		t.Fatalf("DefaultQuestions must return an independent copy")
	}
}
