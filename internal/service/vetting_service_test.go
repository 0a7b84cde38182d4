package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/llm"
	"thrivingcare-api/internal/repository"
)

// fakeCandidateRepo guarda candidatos en memoria y reproduce la semantica
// condicional de AdvanceVetting.
type fakeCandidateRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Candidate
}

func newFakeCandidateRepo(cands ...domain.Candidate) *fakeCandidateRepo {
	r := &fakeCandidateRepo{byID: make(map[string]domain.Candidate)}
	for _, c := range cands {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCandidateRepo) Create(_ context.Context, c domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

func (r *fakeCandidateRepo) GetByID(_ context.Context, id string) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.Candidate{}, repository.ErrCandidateNotFound
	}
	return c, nil
}

func (r *fakeCandidateRepo) GetByPhone(_ context.Context, phone string) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Phone == phone {
			return c, nil
		}
	}
	return domain.Candidate{}, repository.ErrCandidateNotFound
}

func (r *fakeCandidateRepo) UpdateFields(_ context.Context, id string, update repository.CandidateUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrCandidateNotFound
	}
	update.ApplyTo(&c)
	r.byID[id] = c
	return nil
}

func (r *fakeCandidateRepo) AdvanceVetting(_ context.Context, id string, expectedStep int, update repository.CandidateUpdate, nextStep int, nextStatus domain.VettingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.VettingStep != expectedStep {
		return false, nil
	}
	update.ApplyTo(&c)
	c.VettingStep = nextStep
	c.VettingStatus = nextStatus
	r.byID[id] = c
	return true, nil
}

func (r *fakeCandidateRepo) SetResumeURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrCandidateNotFound
	}
	c.ResumeURL = url
	r.byID[id] = c
	return nil
}

func (r *fakeCandidateRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Candidate, error) {
	return nil, nil
}

func (r *fakeCandidateRepo) CountByVettingStatus(_ context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (r *fakeCandidateRepo) CountCreatedSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *fakeCandidateRepo) get(t *testing.T, id string) domain.Candidate {
	t.Helper()
	c, err := r.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get candidate %s: %v", id, err)
	}
	return c
}

type syncVettingCall struct {
	CandidateID string
	Status      domain.VettingStatus
	Step        int
	QuestionID  string
	RawAnswer   string
}

type fakeApplicationRepo struct {
	mu      sync.Mutex
	created []domain.Application
	syncs   []syncVettingCall
}

func (r *fakeApplicationRepo) Create(_ context.Context, a domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, a)
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, _ string) (domain.Application, error) {
	return domain.Application{}, repository.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) ListByCandidate(_ context.Context, _ string) ([]domain.Application, error) {
	return nil, nil
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, _, _ string) error { return nil }

func (r *fakeApplicationRepo) SyncVetting(_ context.Context, candidateID string, status domain.VettingStatus, step int, questionID, rawAnswer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, syncVettingCall{candidateID, status, step, questionID, rawAnswer})
	return nil
}

func (r *fakeApplicationRepo) CountByStatus(_ context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

type fakeVettingLogRepo struct {
	mu      sync.Mutex
	entries []domain.VettingLogEntry
}

func (r *fakeVettingLogRepo) Append(_ context.Context, entry domain.VettingLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeVettingLogRepo) ListByCandidate(_ context.Context, candidateID string) ([]domain.VettingLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VettingLogEntry
	for _, e := range r.entries {
		if e.CandidateID == candidateID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs []domain.Job
	err  error
}

func (r *fakeJobRepo) Create(_ context.Context, _ domain.Job) error     { return nil }
func (r *fakeJobRepo) Update(_ context.Context, _ domain.Job) error     { return nil }
func (r *fakeJobRepo) Deactivate(_ context.Context, _ string) error     { return nil }
func (r *fakeJobRepo) CountActive(_ context.Context) (int, error)       { return len(r.jobs), nil }
func (r *fakeJobRepo) GetByID(_ context.Context, id string) (domain.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return domain.Job{}, repository.ErrJobNotFound
}

func (r *fakeJobRepo) List(_ context.Context, _ domain.JobFilter) ([]domain.Job, int, error) {
	return r.jobs, len(r.jobs), nil
}

func (r *fakeJobRepo) FindForCandidate(_ context.Context, _ domain.Candidate, _ int) ([]domain.Job, error) {
	return r.jobs, r.err
}

// fakeDeduper marca cada id la primera vez que lo ve.
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (d *fakeDeduper) FirstSeen(_ context.Context, messageID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[messageID] {
		return false
	}
	d.seen[messageID] = true
	return true
}

type vettingFixture struct {
	svc        *VettingService
	candidates *fakeCandidateRepo
	apps       *fakeApplicationRepo
	log        *fakeVettingLogRepo
	llmClient  llm.Client
}

func newVettingFixture(llmClient llm.Client, cands ...domain.Candidate) vettingFixture {
	logger := zap.NewNop()
	candidates := newFakeCandidateRepo(cands...)
	apps := &fakeApplicationRepo{}
	vlog := &fakeVettingLogRepo{}
	engine := NewVettingEngine(DefaultQuestions(), NewKeywordClassifier())
	engagement := NewEngagementService(logger, llmClient, &fakeJobRepo{})
	svc := NewVettingService(logger, candidates, apps, vlog, engine, engagement, nil, newFakeDeduper())
	return vettingFixture{svc: svc, candidates: candidates, apps: apps, log: vlog, llmClient: llmClient}
}

func vettingCandidate(step int) domain.Candidate {
	return domain.Candidate{
		ID:            "cand-1",
		FirstName:     "Dana",
		LastName:      "Reyes",
		Phone:         "+15551230001",
		VettingStatus: domain.VettingInProgress,
		VettingStep:   step,
		Active:        true,
	}
}

func TestHandleInbound_AnswerAdvancesAndLogs(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(1))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "TX, CA", "SM001")
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	questions := DefaultQuestions()
	if reply != questions[1].Prompt {
		t.Fatalf("reply = %q, want step-2 prompt %q", reply, questions[1].Prompt)
	}

	cand := fx.candidates.get(t, "cand-1")
	if cand.VettingStep != 2 {
		t.Fatalf("step = %d, want 2", cand.VettingStep)
	}
	if cand.LicenseStates != "TX,CA" {
		t.Fatalf("license states = %q, want TX,CA", cand.LicenseStates)
	}
	if cand.VettingStatus != domain.VettingInProgress {
		t.Fatalf("status = %q, want in_progress", cand.VettingStatus)
	}

	if len(fx.log.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(fx.log.entries))
	}
	entry := fx.log.entries[0]
	if entry.QuestionID != "license_states" || entry.Step != 1 || entry.Response != "TX, CA" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}

	if len(fx.apps.syncs) != 1 {
		t.Fatalf("sync calls = %d, want 1", len(fx.apps.syncs))
	}
	if got := fx.apps.syncs[0]; got.Step != 2 || got.QuestionID != "license_states" || got.RawAnswer != "TX, CA" {
		t.Fatalf("unexpected sync call: %+v", got)
	}
}

func TestHandleInbound_FinalAnswerCompletes(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(5))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "YES", "SM002")
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if reply != completionText {
		t.Fatalf("reply = %q, want completion text", reply)
	}

	cand := fx.candidates.get(t, "cand-1")
	if cand.VettingStatus != domain.VettingCompleted {
		t.Fatalf("status = %q, want completed", cand.VettingStatus)
	}
	if cand.OpenToTravel == nil || !*cand.OpenToTravel {
		t.Fatalf("open_to_travel = %v, want true", cand.OpenToTravel)
	}
}

func TestHandleInbound_TangentialQuestionDoesNotMutate(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "Weekly rates vary by state."}, vettingCandidate(4))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "What does the housing stipend cover?", "SM004")
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	pending := DefaultQuestions()[3].Prompt
	if !strings.HasSuffix(reply, pending) {
		t.Fatalf("reply should end with pending prompt %q, got %q", pending, reply)
	}
	if !strings.Contains(reply, "Weekly rates vary by state.") {
		t.Fatalf("reply should contain assistant answer, got %q", reply)
	}

	cand := fx.candidates.get(t, "cand-1")
	if cand.VettingStep != 4 || cand.VettingStatus != domain.VettingInProgress {
		t.Fatalf("state mutated: step=%d status=%q", cand.VettingStep, cand.VettingStatus)
	}
	if len(fx.log.entries) != 0 {
		t.Fatalf("tangential question must not be logged as answer")
	}
}

func TestHandleInbound_OptOutAndBack(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(3))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "STOP", "SM005")
	if err != nil {
		t.Fatalf("HandleInbound STOP: %v", err)
	}
	if reply != optOutText {
		t.Fatalf("reply = %q, want opt-out text", reply)
	}

	cand := fx.candidates.get(t, "cand-1")
	if cand.Active {
		t.Fatalf("candidate still active after STOP")
	}
	if cand.VettingStep != 3 || cand.VettingStatus != domain.VettingInProgress {
		t.Fatalf("opt out must preserve vetting state: step=%d status=%q", cand.VettingStep, cand.VettingStatus)
	}

	reply, err = fx.svc.HandleInbound(context.Background(), "+15551230001", "START", "SM006")
	if err != nil {
		t.Fatalf("HandleInbound START: %v", err)
	}
	if !strings.HasPrefix(reply, optInText) {
		t.Fatalf("reply = %q, want opt-in text first", reply)
	}
	if !strings.HasSuffix(reply, DefaultQuestions()[2].Prompt) {
		t.Fatalf("opt-in reply should re-display the pending question, got %q", reply)
	}
	if cand = fx.candidates.get(t, "cand-1"); !cand.Active {
		t.Fatalf("candidate not reactivated after START")
	}
}

func TestHandleInbound_LLMFailureFallsBack(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Err: errors.New("upstream down")}, vettingCandidate(2))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "Do you have ICU jobs in Texas right now?", "SM007")
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if !strings.HasPrefix(reply, fallbackText) {
		t.Fatalf("reply should start with fallback text, got %q", reply)
	}
	if !strings.HasSuffix(reply, DefaultQuestions()[1].Prompt) {
		t.Fatalf("fallback reply should still append the pending prompt, got %q", reply)
	}
}

func TestHandleInbound_DuplicateMessageIgnored(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(1))

	if _, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "TX", "SM008"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "TX", "SM008")
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if reply != "" {
		t.Fatalf("redelivery must be silent, got %q", reply)
	}
	if cand := fx.candidates.get(t, "cand-1"); cand.VettingStep != 2 {
		t.Fatalf("redelivery advanced the step twice: step=%d", cand.VettingStep)
	}
}

func TestHandleInbound_UnknownSenderIsSilent(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(1))

	reply, err := fx.svc.HandleInbound(context.Background(), "+15559990000", "hello", "SM009")
	if !errors.Is(err, ErrUnknownSender) {
		t.Fatalf("err = %v, want ErrUnknownSender", err)
	}
	if reply != "" {
		t.Fatalf("unknown sender must get no reply, got %q", reply)
	}
}

func TestHandleChat_EmptyMessageResumesWithoutMutation(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(3))

	first, err := fx.svc.HandleChat(context.Background(), "cand-1", "")
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	second, err := fx.svc.HandleChat(context.Background(), "cand-1", "  ")
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}

	if first.Reply != second.Reply {
		t.Fatalf("resume prompt changed between calls: %q vs %q", first.Reply, second.Reply)
	}
	if !strings.HasSuffix(first.Reply, DefaultQuestions()[2].Prompt) {
		t.Fatalf("resume reply should end with pending prompt, got %q", first.Reply)
	}
	if first.ProfileCompletion != 40 {
		t.Fatalf("completion = %d, want 40", first.ProfileCompletion)
	}
	if cand := fx.candidates.get(t, "cand-1"); cand.VettingStep != 3 {
		t.Fatalf("empty message mutated step: %d", cand.VettingStep)
	}
}

func TestHandleChat_AnswerReportsProgress(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(2))

	res, err := fx.svc.HandleChat(context.Background(), "cand-1", "7 years")
	if err != nil {
		t.Fatalf("HandleChat: %v", err)
	}
	if res.VettingStatus != domain.VettingInProgress {
		t.Fatalf("status = %q, want in_progress", res.VettingStatus)
	}
	if res.ProfileCompletion != 40 {
		t.Fatalf("completion = %d, want 40", res.ProfileCompletion)
	}
	cand := fx.candidates.get(t, "cand-1")
	if cand.YearsExperience == nil || *cand.YearsExperience != 7 {
		t.Fatalf("years_experience = %v, want 7", cand.YearsExperience)
	}
}

// blockingLLM queda colgado hasta que el test lo libere; simula un
// proveedor lento sin dormir tiempos fijos.
type blockingLLM struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingLLM) Generate(ctx context.Context, _ string) (string, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return "Rates depend on the state.", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestHandleInbound_SlowAssistedReplyDoesNotBlockAnswers(t *testing.T) {
	gen := &blockingLLM{started: make(chan struct{}), release: make(chan struct{})}
	fx := newVettingFixture(gen, vettingCandidate(2))

	tangential := make(chan string, 1)
	go func() {
		reply, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "What does the housing stipend cover?", "SM200")
		if err != nil {
			t.Errorf("tangential question: %v", err)
		}
		tangential <- reply
	}()

	<-gen.started

	// Con el generador todavia colgado, una respuesta de vetting del mismo
	// candidato tiene que procesarse sin esperarlo.
	answered := make(chan error, 1)
	go func() {
		_, err := fx.svc.HandleInbound(context.Background(), "+15551230001", "7", "SM201")
		answered <- err
	}()

	select {
	case err := <-answered:
		if err != nil {
			t.Fatalf("vetting answer: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("vetting answer blocked behind the assisted reply")
	}

	cand := fx.candidates.get(t, "cand-1")
	if cand.VettingStep != 3 {
		t.Fatalf("step = %d, want 3", cand.VettingStep)
	}

	close(gen.release)
	reply := <-tangential
	if !strings.Contains(reply, "Rates depend on the state.") {
		t.Fatalf("assisted reply = %q", reply)
	}
}

func TestApplyAnswer_LostRaceRepeatsCurrentQuestion(t *testing.T) {
	fx := newVettingFixture(&llm.MockClient{Response: "ok"}, vettingCandidate(1))

	// Simula que otro mensaje gano la carrera entre la lectura del engine y
	// el UPDATE condicionado.
	cand := fx.candidates.get(t, "cand-1")
	tr := NewVettingEngine(DefaultQuestions(), NewKeywordClassifier()).Decide(cand, "TX")
	fx.candidates.byID["cand-1"] = func() domain.Candidate {
		c := cand
		c.VettingStep = 2
		return c
	}()

	reply, got, err := fx.svc.applyAnswer(context.Background(), cand, "TX", tr)
	if err != nil {
		t.Fatalf("applyAnswer: %v", err)
	}
	if reply != DefaultQuestions()[1].Prompt {
		t.Fatalf("lost race should repeat the current question, got %q", reply)
	}
	if got.VettingStep != 2 {
		t.Fatalf("returned candidate step = %d, want re-read 2", got.VettingStep)
	}
	if len(fx.log.entries) != 0 {
		t.Fatalf("lost race must not append a log entry")
	}
}
