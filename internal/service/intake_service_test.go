package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/sms"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		in   string
		want Address
	}{
		{"123 Main St, Austin, TX 78701", Address{City: "Austin", State: "TX", Zip: "78701"}},
		{"456 Oak Ave, Apt 2, Denver, CO 80202", Address{City: "Denver", State: "CO", Zip: "80202"}},
		{"Miami, FL 33101", Address{City: "Miami", State: "FL", Zip: "33101"}},
		{"Portland, OR", Address{City: "Portland", State: "OR"}},
		{"TX", Address{State: "TX"}},
		{"", Address{}},
	}
	for _, tc := range cases {
		if got := ParseAddress(tc.in); got != tc.want {
			t.Fatalf("ParseAddress(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

type intakeFixture struct {
	svc        *IntakeService
	candidates *fakeCandidateRepo
	apps       *fakeApplicationRepo
	jobs       *fakeJobRepo
	messenger  *sms.MockMessenger
}

func newIntakeFixture(jobs *fakeJobRepo) intakeFixture {
	logger := zap.NewNop()
	candidates := newFakeCandidateRepo()
	apps := &fakeApplicationRepo{}
	messenger := &sms.MockMessenger{}
	svc := NewIntakeService(logger, candidates, apps, jobs, messenger, nil, DefaultQuestions())
	return intakeFixture{svc: svc, candidates: candidates, apps: apps, jobs: jobs, messenger: messenger}
}

func validIntake() IntakeInput {
	return IntakeInput{
		FirstName:   "Maria",
		LastName:    "Lopez",
		Discipline:  "RN",
		Specialty:   "ICU",
		Email:       "Maria.Lopez@Example.com",
		Phone:       "+15551230099",
		HomeAddress: "789 Pine Rd, Austin, TX 78701",
	}
}

func TestCreateCandidate_StartsVettingAndSendsWelcome(t *testing.T) {
	fx := newIntakeFixture(&fakeJobRepo{})

	cand, err := fx.svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	if cand.VettingStatus != domain.VettingInProgress || cand.VettingStep != 1 {
		t.Fatalf("vetting state = %q/%d, want in_progress/1", cand.VettingStatus, cand.VettingStep)
	}
	if !cand.Active {
		t.Fatalf("new candidate should be active")
	}
	if cand.Email != "maria.lopez@example.com" {
		t.Fatalf("email not normalized: %q", cand.Email)
	}
	if cand.HomeCity != "Austin" || cand.HomeState != "TX" || cand.HomeZip != "78701" {
		t.Fatalf("address not parsed: %+v", cand)
	}
	if cand.Source != "website_first_visit" {
		t.Fatalf("source = %q, want website_first_visit", cand.Source)
	}

	stored := fx.candidates.get(t, cand.ID)
	if stored.Phone != "+15551230099" {
		t.Fatalf("candidate not persisted: %+v", stored)
	}

	if len(fx.apps.created) != 1 {
		t.Fatalf("applications created = %d, want 1", len(fx.apps.created))
	}
	app := fx.apps.created[0]
	if app.Status != domain.ApplicationStatusVetting || app.JobID != nil {
		t.Fatalf("unexpected application: %+v", app)
	}

	if len(fx.messenger.Sent) != 1 {
		t.Fatalf("welcome messages = %d, want 1", len(fx.messenger.Sent))
	}
	welcome := fx.messenger.Sent[0]
	if welcome.To != cand.Phone {
		t.Fatalf("welcome sent to %q, want %q", welcome.To, cand.Phone)
	}
	if !strings.Contains(welcome.Body, DefaultQuestions()[0].Prompt) {
		t.Fatalf("welcome should include the first question, got %q", welcome.Body)
	}
	if !strings.Contains(welcome.Body, "STOP") {
		t.Fatalf("welcome should mention the opt-out keyword, got %q", welcome.Body)
	}
}

func TestCreateCandidate_MissingFields(t *testing.T) {
	fx := newIntakeFixture(&fakeJobRepo{})

	in := validIntake()
	in.Email = "  "
	if _, err := fx.svc.CreateCandidate(context.Background(), in); !errors.Is(err, ErrIntakeInvalid) {
		t.Fatalf("err = %v, want ErrIntakeInvalid", err)
	}
	if len(fx.messenger.Sent) != 0 {
		t.Fatalf("invalid intake must not send sms")
	}
}

func TestCreateCandidate_DuplicatePhone(t *testing.T) {
	fx := newIntakeFixture(&fakeJobRepo{})

	if _, err := fx.svc.CreateCandidate(context.Background(), validIntake()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := fx.svc.CreateCandidate(context.Background(), validIntake()); !errors.Is(err, ErrPhoneInUse) {
		t.Fatalf("err = %v, want ErrPhoneInUse", err)
	}
}

func TestCreateCandidate_SMSFailureDoesNotFailSignup(t *testing.T) {
	fx := newIntakeFixture(&fakeJobRepo{})
	fx.messenger.Err = errors.New("provider down")

	cand, err := fx.svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	if _, err := fx.candidates.GetByID(context.Background(), cand.ID); err != nil {
		t.Fatalf("candidate should persist despite sms failure: %v", err)
	}
}

func TestQuickApply_NewCandidateBindsJob(t *testing.T) {
	job := domain.Job{ID: "job-1", Title: "ICU RN", State: "TX", WeeklyGross: 2800, Active: true}
	fx := newIntakeFixture(&fakeJobRepo{jobs: []domain.Job{job}})

	cand, err := fx.svc.QuickApply(context.Background(), validIntake(), "job-1")
	if err != nil {
		t.Fatalf("QuickApply: %v", err)
	}
	if cand.Source != "quick_apply" {
		t.Fatalf("source = %q, want quick_apply", cand.Source)
	}

	// Alta general mas la aplicacion atada a la posicion.
	if len(fx.apps.created) != 2 {
		t.Fatalf("applications created = %d, want 2", len(fx.apps.created))
	}
	bound := fx.apps.created[1]
	if bound.JobID == nil || *bound.JobID != "job-1" {
		t.Fatalf("application not bound to job: %+v", bound)
	}
}

func TestQuickApply_ExistingCandidateReused(t *testing.T) {
	job := domain.Job{ID: "job-2", Title: "MedSurg RN", State: "FL", WeeklyGross: 2400, Active: true}
	fx := newIntakeFixture(&fakeJobRepo{jobs: []domain.Job{job}})

	first, err := fx.svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	cand, err := fx.svc.QuickApply(context.Background(), validIntake(), "job-2")
	if err != nil {
		t.Fatalf("QuickApply: %v", err)
	}
	if cand.ID != first.ID {
		t.Fatalf("quick apply created a second candidate for the same phone")
	}
	if len(fx.messenger.Sent) != 1 {
		t.Fatalf("existing candidate must not get a second welcome, sent=%d", len(fx.messenger.Sent))
	}
}

func TestQuickApply_UnknownJob(t *testing.T) {
	fx := newIntakeFixture(&fakeJobRepo{})

	if _, err := fx.svc.QuickApply(context.Background(), validIntake(), "missing"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
	if len(fx.apps.created) != 0 {
		t.Fatalf("unknown job must not create an application")
	}
}
