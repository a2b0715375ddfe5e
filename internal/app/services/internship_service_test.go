package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/app/workflow"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
)

type fakeInternshipStore struct {
	records map[string]*models.Internship
	created []*models.Internship

	// conflictsBefore makes ApplyTransition fail with ErrConflict this many
	// times before succeeding.
	conflictsBefore int
	applyCalls      int
}

func newFakeInternshipStore() *fakeInternshipStore {
	return &fakeInternshipStore{records: map[string]*models.Internship{}}
}

func (s *fakeInternshipStore) Create(ctx context.Context, rec *models.Internship) (string, error) {
	copied := *rec
	s.records[rec.ID] = &copied
	s.created = append(s.created, &copied)
	return rec.ID, nil
}

func (s *fakeInternshipStore) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (s *fakeInternshipStore) FindByStudent(ctx context.Context, studentID int64) ([]models.Internship, error) {
	var recs []models.Internship
	for _, rec := range s.records {
		if rec.StudentID == studentID {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (s *fakeInternshipStore) FindApprovedByStudent(ctx context.Context, studentID int64) ([]models.Internship, error) {
	var recs []models.Internship
	for _, rec := range s.records {
		if rec.StudentID == studentID && rec.AdminApproval != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (s *fakeInternshipStore) FindPendingForRole(ctx context.Context, role models.RoleType) ([]models.Internship, error) {
	var recs []models.Internship
	for _, rec := range s.records {
		if rec.Status != models.StatusPending {
			continue
		}
		switch role {
		case models.RoleTeacher:
			if rec.TeacherApproval == nil {
				recs = append(recs, *rec)
			}
		case models.RoleAdmin:
			if rec.TeacherApproval != nil && rec.AdminApproval == nil {
				recs = append(recs, *rec)
			}
		}
	}
	return recs, nil
}

func (s *fakeInternshipStore) ApplyTransition(ctx context.Context, id string, fn workflow.Transition) (*models.Internship, error) {
	s.applyCalls++

	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrInternshipNotFound
	}

	updated, err := fn(*rec)
	if err != nil {
		return nil, err
	}

	if s.conflictsBefore > 0 {
		s.conflictsBefore--
		return nil, apperrors.ErrConflict
	}

	updated.Version = rec.Version + 1
	s.records[id] = &updated
	copied := updated
	return &copied, nil
}

type fakeEvidenceStorage struct {
	saved []string
	err   error
}

func (f *fakeEvidenceStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	ref := "uploads/" + fileHeader.Filename
	f.saved = append(f.saved, ref)
	return ref, nil
}

func newTestService(store *fakeInternshipStore) (*internshipServiceImpl, *fakeEvidenceStorage) {
	evidence := &fakeEvidenceStorage{}
	svc := &internshipServiceImpl{
		store:    store,
		evidence: evidence,
		clock: func() time.Time {
			return time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		},
		newID: func() string { return "rec-fixed" },
	}
	return svc, evidence
}

func validSubmitRequest() *dto.SubmitInternshipRequest {
	return &dto.SubmitInternshipRequest{
		CompanyName:   "Acme Corp",
		RoleTitle:     "Backend Intern",
		StartDate:     "2025-06-01",
		EndDate:       "2025-08-24",
		DurationWeeks: 12,
		Description:   "Built internal tooling",
	}
}

func certificate() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "certificate.pdf"}
}

var (
	studentActor = workflow.Actor{ID: 30, Role: models.RoleStudent}
	teacherActor = workflow.Actor{ID: 10, Role: models.RoleTeacher}
	adminActor   = workflow.Actor{ID: 20, Role: models.RoleAdmin}
)

func TestSubmitCreatesPendingRecord(t *testing.T) {
	store := newFakeInternshipStore()
	svc, evidence := newTestService(store)

	resp, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.ID != "rec-fixed" {
		t.Fatalf("expected id rec-fixed, got %q", resp.ID)
	}
	if resp.Status != models.StatusPending {
		t.Fatalf("expected status pending, got %q", resp.Status)
	}
	if resp.Credits != 0 {
		t.Fatalf("expected 0 credits at submission, got %d", resp.Credits)
	}
	if resp.EvidenceRef != "uploads/certificate.pdf" {
		t.Fatalf("expected evidence ref from storage, got %q", resp.EvidenceRef)
	}
	if len(evidence.saved) != 1 {
		t.Fatalf("expected one saved file, got %d", len(evidence.saved))
	}
	if len(store.created) != 1 || store.created[0].Version != 1 {
		t.Fatal("expected one stored record at version 1")
	}
}

func TestSubmitRejectsNonStudents(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	for _, actor := range []workflow.Actor{teacherActor, adminActor} {
		_, err := svc.Submit(context.Background(), actor, validSubmitRequest(), certificate())
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("role %s: expected ErrPermissionDenied, got %v", actor.Role, err)
		}
	}
}

func TestSubmitValidatesDates(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	cases := []struct {
		name       string
		mutate     func(*dto.SubmitInternshipRequest)
		wantTarget error
	}{
		{"bad start date", func(r *dto.SubmitInternshipRequest) { r.StartDate = "01-06-2025" }, apperrors.ErrValidationFailed},
		{"bad end date", func(r *dto.SubmitInternshipRequest) { r.EndDate = "soon" }, apperrors.ErrValidationFailed},
		{"end before start", func(r *dto.SubmitInternshipRequest) { r.EndDate = "2025-05-01" }, apperrors.ErrValidationFailed},
		{"zero duration", func(r *dto.SubmitInternshipRequest) { r.DurationWeeks = 0 }, apperrors.ErrValidationFailed},
	}

	for _, tc := range cases {
		req := validSubmitRequest()
		tc.mutate(req)
		if _, err := svc.Submit(context.Background(), studentActor, req, certificate()); !errors.Is(err, tc.wantTarget) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantTarget, err)
		}
	}
}

func TestSubmitRequiresCertificate(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	_, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), nil)
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	otherStudent := workflow.Actor{ID: 99, Role: models.RoleStudent}
	if _, err := svc.GetByID(context.Background(), otherStudent, "rec-fixed"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign student, got %v", err)
	}

	// Reviewers can read any record.
	if _, err := svc.GetByID(context.Background(), teacherActor, "rec-fixed"); err != nil {
		t.Fatalf("teacher read: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	_, err := svc.GetByID(context.Background(), teacherActor, "missing")
	if !errors.Is(err, apperrors.ErrInternshipNotFound) {
		t.Fatalf("expected ErrInternshipNotFound, got %v", err)
	}
}

func TestApproveFullWorkflow(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	resp, err := svc.Approve(context.Background(), teacherActor, "rec-fixed", &dto.ApproveInternshipRequest{Credits: 3, Feedback: "good"})
	if err != nil {
		t.Fatalf("teacher approve: %v", err)
	}
	if resp.Status != models.StatusPending || resp.Credits != 3 {
		t.Fatalf("expected pending with 3 credits, got %q/%d", resp.Status, resp.Credits)
	}

	resp, err = svc.Approve(context.Background(), adminActor, "rec-fixed", &dto.ApproveInternshipRequest{})
	if err != nil {
		t.Fatalf("admin approve: %v", err)
	}
	if resp.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", resp.Status)
	}
}

func TestApproveRetriesOnConflict(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	store.conflictsBefore = 2
	store.applyCalls = 0

	resp, err := svc.Approve(context.Background(), teacherActor, "rec-fixed", &dto.ApproveInternshipRequest{Credits: 3})
	if err != nil {
		t.Fatalf("approve after conflicts: %v", err)
	}
	if resp.Credits != 3 {
		t.Fatalf("expected credits 3, got %d", resp.Credits)
	}
	if store.applyCalls != 3 {
		t.Fatalf("expected 3 apply attempts, got %d", store.applyCalls)
	}
}

func TestApproveSurfacesConflictAfterRetriesExhausted(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	store.conflictsBefore = transitionRetries

	_, err := svc.Approve(context.Background(), teacherActor, "rec-fixed", &dto.ApproveInternshipRequest{Credits: 3})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApproveWorkflowErrorsAreNotRetried(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	store.applyCalls = 0
	_, err := svc.Approve(context.Background(), teacherActor, "rec-fixed", &dto.ApproveInternshipRequest{Credits: 0})
	if !errors.Is(err, apperrors.ErrInvalidCredits) {
		t.Fatalf("expected ErrInvalidCredits, got %v", err)
	}
	if store.applyCalls != 1 {
		t.Fatalf("validation failure must not retry, got %d attempts", store.applyCalls)
	}
}

func TestRejectRequiresFeedback(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := svc.Reject(context.Background(), teacherActor, "rec-fixed", &dto.RejectInternshipRequest{Feedback: "  "})
	if !errors.Is(err, apperrors.ErrMissingFeedback) {
		t.Fatalf("expected ErrMissingFeedback, got %v", err)
	}
}

func TestListByRole(t *testing.T) {
	store := newFakeInternshipStore()
	svc, _ := newTestService(store)

	if _, err := svc.Submit(context.Background(), studentActor, validSubmitRequest(), certificate()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Teacher queue holds the fresh submission.
	queue, err := svc.List(context.Background(), teacherActor)
	if err != nil {
		t.Fatalf("teacher list: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 record in teacher queue, got %d", len(queue))
	}

	// Admin queue is empty until a teacher approves.
	queue, err = svc.List(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(queue) != 0 {
		t.Fatalf("expected empty admin queue, got %d", len(queue))
	}

	if _, err := svc.Approve(context.Background(), teacherActor, "rec-fixed", &dto.ApproveInternshipRequest{Credits: 3}); err != nil {
		t.Fatalf("teacher approve: %v", err)
	}

	queue, err = svc.List(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 record in admin queue after teacher approval, got %d", len(queue))
	}

	// Students see their own submissions regardless of state.
	own, err := svc.List(context.Background(), studentActor)
	if err != nil {
		t.Fatalf("student list: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected 1 own record, got %d", len(own))
	}
}
