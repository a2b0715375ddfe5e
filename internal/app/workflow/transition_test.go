package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
)

var (
	teacher = Actor{ID: 10, Role: models.RoleTeacher}
	admin   = Actor{ID: 20, Role: models.RoleAdmin}
	student = Actor{ID: 30, Role: models.RoleStudent}
)

func pendingRecord() models.Internship {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return models.Internship{
		ID:            "rec-1",
		StudentID:     30,
		CompanyName:   "Acme Corp",
		RoleTitle:     "Backend Intern",
		StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC),
		DurationWeeks: 12,
		Status:        models.StatusPending,
		Version:       1,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func teacherApproved(credits int) models.Internship {
	rec := pendingRecord()
	rec.TeacherApproval = &models.TeacherApproval{
		ApproverID:     teacher.ID,
		ApprovedAt:     time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		CreditsGranted: credits,
	}
	rec.Credits = credits
	return rec
}

func finalized() models.Internship {
	rec := teacherApproved(3)
	rec.AdminApproval = &models.AdminApproval{
		ApproverID: admin.ID,
		ApprovedAt: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC),
	}
	rec.Status = models.StatusApproved
	return rec
}

func TestTeacherApproveAssignsCreditsAndStaysPending(t *testing.T) {
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

	rec, err := Approve(teacher, ApprovalInput{Credits: 3, Feedback: "solid work"}, now)(pendingRecord())
	if err != nil {
		t.Fatalf("teacher approve: %v", err)
	}
	if rec.TeacherApproval == nil {
		t.Fatal("expected teacher approval sub-record")
	}
	if rec.TeacherApproval.ApproverID != teacher.ID {
		t.Fatalf("expected approver %d, got %d", teacher.ID, rec.TeacherApproval.ApproverID)
	}
	if rec.TeacherApproval.CreditsGranted != 3 || rec.Credits != 3 {
		t.Fatalf("expected credits 3, got sub-record %d record %d", rec.TeacherApproval.CreditsGranted, rec.Credits)
	}
	if rec.Status != models.StatusPending {
		t.Fatalf("teacher approval alone must not finalize, got status %q", rec.Status)
	}
	if rec.UpdatedAt != now {
		t.Fatalf("expected updatedAt %v, got %v", now, rec.UpdatedAt)
	}
}

func TestTeacherApproveRequiresPositiveCredits(t *testing.T) {
	for _, credits := range []int{0, -1} {
		_, err := Approve(teacher, ApprovalInput{Credits: credits}, time.Now())(pendingRecord())
		if !errors.Is(err, apperrors.ErrInvalidCredits) {
			t.Fatalf("credits %d: expected ErrInvalidCredits, got %v", credits, err)
		}
	}
}

func TestTeacherApproveTwiceFails(t *testing.T) {
	_, err := Approve(teacher, ApprovalInput{Credits: 4}, time.Now())(teacherApproved(3))
	if !errors.Is(err, apperrors.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestAdminApproveFinalizes(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	rec, err := Approve(admin, ApprovalInput{Feedback: "confirmed"}, now)(teacherApproved(3))
	if err != nil {
		t.Fatalf("admin approve: %v", err)
	}
	if rec.AdminApproval == nil || rec.AdminApproval.ApproverID != admin.ID {
		t.Fatal("expected admin approval sub-record")
	}
	if rec.Status != models.StatusApproved {
		t.Fatalf("expected status approved, got %q", rec.Status)
	}
	if !rec.Finalized() {
		t.Fatal("expected record to be finalized")
	}
	if rec.Credits != 3 {
		t.Fatalf("admin approval must not change credits, got %d", rec.Credits)
	}
}

func TestAdminApproveWithoutTeacherApprovalFails(t *testing.T) {
	_, err := Approve(admin, ApprovalInput{}, time.Now())(pendingRecord())
	if !errors.Is(err, apperrors.ErrTeacherApprovalRequired) {
		t.Fatalf("expected ErrTeacherApprovalRequired, got %v", err)
	}
}

func TestApproveFinalizedRecordFails(t *testing.T) {
	for _, actor := range []Actor{teacher, admin} {
		_, err := Approve(actor, ApprovalInput{Credits: 3}, time.Now())(finalized())
		if !errors.Is(err, apperrors.ErrAlreadyApproved) {
			t.Fatalf("role %s: expected ErrAlreadyApproved, got %v", actor.Role, err)
		}
	}
}

func TestStudentCannotApproveOrReject(t *testing.T) {
	if _, err := Approve(student, ApprovalInput{Credits: 3}, time.Now())(pendingRecord()); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("approve: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := Reject(student, RejectionInput{Feedback: "no"}, time.Now())(pendingRecord()); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("reject: expected ErrPermissionDenied, got %v", err)
	}
}

func TestRejectRequiresFeedback(t *testing.T) {
	for _, feedback := range []string{"", "   ", "\t\n"} {
		_, err := Reject(teacher, RejectionInput{Feedback: feedback}, time.Now())(pendingRecord())
		if !errors.Is(err, apperrors.ErrMissingFeedback) {
			t.Fatalf("feedback %q: expected ErrMissingFeedback, got %v", feedback, err)
		}
	}
}

func TestTeacherRejectSetsRejection(t *testing.T) {
	now := time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC)

	rec, err := Reject(teacher, RejectionInput{Feedback: "certificate missing dates"}, now)(pendingRecord())
	if err != nil {
		t.Fatalf("teacher reject: %v", err)
	}
	if rec.Rejection == nil {
		t.Fatal("expected rejection sub-record")
	}
	if rec.Rejection.RejectedBy != teacher.ID {
		t.Fatalf("expected rejectedBy %d, got %d", teacher.ID, rec.Rejection.RejectedBy)
	}
	if rec.Status != models.StatusRejected {
		t.Fatalf("expected status rejected, got %q", rec.Status)
	}
}

func TestAdminRejectClearsTeacherApproval(t *testing.T) {
	now := time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC)

	rec, err := Reject(admin, RejectionInput{Feedback: "does not meet requirements"}, now)(teacherApproved(3))
	if err != nil {
		t.Fatalf("admin reject: %v", err)
	}
	if rec.TeacherApproval != nil {
		t.Fatal("admin rejection must clear the teacher approval")
	}
	if rec.Rejection == nil || rec.Rejection.RejectedBy != admin.ID {
		t.Fatal("expected admin rejection sub-record")
	}
	if rec.Status != models.StatusRejected {
		t.Fatalf("expected status rejected, got %q", rec.Status)
	}
}

func TestTeacherRejectKeepsTeacherApproval(t *testing.T) {
	rec, err := Reject(teacher, RejectionInput{Feedback: "withdrawing my approval pending clarification"}, time.Now())(teacherApproved(3))
	if err != nil {
		t.Fatalf("teacher reject: %v", err)
	}
	if rec.TeacherApproval == nil {
		t.Fatal("teacher rejection must not clear the teacher approval")
	}
}

func TestRejectFinalizedRecordFails(t *testing.T) {
	for _, actor := range []Actor{teacher, admin} {
		_, err := Reject(actor, RejectionInput{Feedback: "too late"}, time.Now())(finalized())
		if !errors.Is(err, apperrors.ErrFinalizedCannotReject) {
			t.Fatalf("role %s: expected ErrFinalizedCannotReject, got %v", actor.Role, err)
		}
	}
}

// A record rejected by an admin loses its teacher approval; a fresh teacher
// approval reopens it and the workflow proceeds as if newly submitted.
func TestTeacherApprovalReopensRejectedRecord(t *testing.T) {
	rejected, err := Reject(admin, RejectionInput{Feedback: "insufficient evidence"}, time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC))(teacherApproved(3))
	if err != nil {
		t.Fatalf("admin reject: %v", err)
	}

	now := time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)
	reopened, err := Approve(teacher, ApprovalInput{Credits: 2, Feedback: "new certificate attached"}, now)(rejected)
	if err != nil {
		t.Fatalf("teacher re-approve: %v", err)
	}
	if reopened.Rejection != nil {
		t.Fatal("re-approval must clear the active rejection")
	}
	if reopened.Status != models.StatusPending {
		t.Fatalf("expected status pending after reopen, got %q", reopened.Status)
	}
	if reopened.Credits != 2 {
		t.Fatalf("expected credits 2 after reopen, got %d", reopened.Credits)
	}

	// The reopened record can still be finalized normally.
	final, err := Approve(admin, ApprovalInput{}, now.Add(time.Hour))(reopened)
	if err != nil {
		t.Fatalf("admin approve after reopen: %v", err)
	}
	if final.Status != models.StatusApproved {
		t.Fatalf("expected status approved, got %q", final.Status)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	original := pendingRecord()
	snapshot := original

	if _, err := Approve(teacher, ApprovalInput{Credits: 3}, time.Now())(original); err != nil {
		t.Fatalf("teacher approve: %v", err)
	}
	if original.TeacherApproval != snapshot.TeacherApproval || original.Credits != snapshot.Credits {
		t.Fatal("transition must operate on a copy, input was mutated")
	}
}
