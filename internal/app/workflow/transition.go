// Package workflow implements the two-stage approval state machine for
// internship records. Every rule lives here as a pure function from a record
// snapshot to a mutated copy; persistence and concurrency control belong to
// the repository layer.
package workflow

import (
	"strings"
	"time"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
)

// Actor is the authenticated principal attempting a transition.
type Actor struct {
	ID   int64
	Role models.RoleType
}

// ApprovalInput carries the payload of an approve transition. Credits is
// required for teacher approvals and ignored for admin approvals.
type ApprovalInput struct {
	Credits  int
	Feedback string
}

// RejectionInput carries the payload of a reject transition.
type RejectionInput struct {
	Feedback string
}

// Transition mutates a record snapshot or fails with a workflow error. It is
// applied by the record store under its per-record atomicity guarantee.
type Transition func(rec models.Internship) (models.Internship, error)

// Approve returns the transition for an approval attempt by the given actor.
//
// Guards key off sub-record presence rather than the stored status string:
//   - a teacher approves a record with no teacher approval yet, assigning
//     credits >= 1; the record stays pending, awaiting admin sign-off. If the
//     record carried an active rejection (possible after an admin rejection
//     cleared a stale teacher approval) it is reopened and the rejection
//     archived.
//   - an admin approves a teacher-approved record, finalizing it.
//
// A second approval at either stage fails with ErrAlreadyApproved.
func Approve(actor Actor, in ApprovalInput, now time.Time) Transition {
	return func(rec models.Internship) (models.Internship, error) {
		switch actor.Role {
		case models.RoleTeacher:
			return teacherApprove(rec, actor, in, now)
		case models.RoleAdmin:
			return adminApprove(rec, actor, in, now)
		default:
			return rec, apperrors.ErrPermissionDenied
		}
	}
}

func teacherApprove(rec models.Internship, actor Actor, in ApprovalInput, now time.Time) (models.Internship, error) {
	if rec.Finalized() {
		return rec, apperrors.ErrAlreadyApproved
	}
	if rec.TeacherApproval != nil {
		return rec, apperrors.ErrAlreadyApproved
	}
	if in.Credits < 1 {
		return rec, apperrors.ErrInvalidCredits
	}

	rec.TeacherApproval = &models.TeacherApproval{
		ApproverID:     actor.ID,
		ApprovedAt:     now,
		Feedback:       in.Feedback,
		CreditsGranted: in.Credits,
	}
	// Credits are mutable only through this transition.
	rec.Credits = in.Credits
	// Reopen a rejected record; the superseded rejection is archived by the
	// store.
	rec.Rejection = nil
	rec.Status = rec.DeriveStatus()
	rec.UpdatedAt = now
	return rec, nil
}

func adminApprove(rec models.Internship, actor Actor, in ApprovalInput, now time.Time) (models.Internship, error) {
	if rec.Finalized() {
		return rec, apperrors.ErrAlreadyApproved
	}
	if rec.TeacherApproval == nil {
		return rec, apperrors.ErrTeacherApprovalRequired
	}

	rec.AdminApproval = &models.AdminApproval{
		ApproverID: actor.ID,
		ApprovedAt: now,
		Feedback:   in.Feedback,
	}
	rec.Rejection = nil
	rec.Status = rec.DeriveStatus()
	rec.UpdatedAt = now
	return rec, nil
}

// Reject returns the transition for a rejection attempt by the given actor.
// Feedback is mandatory. A finalized record can never be rejected. An admin
// rejection additionally purges a stale teacher approval so the record
// returns to a clean pending state on reopen; a teacher rejection leaves the
// teacher approval untouched.
func Reject(actor Actor, in RejectionInput, now time.Time) Transition {
	return func(rec models.Internship) (models.Internship, error) {
		if actor.Role != models.RoleTeacher && actor.Role != models.RoleAdmin {
			return rec, apperrors.ErrPermissionDenied
		}
		if strings.TrimSpace(in.Feedback) == "" {
			return rec, apperrors.ErrMissingFeedback
		}
		if rec.Finalized() {
			return rec, apperrors.ErrFinalizedCannotReject
		}

		rec.Rejection = &models.Rejection{
			RejectedBy: actor.ID,
			RejectedAt: now,
			Feedback:   in.Feedback,
		}
		if actor.Role == models.RoleAdmin {
			rec.TeacherApproval = nil
		}
		rec.Status = rec.DeriveStatus()
		rec.UpdatedAt = now
		return rec, nil
	}
}
