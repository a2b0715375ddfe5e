package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/app/workflow"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/logger"
)

// transitionRetries bounds how often a lost optimistic-concurrency race is
// retried with a fresh snapshot before the conflict is surfaced.
const transitionRetries = 3

const dateLayout = "2006-01-02"

// InternshipStore is the record store contract the service depends on. The
// pgx-backed repository implements it; tests substitute fakes.
type InternshipStore interface {
	Create(ctx context.Context, rec *models.Internship) (string, error)
	GetByID(ctx context.Context, id string) (*models.Internship, error)
	FindByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
	FindApprovedByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
	FindPendingForRole(ctx context.Context, role models.RoleType) ([]models.Internship, error)
	ApplyTransition(ctx context.Context, id string, fn workflow.Transition) (*models.Internship, error)
}

// EvidenceStorage stores uploaded certificate artifacts and hands back an
// opaque reference the record keeps verbatim.
type EvidenceStorage interface {
	SaveFile(fileHeader *multipart.FileHeader) (string, error)
}

// InternshipService defines the interface for internship workflow operations
type InternshipService interface {
	Submit(ctx context.Context, actor workflow.Actor, req *dto.SubmitInternshipRequest, certificate *multipart.FileHeader) (*dto.InternshipResponse, error)
	GetByID(ctx context.Context, actor workflow.Actor, id string) (*dto.InternshipResponse, error)
	List(ctx context.Context, actor workflow.Actor) ([]dto.InternshipResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, req *dto.ApproveInternshipRequest) (*dto.InternshipResponse, error)
	Reject(ctx context.Context, actor workflow.Actor, id string, req *dto.RejectInternshipRequest) (*dto.InternshipResponse, error)
}

// internshipServiceImpl implements InternshipService
type internshipServiceImpl struct {
	store    InternshipStore
	evidence EvidenceStorage
	clock    func() time.Time
	newID    func() string
}

// NewInternshipService creates a new InternshipService
func NewInternshipService(store InternshipStore, evidence EvidenceStorage) InternshipService {
	return &internshipServiceImpl{
		store:    store,
		evidence: evidence,
		clock:    time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Submit creates a new internship record in the pending state. Only students
// submit; descriptive fields and the certificate reference are immutable
// afterwards.
func (s *internshipServiceImpl) Submit(ctx context.Context, actor workflow.Actor, req *dto.SubmitInternshipRequest, certificate *multipart.FileHeader) (*dto.InternshipResponse, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperrors.NewForbiddenError("only students can submit internships")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid start date format")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid end date format")
	}
	if !endDate.After(startDate) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "end date must be after start date")
	}
	if req.DurationWeeks < 1 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "duration must be at least one week")
	}
	if certificate == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "certificate file is required")
	}

	evidenceRef, err := s.evidence.SaveFile(certificate)
	if err != nil {
		return nil, fmt.Errorf("error storing certificate: %w", err)
	}

	now := s.clock()
	rec := &models.Internship{
		ID:            s.newID(),
		StudentID:     actor.ID,
		CompanyName:   req.CompanyName,
		RoleTitle:     req.RoleTitle,
		StartDate:     startDate,
		EndDate:       endDate,
		DurationWeeks: req.DurationWeeks,
		Description:   req.Description,
		EvidenceRef:   evidenceRef,
		Status:        models.StatusPending,
		Credits:       0,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("error creating internship: %w", err)
	}

	logger.Info().Str("internshipId", rec.ID).Int64("studentId", actor.ID).Msg("Internship submitted")

	resp := dto.NewInternshipResponse(rec)
	return &resp, nil
}

// GetByID retrieves a single record. Students may only read their own.
func (s *internshipServiceImpl) GetByID(ctx context.Context, actor workflow.Actor, id string) (*dto.InternshipResponse, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting internship: %w", err)
	}
	if rec == nil {
		return nil, apperrors.ErrInternshipNotFound
	}

	if actor.Role == models.RoleStudent && rec.StudentID != actor.ID {
		return nil, apperrors.NewForbiddenError("students can only access their own internships")
	}

	resp := dto.NewInternshipResponse(rec)
	return &resp, nil
}

// List returns the records relevant to the actor: a student's own
// submissions, or an approver's review queue.
func (s *internshipServiceImpl) List(ctx context.Context, actor workflow.Actor) ([]dto.InternshipResponse, error) {
	var (
		recs []models.Internship
		err  error
	)

	switch actor.Role {
	case models.RoleStudent:
		recs, err = s.store.FindByStudent(ctx, actor.ID)
	case models.RoleTeacher, models.RoleAdmin:
		recs, err = s.store.FindPendingForRole(ctx, actor.Role)
	default:
		return nil, apperrors.ErrPermissionDenied
	}
	if err != nil {
		return nil, fmt.Errorf("error listing internships: %w", err)
	}

	return dto.NewInternshipListResponse(recs), nil
}

// Approve applies the approval transition for the actor's role.
func (s *internshipServiceImpl) Approve(ctx context.Context, actor workflow.Actor, id string, req *dto.ApproveInternshipRequest) (*dto.InternshipResponse, error) {
	input := workflow.ApprovalInput{
		Credits:  req.Credits,
		Feedback: req.Feedback,
	}
	return s.applyWithRetry(ctx, id, func() workflow.Transition {
		return workflow.Approve(actor, input, s.clock())
	})
}

// Reject applies the rejection transition for the actor's role.
func (s *internshipServiceImpl) Reject(ctx context.Context, actor workflow.Actor, id string, req *dto.RejectInternshipRequest) (*dto.InternshipResponse, error) {
	input := workflow.RejectionInput{
		Feedback: req.Feedback,
	}
	return s.applyWithRetry(ctx, id, func() workflow.Transition {
		return workflow.Reject(actor, input, s.clock())
	})
}

// applyWithRetry runs a transition through the store, re-reading and
// re-deciding on each optimistic-concurrency conflict. Workflow and
// validation errors are returned as-is and never retried.
func (s *internshipServiceImpl) applyWithRetry(ctx context.Context, id string, makeTransition func() workflow.Transition) (*dto.InternshipResponse, error) {
	var lastErr error
	for attempt := 0; attempt < transitionRetries; attempt++ {
		rec, err := s.store.ApplyTransition(ctx, id, makeTransition())
		if err == nil {
			resp := dto.NewInternshipResponse(rec)
			return &resp, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		lastErr = err
		logger.Warn().Str("internshipId", id).Int("attempt", attempt+1).Msg("Transition conflict, retrying with fresh snapshot")
	}
	return nil, lastErr
}
