package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/logger"
)

// Sentinel labels substituted when an approver identity cannot be resolved.
// A single broken reference must not block the transcript.
const (
	UnknownTeacherLabel = "Unknown Teacher"
	UnknownAdminLabel   = "Unknown Admin"
)

// UserDirectory resolves user identifiers for the aggregation read-side.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TranscriptComposer renders a transcript value into a document byte stream.
type TranscriptComposer interface {
	Render(t *models.Transcript) ([]byte, error)
}

// MarksheetService defines the interface for transcript aggregation and
// marksheet rendering
type MarksheetService interface {
	GetTranscript(ctx context.Context, studentID int64) (*models.Transcript, error)
	RenderMarksheet(ctx context.Context, studentID int64) ([]byte, string, error)
}

// marksheetServiceImpl implements MarksheetService
type marksheetServiceImpl struct {
	store    InternshipStore
	users    UserDirectory
	composer TranscriptComposer
}

// NewMarksheetService creates a new MarksheetService
func NewMarksheetService(store InternshipStore, users UserDirectory, composer TranscriptComposer) MarksheetService {
	return &marksheetServiceImpl{
		store:    store,
		users:    users,
		composer: composer,
	}
}

// GetTranscript aggregates a student's finally-approved internships into a
// transcript. The total is an exact integer sum and independent of record
// order. Returns apperrors.ErrNoApprovedRecords when the student has nothing
// approved, so callers can tell "nothing earned yet" from a pipeline fault.
func (s *marksheetServiceImpl) GetTranscript(ctx context.Context, studentID int64) (*models.Transcript, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	if student == nil || student.RoleType != models.RoleStudent {
		return nil, apperrors.ErrStudentNotFound
	}

	recs, err := s.store.FindApprovedByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error getting approved internships: %w", err)
	}
	if len(recs) == 0 {
		return nil, apperrors.ErrNoApprovedRecords
	}

	// Approver names are resolved per id; the record set may have changed
	// since the listing read, so each miss degrades to a sentinel label
	// instead of failing the aggregation.
	names := map[int64]string{}

	transcript := &models.Transcript{
		Student: models.TranscriptStudent{
			ID:    student.ID,
			Name:  student.FullName(),
			Email: student.Email,
		},
	}

	for i := range recs {
		rec := &recs[i]

		teacherName := UnknownTeacherLabel
		if rec.TeacherApproval != nil {
			teacherName = s.resolveName(ctx, names, rec.TeacherApproval.ApproverID, UnknownTeacherLabel)
		}
		adminName := UnknownAdminLabel
		if rec.AdminApproval != nil {
			adminName = s.resolveName(ctx, names, rec.AdminApproval.ApproverID, UnknownAdminLabel)
		}

		transcript.LineItems = append(transcript.LineItems, models.TranscriptLine{
			CompanyName:   rec.CompanyName,
			RoleTitle:     rec.RoleTitle,
			StartDate:     rec.StartDate.Format(dateLayout),
			EndDate:       rec.EndDate.Format(dateLayout),
			DurationWeeks: rec.DurationWeeks,
			Credits:       rec.Credits,
			TeacherName:   teacherName,
			AdminName:     adminName,
		})
		transcript.TotalCredits += rec.Credits
	}

	return transcript, nil
}

// resolveName maps an approver id to a display name, memoizing within one
// aggregation. Lookup misses and lookup failures both degrade to the
// sentinel; a failure is logged as a partial-resolution warning.
func (s *marksheetServiceImpl) resolveName(ctx context.Context, cache map[int64]string, id int64, sentinel string) string {
	if name, ok := cache[id]; ok {
		return name
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Int64("approverId", id).Msg("Approver lookup failed, using placeholder")
		return sentinel
	}
	if user == nil {
		return sentinel
	}

	cache[id] = user.FullName()
	return user.FullName()
}

// RenderMarksheet composes the transcript into a PDF marksheet and returns
// the document bytes together with a download filename.
func (s *marksheetServiceImpl) RenderMarksheet(ctx context.Context, studentID int64) ([]byte, string, error) {
	transcript, err := s.GetTranscript(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	doc, err := s.composer.Render(transcript)
	if err != nil {
		return nil, "", fmt.Errorf("error rendering marksheet: %w", err)
	}

	filename := fmt.Sprintf("marksheet_%s.pdf", strings.ReplaceAll(transcript.Student.Name, " ", "_"))
	return doc, filename, nil
}
