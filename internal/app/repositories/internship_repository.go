package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/app/workflow"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/dberrors"
	"github.com/sahasp/interntrack/internal/pkg/logger"
)

// InternshipRepository is the record store for internship submissions. All
// approval-state mutations go through ApplyTransition; no other method
// updates a record.
type InternshipRepository struct {
	db *pgxpool.Pool
}

// NewInternshipRepository creates a new InternshipRepository
func NewInternshipRepository(db *pgxpool.Pool) *InternshipRepository {
	return &InternshipRepository{db: db}
}

var internshipColumns = []string{
	"id", "student_id", "company_name", "role_title", "start_date", "end_date",
	"duration_weeks", "description", "evidence_ref", "status", "credits",
	"teacher_approved_by", "teacher_approved_at", "teacher_feedback", "teacher_credits",
	"admin_approved_by", "admin_approved_at", "admin_feedback",
	"rejected_by", "rejected_at", "rejection_feedback",
	"version", "created_at", "updated_at",
}

func selectInternshipQuery() squirrel.SelectBuilder {
	return squirrel.Select(internshipColumns...).
		From("internships").
		PlaceholderFormat(squirrel.Dollar)
}

// scanInternship scans a row into an Internship, rebuilding the optional
// approval sub-records from their nullable column groups.
func scanInternship(row pgx.Row) (*models.Internship, error) {
	var rec models.Internship
	var (
		teacherBy      *int64
		teacherAt      *time.Time
		teacherNote    *string
		teacherCredits *int
		adminBy        *int64
		adminAt        *time.Time
		adminNote      *string
		rejectedBy     *int64
		rejectedAt     *time.Time
		rejectionNote  *string
	)

	err := row.Scan(
		&rec.ID, &rec.StudentID, &rec.CompanyName, &rec.RoleTitle, &rec.StartDate, &rec.EndDate,
		&rec.DurationWeeks, &rec.Description, &rec.EvidenceRef, &rec.Status, &rec.Credits,
		&teacherBy, &teacherAt, &teacherNote, &teacherCredits,
		&adminBy, &adminAt, &adminNote,
		&rejectedBy, &rejectedAt, &rejectionNote,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if teacherBy != nil {
		rec.TeacherApproval = &models.TeacherApproval{
			ApproverID:     *teacherBy,
			ApprovedAt:     derefTime(teacherAt),
			Feedback:       derefString(teacherNote),
			CreditsGranted: derefInt(teacherCredits),
		}
	}
	if adminBy != nil {
		rec.AdminApproval = &models.AdminApproval{
			ApproverID: *adminBy,
			ApprovedAt: derefTime(adminAt),
			Feedback:   derefString(adminNote),
		}
	}
	if rejectedBy != nil {
		rec.Rejection = &models.Rejection{
			RejectedBy: *rejectedBy,
			RejectedAt: derefTime(rejectedAt),
			Feedback:   derefString(rejectionNote),
		}
	}

	return &rec, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// Create inserts a new internship record and returns its id.
func (r *InternshipRepository) Create(ctx context.Context, rec *models.Internship) (string, error) {
	sql, args, err := squirrel.Insert("internships").
		Columns("id", "student_id", "company_name", "role_title", "start_date", "end_date",
			"duration_weeks", "description", "evidence_ref", "status", "credits", "version").
		Values(rec.ID, rec.StudentID, rec.CompanyName, rec.RoleTitle, rec.StartDate, rec.EndDate,
			rec.DurationWeeks, rec.Description, rec.EvidenceRef, rec.Status, rec.Credits, rec.Version).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("error building SQL: %w", err)
	}

	var id string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return "", apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentId", fmt.Sprint(rec.StudentID)).Msg("Error executing create internship query")
		return "", fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves an internship by id, including its rejection history.
// Returns nil when no record exists.
func (r *InternshipRepository) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	sql, args, err := selectInternshipQuery().Where("id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rec, err := scanInternship(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	history, err := r.rejectionHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.RejectionHistory = history

	return rec, nil
}

// FindByStudent retrieves all internships owned by a student, newest first.
func (r *InternshipRepository) FindByStudent(ctx context.Context, studentID int64) ([]models.Internship, error) {
	query := selectInternshipQuery().
		Where("student_id = ?", studentID).
		OrderBy("created_at DESC")
	return r.queryInternships(ctx, query)
}

// FindApprovedByStudent retrieves a student's finally-approved internships.
func (r *InternshipRepository) FindApprovedByStudent(ctx context.Context, studentID int64) ([]models.Internship, error) {
	query := selectInternshipQuery().
		Where("student_id = ?", studentID).
		Where("status = ?", models.StatusApproved).
		Where("admin_approved_by IS NOT NULL").
		OrderBy("created_at ASC")
	return r.queryInternships(ctx, query)
}

// FindPendingForRole retrieves the review queue for an approver role:
// teachers see pending records with no teacher approval, admins see
// teacher-approved records awaiting admin sign-off.
func (r *InternshipRepository) FindPendingForRole(ctx context.Context, role models.RoleType) ([]models.Internship, error) {
	query := selectInternshipQuery().
		Where("status = ?", models.StatusPending).
		OrderBy("created_at DESC")

	switch role {
	case models.RoleTeacher:
		query = query.Where("teacher_approved_by IS NULL")
	case models.RoleAdmin:
		query = query.Where("teacher_approved_by IS NOT NULL").Where("admin_approved_by IS NULL")
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	return r.queryInternships(ctx, query)
}

func (r *InternshipRepository) queryInternships(ctx context.Context, query squirrel.SelectBuilder) ([]models.Internship, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var recs []models.Internship
	for rows.Next() {
		rec, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		recs = append(recs, *rec)
	}

	return recs, rows.Err()
}

// ApplyTransition atomically applies a workflow transition to the record.
// The snapshot is read together with its version; the conditional update
// commits only if the version is unchanged, so two concurrent transitions on
// the same id cannot both succeed. Losing the race surfaces
// apperrors.ErrConflict and the caller retries with a fresh read.
func (r *InternshipRepository) ApplyTransition(ctx context.Context, id string, fn workflow.Transition) (*models.Internship, error) {
	snapshot, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, apperrors.ErrInternshipNotFound
	}

	updated, err := fn(*snapshot)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := buildTransitionUpdate(&updated, snapshot.Version)
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Someone committed a transition between our read and our write.
		return nil, apperrors.ErrConflict
	}

	// Archive a superseded rejection (append-only audit trail).
	if archived := supersededRejection(snapshot, &updated); archived != nil {
		if err := insertArchivedRejection(ctx, tx, id, archived); err != nil {
			return nil, err
		}
		updated.RejectionHistory = append(snapshot.RejectionHistory, *archived)
	} else {
		updated.RejectionHistory = snapshot.RejectionHistory
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	updated.Version = snapshot.Version + 1
	return &updated, nil
}

// buildTransitionUpdate writes every transition-mutable column group and
// bumps the version, guarded by the version read with the snapshot.
func buildTransitionUpdate(rec *models.Internship, expectedVersion int64) (string, []interface{}, error) {
	update := squirrel.Update("internships").
		Set("status", rec.Status).
		Set("credits", rec.Credits).
		Set("version", expectedVersion+1).
		Set("updated_at", rec.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	if rec.TeacherApproval != nil {
		update = update.
			Set("teacher_approved_by", rec.TeacherApproval.ApproverID).
			Set("teacher_approved_at", rec.TeacherApproval.ApprovedAt).
			Set("teacher_feedback", rec.TeacherApproval.Feedback).
			Set("teacher_credits", rec.TeacherApproval.CreditsGranted)
	} else {
		update = update.
			Set("teacher_approved_by", nil).
			Set("teacher_approved_at", nil).
			Set("teacher_feedback", nil).
			Set("teacher_credits", nil)
	}

	if rec.AdminApproval != nil {
		update = update.
			Set("admin_approved_by", rec.AdminApproval.ApproverID).
			Set("admin_approved_at", rec.AdminApproval.ApprovedAt).
			Set("admin_feedback", rec.AdminApproval.Feedback)
	} else {
		update = update.
			Set("admin_approved_by", nil).
			Set("admin_approved_at", nil).
			Set("admin_feedback", nil)
	}

	if rec.Rejection != nil {
		update = update.
			Set("rejected_by", rec.Rejection.RejectedBy).
			Set("rejected_at", rec.Rejection.RejectedAt).
			Set("rejection_feedback", rec.Rejection.Feedback)
	} else {
		update = update.
			Set("rejected_by", nil).
			Set("rejected_at", nil).
			Set("rejection_feedback", nil)
	}

	return update.
		Where("id = ?", rec.ID).
		Where("version = ?", expectedVersion).
		ToSql()
}

// supersededRejection returns the old active rejection when the transition
// replaced or cleared it, nil otherwise.
func supersededRejection(before, after *models.Internship) *models.Rejection {
	if before.Rejection == nil {
		return nil
	}
	if after.Rejection != nil && *after.Rejection == *before.Rejection {
		return nil
	}
	archived := *before.Rejection
	return &archived
}

func insertArchivedRejection(ctx context.Context, tx pgx.Tx, internshipID string, rej *models.Rejection) error {
	sql, args, err := squirrel.Insert("internship_rejections").
		Columns("internship_id", "rejected_by", "rejected_at", "feedback").
		Values(internshipID, rej.RejectedBy, rej.RejectedAt, rej.Feedback).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error archiving rejection: %w", err)
	}
	return nil
}

func (r *InternshipRepository) rejectionHistory(ctx context.Context, internshipID string) ([]models.Rejection, error) {
	sql, args, err := squirrel.Select("rejected_by", "rejected_at", "feedback").
		From("internship_rejections").
		Where("internship_id = ?", internshipID).
		OrderBy("rejected_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var history []models.Rejection
	for rows.Next() {
		var rej models.Rejection
		if err := rows.Scan(&rej.RejectedBy, &rej.RejectedAt, &rej.Feedback); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		history = append(history, rej)
	}

	return history, rows.Err()
}
