package models

import "time"

// InternshipStatus is the lifecycle state of an internship record.
type InternshipStatus string

const (
	StatusPending  InternshipStatus = "PENDING"
	StatusApproved InternshipStatus = "APPROVED"
	StatusRejected InternshipStatus = "REJECTED"
)

// TeacherApproval is the subject-matter review sub-record. Present only after
// a teacher has vetted the submission and assigned credits.
type TeacherApproval struct {
	ApproverID     int64     `json:"approverId" db:"teacher_approved_by"`
	ApprovedAt     time.Time `json:"approvedAt" db:"teacher_approved_at"`
	Feedback       string    `json:"feedback" db:"teacher_feedback"`
	CreditsGranted int       `json:"creditsGranted" db:"teacher_credits"`
}

// AdminApproval is the administrative sign-off sub-record. Once present the
// record is finalized and immutable.
type AdminApproval struct {
	ApproverID int64     `json:"approverId" db:"admin_approved_by"`
	ApprovedAt time.Time `json:"approvedAt" db:"admin_approved_at"`
	Feedback   string    `json:"feedback" db:"admin_feedback"`
}

// Rejection records who rejected the internship and why.
type Rejection struct {
	RejectedBy int64     `json:"rejectedBy" db:"rejected_by"`
	RejectedAt time.Time `json:"rejectedAt" db:"rejected_at"`
	Feedback   string    `json:"feedback" db:"rejection_feedback"`
}

// Internship is one internship submission and its approval state, based on
// the 'internships' table. Descriptive fields are writable only at creation;
// everything else mutates exclusively through workflow transitions.
type Internship struct {
	ID            string           `json:"id" db:"id"`
	StudentID     int64            `json:"studentId" db:"student_id"`
	CompanyName   string           `json:"companyName" db:"company_name"`
	RoleTitle     string           `json:"roleTitle" db:"role_title"`
	StartDate     time.Time        `json:"startDate" db:"start_date"`
	EndDate       time.Time        `json:"endDate" db:"end_date"`
	DurationWeeks int              `json:"durationWeeks" db:"duration_weeks"`
	Description   string           `json:"description" db:"description"`
	EvidenceRef   string           `json:"evidenceRef" db:"evidence_ref"`
	Status        InternshipStatus `json:"status" db:"status"`
	Credits       int              `json:"credits" db:"credits"`

	TeacherApproval *TeacherApproval `json:"teacherApproval,omitempty"`
	AdminApproval   *AdminApproval   `json:"adminApproval,omitempty"`
	Rejection       *Rejection       `json:"rejection,omitempty"`

	// RejectionHistory holds superseded rejections, oldest first. Read-side
	// only; rows come from the 'internship_rejections' table.
	RejectionHistory []Rejection `json:"rejectionHistory,omitempty"`

	// Version is bumped on every committed transition and backs the
	// optimistic concurrency check in the repository.
	Version   int64     `json:"-" db:"version"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Finalized reports whether the record carries an administrative approval
// and is therefore immutable.
func (i *Internship) Finalized() bool {
	return i.AdminApproval != nil
}

// DeriveStatus computes the status from the approval sub-records. The stored
// status column is always the derived value; presence of the sub-records is
// the source of truth.
func (i *Internship) DeriveStatus() InternshipStatus {
	switch {
	case i.AdminApproval != nil:
		return StatusApproved
	case i.Rejection != nil:
		return StatusRejected
	default:
		return StatusPending
	}
}
