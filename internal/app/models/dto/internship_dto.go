package dto

import (
	"time"

	"github.com/sahasp/interntrack/internal/app/models"
)

// SubmitInternshipRequest is the multipart form a student submits. The
// certificate file is handled separately by the controller.
type SubmitInternshipRequest struct {
	CompanyName   string `form:"companyName" binding:"required"`
	RoleTitle     string `form:"roleTitle" binding:"required"`
	StartDate     string `form:"startDate" binding:"required" example:"2025-06-01"`
	EndDate       string `form:"endDate" binding:"required" example:"2025-08-24"`
	DurationWeeks int    `form:"durationWeeks" binding:"required,min=1"`
	Description   string `form:"description" binding:"required"`
}

// ApproveInternshipRequest carries the approval payload. Credits is required
// for teacher approvals (validated by the workflow) and ignored for admins.
type ApproveInternshipRequest struct {
	Credits  int    `json:"credits" example:"3"`
	Feedback string `json:"feedback" example:"Well documented placement"`
}

// RejectInternshipRequest carries the rejection payload.
type RejectInternshipRequest struct {
	Feedback string `json:"feedback" binding:"required" example:"Certificate does not match the stated period"`
}

// ApprovalInfo mirrors a teacher or admin approval sub-record.
type ApprovalInfo struct {
	ApproverID     int64     `json:"approverId"`
	ApprovedAt     time.Time `json:"approvedAt"`
	Feedback       string    `json:"feedback,omitempty"`
	CreditsGranted int       `json:"creditsGranted,omitempty"`
}

// RejectionInfo mirrors a rejection sub-record.
type RejectionInfo struct {
	RejectedBy int64     `json:"rejectedBy"`
	RejectedAt time.Time `json:"rejectedAt"`
	Feedback   string    `json:"feedback"`
}

// InternshipResponse is the API shape of an internship record.
type InternshipResponse struct {
	ID               string                  `json:"id"`
	StudentID        int64                   `json:"studentId"`
	CompanyName      string                  `json:"companyName"`
	RoleTitle        string                  `json:"roleTitle"`
	StartDate        string                  `json:"startDate"`
	EndDate          string                  `json:"endDate"`
	DurationWeeks    int                     `json:"durationWeeks"`
	Description      string                  `json:"description"`
	EvidenceRef      string                  `json:"evidenceRef"`
	Status           models.InternshipStatus `json:"status"`
	Credits          int                     `json:"credits"`
	TeacherApproval  *ApprovalInfo           `json:"teacherApproval,omitempty"`
	AdminApproval    *ApprovalInfo           `json:"adminApproval,omitempty"`
	Rejection        *RejectionInfo          `json:"rejection,omitempty"`
	RejectionHistory []RejectionInfo         `json:"rejectionHistory,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

const dateLayout = "2006-01-02"

// NewInternshipResponse converts an internship model to its API shape.
func NewInternshipResponse(rec *models.Internship) InternshipResponse {
	resp := InternshipResponse{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		CompanyName:   rec.CompanyName,
		RoleTitle:     rec.RoleTitle,
		StartDate:     rec.StartDate.Format(dateLayout),
		EndDate:       rec.EndDate.Format(dateLayout),
		DurationWeeks: rec.DurationWeeks,
		Description:   rec.Description,
		EvidenceRef:   rec.EvidenceRef,
		Status:        rec.Status,
		Credits:       rec.Credits,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}

	if rec.TeacherApproval != nil {
		resp.TeacherApproval = &ApprovalInfo{
			ApproverID:     rec.TeacherApproval.ApproverID,
			ApprovedAt:     rec.TeacherApproval.ApprovedAt,
			Feedback:       rec.TeacherApproval.Feedback,
			CreditsGranted: rec.TeacherApproval.CreditsGranted,
		}
	}
	if rec.AdminApproval != nil {
		resp.AdminApproval = &ApprovalInfo{
			ApproverID: rec.AdminApproval.ApproverID,
			ApprovedAt: rec.AdminApproval.ApprovedAt,
			Feedback:   rec.AdminApproval.Feedback,
		}
	}
	if rec.Rejection != nil {
		resp.Rejection = &RejectionInfo{
			RejectedBy: rec.Rejection.RejectedBy,
			RejectedAt: rec.Rejection.RejectedAt,
			Feedback:   rec.Rejection.Feedback,
		}
	}
	for _, r := range rec.RejectionHistory {
		resp.RejectionHistory = append(resp.RejectionHistory, RejectionInfo{
			RejectedBy: r.RejectedBy,
			RejectedAt: r.RejectedAt,
			Feedback:   r.Feedback,
		})
	}

	return resp
}

// NewInternshipListResponse converts a slice of records.
func NewInternshipListResponse(recs []models.Internship) []InternshipResponse {
	responses := make([]InternshipResponse, 0, len(recs))
	for i := range recs {
		responses = append(responses, NewInternshipResponse(&recs[i]))
	}
	return responses
}
