package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/app/services"
	"github.com/sahasp/interntrack/internal/middleware"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/logger"
)

// InternshipController handles internship workflow operations
type InternshipController struct {
	internshipService services.InternshipService
}

// NewInternshipController creates a new InternshipController
func NewInternshipController(internshipService services.InternshipService) *InternshipController {
	return &InternshipController{
		internshipService: internshipService,
	}
}

// SubmitInternship handles a student submitting a new internship record
// @Summary Submit an internship
// @Description Creates a new internship record in the pending state with a certificate file
// @Tags internships
// @Accept multipart/form-data
// @Produce json
// @Param companyName formData string true "Company name"
// @Param roleTitle formData string true "Role title"
// @Param startDate formData string true "Start date (YYYY-MM-DD)"
// @Param endDate formData string true "End date (YYYY-MM-DD)"
// @Param durationWeeks formData int true "Duration in weeks"
// @Param description formData string true "Description of the work performed"
// @Param certificate formData file true "Completion certificate"
// @Success 201 {object} dto.APIResponse{data=dto.InternshipResponse} "Internship submitted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Only students can submit internships"
// @Security Bearer
// @Router /internships [post]
func (c *InternshipController) SubmitInternship(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.SubmitInternshipRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	certificate, err := ctx.FormFile("certificate")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrValidationFailed, "certificate file is required"))
		return
	}

	response, err := c.internshipService.Submit(ctx, actor, &req, certificate)
	if err != nil {
		logger.Debug().Err(err).Int64("studentId", actor.ID).Msg("Internship submission failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// ListInternships handles retrieving the internships relevant to the caller
// @Summary List internships
// @Description Students see their own submissions, teachers and admins see their review queue
// @Tags internships
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.InternshipResponse} "Internships retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Security Bearer
// @Router /internships [get]
func (c *InternshipController) ListInternships(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	responses, err := c.internshipService.List(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// GetInternshipByID handles retrieving a single internship record
// @Summary Get an internship
// @Description Retrieves a single internship record; students can only read their own
// @Tags internships
// @Produce json
// @Param id path string true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=dto.InternshipResponse} "Internship retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Internship not found"
// @Security Bearer
// @Router /internships/{id} [get]
func (c *InternshipController) GetInternshipByID(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	response, err := c.internshipService.GetByID(ctx, actor, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ApproveInternship handles a teacher or admin approving an internship
// @Summary Approve an internship
// @Description Teachers grant credits in the first stage, admins finalize in the second
// @Tags internships
// @Accept json
// @Produce json
// @Param id path string true "Internship ID"
// @Param request body dto.ApproveInternshipRequest true "Approval payload"
// @Success 200 {object} dto.APIResponse{data=dto.InternshipResponse} "Internship approved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid credits"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Internship not found"
// @Failure 409 {object} dto.ErrorResponse "Workflow conflict"
// @Security Bearer
// @Router /internships/{id}/approve [post]
func (c *InternshipController) ApproveInternship(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.ApproveInternshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	response, err := c.internshipService.Approve(ctx, actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Info().Str("internshipId", ctx.Param("id")).Int64("approverId", actor.ID).Str("role", string(actor.Role)).Msg("Internship approved")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// RejectInternship handles a teacher or admin rejecting an internship
// @Summary Reject an internship
// @Description Records a rejection with mandatory feedback; finalized records cannot be rejected
// @Tags internships
// @Accept json
// @Produce json
// @Param id path string true "Internship ID"
// @Param request body dto.RejectInternshipRequest true "Rejection payload"
// @Success 200 {object} dto.APIResponse{data=dto.InternshipResponse} "Internship rejected successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing feedback"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Internship not found"
// @Failure 409 {object} dto.ErrorResponse "Workflow conflict"
// @Security Bearer
// @Router /internships/{id}/reject [post]
func (c *InternshipController) RejectInternship(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.RejectInternshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.ErrMissingFeedback)
		return
	}

	response, err := c.internshipService.Reject(ctx, actor, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Info().Str("internshipId", ctx.Param("id")).Int64("approverId", actor.ID).Str("role", string(actor.Role)).Msg("Internship rejected")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
