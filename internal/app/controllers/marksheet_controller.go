package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sahasp/interntrack/internal/app/models"
	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/app/services"
	"github.com/sahasp/interntrack/internal/middleware"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
	"github.com/sahasp/interntrack/internal/pkg/logger"
)

// MarksheetController handles transcript and marksheet document operations
type MarksheetController struct {
	marksheetService services.MarksheetService
}

// NewMarksheetController creates a new MarksheetController
func NewMarksheetController(marksheetService services.MarksheetService) *MarksheetController {
	return &MarksheetController{
		marksheetService: marksheetService,
	}
}

// GetMarksheet handles downloading a student's marksheet PDF
// @Summary Download marksheet
// @Description Renders the student's approved internships into a PDF marksheet. Students get their own; teachers and admins pass ?studentId=
// @Tags marksheet
// @Produce application/pdf
// @Param studentId query int false "Student ID (teachers and admins only)"
// @Success 200 {file} binary "Marksheet PDF"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "No approved internships found"
// @Security Bearer
// @Router /marksheet [get]
func (c *MarksheetController) GetMarksheet(ctx *gin.Context) {
	studentID, err := c.resolveStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	doc, filename, err := c.marksheetService.RenderMarksheet(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Info().Int64("studentId", studentID).Str("filename", filename).Msg("Marksheet rendered")

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/pdf", doc)
}

// GetTranscript handles retrieving a student's transcript as JSON
// @Summary Get transcript
// @Description Aggregates the student's approved internships into a transcript. Students get their own; teachers and admins pass ?studentId=
// @Tags marksheet
// @Produce json
// @Param studentId query int false "Student ID (teachers and admins only)"
// @Success 200 {object} dto.APIResponse{data=dto.TranscriptResponse} "Transcript retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "No approved internships found"
// @Security Bearer
// @Router /marksheet/transcript [get]
func (c *MarksheetController) GetTranscript(ctx *gin.Context) {
	studentID, err := c.resolveStudentID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	transcript, err := c.marksheetService.GetTranscript(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewTranscriptResponse(transcript)))
}

// resolveStudentID decides whose transcript is requested. Students always get
// their own; teachers and admins may target any student via ?studentId=.
func (c *MarksheetController) resolveStudentID(ctx *gin.Context) (int64, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return 0, apperrors.ErrPermissionDenied
	}

	if actor.Role == models.RoleStudent {
		if target := ctx.Query("studentId"); target != "" && target != strconv.FormatInt(actor.ID, 10) {
			return 0, apperrors.NewForbiddenError("students can only access their own marksheet")
		}
		return actor.ID, nil
	}

	target := ctx.Query("studentId")
	if target == "" {
		return 0, apperrors.NewBadRequestError("studentId query parameter is required")
	}

	studentID, err := strconv.ParseInt(target, 10, 64)
	if err != nil || studentID <= 0 {
		return 0, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid studentId")
	}

	return studentID, nil
}
