package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/pkg/apperrors"
)

// HandleAPIError translates service-layer errors into HTTP responses. Every
// controller funnels its error path through here so status codes and error
// codes stay consistent across endpoints.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrInternshipNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrStudentNotFound):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeResourceNotFound, err, "Resource not found"),
		})
	case errors.Is(err, apperrors.ErrNoApprovedRecords):
		c.JSON(404, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeNoApprovedRecords, err, "No approved internships found"),
		})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(403, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeForbidden, err, "Permission denied"),
		})
	case errors.Is(err, apperrors.ErrAlreadyApproved):
		c.JSON(409, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeAlreadyApproved, err, "Internship already approved"),
		})
	case errors.Is(err, apperrors.ErrTeacherApprovalRequired):
		c.JSON(409, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeTeacherApprovalRequired, err, "Teacher approval is required first"),
		})
	case errors.Is(err, apperrors.ErrFinalizedCannotReject):
		c.JSON(409, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeFinalizedCannotReject, err, "Finally approved internships cannot be rejected"),
		})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(409, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeConflict, err, "The record was modified concurrently, please retry"),
		})
	case errors.Is(err, apperrors.ErrInvalidCredits):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeValidationFailed, err, "Valid credits are required").WithField("credits"),
		})
	case errors.Is(err, apperrors.ErrMissingFeedback):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeValidationFailed, err, "Feedback is required for rejection").WithField("feedback"),
		})
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		c.JSON(400, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeValidationFailed, err, "Validation failed"),
		})
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(401, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeExpiredToken, err, "Token expired"),
		})
	case errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(401, dto.APIResponse{
			Error: detailFor(dto.ErrorCodeInvalidToken, err, "Invalid token"),
		})
	default:
		c.JSON(500, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}

// detailFor prefers the wrapped CustomError message over the generic fallback
// so validation responses carry the specific reason.
func detailFor(code dto.ErrorCode, err error, fallback string) *dto.ErrorDetail {
	message := fallback

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		message = customErr.Message
	}

	return dto.NewErrorDetail(code, message)
}
