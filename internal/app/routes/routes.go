package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sahasp/interntrack/internal/app/controllers"
	"github.com/sahasp/interntrack/internal/app/models/dto"
	"github.com/sahasp/interntrack/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	internshipController *controllers.InternshipController,
	marksheetController *controllers.MarksheetController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Success: true,
			Data:    gin.H{"status": "ok"},
		})
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Internship workflow routes. Role enforcement lives in the service
		// and workflow layers, which also cover non-HTTP callers.
		internships := authenticated.Group("/internships")
		{
			internships.POST("", internshipController.SubmitInternship)
			internships.GET("", internshipController.ListInternships)
			internships.GET("/:id", internshipController.GetInternshipByID)
			internships.POST("/:id/approve", internshipController.ApproveInternship)
			internships.POST("/:id/reject", internshipController.RejectInternship)
		}

		// Marksheet routes
		marksheet := authenticated.Group("/marksheet")
		{
			marksheet.GET("", marksheetController.GetMarksheet)
			marksheet.GET("/transcript", marksheetController.GetTranscript)
		}
	}
}
