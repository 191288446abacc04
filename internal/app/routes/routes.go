package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tsegaye25/load-tracking/internal/app/controllers"
	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/services"
	"github.com/tsegaye25/load-tracking/internal/middleware"
	"github.com/tsegaye25/load-tracking/internal/pkg/auth"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	instructorController *controllers.InstructorController,
	jwtService *auth.JWTService,
	authService *services.AuthService,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authController.Register)
		authRoutes.POST("/login", authController.Login)
		authRoutes.POST("/refresh", authController.Refresh)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(middleware.JWTAuth(jwtService, authService))
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/auth/me", authController.Me)

		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.List)
			courses.GET("/review-queue", courseController.ReviewQueue)
			courses.GET("/grouped", courseController.GroupedByInstructor)
			courses.GET("/:id", courseController.Get)
			courses.GET("/:id/history", courseController.History)
			courses.GET("/:id/actions", courseController.AllowedActions)

			// Every status change funnels through the transition endpoints; the
			// state machine decides per caller what is legal, so no extra role
			// gate sits in front of them.
			courses.POST("/:id/transition", courseController.Transition)
			courses.POST("/bulk-transition", courseController.BulkTransition)

			coursesManaged := courses.Group("")
			coursesManaged.Use(middleware.RoleRequired(models.RoleDepartmentHead, models.RoleAdmin))
			{
				coursesManaged.POST("", courseController.Create)
				coursesManaged.PUT("/:id", courseController.Update)
				coursesManaged.DELETE("/:id", courseController.Delete)
			}
		}

		instructors := authenticated.Group("/instructors")
		{
			instructors.GET("", instructorController.List)
			instructors.GET("/:id/workload", instructorController.Workload)

			instructorsAdmin := instructors.Group("")
			instructorsAdmin.Use(middleware.RoleRequired(models.RoleAdmin))
			{
				instructorsAdmin.PUT("/:id/add-ons", instructorController.UpdateAddOns)
			}
		}

		admin := authenticated.Group("/admin")
		admin.Use(middleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/audit-events", courseController.AuditEvents)
		}
	}
}
