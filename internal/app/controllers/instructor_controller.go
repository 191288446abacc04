package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/app/services"
	"github.com/tsegaye25/load-tracking/internal/middleware"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// InstructorController handles instructor workload endpoints
type InstructorController struct {
	instructorService *services.InstructorService
	logger            zerolog.Logger
}

// NewInstructorController creates a new InstructorController
func NewInstructorController(instructorService *services.InstructorService, logger zerolog.Logger) *InstructorController {
	return &InstructorController{
		instructorService: instructorService,
		logger:            logger,
	}
}

// Workload computes one instructor's teaching load
// @Summary Get an instructor's workload
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Success 200 {object} dto.APIResponse{data=dto.InstructorWorkloadResponse}
// @Failure 404 {object} dto.ErrorResponse "Instructor not found"
// @Router /instructors/{id}/workload [get]
func (c *InstructorController) Workload(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	workload, err := c.instructorService.Workload(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(workload))
}

// List computes workloads for every visible instructor
// @Summary List instructors with workloads
// @Tags instructors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Router /instructors [get]
func (c *InstructorController) List(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	workloads, err := c.instructorService.ListWithWorkloads(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(workloads))
}

// UpdateAddOns sets an instructor's administrative hour credits
// @Summary Update instructor hour add-ons
// @Tags instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instructor ID"
// @Param request body dto.UpdateAddOnsRequest true "Add-on hours"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /instructors/{id}/add-ons [put]
func (c *InstructorController) UpdateAddOns(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateAddOnsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	instructor, err := c.instructorService.UpdateAddOns(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(instructor))
}

func (c *InstructorController) userAndID(ctx *gin.Context) (*models.User, int64, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return nil, 0, false
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id", "instructor id must be an integer"))
		return nil, 0, false
	}
	return user, id, true
}
