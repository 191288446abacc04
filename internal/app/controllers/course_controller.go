package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/app/services"
	"github.com/tsegaye25/load-tracking/internal/app/workflow"
	"github.com/tsegaye25/load-tracking/internal/middleware"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/helpers"
)

// CourseController handles course CRUD and workflow endpoints
type CourseController struct {
	courseService *services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

// Create adds a new course
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course fields"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Not a department head or admin"
// @Router /courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course))
}

// Get retrieves one course
// @Summary Get a course by id
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.Get(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// List retrieves courses with optional filters
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param department query string false "Filter by department"
// @Param classYear query string false "Filter by class year"
// @Param semester query string false "Filter by semester (I or II)"
// @Success 200 {object} dto.APIResponse
// @Router /courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	filter := workflow.CourseFilter{
		Status:     models.CourseStatus(ctx.Query("status")),
		Department: ctx.Query("department"),
		ClassYear:  ctx.Query("classYear"),
		Semester:   models.Semester(ctx.Query("semester")),
	}

	courses, err := c.courseService.List(ctx.Request.Context(), user, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// Update applies a partial edit to a course
// @Summary Update course fields
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Course is past its editable stages"
// @Router /courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// Delete removes a course
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Course is past its deletable stages"
// @Router /courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"deleted": true}))
}

// Transition applies a workflow action to a course
// @Summary Apply a workflow action
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.TransitionRequest true "Action and payload"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Action not allowed for the caller"
// @Failure 409 {object} dto.ErrorResponse "Invalid transition or conflict"
// @Router /courses/{id}/transition [post]
func (c *CourseController) Transition(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	course, err := c.courseService.Transition(ctx.Request.Context(), user, id, req.Action, req.Payload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// BulkTransition applies one action to many courses
// @Summary Apply a workflow action to many courses
// @Tags workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkTransitionRequest true "Course ids, action and payload"
// @Success 200 {object} dto.APIResponse
// @Router /courses/bulk-transition [post]
func (c *CourseController) BulkTransition(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.BulkTransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	outcomes := c.courseService.BulkTransition(ctx.Request.Context(), user, req.CourseIDs, req.Action, req.Payload)

	results := make([]dto.BulkTransitionResult, 0, len(outcomes))
	succeeded := 0
	for _, outcome := range outcomes {
		result := dto.BulkTransitionResult{CourseID: outcome.CourseID}
		if outcome.Err != nil {
			_, detail := middleware.MapError(outcome.Err)
			result.Error = detail
		} else {
			result.Success = true
			result.Status = outcome.Course.Status
			succeeded++
		}
		results = append(results, result)
	}

	c.logger.Info().
		Int("requested", len(outcomes)).
		Int("succeeded", succeeded).
		Str("action", string(req.Action)).
		Msg("Bulk transition finished")

	// The batch itself always succeeds; failures live in the per-course results.
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(results))
}

// AllowedActions lists the caller's legal actions on a course
// @Summary Get allowed workflow actions
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.AllowedActionsResponse}
// @Router /courses/{id}/actions [get]
func (c *CourseController) AllowedActions(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	actions, err := c.courseService.AllowedActions(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AllowedActionsResponse{
		CourseID: id,
		Actions:  actions.List(),
	}))
}

// History returns the approval history of a course
// @Summary Get a course's approval history
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Router /courses/{id}/history [get]
func (c *CourseController) History(ctx *gin.Context) {
	user, id, ok := c.userAndID(ctx)
	if !ok {
		return
	}

	history, err := c.courseService.History(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(history))
}

// ReviewQueue lists courses awaiting the caller's role
// @Summary Get the caller's review queue
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Router /courses/review-queue [get]
func (c *CourseController) ReviewQueue(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	courses, err := c.courseService.ReviewQueue(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(courses))
}

// GroupedByInstructor returns courses bucketed per instructor
// @Summary Get courses grouped by instructor
// @Tags workflow
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.APIResponse
// @Router /courses/grouped [get]
func (c *CourseController) GroupedByInstructor(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	filter := workflow.CourseFilter{
		Status:   models.CourseStatus(ctx.Query("status")),
		Semester: models.Semester(ctx.Query("semester")),
	}

	groups, err := c.courseService.GroupByInstructor(ctx.Request.Context(), user, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(groups))
}

// AuditEvents lists persisted audit events
// @Summary List audit events
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Filter by course"
// @Param page query int false "1-based page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /admin/audit-events [get]
func (c *CourseController) AuditEvents(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	var courseID *int64
	if raw := ctx.Query("courseId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("courseId", "courseId must be an integer"))
			return
		}
		courseID = &id
	}

	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	events, total, err := c.courseService.AuditEvents(ctx.Request.Context(), user, courseID, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PagedResponse{
		Items:      events,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}

func (c *CourseController) userAndID(ctx *gin.Context) (*models.User, int64, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return nil, 0, false
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id", "course id must be an integer"))
		return nil, 0, false
	}
	return user, id, true
}
