package controller

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/service"
	"lomba_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Service *service.ExamService
}

func NewExamController(svc *service.ExamService) *ExamController {
	return &ExamController{Service: svc}
}

// @Summary Register an exam submission (one per user per day)
// @Tags Exam
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamSubmitReq true "Submission payload"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/exam/submissions [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	var req service.ExamSubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if claims.Role != model.Admin && claims.UserID != req.UserID {
		util.Forbidden(ctx)
		return
	}

	sub, err := c.Service.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDuplicateSubmission):
			util.UnprocessableEntity(ctx, "exam already submitted today")
		default:
			if ve, ok := util.AsValidationError(err); ok {
				util.ValidationFailed(ctx, ve)
				return
			}
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, sub)
}

// @Summary Get a submission by id
// @Tags Exam
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/submissions/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid submission id")
		return
	}

	sub, err := c.Service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if claims.Role != model.Admin && claims.UserID != sub.UserID {
		util.Forbidden(ctx)
		return
	}

	util.Success(ctx, sub)
}

// @Summary List the authenticated user's submissions
// @Tags Exam
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} util.Response
// @Router /api/exam/submissions [get]
func (c *ExamController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	subs, total, err := c.Service.ListByUser(claims.UserID, page, limit, ctx.DefaultQuery("order", "desc"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  subs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary List all submissions (admin)
// @Tags Exam
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param sortBy query string false "Sort column (submitted_at, duration, violations)"
// @Param order query string false "asc or desc" default(desc)
// @Param level query string false "Level filter (SD or SMP)"
// @Success 200 {object} util.Response
// @Router /api/admin/exam/submissions [get]
func (c *ExamController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	level := model.QuestionLevel(ctx.Query("level"))
	if level != "" && !model.ValidLevel(level) {
		util.BadRequest(ctx, "level must be SD or SMP")
		return
	}

	subs, total, err := c.Service.List(page, limit, ctx.DefaultQuery("sortBy", "submitted_at"), ctx.DefaultQuery("order", "desc"), level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  subs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
