package controller

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/service"
	"lomba_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Service *service.ResultService
}

func NewResultController(svc *service.ResultService) *ResultController {
	return &ResultController{Service: svc}
}

// @Summary Ranked participant leaderboard with cohort statistics (admin)
// @Tags Result
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param perPage query int false "Page size" default(10)
// @Param level query string false "Level filter (SD or SMP)"
// @Param status query string false "all | submitted | not_submitted" default(all)
// @Param name query string false "Case-insensitive name substring"
// @Param userId query int false "Exact user id filter"
// @Param sortBy query string false "score | submitted_at | duration | violations" default(score)
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} util.Response
// @Router /api/admin/results/participants [get]
func (c *ResultController) ListParticipants(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("perPage", "10"))
	userID, _ := strconv.ParseUint(ctx.Query("userId"), 10, 32)

	level := model.QuestionLevel(ctx.Query("level"))
	if level != "" && !model.ValidLevel(level) {
		util.BadRequest(ctx, "level must be SD or SMP")
		return
	}

	status := ctx.DefaultQuery("status", service.StatusFilterAll)
	switch status {
	case service.StatusFilterAll, service.StatusFilterSubmitted, service.StatusFilterNotSubmitted:
	default:
		util.BadRequest(ctx, "status must be all, submitted or not_submitted")
		return
	}

	list, err := c.Service.ListParticipants(service.ListParticipantsOpts{
		Page:         page,
		PerPage:      perPage,
		Level:        level,
		StatusFilter: status,
		NameSearch:   ctx.Query("name"),
		UserID:       uint(userID),
		SortBy:       ctx.DefaultQuery("sortBy", "score"),
		SortOrder:    ctx.DefaultQuery("order", "desc"),
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary Per-level exam statistics overview (admin)
// @Tags Result
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/results/statistics [get]
func (c *ResultController) Statistics(ctx *gin.Context) {
	stats, err := c.Service.StatisticsOverview(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary Score breakdown for the authenticated user
// @Tags Result
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/results/me [get]
func (c *ResultController) MySummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.Service.UserSummary(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary Score breakdown for a given user (admin)
// @Tags Result
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/results/users/{id} [get]
func (c *ResultController) UserSummary(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	summary, err := c.Service.UserSummary(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}
