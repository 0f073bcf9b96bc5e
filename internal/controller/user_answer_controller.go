package controller

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/service"
	"lomba_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserAnswerController struct {
	Service *service.UserAnswerService
}

func NewUserAnswerController(svc *service.UserAnswerService) *UserAnswerController {
	return &UserAnswerController{Service: svc}
}

// 参赛者只能操作自己的作答，admin 不受限
func (c *UserAnswerController) ownerOrAdmin(ctx *gin.Context, userID uint) bool {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return false
	}
	if claims.Role != model.Admin && claims.UserID != userID {
		util.Forbidden(ctx)
		return false
	}
	return true
}

// @Summary Submit or change an answer for a question
// @Tags Answer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SubmitAnswerReq true "Answer payload"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/exam/answers [post]
func (c *UserAnswerController) Submit(ctx *gin.Context) {
	var req service.SubmitAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !c.ownerOrAdmin(ctx, req.UserID) {
		return
	}

	ua, err := c.Service.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound),
			errors.Is(err, util.ErrQuestionNotFound),
			errors.Is(err, util.ErrAnswerNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAnswerMismatch):
			util.UnprocessableEntity(ctx, "answer does not belong to the question")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, ua)
}

// @Summary List the authenticated user's answers
// @Tags Answer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/exam/answers [get]
func (c *UserAnswerController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	answers, err := c.Service.ListByUser(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, answers)
}

// @Summary Retract an answer, returning the question to unanswered
// @Tags Answer
// @Produce json
// @Security BearerAuth
// @Param id path string true "UserAnswer ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/answers/{id} [delete]
func (c *UserAnswerController) Remove(ctx *gin.Context) {
	ua, err := c.Service.Repo.FindByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrUserAnswerNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if !c.ownerOrAdmin(ctx, ua.UserID) {
		return
	}

	if err := c.Service.Remove(ua.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": ua.ID})
}

// @Summary Clear the authenticated user's answer for a question
// @Tags Answer
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/questions/{id}/answer [delete]
func (c *UserAnswerController) UnsetForQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := ctx.Param("id")
	if err := c.Service.RemoveByUserAndQuestion(claims.UserID, questionID); err != nil {
		if errors.Is(err, util.ErrUserAnswerNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"cleared": questionID})
}

// @Summary Toggle the doubtful mark on an answer
// @Tags Answer
// @Produce json
// @Security BearerAuth
// @Param id path string true "UserAnswer ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/answers/{id}/doubt [put]
func (c *UserAnswerController) ToggleDoubt(ctx *gin.Context) {
	ua, err := c.Service.Repo.FindByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrUserAnswerNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if !c.ownerOrAdmin(ctx, ua.UserID) {
		return
	}

	ua, err = c.Service.ToggleDoubt(ua.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, ua)
}

// @Summary Clear the doubtful mark on an answer
// @Tags Answer
// @Produce json
// @Security BearerAuth
// @Param id path string true "UserAnswer ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/answers/{id}/doubt [delete]
func (c *UserAnswerController) UnsetDoubt(ctx *gin.Context) {
	ua, err := c.Service.Repo.FindByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrUserAnswerNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	if !c.ownerOrAdmin(ctx, ua.UserID) {
		return
	}

	ua, err = c.Service.UnsetDoubt(ua.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, ua)
}
