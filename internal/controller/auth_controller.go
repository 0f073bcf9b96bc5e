package controller

import (
	"errors"
	"lomba_backend/internal/config"
	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
}

func NewAuthController(userRepo *repository.UserRepository, cfg *config.Config) *AuthController {
	return &AuthController{UserRepo: userRepo, Config: cfg}
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Login and obtain a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginReq true "Credentials"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.Error(ctx, 401, "invalid email or password")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		util.Error(ctx, 401, "invalid email or password")
		return
	}

	// 已交卷的参赛者账号会被置为 inactive，不再允许进入考试端
	if user.Role == model.Participant {
		if status, err := c.UserRepo.FindStatus(user.ID); err == nil && status != nil && !status.CanLogin() {
			util.Error(ctx, 403, "account is inactive: "+status.Reason)
			return
		}
	}

	token, err := util.GenerateJWT(user, c.Config.JWT.Secret, c.Config.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
			"jenjang": user.Jenjang,
		},
	})
}

// @Summary Profile of the authenticated user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.UserRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	user.Password = ""
	util.Success(ctx, user)
}
