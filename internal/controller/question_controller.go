package controller

import (
	"errors"
	"fmt"
	"lomba_backend/internal/model"
	"lomba_backend/internal/service"
	"lomba_backend/internal/util"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service *service.QuestionService
	Storage *service.StorageService
}

func NewQuestionController(svc *service.QuestionService, storage *service.StorageService) *QuestionController {
	return &QuestionController{Service: svc, Storage: storage}
}

// @Summary List questions with their answer options
// @Tags Question
// @Produce json
// @Security BearerAuth
// @Param level query string false "Level filter (SD or SMP)"
// @Success 200 {object} util.Response
// @Router /api/exam/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	level := model.QuestionLevel(ctx.Query("level"))
	if level != "" && !model.ValidLevel(level) {
		util.BadRequest(ctx, "level must be SD or SMP")
		return
	}

	questions, err := c.Service.List(level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// @Summary Get a question by id
// @Tags Question
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	question, err := c.Service.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// @Summary Create a question with exactly 4 answers
// @Tags Question
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionReq true "Question payload"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/admin/exam/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.Create(req)
	if err != nil {
		if ve, ok := util.AsValidationError(err); ok {
			util.ValidationFailed(ctx, ve)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, question)
}

// @Summary Update a question, reconciling its answers by id
// @Tags Question
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Param body body service.QuestionReq true "Question payload"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/admin/exam/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.Update(ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		if ve, ok := util.AsValidationError(err); ok {
			util.ValidationFailed(ctx, ve)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// @Summary Delete a question and its answers
// @Tags Question
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/exam/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := c.Service.Delete(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary Upload a question or answer image
// @Tags Question
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} util.Response
// @Router /api/admin/exam/questions/upload-image [post]
func (c *QuestionController) UploadImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("questions/%d%s", time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	url, err := c.Storage.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
