package controller

import (
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// ListQuizzes godoc
// @Summary 测验列表
// @Tags 测验
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	util.Success(ctx, c.QuizService.List())
}

// CreateQuiz godoc
// @Summary 新建测验
// @Description 服务端生成 8 位分享码
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body model.Quiz true "测验"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var quiz model.Quiz
	if err := ctx.ShouldBindJSON(&quiz); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	created, err := c.QuizService.Create(quiz)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// GetQuiz godoc
// @Summary 测验详情
// @Tags 测验
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	quiz, err := c.QuizService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// GetQuizByCode godoc
// @Summary 按分享码查找测验
// @Tags 测验
// @Produce json
// @Param code path string true "分享码"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/code/{code} [get]
func (c *QuizController) GetQuizByCode(ctx *gin.Context) {
	quiz, err := c.QuizService.GetByCode(ctx.Param("code"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Description 同时删除作答记录
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"removed": c.QuizService.Delete(id)})
}

type AttemptRequest struct {
	ParticipantName string `json:"participantName" binding:"required"`
	Answers         []int  `json:"answers" binding:"required"`
}

// SubmitAttempt godoc
// @Summary 提交作答
// @Description 得分由服务端根据正确答案计算
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path int true "测验ID"
// @Param body body AttemptRequest true "作答"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	attempt, err := c.QuizService.SubmitAttempt(id, req.ParticipantName, req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// ListAttempts godoc
// @Summary 作答记录
// @Tags 测验
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	attempts, err := c.QuizService.ListAttempts(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
