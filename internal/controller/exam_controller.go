package controller

import (
	"strconv"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// ListWeeks godoc
// @Summary 考试周列表
// @Tags 考试
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ExamWeek}
// @Router /api/exam-weeks [get]
func (c *ExamController) ListWeeks(ctx *gin.Context) {
	util.Success(ctx, c.ExamService.ListWeeks())
}

// CreateWeek godoc
// @Summary 新建考试周
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.ExamWeek true "考试周"
// @Success 201 {object} util.Response{data=model.ExamWeek}
// @Failure 400 {object} util.Response
// @Router /api/exam-weeks [post]
func (c *ExamController) CreateWeek(ctx *gin.Context) {
	var week model.ExamWeek
	if err := ctx.ShouldBindJSON(&week); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	created, err := c.ExamService.CreateWeek(week)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// DeleteWeek godoc
// @Summary 删除考试周
// @Description 同时删除该周所有考试
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试周ID"
// @Success 200 {object} util.Response
// @Router /api/exam-weeks/{id} [delete]
func (c *ExamController) DeleteWeek(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"removed": c.ExamService.DeleteWeek(id)})
}

// ListExams godoc
// @Summary 考试列表
// @Tags 考试
// @Produce json
// @Param weekId query int false "考试周ID"
// @Success 200 {object} util.Response{data=[]model.Exam}
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	var weekID int64
	if raw := ctx.Query("weekId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			util.BadRequest(ctx, "Invalid weekId")
			return
		}
		weekID = id
	}
	util.Success(ctx, c.ExamService.ListExams(weekID))
}

// CreateExam godoc
// @Summary 新建考试
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.Exam true "考试"
// @Success 201 {object} util.Response{data=model.Exam}
// @Failure 400 {object} util.Response
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var exam model.Exam
	if err := ctx.ShouldBindJSON(&exam); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	created, err := c.ExamService.CreateExam(exam)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// DeleteExam godoc
// @Summary 删除考试
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"removed": c.ExamService.DeleteExam(id)})
}
