package controller

import (
	"strconv"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScheduleController struct {
	ScheduleService *service.ScheduleService
}

func NewScheduleController(scheduleService *service.ScheduleService) *ScheduleController {
	return &ScheduleController{ScheduleService: scheduleService}
}

// GetSessions godoc
// @Summary 获取学习计划
// @Description 按状态分组返回用户的全部学习计划，active 按开始时间排序
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=model.ScheduleView}
// @Router /api/schedules/{userId}/sessions [get]
func (c *ScheduleController) GetSessions(ctx *gin.Context) {
	util.Success(ctx, c.ScheduleService.View(ctx.Request.Context(), ctx.Param("userId")))
}

// CreateSession godoc
// @Summary 新建学习计划
// @Tags 学习计划
// @Accept json
// @Produce json
// @Param userId path string true "用户ID"
// @Param body body model.StudySessionDraft true "计划内容"
// @Success 201 {object} util.Response{data=model.StudySession}
// @Failure 400 {object} util.Response
// @Router /api/schedules/{userId}/sessions [post]
func (c *ScheduleController) CreateSession(ctx *gin.Context) {
	var draft model.StudySessionDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.ScheduleService.Add(ctx.Request.Context(), ctx.Param("userId"), draft)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// UpdateSession godoc
// @Summary 更新学习计划
// @Description 按 id 整体替换，id 不存在时返回空数据
// @Tags 学习计划
// @Accept json
// @Produce json
// @Param userId path string true "用户ID"
// @Param id path string true "计划ID"
// @Param body body model.StudySession true "计划内容"
// @Success 200 {object} util.Response{data=model.StudySession}
// @Router /api/schedules/{userId}/sessions/{id} [put]
func (c *ScheduleController) UpdateSession(ctx *gin.Context) {
	var session model.StudySession
	if err := ctx.ShouldBindJSON(&session); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session.ID = ctx.Param("id")

	updated, err := c.ScheduleService.Update(ctx.Request.Context(), ctx.Param("userId"), session)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if updated == nil {
		util.Success(ctx, nil)
		return
	}
	util.Success(ctx, updated)
}

// DeleteSession godoc
// @Summary 删除学习计划
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Param id path string true "计划ID"
// @Success 200 {object} util.Response
// @Router /api/schedules/{userId}/sessions/{id} [delete]
func (c *ScheduleController) DeleteSession(ctx *gin.Context) {
	removed, err := c.ScheduleService.Delete(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"removed": removed})
}

// ToggleLesson godoc
// @Summary 切换课程完成状态
// @Description 延期计划中完成的课程会移入同科目的已完成计划
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Param id path string true "计划ID"
// @Param index path int true "课程下标"
// @Success 200 {object} util.Response{data=model.ScheduleView}
// @Failure 400 {object} util.Response
// @Router /api/schedules/{userId}/sessions/{id}/lessons/{index}/toggle [post]
func (c *ScheduleController) ToggleLesson(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "Invalid lesson index")
		return
	}

	view, err := c.ScheduleService.ToggleLesson(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("id"), index)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// PostponeSession godoc
// @Summary 推迟学习计划
// @Description 未完成课程转入延期计划，已完成课程转入已完成计划
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Param id path string true "计划ID"
// @Success 200 {object} util.Response{data=model.ScheduleView}
// @Failure 400 {object} util.Response
// @Router /api/schedules/{userId}/sessions/{id}/postpone [post]
func (c *ScheduleController) PostponeSession(ctx *gin.Context) {
	view, err := c.ScheduleService.Postpone(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// GetStats godoc
// @Summary 学习计划统计
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=model.ScheduleStats}
// @Router /api/schedules/{userId}/stats [get]
func (c *ScheduleController) GetStats(ctx *gin.Context) {
	util.Success(ctx, c.ScheduleService.Stats(ctx.Request.Context(), ctx.Param("userId")))
}

// GetNotifications godoc
// @Summary 拉取提醒
// @Description 返回并清空用户的提醒队列
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/schedules/{userId}/notifications [get]
func (c *ScheduleController) GetNotifications(ctx *gin.Context) {
	util.Success(ctx, c.ScheduleService.Notifications(ctx.Param("userId")))
}

// Share godoc
// @Summary 生成分享链接
// @Tags 学习计划
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=service.ShareResult}
// @Failure 400 {object} util.Response "没有可分享的计划"
// @Router /api/schedules/{userId}/share [get]
func (c *ScheduleController) Share(ctx *gin.Context) {
	result, err := c.ScheduleService.Share(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type ImportRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Import godoc
// @Summary 导入分享的计划
// @Tags 学习计划
// @Accept json
// @Produce json
// @Param userId path string true "用户ID"
// @Param body body ImportRequest true "分享数据"
// @Success 201 {object} util.Response{data=[]model.StudySession}
// @Failure 400 {object} util.Response
// @Router /api/schedules/{userId}/import [post]
func (c *ScheduleController) Import(ctx *gin.Context) {
	var req ImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sessions, err := c.ScheduleService.Import(ctx.Request.Context(), ctx.Param("userId"), req.Payload)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sessions)
}

// GetFriendSchedule godoc
// @Summary 查看好友的学习计划
// @Tags 好友
// @Produce json
// @Param userId path string true "好友ID"
// @Param viewerId query string true "查看者ID"
// @Success 200 {object} util.Response{data=model.ScheduleView}
// @Failure 403 {object} util.Response "不是好友"
// @Router /api/friends/{userId}/schedule [get]
func (c *ScheduleController) GetFriendSchedule(ctx *gin.Context) {
	view, err := c.ScheduleService.FriendSchedule(ctx.Request.Context(), ctx.Query("viewerId"), ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
