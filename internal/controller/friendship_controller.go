package controller

import (
	"strconv"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendshipController struct {
	FriendshipService *service.FriendshipService
}

func NewFriendshipController(friendshipService *service.FriendshipService) *FriendshipController {
	return &FriendshipController{FriendshipService: friendshipService}
}

type UserRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// CreateUser godoc
// @Summary 创建或更新用户
// @Tags 好友
// @Accept json
// @Produce json
// @Param body body UserRequest true "用户信息"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Router /api/users [post]
func (c *FriendshipController) CreateUser(ctx *gin.Context) {
	var req UserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.FriendshipService.CreateOrUpdateUser(req.UserID, req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// SearchUsers godoc
// @Summary 搜索用户
// @Description 按 userId 子串匹配（区分大小写）
// @Tags 好友
// @Produce json
// @Param q query string true "关键字"
// @Success 200 {object} util.Response{data=[]model.User}
// @Failure 400 {object} util.Response
// @Router /api/users/search [get]
func (c *FriendshipController) SearchUsers(ctx *gin.Context) {
	users, err := c.FriendshipService.SearchUsers(ctx.Query("q"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

type FriendRequestRequest struct {
	SenderID   string `json:"senderId" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
}

// SendFriendRequest godoc
// @Summary 发送好友申请
// @Tags 好友
// @Accept json
// @Produce json
// @Param body body FriendRequestRequest true "申请信息"
// @Success 201 {object} util.Response{data=model.FriendRequest}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "duplicate_request / already_friends"
// @Router /api/friend-requests [post]
func (c *FriendshipController) SendFriendRequest(ctx *gin.Context) {
	var req FriendRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.FriendshipService.SendFriendRequest(req.SenderID, req.ReceiverID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// GetFriendRequests godoc
// @Summary 待处理的好友申请
// @Tags 好友
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=[]model.FriendRequestView}
// @Router /api/friend-requests/{userId} [get]
func (c *FriendshipController) GetFriendRequests(ctx *gin.Context) {
	util.Success(ctx, c.FriendshipService.ListFriendRequests(ctx.Param("userId")))
}

type RespondRequest struct {
	Status model.FriendRequestStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// RespondToRequest godoc
// @Summary 处理好友申请
// @Tags 好友
// @Accept json
// @Produce json
// @Param id path int true "申请ID"
// @Param body body RespondRequest true "accepted 或 rejected"
// @Success 200 {object} util.Response{data=model.FriendRequest}
// @Failure 409 {object} util.Response "request_resolved"
// @Router /api/friend-requests/{id} [put]
func (c *FriendshipController) RespondToRequest(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "Invalid request ID")
		return
	}

	var req RespondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.FriendshipService.RespondToRequest(id, req.Status)
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

// GetFriends godoc
// @Summary 好友列表
// @Tags 好友
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} util.Response{data=[]model.FriendView}
// @Router /api/friends/{userId} [get]
func (c *FriendshipController) GetFriends(ctx *gin.Context) {
	util.Success(ctx, c.FriendshipService.ListFriends(ctx.Param("userId")))
}

// RemoveFriend godoc
// @Summary 删除好友
// @Description 同时删除双向关系
// @Tags 好友
// @Produce json
// @Param userId path string true "用户ID"
// @Param friendId path string true "好友ID"
// @Success 200 {object} util.Response
// @Router /api/friends/{userId}/{friendId} [delete]
func (c *FriendshipController) RemoveFriend(ctx *gin.Context) {
	removed := c.FriendshipService.RemoveFriend(ctx.Param("userId"), ctx.Param("friendId"))
	util.Success(ctx, gin.H{"removed": removed})
}
