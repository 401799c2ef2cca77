package controller

import (
	"context"
	"net/http"
	"study_portal_backend/internal/middleware"
	"study_portal_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthController struct {
	Redis *redis.Client
}

func NewHealthController(rdb *redis.Client) *HealthController {
	return &HealthController{Redis: rdb}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{"schedule_store": "memory"}

	if c.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Redis unavailable")
			return
		}
		components["schedule_store"] = "redis"
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}

type VisitorController struct {
	Counter *middleware.VisitorCounter
}

func NewVisitorController(counter *middleware.VisitorCounter) *VisitorController {
	return &VisitorController{Counter: counter}
}

// GetVisitors godoc
// @Summary 访问次数
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/visitors [get]
func (c *VisitorController) GetVisitors(ctx *gin.Context) {
	util.Success(ctx, gin.H{"visitors": c.Counter.Count()})
}
