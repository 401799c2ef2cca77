package middleware

import (
	"net/http"
	"strings"
	"study_portal_backend/pkg/monitoring"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// VisitorCounter 统计门户页面访问次数
type VisitorCounter struct {
	count atomic.Int64
	pages map[string]bool
}

func NewVisitorCounter(pages ...string) *VisitorCounter {
	v := &VisitorCounter{pages: make(map[string]bool, len(pages))}
	for _, p := range pages {
		v.pages[p] = true
	}
	return v
}

func (v *VisitorCounter) Count() int64 {
	return v.count.Load()
}

// Middleware 只统计 GET 请求的页面路径
func (v *VisitorCounter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			path := c.Request.URL.Path
			if len(path) > 1 {
				path = strings.TrimRight(path, "/")
			}
			if v.pages[path] {
				v.count.Add(1)
				monitoring.VisitorCounter.Inc()
			}
		}
		c.Next()
	}
}
