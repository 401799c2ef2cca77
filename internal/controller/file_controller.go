package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/service"
	"study_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	FileService *service.FileService
}

func NewFileController(fileService *service.FileService) *FileController {
	return &FileController{FileService: fileService}
}

// UploadFile godoc
// @Summary 上传学习资料
// @Tags 资料
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "标题"
// @Param subject formData string true "科目"
// @Param semester formData string true "学期 first/second"
// @Param file formData file true "文件"
// @Success 201 {object} util.Response{data=model.File}
// @Failure 400 {object} util.Response
// @Router /api/files [post]
func (c *FileController) UploadFile(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "No file uploaded")
		return
	}
	if header.Size > c.FileService.MaxUpload {
		util.BadRequest(ctx, fmt.Sprintf("File exceeds %d MB", c.FileService.MaxUpload>>20))
		return
	}

	f, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	file, err := c.FileService.Upload(ctx.Request.Context(), service.FileUpload{
		Title:    ctx.PostForm("title"),
		Subject:  model.Subject(ctx.PostForm("subject")),
		Semester: model.Semester(ctx.PostForm("semester")),
		FileName: header.Filename,
		Size:     header.Size,
		Reader:   f,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, file)
}

// ListFiles godoc
// @Summary 资料列表
// @Tags 资料
// @Produce json
// @Param subject query string false "科目，all 表示全部"
// @Param semester query string false "学期，all 表示全部"
// @Success 200 {object} util.Response{data=[]model.File}
// @Router /api/files [get]
func (c *FileController) ListFiles(ctx *gin.Context) {
	util.Success(ctx, c.FileService.List(ctx.Query("subject"), ctx.Query("semester")))
}

// GetFile godoc
// @Summary 资料详情
// @Tags 资料
// @Produce json
// @Param id path int true "资料ID"
// @Success 200 {object} util.Response{data=model.File}
// @Failure 404 {object} util.Response
// @Router /api/files/{id} [get]
func (c *FileController) GetFile(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	file, err := c.FileService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, file)
}

// DownloadFile godoc
// @Summary 下载资料
// @Tags 资料
// @Produce octet-stream
// @Param id path int true "资料ID"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/files/{id}/download [get]
func (c *FileController) DownloadFile(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	file, rc, err := c.FileService.Open(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.DataFromReader(http.StatusOK, file.Size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.FileName),
	})
}

// DeleteFile godoc
// @Summary 删除资料
// @Tags 资料
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "资料ID"
// @Success 200 {object} util.Response
// @Router /api/files/{id} [delete]
func (c *FileController) DeleteFile(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	removed, err := c.FileService.Delete(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"removed": removed})
}

// parseID 解析路径中的数字 id，失败时已写入 400
func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "Invalid ID")
		return 0, false
	}
	return id, true
}
