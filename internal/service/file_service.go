package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// FileUpload 上传请求，Reader 需支持 Seek 以便嗅探类型后回到开头
type FileUpload struct {
	Title    string
	Subject  model.Subject
	Semester model.Semester
	FileName string
	Size     int64
	Reader   io.ReadSeeker
}

type FileService struct {
	Repo      *repository.ResourceRepository
	Storage   *StorageService
	MaxUpload int64
	now       func() time.Time
}

func NewFileService(repo *repository.ResourceRepository, storage *StorageService, maxUploadMB int64) *FileService {
	return &FileService{
		Repo:      repo,
		Storage:   storage,
		MaxUpload: maxUploadMB << 20,
		now:       time.Now,
	}
}

func (s *FileService) Upload(ctx context.Context, up FileUpload) (*model.File, error) {
	if strings.TrimSpace(up.Title) == "" {
		return nil, util.Validationf("title is required")
	}
	if !up.Subject.Valid() {
		return nil, util.Validationf("unknown subject %q", up.Subject)
	}
	if !up.Semester.Valid() {
		return nil, util.Validationf("unknown semester %q", up.Semester)
	}
	if up.Size > s.MaxUpload {
		return nil, util.Validationf("file exceeds %d MB", s.MaxUpload>>20)
	}
	if !util.AllowedExtension(up.FileName) {
		return nil, util.Validationf("file type %q is not allowed", filepath.Ext(up.FileName))
	}

	contentType, err := util.DetectContentType(up.Reader)
	if err != nil {
		return nil, err
	}
	if _, err := up.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	name := util.SanitizeFilename(up.FileName)
	key := fmt.Sprintf("files/%s/%s-%s", up.Subject, model.GenerateUUID(), name)
	url, err := s.Storage.Upload(ctx, key, up.Reader, up.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	file := &model.File{
		Title:      strings.TrimSpace(up.Title),
		Subject:    up.Subject,
		Semester:   up.Semester,
		FileName:   name,
		FilePath:   url,
		ObjectKey:  key,
		Size:       up.Size,
		UploadedAt: s.now(),
	}
	s.Repo.Create(file)
	logger.Log.Info("File uploaded", zap.Int64("id", file.ID), zap.String("key", key))
	return file, nil
}

// List subject/semester 为空或 "all" 时不过滤
func (s *FileService) List(subject, semester string) []model.File {
	if subject == util.FilterAll {
		subject = ""
	}
	if semester == util.FilterAll {
		semester = ""
	}
	return s.Repo.List(model.Subject(subject), model.Semester(semester))
}

func (s *FileService) Get(id int64) (*model.File, error) {
	f, ok := s.Repo.FindByID(id)
	if !ok {
		return nil, util.ErrNotFound
	}
	return f, nil
}

// Open 返回文件内容，调用方负责关闭
func (s *FileService) Open(ctx context.Context, id int64) (*model.File, io.ReadCloser, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.Storage.Open(ctx, f.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return f, rc, nil
}

func (s *FileService) Delete(ctx context.Context, id int64) (bool, error) {
	f, ok := s.Repo.Delete(id)
	if !ok {
		return false, nil
	}
	if err := s.Storage.Delete(ctx, f.ObjectKey); err != nil {
		// 元数据已删除，对象残留只记录日志
		logger.Log.Warn("Delete stored object failed", zap.String("key", f.ObjectKey), zap.Error(err))
	}
	return true, nil
}
