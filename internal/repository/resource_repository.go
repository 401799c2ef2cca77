package repository

import (
	"sort"
	"study_portal_backend/internal/model"
	"sync"
)

// ResourceRepository 学习资料元数据（文件内容由 StorageService 保存）
type ResourceRepository struct {
	mu     sync.RWMutex
	files  map[int64]*model.File
	nextID int64
}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{files: make(map[int64]*model.File), nextID: 1}
}

func (r *ResourceRepository) Create(file *model.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file.ID = r.nextID
	r.nextID++
	stored := *file
	r.files[stored.ID] = &stored
}

func (r *ResourceRepository) FindByID(id int64) (*model.File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return nil, false
	}
	out := *f
	return &out, true
}

// List 按科目、学期过滤，空值表示不过滤
func (r *ResourceRepository) List(subject model.Subject, semester model.Semester) []model.File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.File, 0, len(r.files))
	for _, f := range r.files {
		if subject != "" && f.Subject != subject {
			continue
		}
		if semester != "" && f.Semester != semester {
			continue
		}
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *ResourceRepository) Delete(id int64) (*model.File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, false
	}
	delete(r.files, id)
	return f, true
}
