package repository

import (
	"strings"
	"study_portal_backend/internal/model"
	"sync"
)

// UserRepository 好友目录用户表，以 UserID 为唯一键
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
	order []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*model.User)}
}

func (r *UserRepository) Create(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	if _, exists := r.users[u.UserID]; !exists {
		r.order = append(r.order, u.UserID)
	}
	r.users[u.UserID] = &u
}

func (r *UserRepository) FindByUserID(userID string) (*model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, false
	}
	out := *u
	return &out, true
}

func (r *UserRepository) UpdateName(userID, name string) (*model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, false
	}
	u.Name = name
	out := *u
	return &out, true
}

// Search 按 UserID 子串匹配（区分大小写），按注册顺序返回
func (r *UserRepository) Search(query string) []model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.User, 0)
	for _, id := range r.order {
		if strings.Contains(id, query) {
			result = append(result, *r.users[id])
		}
	}
	return result
}

// NameOf 返回展示名，用户不存在时返回 Unknown
func (r *UserRepository) NameOf(userID string) string {
	if u, ok := r.FindByUserID(userID); ok {
		return u.Name
	}
	return model.UnknownName
}
