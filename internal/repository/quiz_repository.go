package repository

import (
	"sort"
	"study_portal_backend/internal/model"
	"sync"
)

type QuizRepository struct {
	mu            sync.RWMutex
	quizzes       map[int64]*model.Quiz
	attempts      map[int64]*model.QuizAttempt
	nextQuizID    int64
	nextAttemptID int64
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		quizzes:       make(map[int64]*model.Quiz),
		attempts:      make(map[int64]*model.QuizAttempt),
		nextQuizID:    1,
		nextAttemptID: 1,
	}
}

func (r *QuizRepository) Create(quiz *model.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.nextQuizID
	r.nextQuizID++
	stored := *quiz
	r.quizzes[stored.ID] = &stored
}

func (r *QuizRepository) FindByID(id int64) (*model.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quizzes[id]
	if !ok {
		return nil, false
	}
	out := *q
	return &out, true
}

func (r *QuizRepository) FindByCode(code string) (*model.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.quizzes {
		if q.Code == code {
			out := *q
			return &out, true
		}
	}
	return nil, false
}

func (r *QuizRepository) CodeExists(code string) bool {
	_, ok := r.FindByCode(code)
	return ok
}

func (r *QuizRepository) List() []model.Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		result = append(result, *q)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Delete 删除测验及其作答记录
func (r *QuizRepository) Delete(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return false
	}
	for attemptID, a := range r.attempts {
		if a.QuizID == id {
			delete(r.attempts, attemptID)
		}
	}
	delete(r.quizzes, id)
	return true
}

func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = r.nextAttemptID
	r.nextAttemptID++
	stored := *attempt
	r.attempts[stored.ID] = &stored
}

func (r *QuizRepository) ListAttempts(quizID int64) []model.QuizAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.QuizAttempt, 0)
	for _, a := range r.attempts {
		if a.QuizID == quizID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
