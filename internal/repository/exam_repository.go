package repository

import (
	"sort"
	"study_portal_backend/internal/model"
	"sync"
)

type ExamRepository struct {
	mu         sync.RWMutex
	weeks      map[int64]*model.ExamWeek
	exams      map[int64]*model.Exam
	nextWeekID int64
	nextExamID int64
}

func NewExamRepository() *ExamRepository {
	return &ExamRepository{
		weeks:      make(map[int64]*model.ExamWeek),
		exams:      make(map[int64]*model.Exam),
		nextWeekID: 1,
		nextExamID: 1,
	}
}

func (r *ExamRepository) CreateWeek(week *model.ExamWeek) {
	r.mu.Lock()
	defer r.mu.Unlock()
	week.ID = r.nextWeekID
	r.nextWeekID++
	stored := *week
	r.weeks[stored.ID] = &stored
}

func (r *ExamRepository) FindWeek(id int64) (*model.ExamWeek, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.weeks[id]
	if !ok {
		return nil, false
	}
	out := *w
	return &out, true
}

func (r *ExamRepository) ListWeeks() []model.ExamWeek {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.ExamWeek, 0, len(r.weeks))
	for _, w := range r.weeks {
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// DeleteWeek 删除考试周及其下所有考试
func (r *ExamRepository) DeleteWeek(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.weeks[id]; !ok {
		return false
	}
	for examID, e := range r.exams {
		if e.WeekID == id {
			delete(r.exams, examID)
		}
	}
	delete(r.weeks, id)
	return true
}

func (r *ExamRepository) CreateExam(exam *model.Exam) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam.ID = r.nextExamID
	r.nextExamID++
	stored := *exam
	r.exams[stored.ID] = &stored
}

// ListExams weekID 为 0 时返回全部
func (r *ExamRepository) ListExams(weekID int64) []model.Exam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Exam, 0, len(r.exams))
	for _, e := range r.exams {
		if weekID != 0 && e.WeekID != weekID {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *ExamRepository) DeleteExam(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exams[id]; !ok {
		return false
	}
	delete(r.exams, id)
	return true
}
