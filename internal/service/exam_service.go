package service

import (
	"strings"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"time"
)

type ExamService struct {
	Repo *repository.ExamRepository
	now  func() time.Time
}

func NewExamService(repo *repository.ExamRepository) *ExamService {
	return &ExamService{Repo: repo, now: time.Now}
}

func (s *ExamService) CreateWeek(week model.ExamWeek) (*model.ExamWeek, error) {
	if strings.TrimSpace(week.Title) == "" {
		return nil, util.Validationf("title is required")
	}
	if week.StartDate.IsZero() || week.EndDate.IsZero() || week.EndDate.Before(week.StartDate) {
		return nil, util.Validationf("invalid week date range")
	}
	week.CreatedAt = s.now()
	s.Repo.CreateWeek(&week)
	return &week, nil
}

func (s *ExamService) ListWeeks() []model.ExamWeek {
	return s.Repo.ListWeeks()
}

// DeleteWeek 同时删除该周所有考试
func (s *ExamService) DeleteWeek(id int64) bool {
	return s.Repo.DeleteWeek(id)
}

func (s *ExamService) CreateExam(exam model.Exam) (*model.Exam, error) {
	if _, ok := s.Repo.FindWeek(exam.WeekID); !ok {
		return nil, util.Validationf("exam week %d does not exist", exam.WeekID)
	}
	if !exam.Subject.Valid() {
		return nil, util.Validationf("unknown subject %q", exam.Subject)
	}
	if exam.Date.IsZero() {
		return nil, util.Validationf("date is required")
	}
	start, err := time.Parse("15:04", exam.StartTime)
	if err != nil {
		return nil, util.Validationf("startTime must be HH:MM")
	}
	end, err := time.Parse("15:04", exam.EndTime)
	if err != nil {
		return nil, util.Validationf("endTime must be HH:MM")
	}
	if !end.After(start) {
		return nil, util.Validationf("endTime must be after startTime")
	}
	s.Repo.CreateExam(&exam)
	return &exam, nil
}

// ListExams weekID 为 0 时返回全部考试
func (s *ExamService) ListExams(weekID int64) []model.Exam {
	return s.Repo.ListExams(weekID)
}

func (s *ExamService) DeleteExam(id int64) bool {
	return s.Repo.DeleteExam(id)
}
