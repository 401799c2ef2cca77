package service

import (
	"strings"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"time"
)

const quizCodeLength = 8

type QuizService struct {
	Repo    *repository.QuizRepository
	now     func() time.Time
	newCode func() string
}

func NewQuizService(repo *repository.QuizRepository) *QuizService {
	return &QuizService{
		Repo:    repo,
		now:     time.Now,
		newCode: func() string { return model.GenerateCode(quizCodeLength) },
	}
}

func (s *QuizService) Create(quiz model.Quiz) (*model.Quiz, error) {
	if strings.TrimSpace(quiz.Title) == "" || strings.TrimSpace(quiz.Creator) == "" {
		return nil, util.Validationf("title and creator are required")
	}
	if !quiz.Subject.Valid() {
		return nil, util.Validationf("unknown subject %q", quiz.Subject)
	}
	if len(quiz.Questions) == 0 {
		return nil, util.Validationf("quiz needs at least one question")
	}
	for i, q := range quiz.Questions {
		if strings.TrimSpace(q.Text) == "" || len(q.Options) < 2 {
			return nil, util.Validationf("question %d needs text and at least two options", i+1)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, util.Validationf("question %d has an invalid correct answer", i+1)
		}
	}

	code := s.newCode()
	for s.Repo.CodeExists(code) {
		code = s.newCode()
	}
	quiz.Code = code
	quiz.CreatedAt = s.now()
	s.Repo.Create(&quiz)
	return &quiz, nil
}

func (s *QuizService) List() []model.Quiz {
	return s.Repo.List()
}

func (s *QuizService) Get(id int64) (*model.Quiz, error) {
	q, ok := s.Repo.FindByID(id)
	if !ok {
		return nil, util.ErrNotFound
	}
	return q, nil
}

// GetByCode 分享码不区分大小写
func (s *QuizService) GetByCode(code string) (*model.Quiz, error) {
	q, ok := s.Repo.FindByCode(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return nil, util.ErrNotFound
	}
	return q, nil
}

// Delete 同时删除作答记录
func (s *QuizService) Delete(id int64) bool {
	return s.Repo.Delete(id)
}

// SubmitAttempt 由服务端按答案计算得分，未作答的题目记为 -1
func (s *QuizService) SubmitAttempt(quizID int64, participant string, answers []int) (*model.QuizAttempt, error) {
	quiz, ok := s.Repo.FindByID(quizID)
	if !ok {
		return nil, util.ErrNotFound
	}
	if strings.TrimSpace(participant) == "" {
		return nil, util.Validationf("participantName is required")
	}
	if len(answers) != len(quiz.Questions) {
		return nil, util.Validationf("expected %d answers, got %d", len(quiz.Questions), len(answers))
	}

	score := 0
	for i, q := range quiz.Questions {
		if answers[i] == q.CorrectAnswer {
			score++
		}
	}
	attempt := &model.QuizAttempt{
		QuizID:          quizID,
		ParticipantName: strings.TrimSpace(participant),
		Answers:         append([]int(nil), answers...),
		Score:           score,
		TotalQuestions:  len(quiz.Questions),
		CreatedAt:       s.now(),
	}
	s.Repo.CreateAttempt(attempt)
	return attempt, nil
}

func (s *QuizService) ListAttempts(quizID int64) ([]model.QuizAttempt, error) {
	if _, ok := s.Repo.FindByID(quizID); !ok {
		return nil, util.ErrNotFound
	}
	return s.Repo.ListAttempts(quizID), nil
}
