package service

import (
	"bytes"
	"context"
	"io"
	"study_portal_backend/internal/config"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLocalFileService(t *testing.T) *FileService {
	t.Helper()
	cfg := &config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()}}
	return NewFileService(repository.NewResourceRepository(), NewStorageService(cfg), 1)
}

func TestFileService_UploadListDelete(t *testing.T) {
	svc := newLocalFileService(t)
	ctx := context.Background()
	content := []byte("%PDF-1.4 chapter one")

	file, err := svc.Upload(ctx, FileUpload{
		Title:    "Chapter 1",
		Subject:  model.SubjectPhysics,
		Semester: model.SemesterFirst,
		FileName: "chapter 1.pdf",
		Size:     int64(len(content)),
		Reader:   bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "chapter-1.pdf", file.FileName)
	assert.NotEmpty(t, file.ObjectKey)

	_, rc, err := svc.Open(ctx, file.ID)
	require.NoError(t, err)
	stored, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	assert.Len(t, svc.List(util.FilterAll, util.FilterAll), 1)
	assert.Len(t, svc.List("physics", "first"), 1)
	assert.Empty(t, svc.List("math", util.FilterAll))
	assert.Empty(t, svc.List(util.FilterAll, "second"))

	removed, err := svc.Delete(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = svc.Get(file.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestFileService_UploadValidation(t *testing.T) {
	svc := newLocalFileService(t)
	ctx := context.Background()
	valid := FileUpload{
		Title:    "Notes",
		Subject:  model.SubjectMath,
		Semester: model.SemesterSecond,
		FileName: "notes.txt",
		Size:     4,
		Reader:   bytes.NewReader([]byte("abcd")),
	}

	tooBig := valid
	tooBig.Size = 2 << 20
	_, err := svc.Upload(ctx, tooBig)
	assert.ErrorIs(t, err, util.ErrValidation)

	badExt := valid
	badExt.FileName = "run.exe"
	_, err = svc.Upload(ctx, badExt)
	assert.ErrorIs(t, err, util.ErrValidation)

	badSubject := valid
	badSubject.Subject = "history"
	_, err = svc.Upload(ctx, badSubject)
	assert.ErrorIs(t, err, util.ErrValidation)

	assert.Empty(t, svc.List("", ""))
}

func TestExamService_CascadeDelete(t *testing.T) {
	svc := NewExamService(repository.NewExamRepository())

	week, err := svc.CreateWeek(model.ExamWeek{Title: "Midterms", StartDate: baseTime, EndDate: baseTime.Add(5 * 24 * time.Hour)})
	require.NoError(t, err)
	other, err := svc.CreateWeek(model.ExamWeek{Title: "Finals", StartDate: baseTime, EndDate: baseTime.Add(24 * time.Hour)})
	require.NoError(t, err)

	for _, weekID := range []int64{week.ID, week.ID, other.ID} {
		_, err := svc.CreateExam(model.Exam{WeekID: weekID, Subject: model.SubjectMath, Date: baseTime, StartTime: "09:00", EndTime: "11:00"})
		require.NoError(t, err)
	}
	assert.Len(t, svc.ListExams(week.ID), 2)
	assert.Len(t, svc.ListExams(0), 3)

	assert.True(t, svc.DeleteWeek(week.ID))
	assert.Empty(t, svc.ListExams(week.ID))
	assert.Len(t, svc.ListExams(0), 1)
	assert.False(t, svc.DeleteWeek(week.ID))
}

func TestExamService_CreateExamValidation(t *testing.T) {
	svc := NewExamService(repository.NewExamRepository())
	_, err := svc.CreateExam(model.Exam{WeekID: 42, Subject: model.SubjectMath, Date: baseTime, StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, util.ErrValidation)

	week, err := svc.CreateWeek(model.ExamWeek{Title: "W", StartDate: baseTime, EndDate: baseTime})
	require.NoError(t, err)
	_, err = svc.CreateExam(model.Exam{WeekID: week.ID, Subject: model.SubjectMath, Date: baseTime, StartTime: "11:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func sampleQuiz() model.Quiz {
	return model.Quiz{
		Title:   "Cells",
		Subject: model.SubjectBiology,
		Creator: "teacher",
		Questions: []model.Question{
			{Text: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
			{Text: "Q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
			{Text: "Q3", Options: []string{"a", "b"}, CorrectAnswer: 0},
		},
	}
}

func TestQuizService_CodeAndScoring(t *testing.T) {
	svc := NewQuizService(repository.NewQuizRepository())

	quiz, err := svc.Create(sampleQuiz())
	require.NoError(t, err)
	assert.Len(t, quiz.Code, 8)
	assert.Regexp(t, `^[0-9A-F]{8}$`, quiz.Code)

	byCode, err := svc.GetByCode(" " + quiz.Code + " ")
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, byCode.ID)

	attempt, err := svc.SubmitAttempt(quiz.ID, "Sara", []int{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.Score)
	assert.Equal(t, 3, attempt.TotalQuestions)

	_, err = svc.SubmitAttempt(quiz.ID, "Sara", []int{1})
	assert.ErrorIs(t, err, util.ErrValidation)

	attempts, err := svc.ListAttempts(quiz.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestQuizService_CodeCollisionRetries(t *testing.T) {
	svc := NewQuizService(repository.NewQuizRepository())
	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	svc.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}

	first, err := svc.Create(sampleQuiz())
	require.NoError(t, err)
	second, err := svc.Create(sampleQuiz())
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAA", first.Code)
	assert.Equal(t, "BBBBBBBB", second.Code)
}

func TestQuizService_DeleteCascadesAttempts(t *testing.T) {
	repo := repository.NewQuizRepository()
	svc := NewQuizService(repo)
	quiz, err := svc.Create(sampleQuiz())
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(quiz.ID, "Sara", []int{0, 0, 0})
	require.NoError(t, err)

	assert.True(t, svc.Delete(quiz.ID))
	assert.Empty(t, repo.ListAttempts(quiz.ID))
	_, err = svc.ListAttempts(quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestQuizService_CreateValidation(t *testing.T) {
	svc := NewQuizService(repository.NewQuizRepository())
	q := sampleQuiz()
	q.Questions[0].CorrectAnswer = 5
	_, err := svc.Create(q)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Admin: config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
	}
	svc := NewAuthService(cfg)

	token, err := svc.Login("admin", "s3cret")
	require.NoError(t, err)
	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, util.RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Username)

	_, err = svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredential)
	_, err = svc.Login("root", "s3cret")
	assert.ErrorIs(t, err, util.ErrInvalidCredential)

	cfg.Admin.PasswordHash = ""
	_, err = svc.Login("admin", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredential)
}

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("pa55")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("pa55")))
}
