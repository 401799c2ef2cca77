package model

import "time"

type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Subject     Subject    `json:"subject"`
	Creator     string     `json:"creator"`
	Description *string    `json:"description"`
	Questions   []Question `json:"questions"`
	Code        string     `json:"code"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type QuizAttempt struct {
	ID              int64     `json:"id"`
	QuizID          int64     `json:"quizId"`
	ParticipantName string    `json:"participantName"`
	Answers         []int     `json:"answers"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	CreatedAt       time.Time `json:"createdAt"`
}
