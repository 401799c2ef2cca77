package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionPostponed SessionStatus = "postponed"
)

type Lesson struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StudySession 学习计划中的一个时间段，包含某一科目的课程清单
type StudySession struct {
	ID        string        `json:"id"`
	Subject   Subject       `json:"subject"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"`
	Lessons   []Lesson      `json:"lessons"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// StudySessionDraft 新建计划时由调用方提供的字段
type StudySessionDraft struct {
	Subject   Subject   `json:"subject"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Lessons   []Lesson  `json:"lessons"`
}

func (s StudySession) Clone() StudySession {
	out := s
	out.Lessons = append([]Lesson(nil), s.Lessons...)
	return out
}

func (s StudySession) CompletedLessons() int {
	n := 0
	for _, l := range s.Lessons {
		if l.Completed {
			n++
		}
	}
	return n
}

func (s StudySession) AllLessonsCompleted() bool {
	return s.CompletedLessons() == len(s.Lessons)
}

func (s StudySession) HasIncompleteLessons() bool {
	return s.CompletedLessons() < len(s.Lessons)
}

// SharedSession 分享链接中携带的计划（不含 id / 状态）
type SharedSession struct {
	Subject   Subject   `json:"subject"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Lessons   []Lesson  `json:"lessons"`
}

type SharedSchedule struct {
	Sessions  []SharedSession `json:"sessions"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ScheduleView 按状态分组后的计划，active 按开始时间排序
type ScheduleView struct {
	Active    []StudySession `json:"active"`
	Completed []StudySession `json:"completed"`
	Postponed []StudySession `json:"postponed"`
}

type ScheduleStats struct {
	Active           int `json:"active"`
	Completed        int `json:"completed"`
	Postponed        int `json:"postponed"`
	TotalLessons     int `json:"totalLessons"`
	CompletedLessons int `json:"completedLessons"`
}

func (s SessionStatus) Valid() bool {
	return s == SessionActive || s == SessionCompleted || s == SessionPostponed
}
