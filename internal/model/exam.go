package model

import "time"

type ExamWeek struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
}

type Exam struct {
	ID        int64     `json:"id"`
	WeekID    int64     `json:"weekId"`
	Subject   Subject   `json:"subject"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Notes     string    `json:"notes,omitempty"`
}
