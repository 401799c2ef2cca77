package model

import "time"

type NotificationKind string

const (
	NotifyReminder        NotificationKind = "reminder"
	NotifySessionComplete NotificationKind = "session_completed"
	NotifyLessonMoved     NotificationKind = "lesson_moved"
	NotifyAutoTransfer    NotificationKind = "auto_transfer"
	NotifyPostponed       NotificationKind = "postponed"
)

// Notification 计划引擎产生的提醒，UI 通过轮询 inbox 获取
type Notification struct {
	UserID    string           `json:"userId"`
	Kind      NotificationKind `json:"kind"`
	SessionID string           `json:"sessionId"`
	Subject   Subject          `json:"subject"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
