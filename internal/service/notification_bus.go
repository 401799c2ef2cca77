package service

import (
	"context"
	"study_portal_backend/internal/model"
	"study_portal_backend/pkg/monitoring"
	"sync"
)

// Notifier 接收计划引擎产生的提醒
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// NotificationBus 支持订阅推送；同时为每个用户保留有限长度的 inbox，供前端轮询拉取
type NotificationBus struct {
	mu        sync.Mutex
	inboxSize int
	inbox     map[string][]model.Notification
	subs      map[int]chan model.Notification
	nextSub   int
}

func NewNotificationBus(inboxSize int) *NotificationBus {
	if inboxSize <= 0 {
		inboxSize = 50
	}
	return &NotificationBus{
		inboxSize: inboxSize,
		inbox:     make(map[string][]model.Notification),
		subs:      make(map[int]chan model.Notification),
	}
}

func (b *NotificationBus) Notify(ctx context.Context, n model.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	box := append(b.inbox[n.UserID], n)
	if len(box) > b.inboxSize {
		box = box[len(box)-b.inboxSize:]
	}
	b.inbox[n.UserID] = box

	for _, ch := range b.subs {
		// 订阅方处理不过来时丢弃，不阻塞引擎
		select {
		case ch <- n:
		default:
		}
	}

	monitoring.NotificationsTotal.WithLabelValues(string(n.Kind)).Inc()
}

// Subscribe 注册一个订阅者，返回的 cancel 会关闭通道
func (b *NotificationBus) Subscribe(buffer int) (<-chan model.Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	ch := make(chan model.Notification, buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Drain 取出并清空用户的 inbox
func (b *NotificationBus) Drain(userID string) []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	box := b.inbox[userID]
	delete(b.inbox, userID)
	if box == nil {
		return []model.Notification{}
	}
	return box
}
