package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/logger"
	"study_portal_backend/pkg/monitoring"
	"study_portal_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FriendChecker 判断两个用户是否为好友
type FriendChecker interface {
	AreFriends(userID, friendID string) bool
}

type ScheduleSettings struct {
	KeyPrefix     string
	ReminderLead  time.Duration
	PublicBaseURL string
}

// ScheduleService 托管每个用户的 ScheduleEngine，并提供分享、导入、好友查看等功能
type ScheduleService struct {
	mu       sync.RWMutex
	engines  map[string]*ScheduleEngine
	store    repository.KVStore
	bus      *NotificationBus
	friends  FriendChecker
	settings ScheduleSettings
	now      func() time.Time
	newID    func() string
}

type ScheduleOption func(*ScheduleService)

func WithScheduleClock(now func() time.Time) ScheduleOption {
	return func(s *ScheduleService) { s.now = now }
}

func WithScheduleIDGenerator(newID func() string) ScheduleOption {
	return func(s *ScheduleService) { s.newID = newID }
}

func NewScheduleService(store repository.KVStore, bus *NotificationBus, friends FriendChecker, settings ScheduleSettings, opts ...ScheduleOption) *ScheduleService {
	if settings.KeyPrefix == "" {
		settings.KeyPrefix = "studySessions:"
	}
	s := &ScheduleService{
		engines:  make(map[string]*ScheduleEngine),
		store:    store,
		bus:      bus,
		friends:  friends,
		settings: settings,
		now:      time.Now,
		newID:    model.GenerateUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine 获取用户的引擎，不存在时从 KV 加载
func (s *ScheduleService) Engine(ctx context.Context, userID string) *ScheduleEngine {
	s.mu.RLock()
	e, ok := s.engines[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[userID]; ok {
		return e
	}
	e = NewScheduleEngine(ctx, userID, s.settings.KeyPrefix+userID, s.store,
		WithClock(s.now),
		WithIDGenerator(s.newID),
		WithNotifier(s.bus),
		WithReminderLead(s.settings.ReminderLead),
	)
	s.engines[userID] = e
	monitoring.LoadedSchedules.Set(float64(len(s.engines)))
	return e
}

// lookup 只返回已加载或已持久化的引擎；读操作不为从未写入过的用户注册引擎
func (s *ScheduleService) lookup(ctx context.Context, userID string) (*ScheduleEngine, bool) {
	s.mu.RLock()
	e, ok := s.engines[userID]
	s.mu.RUnlock()
	if ok {
		return e, true
	}
	_, persisted, err := s.store.Get(ctx, s.settings.KeyPrefix+userID)
	if err != nil {
		logger.Log.Warn("Schedule lookup failed", zap.String("user", userID), zap.Error(err))
		return nil, false
	}
	if !persisted {
		return nil, false
	}
	return s.Engine(ctx, userID), true
}

func (s *ScheduleService) sessions(ctx context.Context, userID string) []model.StudySession {
	e, ok := s.lookup(ctx, userID)
	if !ok {
		return []model.StudySession{}
	}
	return e.Sessions()
}

// Warm 启动时加载所有已持久化的计划，使提醒和自动转移无需等待用户访问
func (s *ScheduleService) Warm(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "schedule.warm", attribute.String("schedule.prefix", s.settings.KeyPrefix))
	defer span.End()

	keys, err := s.store.Keys(ctx, s.settings.KeyPrefix)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	for _, key := range keys {
		s.Engine(ctx, strings.TrimPrefix(key, s.settings.KeyPrefix))
	}
	span.SetAttributes(attribute.Int("schedule.count", len(keys)))
	logger.Log.Info("Schedules loaded", zap.Int("count", len(keys)))
	return len(keys), nil
}

func (s *ScheduleService) loadedEngines() []*ScheduleEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ScheduleEngine, 0, len(s.engines))
	for _, e := range s.engines {
		out = append(out, e)
	}
	return out
}

// TickAll 由后台定时任务调用
func (s *ScheduleService) TickAll(ctx context.Context, now time.Time) {
	for _, e := range s.loadedEngines() {
		if err := e.Tick(ctx, now); err != nil {
			logger.Log.Error("Schedule tick failed", zap.String("user", e.UserID()), zap.Error(err))
		}
	}
}

// SetReminderLead 配置热加载时更新所有引擎
func (s *ScheduleService) SetReminderLead(d time.Duration) {
	s.mu.Lock()
	s.settings.ReminderLead = d
	s.mu.Unlock()
	for _, e := range s.loadedEngines() {
		e.SetReminderLead(d)
	}
}

func (s *ScheduleService) List(ctx context.Context, userID string) []model.StudySession {
	return s.sessions(ctx, userID)
}

func (s *ScheduleService) View(ctx context.Context, userID string) model.ScheduleView {
	return groupSessions(s.sessions(ctx, userID))
}

func (s *ScheduleService) Stats(ctx context.Context, userID string) model.ScheduleStats {
	var st model.ScheduleStats
	for _, sess := range s.sessions(ctx, userID) {
		switch sess.Status {
		case model.SessionActive:
			st.Active++
		case model.SessionCompleted:
			st.Completed++
		case model.SessionPostponed:
			st.Postponed++
		}
		st.TotalLessons += len(sess.Lessons)
		st.CompletedLessons += sess.CompletedLessons()
	}
	return st
}

func (s *ScheduleService) Add(ctx context.Context, userID string, draft model.StudySessionDraft) (model.StudySession, error) {
	if err := validateDraft(draft); err != nil {
		return model.StudySession{}, err
	}
	return s.Engine(ctx, userID).Add(ctx, draft)
}

// Update 替换计划，返回更新后的记录；id 不存在时返回 nil
func (s *ScheduleService) Update(ctx context.Context, userID string, session model.StudySession) (*model.StudySession, error) {
	if !session.Status.Valid() {
		return nil, util.Validationf("unknown status %q", session.Status)
	}
	if err := validateDraft(model.StudySessionDraft{
		Subject:   session.Subject,
		StartDate: session.StartDate,
		EndDate:   session.EndDate,
		Lessons:   session.Lessons,
	}); err != nil {
		return nil, err
	}
	e, ok := s.lookup(ctx, userID)
	if !ok {
		return nil, nil
	}
	found, err := e.Update(ctx, session)
	if !found {
		return nil, nil
	}
	updated, _ := e.Get(session.ID)
	return &updated, err
}

func (s *ScheduleService) Delete(ctx context.Context, userID, sessionID string) (bool, error) {
	e, ok := s.lookup(ctx, userID)
	if !ok {
		return false, nil
	}
	return e.Delete(ctx, sessionID)
}

func (s *ScheduleService) ToggleLesson(ctx context.Context, userID, sessionID string, lessonIndex int) (model.ScheduleView, error) {
	e, ok := s.lookup(ctx, userID)
	if !ok {
		return groupSessions(nil), nil
	}
	err := e.ToggleLessonCompleted(ctx, sessionID, lessonIndex)
	return groupSessions(e.Sessions()), err
}

func (s *ScheduleService) Postpone(ctx context.Context, userID, sessionID string) (model.ScheduleView, error) {
	e, ok := s.lookup(ctx, userID)
	if !ok {
		return groupSessions(nil), nil
	}
	err := e.Postpone(ctx, sessionID)
	return groupSessions(e.Sessions()), err
}

func (s *ScheduleService) Notifications(userID string) []model.Notification {
	return s.bus.Drain(userID)
}

type ShareResult struct {
	Payload string `json:"payload"`
	URL     string `json:"url"`
	Count   int    `json:"count"`
}

// Share 生成只包含 active 计划的分享链接，课程完成状态全部重置
func (s *ScheduleService) Share(ctx context.Context, userID string) (ShareResult, error) {
	shared := model.SharedSchedule{Sessions: []model.SharedSession{}, CreatedAt: s.now()}
	for _, sess := range s.sessions(ctx, userID) {
		if sess.Status != model.SessionActive {
			continue
		}
		lessons := make([]model.Lesson, len(sess.Lessons))
		for i, l := range sess.Lessons {
			lessons[i] = model.Lesson{Name: l.Name}
		}
		shared.Sessions = append(shared.Sessions, model.SharedSession{
			Subject:   sess.Subject,
			StartDate: sess.StartDate,
			EndDate:   sess.EndDate,
			Lessons:   lessons,
		})
	}
	if len(shared.Sessions) == 0 {
		return ShareResult{}, util.ErrNothingToShare
	}

	payload, err := util.EncodeSharePayload(shared)
	if err != nil {
		return ShareResult{}, err
	}
	return ShareResult{
		Payload: payload,
		URL:     util.ShareURL(s.settings.PublicBaseURL, payload),
		Count:   len(shared.Sessions),
	}, nil
}

// Import 解析分享链接中的数据，追加为新的 active 计划
func (s *ScheduleService) Import(ctx context.Context, userID, payload string) ([]model.StudySession, error) {
	ctx, span := tracing.StartSpan(ctx, "schedule.import", attribute.String("schedule.user", userID))
	defer span.End()

	var shared model.SharedSchedule
	if err := util.DecodeSharePayload(payload, &shared); err != nil {
		span.RecordError(err)
		return nil, err
	}
	// 与 Add 相同的校验，任一计划不合法则整体拒绝
	for i, sh := range shared.Sessions {
		if err := validateDraft(model.StudySessionDraft{
			Subject:   sh.Subject,
			StartDate: sh.StartDate,
			EndDate:   sh.EndDate,
			Lessons:   sh.Lessons,
		}); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: session %d: %v", util.ErrInvalidSharePayload, i, err)
		}
	}
	span.SetAttributes(attribute.Int("schedule.imported", len(shared.Sessions)))
	return s.Engine(ctx, userID).Import(ctx, shared.Sessions)
}

// FriendSchedule 只有好友之间可以查看对方的计划
func (s *ScheduleService) FriendSchedule(ctx context.Context, viewerID, friendID string) (model.ScheduleView, error) {
	if viewerID == "" {
		return model.ScheduleView{}, util.Validationf("viewerId is required")
	}
	if viewerID != friendID && (s.friends == nil || !s.friends.AreFriends(viewerID, friendID)) {
		return model.ScheduleView{}, util.ErrForbidden
	}
	return s.View(ctx, friendID), nil
}

func validateDraft(d model.StudySessionDraft) error {
	if !d.Subject.Valid() {
		return util.Validationf("unknown subject %q", d.Subject)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return util.Validationf("startDate and endDate are required")
	}
	if !d.EndDate.After(d.StartDate) {
		return util.Validationf("endDate must be after startDate")
	}
	if len(d.Lessons) == 0 {
		return util.Validationf("at least one lesson is required")
	}
	for i, l := range d.Lessons {
		if strings.TrimSpace(l.Name) == "" {
			return util.Validationf("lesson %d has no name", i)
		}
	}
	return nil
}

func groupSessions(sessions []model.StudySession) model.ScheduleView {
	view := model.ScheduleView{
		Active:    []model.StudySession{},
		Completed: []model.StudySession{},
		Postponed: []model.StudySession{},
	}
	for _, sess := range sessions {
		switch sess.Status {
		case model.SessionActive:
			view.Active = append(view.Active, sess)
		case model.SessionCompleted:
			view.Completed = append(view.Completed, sess)
		case model.SessionPostponed:
			view.Postponed = append(view.Postponed, sess)
		}
	}
	sort.SliceStable(view.Active, func(i, j int) bool {
		return view.Active[i].StartDate.Before(view.Active[j].StartDate)
	})
	return view
}
