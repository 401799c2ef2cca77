package service

import (
	"context"
	"encoding/json"
	"fmt"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"study_portal_backend/pkg/logger"
	"study_portal_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultReminderLead = 5 * time.Minute

// ScheduleEngine 单个用户的学习计划状态机。
// 每次变更后整个集合序列化写回 KV；加载失败时从空集合开始。
type ScheduleEngine struct {
	mu           sync.Mutex
	userID       string
	key          string
	store        repository.KVStore
	notifier     Notifier
	now          func() time.Time
	newID        func() string
	reminderLead time.Duration

	sessions []model.StudySession
	reminded map[string]bool
}

type EngineOption func(*ScheduleEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *ScheduleEngine) { e.now = now }
}

func WithIDGenerator(newID func() string) EngineOption {
	return func(e *ScheduleEngine) { e.newID = newID }
}

func WithNotifier(n Notifier) EngineOption {
	return func(e *ScheduleEngine) { e.notifier = n }
}

func WithReminderLead(d time.Duration) EngineOption {
	return func(e *ScheduleEngine) { e.reminderLead = d }
}

func NewScheduleEngine(ctx context.Context, userID, key string, store repository.KVStore, opts ...EngineOption) *ScheduleEngine {
	e := &ScheduleEngine{
		userID:       userID,
		key:          key,
		store:        store,
		now:          time.Now,
		newID:        model.GenerateUUID,
		reminderLead: defaultReminderLead,
		sessions:     []model.StudySession{},
		reminded:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.load(ctx)
	return e
}

func (e *ScheduleEngine) UserID() string {
	return e.userID
}

func (e *ScheduleEngine) load(ctx context.Context) {
	raw, ok, err := e.store.Get(ctx, e.key)
	if err != nil {
		logger.Log.Warn("load schedule failed, starting empty", zap.String("user", e.userID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var sessions []model.StudySession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		logger.Log.Warn("decode schedule failed, starting empty", zap.String("user", e.userID), zap.Error(err))
		return
	}
	if sessions != nil {
		e.sessions = sessions
	}
}

func (e *ScheduleEngine) persist(ctx context.Context) error {
	raw, err := json.Marshal(e.sessions)
	if err != nil {
		return fmt.Errorf("encode schedule %s: %w", e.userID, err)
	}
	if err := e.store.Set(ctx, e.key, raw); err != nil {
		return fmt.Errorf("persist schedule %s: %w", e.userID, err)
	}
	return nil
}

func (e *ScheduleEngine) notify(ctx context.Context, kind model.NotificationKind, s model.StudySession, msg string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, model.Notification{
		UserID:    e.userID,
		Kind:      kind,
		SessionID: s.ID,
		Subject:   s.Subject,
		Message:   msg,
		CreatedAt: e.now(),
	})
}

func (e *ScheduleEngine) SetReminderLead(d time.Duration) {
	e.mu.Lock()
	e.reminderLead = d
	e.mu.Unlock()
}

// Sessions 返回集合副本，供导出、分享等外部协作方使用
func (e *ScheduleEngine) Sessions() []model.StudySession {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.StudySession, len(e.sessions))
	for i, s := range e.sessions {
		out[i] = s.Clone()
	}
	return out
}

func (e *ScheduleEngine) Get(id string) (model.StudySession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(id); i >= 0 {
		return e.sessions[i].Clone(), true
	}
	return model.StudySession{}, false
}

func (e *ScheduleEngine) Add(ctx context.Context, draft model.StudySessionDraft) (model.StudySession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lessons := append([]model.Lesson{}, draft.Lessons...)
	s := model.StudySession{
		ID:        e.newID(),
		Subject:   draft.Subject,
		StartDate: draft.StartDate,
		EndDate:   draft.EndDate,
		Lessons:   lessons,
		Status:    model.SessionActive,
		CreatedAt: e.now(),
	}
	e.sessions = append(e.sessions, s)
	return s.Clone(), e.persist(ctx)
}

// Import 将分享的计划追加为新的 active 计划，课程一律视为未完成
func (e *ScheduleEngine) Import(ctx context.Context, shared []model.SharedSession) ([]model.StudySession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	created := make([]model.StudySession, 0, len(shared))
	for _, sh := range shared {
		lessons := make([]model.Lesson, len(sh.Lessons))
		for i, l := range sh.Lessons {
			lessons[i] = model.Lesson{Name: l.Name}
		}
		s := model.StudySession{
			ID:        e.newID(),
			Subject:   sh.Subject,
			StartDate: sh.StartDate,
			EndDate:   sh.EndDate,
			Lessons:   lessons,
			Status:    model.SessionActive,
			CreatedAt: e.now(),
		}
		e.sessions = append(e.sessions, s)
		created = append(created, s.Clone())
	}
	if len(created) == 0 {
		return created, nil
	}
	return created, e.persist(ctx)
}

// Update 按 id 原样替换，id 不存在时不做任何事
func (e *ScheduleEngine) Update(ctx context.Context, s model.StudySession) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(s.ID)
	if i < 0 {
		return false, nil
	}
	e.sessions[i] = s.Clone()
	return true, e.persist(ctx)
}

func (e *ScheduleEngine) Delete(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return false, nil
	}
	e.removeAt(i)
	delete(e.reminded, id)
	return true, e.persist(ctx)
}

// ToggleLessonCompleted 切换课程完成状态：
// active 计划原地切换，全部完成后整体变为 completed；
// postponed 计划中被完成的课程移入同科目的 completed 计划，清空后删除该 postponed 计划；
// completed 计划不受影响。
func (e *ScheduleEngine) ToggleLessonCompleted(ctx context.Context, id string, lessonIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	s := e.sessions[i]
	if lessonIndex < 0 || lessonIndex >= len(s.Lessons) {
		return util.ErrInvalidLessonIdx
	}

	switch s.Status {
	case model.SessionCompleted:
		return nil

	case model.SessionActive:
		e.sessions[i].Lessons[lessonIndex].Completed = !s.Lessons[lessonIndex].Completed
		if e.sessions[i].AllLessonsCompleted() {
			e.sessions[i].Status = model.SessionCompleted
			monitoring.SessionTransitions.WithLabelValues("completed").Inc()
			e.notify(ctx, model.NotifySessionComplete, e.sessions[i], "all lessons of "+s.Subject.DisplayName()+" completed")
		}

	case model.SessionPostponed:
		lesson := s.Lessons[lessonIndex]
		lesson.Completed = !lesson.Completed
		if !lesson.Completed {
			e.sessions[i].Lessons[lessonIndex] = lesson
			break
		}
		e.moveToCompleted(i, lessonIndex, lesson)
		monitoring.SessionTransitions.WithLabelValues("lesson_moved").Inc()
		e.notify(ctx, model.NotifyLessonMoved, s, "lesson moved to "+s.Subject.DisplayName()+" achievements")
	}

	return e.persist(ctx)
}

// moveToCompleted 把 postponed 计划 i 的第 lessonIndex 节课移入同科目 completed 计划
func (e *ScheduleEngine) moveToCompleted(i, lessonIndex int, lesson model.Lesson) {
	src := e.sessions[i]

	e.mergeCompleted(src, []model.Lesson{lesson})

	remaining := make([]model.Lesson, 0, len(src.Lessons)-1)
	remaining = append(remaining, src.Lessons[:lessonIndex]...)
	remaining = append(remaining, src.Lessons[lessonIndex+1:]...)
	if len(remaining) == 0 {
		e.removeAt(i)
		return
	}
	e.sessions[i].Lessons = remaining
}

// AutoTransfer 计划到期且仍为 active 时拆分
func (e *ScheduleEngine) AutoTransfer(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 || e.sessions[i].Status != model.SessionActive {
		return nil
	}
	s := e.split(i)
	monitoring.SessionTransitions.WithLabelValues("auto_transfer").Inc()
	e.notify(ctx, model.NotifyAutoTransfer, s, "study session ended, lessons transferred")
	return e.persist(ctx)
}

// Postpone 用户手动推迟，拆分逻辑与 AutoTransfer 相同
func (e *ScheduleEngine) Postpone(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	if e.sessions[i].Status != model.SessionActive {
		return util.Validationf("only active sessions can be postponed")
	}
	if !e.sessions[i].HasIncompleteLessons() {
		return util.ErrNothingToPostpone
	}
	s := e.split(i)
	monitoring.SessionTransitions.WithLabelValues("postponed").Inc()
	e.notify(ctx, model.NotifyPostponed, s, "session postponed manually")
	return e.persist(ctx)
}

// split 移除计划 i：未完成课程（重置为未完成）总是组成一个新的 postponed 计划，沿用原计划的时间；
// 已完成课程并入或新建同科目 completed 计划，空的一侧不创建。返回被拆分的原计划。
func (e *ScheduleEngine) split(i int) model.StudySession {
	s := e.sessions[i].Clone()
	e.removeAt(i)
	delete(e.reminded, s.ID)

	var incomplete, completed []model.Lesson
	for _, l := range s.Lessons {
		if l.Completed {
			completed = append(completed, l)
		} else {
			incomplete = append(incomplete, model.Lesson{Name: l.Name, Completed: false})
		}
	}

	if len(incomplete) > 0 {
		e.appendSession(s, model.SessionPostponed, incomplete)
	}
	e.mergeCompleted(s, completed)
	return s
}

func (e *ScheduleEngine) mergeCompleted(origin model.StudySession, lessons []model.Lesson) {
	if len(lessons) == 0 {
		return
	}
	if t := e.indexOfSubject(origin.Subject, model.SessionCompleted); t >= 0 {
		e.sessions[t].Lessons = append(e.sessions[t].Lessons, lessons...)
		return
	}
	e.appendSession(origin, model.SessionCompleted, lessons)
}

// appendSession 新建计划，科目和起止时间取自 origin
func (e *ScheduleEngine) appendSession(origin model.StudySession, status model.SessionStatus, lessons []model.Lesson) {
	e.sessions = append(e.sessions, model.StudySession{
		ID:        e.newID(),
		Subject:   origin.Subject,
		StartDate: origin.StartDate,
		EndDate:   origin.EndDate,
		Lessons:   lessons,
		Status:    status,
		CreatedAt: e.now(),
	})
}

// Tick 周期性检查：开始前 reminderLead 触发一次提醒；到期的 active 计划自动拆分
func (e *ScheduleEngine) Tick(ctx context.Context, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []string
	for _, s := range e.sessions {
		if s.Status != model.SessionActive {
			continue
		}
		left := s.StartDate.Sub(now)
		if left > 0 && left >= e.reminderLead && left < e.reminderLead+time.Minute && !e.reminded[s.ID] {
			e.reminded[s.ID] = true
			e.notify(ctx, model.NotifyReminder, s, s.Subject.DisplayName()+" study time starts soon")
		}
		if !now.Before(s.EndDate) {
			due = append(due, s.ID)
		}
	}

	if len(due) == 0 {
		return nil
	}
	for _, id := range due {
		i := e.indexOf(id)
		if i < 0 || e.sessions[i].Status != model.SessionActive {
			continue
		}
		s := e.split(i)
		monitoring.SessionTransitions.WithLabelValues("auto_transfer").Inc()
		e.notify(ctx, model.NotifyAutoTransfer, s, "study session ended, lessons transferred")
	}
	return e.persist(ctx)
}

func (e *ScheduleEngine) indexOf(id string) int {
	for i := range e.sessions {
		if e.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *ScheduleEngine) indexOfSubject(subject model.Subject, status model.SessionStatus) int {
	for i := range e.sessions {
		if e.sessions[i].Subject == subject && e.sessions[i].Status == status {
			return i
		}
	}
	return -1
}

func (e *ScheduleEngine) removeAt(i int) {
	e.sessions = append(e.sessions[:i:i], e.sessions[i+1:]...)
}
