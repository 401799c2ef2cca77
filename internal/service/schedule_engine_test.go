package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	items []model.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Kind)
	}
	return out
}

type failingStore struct {
	repository.KVStore
	failSet bool
	failGet bool
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("connection refused")
	}
	return f.KVStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("connection refused")
	}
	return f.KVStore.Set(ctx, key, value)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

type engineFixture struct {
	engine   *ScheduleEngine
	store    *repository.MemoryKVStore
	notifier *recordingNotifier
	now      time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		store:    repository.NewMemoryKVStore(),
		notifier: &recordingNotifier{},
		now:      baseTime,
	}
	f.engine = NewScheduleEngine(context.Background(), "u1", "studySessions:u1", f.store,
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(sequentialIDs()),
		WithNotifier(f.notifier),
	)
	return f
}

func lessons(states ...bool) []model.Lesson {
	out := make([]model.Lesson, len(states))
	for i, done := range states {
		out[i] = model.Lesson{Name: fmt.Sprintf("L%d", i+1), Completed: done}
	}
	return out
}

func (f *engineFixture) add(t *testing.T, subject model.Subject, start, end time.Time, ls []model.Lesson) model.StudySession {
	t.Helper()
	s, err := f.engine.Add(context.Background(), model.StudySessionDraft{
		Subject:   subject,
		StartDate: start,
		EndDate:   end,
		Lessons:   ls,
	})
	require.NoError(t, err)
	return s
}

func byStatus(sessions []model.StudySession, status model.SessionStatus) []model.StudySession {
	var out []model.StudySession
	for _, s := range sessions {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}

func TestEngine_AddAssignsIDAndActiveStatus(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, model.SessionActive, s.Status)
	assert.Equal(t, baseTime, s.CreatedAt)
	assert.Len(t, f.engine.Sessions(), 1)
}

func TestEngine_AddPersistsCollection(t *testing.T) {
	f := newEngineFixture(t)
	f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, true))

	raw, ok, err := f.store.Get(context.Background(), "studySessions:u1")
	require.NoError(t, err)
	require.True(t, ok)

	var stored []model.StudySession
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, f.engine.Sessions(), stored)
}

func TestEngine_ReloadRoundTrip(t *testing.T) {
	f := newEngineFixture(t)
	f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, true))
	f.add(t, model.SubjectPhysics, baseTime.Add(2*time.Hour), baseTime.Add(3*time.Hour), lessons(false))
	require.NoError(t, f.engine.Postpone(context.Background(), "s1"))

	reloaded := NewScheduleEngine(context.Background(), "u1", "studySessions:u1", f.store)
	assert.Equal(t, f.engine.Sessions(), reloaded.Sessions())
}

func TestEngine_LoadCorruptBlobStartsEmpty(t *testing.T) {
	store := repository.NewMemoryKVStore()
	require.NoError(t, store.Set(context.Background(), "k", []byte("{not json")))

	e := NewScheduleEngine(context.Background(), "u1", "k", store)
	assert.Empty(t, e.Sessions())
}

func TestEngine_LoadErrorStartsEmpty(t *testing.T) {
	store := &failingStore{KVStore: repository.NewMemoryKVStore(), failGet: true}

	e := NewScheduleEngine(context.Background(), "u1", "k", store)
	assert.Empty(t, e.Sessions())
}

func TestEngine_PersistFailureKeepsMutation(t *testing.T) {
	store := &failingStore{KVStore: repository.NewMemoryKVStore(), failSet: true}
	e := NewScheduleEngine(context.Background(), "u1", "k", store)

	_, err := e.Add(context.Background(), model.StudySessionDraft{
		Subject:   model.SubjectMath,
		StartDate: baseTime,
		EndDate:   baseTime.Add(time.Hour),
		Lessons:   lessons(false),
	})
	assert.Error(t, err)
	assert.Len(t, e.Sessions(), 1)
}

func TestEngine_UpdateAndDeleteUnknownAreNoOps(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	found, err := f.engine.Update(context.Background(), model.StudySession{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := f.engine.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []model.StudySession{s}, f.engine.Sessions())
}

func TestEngine_UpdateReplacesVerbatim(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	s.Lessons = append(s.Lessons, model.Lesson{Name: "extra"})
	s.Subject = model.SubjectChemistry
	found, err := f.engine.Update(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, found)

	got, ok := f.engine.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s, got)
}

func TestEngine_DeleteRemovesSession(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	removed, err := f.engine.Delete(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, f.engine.Sessions())
}

func TestEngine_ToggleActiveCompletesWholeSession(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(true, true, false))

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 2))

	got, ok := f.engine.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, model.SessionCompleted, got.Status)
	assert.True(t, got.AllLessonsCompleted())
	assert.Len(t, f.engine.Sessions(), 1)
	assert.Contains(t, f.notifier.kinds(), model.NotifySessionComplete)
}

func TestEngine_ToggleActiveFlipsInPlace(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, false))

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 0))
	got, _ := f.engine.Get(s.ID)
	assert.True(t, got.Lessons[0].Completed)
	assert.Equal(t, model.SessionActive, got.Status)

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 0))
	got, _ = f.engine.Get(s.ID)
	assert.False(t, got.Lessons[0].Completed)
}

func TestEngine_ToggleInvalidIndex(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	err := f.engine.ToggleLessonCompleted(context.Background(), s.ID, 5)
	assert.ErrorIs(t, err, util.ErrInvalidLessonIdx)
	assert.ErrorIs(t, err, util.ErrValidation)

	err = f.engine.ToggleLessonCompleted(context.Background(), s.ID, -1)
	assert.ErrorIs(t, err, util.ErrInvalidLessonIdx)

	assert.Equal(t, []model.StudySession{s}, f.engine.Sessions())
}

func TestEngine_ToggleCompletedSessionIsNoOp(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))
	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 0))
	before := f.engine.Sessions()

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 0))
	assert.Equal(t, before, f.engine.Sessions())
}

func TestEngine_TogglePostponedMovesLessonToNewCompleted(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, false))
	require.NoError(t, f.engine.Postpone(context.Background(), s.ID))

	postponed := byStatus(f.engine.Sessions(), model.SessionPostponed)
	require.Len(t, postponed, 1)

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), postponed[0].ID, 0))

	sessions := f.engine.Sessions()
	postponed = byStatus(sessions, model.SessionPostponed)
	completed := byStatus(sessions, model.SessionCompleted)
	require.Len(t, postponed, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, []model.Lesson{{Name: "L2"}}, postponed[0].Lessons)
	assert.Equal(t, []model.Lesson{{Name: "L1", Completed: true}}, completed[0].Lessons)
	assert.Equal(t, s.StartDate, completed[0].StartDate)
	assert.Equal(t, s.EndDate, completed[0].EndDate)
	assert.Equal(t, model.SubjectMath, completed[0].Subject)
}

func TestEngine_TogglePostponedLastLessonDeletesSession(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(true, false))
	require.NoError(t, f.engine.Postpone(context.Background(), s.ID))

	postponed := byStatus(f.engine.Sessions(), model.SessionPostponed)
	require.Len(t, postponed, 1)
	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), postponed[0].ID, 0))

	sessions := f.engine.Sessions()
	assert.Empty(t, byStatus(sessions, model.SessionPostponed))
	completed := byStatus(sessions, model.SessionCompleted)
	require.Len(t, completed, 1, "lesson joins the existing completed session")
	assert.Equal(t, []model.Lesson{
		{Name: "L1", Completed: true},
		{Name: "L2", Completed: true},
	}, completed[0].Lessons)
	assert.Contains(t, f.notifier.kinds(), model.NotifyLessonMoved)
}

func TestEngine_TogglePostponedUncompleteFlipsInPlace(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, false))
	require.NoError(t, f.engine.Postpone(context.Background(), s.ID))

	postponed := byStatus(f.engine.Sessions(), model.SessionPostponed)
	require.Len(t, postponed, 1)
	seeded := postponed[0]
	seeded.Lessons[1].Completed = true
	found, err := f.engine.Update(context.Background(), seeded)
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), seeded.ID, 1))

	sessions := f.engine.Sessions()
	assert.Empty(t, byStatus(sessions, model.SessionCompleted), "nothing moves on un-complete")
	got, ok := f.engine.Get(seeded.ID)
	require.True(t, ok)
	assert.Equal(t, model.SessionPostponed, got.Status)
	assert.Equal(t, []model.Lesson{{Name: "L1"}, {Name: "L2"}}, got.Lessons)
	assert.NotContains(t, f.notifier.kinds(), model.NotifyLessonMoved)
}

func TestEngine_PostponeSplitsByCompletion(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectBiology, baseTime, baseTime.Add(time.Hour), lessons(true, false, true))

	require.NoError(t, f.engine.Postpone(context.Background(), s.ID))

	sessions := f.engine.Sessions()
	_, exists := f.engine.Get(s.ID)
	assert.False(t, exists, "original session is removed")
	require.Len(t, sessions, 2)

	postponed := byStatus(sessions, model.SessionPostponed)
	completed := byStatus(sessions, model.SessionCompleted)
	require.Len(t, postponed, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, []model.Lesson{{Name: "L2"}}, postponed[0].Lessons)
	assert.Equal(t, []model.Lesson{{Name: "L1", Completed: true}, {Name: "L3", Completed: true}}, completed[0].Lessons)
	for _, out := range sessions {
		assert.Equal(t, s.StartDate, out.StartDate)
		assert.Equal(t, s.EndDate, out.EndDate)
	}
}

func TestEngine_PostponeSameSubjectKeepsOwnDates(t *testing.T) {
	f := newEngineFixture(t)
	first := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))
	nextDay := baseTime.Add(24 * time.Hour)
	second := f.add(t, model.SubjectMath, nextDay, nextDay.Add(time.Hour), []model.Lesson{{Name: "L9"}})

	require.NoError(t, f.engine.Postpone(context.Background(), first.ID))
	require.NoError(t, f.engine.Postpone(context.Background(), second.ID))

	postponed := byStatus(f.engine.Sessions(), model.SessionPostponed)
	require.Len(t, postponed, 2, "each postpone forms its own session")
	assert.NotEqual(t, postponed[0].ID, postponed[1].ID)

	assert.Equal(t, []model.Lesson{{Name: "L1"}}, postponed[0].Lessons)
	assert.Equal(t, first.StartDate, postponed[0].StartDate)
	assert.Equal(t, first.EndDate, postponed[0].EndDate)

	assert.Equal(t, []model.Lesson{{Name: "L9"}}, postponed[1].Lessons)
	assert.Equal(t, second.StartDate, postponed[1].StartDate)
	assert.Equal(t, second.EndDate, postponed[1].EndDate)
}

func TestEngine_PostponeCompletedSideJoinsExistingCompleted(t *testing.T) {
	f := newEngineFixture(t)
	first := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(true, false))
	second := f.add(t, model.SubjectMath, baseTime.Add(2*time.Hour), baseTime.Add(3*time.Hour), []model.Lesson{
		{Name: "L8", Completed: true},
		{Name: "L9"},
	})

	require.NoError(t, f.engine.Postpone(context.Background(), first.ID))
	require.NoError(t, f.engine.Postpone(context.Background(), second.ID))

	sessions := f.engine.Sessions()
	completed := byStatus(sessions, model.SessionCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, []model.Lesson{{Name: "L1", Completed: true}, {Name: "L8", Completed: true}}, completed[0].Lessons)
	assert.Equal(t, first.StartDate, completed[0].StartDate)
	assert.Len(t, byStatus(sessions, model.SessionPostponed), 2)
}

func TestEngine_PostponeRequiresIncompleteLesson(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(true))

	err := f.engine.Postpone(context.Background(), s.ID)
	assert.ErrorIs(t, err, util.ErrNothingToPostpone)
	assert.Equal(t, []model.StudySession{s}, f.engine.Sessions())
}

func TestEngine_PostponeNonActiveRejected(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false, false))
	require.NoError(t, f.engine.Postpone(context.Background(), s.ID))
	postponed := byStatus(f.engine.Sessions(), model.SessionPostponed)

	err := f.engine.Postpone(context.Background(), postponed[0].ID)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestEngine_AutoTransferMatchesPostpone(t *testing.T) {
	build := func() (*engineFixture, model.StudySession) {
		f := newEngineFixture(t)
		s := f.add(t, model.SubjectEnglish, baseTime, baseTime.Add(time.Hour), lessons(true, false, false))
		return f, s
	}

	a, sa := build()
	require.NoError(t, a.engine.AutoTransfer(context.Background(), sa.ID))
	b, sb := build()
	require.NoError(t, b.engine.Postpone(context.Background(), sb.ID))

	assert.Equal(t, a.engine.Sessions(), b.engine.Sessions())
}

func TestEngine_AutoTransferIgnoresNonActive(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))
	require.NoError(t, f.engine.ToggleLessonCompleted(context.Background(), s.ID, 0))
	before := f.engine.Sessions()

	require.NoError(t, f.engine.AutoTransfer(context.Background(), s.ID))
	assert.Equal(t, before, f.engine.Sessions())
}

func TestEngine_TickTransfersExpiredSession(t *testing.T) {
	f := newEngineFixture(t)
	f.add(t, model.SubjectMath, baseTime, baseTime.Add(3600*time.Second), lessons(false, false))

	require.NoError(t, f.engine.Tick(context.Background(), baseTime.Add(3601*time.Second)))

	sessions := f.engine.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, model.SessionPostponed, sessions[0].Status)
	assert.Equal(t, lessons(false, false), sessions[0].Lessons)
	assert.Empty(t, byStatus(sessions, model.SessionCompleted))
	assert.Contains(t, f.notifier.kinds(), model.NotifyAutoTransfer)
}

func TestEngine_TickAllCompletedBecomesCompleted(t *testing.T) {
	f := newEngineFixture(t)
	f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(true, true))

	require.NoError(t, f.engine.Tick(context.Background(), baseTime.Add(time.Hour)))

	sessions := f.engine.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, model.SessionCompleted, sessions[0].Status)
	assert.Empty(t, byStatus(sessions, model.SessionPostponed))
}

func TestEngine_TickLeavesRunningSessions(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	require.NoError(t, f.engine.Tick(context.Background(), baseTime.Add(30*time.Minute)))
	assert.Equal(t, []model.StudySession{s}, f.engine.Sessions())
}

func TestEngine_TickRemindsOnce(t *testing.T) {
	f := newEngineFixture(t)
	start := baseTime.Add(time.Hour)
	f.add(t, model.SubjectArabic, start, start.Add(time.Hour), lessons(false))

	ctx := context.Background()
	require.NoError(t, f.engine.Tick(ctx, start.Add(-10*time.Minute)))
	assert.Empty(t, f.notifier.kinds())

	require.NoError(t, f.engine.Tick(ctx, start.Add(-5*time.Minute-30*time.Second)))
	require.NoError(t, f.engine.Tick(ctx, start.Add(-5*time.Minute)))
	require.NoError(t, f.engine.Tick(ctx, start.Add(-4*time.Minute)))

	assert.Equal(t, []model.NotificationKind{model.NotifyReminder}, f.notifier.kinds())
}

func TestEngine_ReminderLeadConfigurable(t *testing.T) {
	f := newEngineFixture(t)
	f.engine.SetReminderLead(15 * time.Minute)
	start := baseTime.Add(time.Hour)
	f.add(t, model.SubjectArabic, start, start.Add(time.Hour), lessons(false))

	require.NoError(t, f.engine.Tick(context.Background(), start.Add(-5*time.Minute)))
	assert.Empty(t, f.notifier.kinds())
	require.NoError(t, f.engine.Tick(context.Background(), start.Add(-15*time.Minute)))
	assert.Equal(t, []model.NotificationKind{model.NotifyReminder}, f.notifier.kinds())
}

func TestEngine_ImportAppendsActiveSessions(t *testing.T) {
	f := newEngineFixture(t)
	created, err := f.engine.Import(context.Background(), []model.SharedSession{
		{Subject: model.SubjectMath, StartDate: baseTime, EndDate: baseTime.Add(time.Hour), Lessons: lessons(false)},
		{Subject: model.SubjectIslamic, StartDate: baseTime, EndDate: baseTime.Add(time.Hour), Lessons: lessons(true, false)},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)
	assert.False(t, created[1].Lessons[0].Completed, "imported lessons start incomplete")
	for _, s := range f.engine.Sessions() {
		assert.Equal(t, model.SessionActive, s.Status)
	}
}

func TestEngine_SessionsReturnsCopy(t *testing.T) {
	f := newEngineFixture(t)
	s := f.add(t, model.SubjectMath, baseTime, baseTime.Add(time.Hour), lessons(false))

	snapshot := f.engine.Sessions()
	snapshot[0].Lessons[0].Completed = true

	got, _ := f.engine.Get(s.ID)
	assert.False(t, got.Lessons[0].Completed)
}
