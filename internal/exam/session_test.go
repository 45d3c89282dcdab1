package exam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved   *SavedState
	history []HistoryItem
}

func (s *fakeStore) SaveState(state SavedState) error { s.saved = &state; return nil }
func (s *fakeStore) LoadState() (*SavedState, error)  { return s.saved, nil }
func (s *fakeStore) ClearState() error                { s.saved = nil; return nil }
func (s *fakeStore) AppendHistory(item HistoryItem) error {
	s.history = append([]HistoryItem{item}, s.history...)
	return nil
}
func (s *fakeStore) History() ([]HistoryItem, error) { return s.history, nil }
func (s *fakeStore) ClearHistory() error             { s.history = nil; return nil }

type fakeSource struct {
	questions  []Question
	err        error
	calls      int
	tip        string
	onGenerate func()
}

func (s *fakeSource) GenerateExamQuestions(ctx context.Context, cfg Config) ([]Question, error) {
	s.calls++
	if s.onGenerate != nil {
		s.onGenerate()
	}
	return s.questions, s.err
}

func (s *fakeSource) StudyTip(ctx context.Context, score float64, department string) string {
	return s.tip
}

func sampleQuestions() []Question {
	return []Question{
		{ID: 1, Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 2, Topic: "T"},
		{ID: 2, Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 0, Topic: "T"},
		{ID: 3, Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1, Topic: "T"},
		{ID: 4, Text: "Q4", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 3, Topic: "T"},
	}
}

func newTestManager(store Store, source QuestionSource) *Manager {
	m := NewManager(store, source)
	m.manualClock = true
	return m
}

func startSampleExam(t *testing.T, m *Manager) {
	t.Helper()
	require.NoError(t, m.SelectDepartment("Computer Science"))
	require.NoError(t, m.StartExam(context.Background(), "2025", "Session I (Jan/Feb)"))
	require.Equal(t, StageExam, m.Stage())
}

func TestExamFlowScoring(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{questions: sampleQuestions()}
	m := newTestManager(store, source)

	startSampleExam(t, m)

	view := m.CurrentView()
	assert.Equal(t, 4*SecondsPerQuestion, view.TimeLeft)
	assert.Len(t, view.Questions, 4)

	// Two correct, one wrong, one unanswered.
	require.NoError(t, m.Answer(1, 2))
	require.NoError(t, m.Answer(2, 0))
	require.NoError(t, m.Answer(3, 3))

	session, err := m.Submit()
	require.NoError(t, err)
	assert.Equal(t, StageResults, m.Stage())
	assert.True(t, session.IsSubmitted)
	assert.InDelta(t, 50.0, session.Score, 1e-9)
	assert.Nil(t, store.saved, "snapshot cleared on submit")

	require.Len(t, store.history, 1)
	assert.Equal(t, "Computer Science", store.history[0].DepartmentName)
	assert.Equal(t, 4, store.history[0].TotalQuestions)
}

func TestScoreBounds(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{questions: sampleQuestions()}

	// Fully unanswered exam scores zero.
	m := newTestManager(store, source)
	startSampleExam(t, m)
	session, err := m.Submit()
	require.NoError(t, err)
	assert.Zero(t, session.Score)

	// All correct scores one hundred.
	m = newTestManager(store, source)
	startSampleExam(t, m)
	for _, q := range sampleQuestions() {
		require.NoError(t, m.Answer(q.ID, q.CorrectOptionIndex))
	}
	session, err = m.Submit()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, session.Score, 1e-9)
}

func TestAnswerOverwritesAndValidates(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeSource{questions: sampleQuestions()})
	startSampleExam(t, m)

	require.NoError(t, m.Answer(1, 0))
	require.NoError(t, m.Answer(1, 2))
	assert.Error(t, m.Answer(1, 4))
	assert.Error(t, m.Answer(1, -1))

	session, _ := m.Submit()
	assert.Equal(t, 2, session.UserAnswers[1])
}

func TestCountdownForcesSubmitOnce(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, &fakeSource{questions: sampleQuestions()})
	startSampleExam(t, m)

	m.mu.Lock()
	m.timeLeft = 2
	m.mu.Unlock()

	assert.False(t, m.tick())
	assert.True(t, m.tick(), "countdown finished")
	assert.Equal(t, StageResults, m.Stage())

	// Further ticks are no-ops after the forced submit.
	assert.True(t, m.tick())
	require.Len(t, store.history, 1, "forced submit fires exactly once")

	result, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, 4*SecondsPerQuestion, result.TimeSpent)
}

func TestSaveAndExitThenResume(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{questions: sampleQuestions()}
	m := newTestManager(store, source)
	startSampleExam(t, m)

	require.NoError(t, m.Answer(1, 2))
	require.NoError(t, m.Answer(3, 1))
	require.NoError(t, m.ToggleFlag(2))
	require.NoError(t, m.Navigate(3))

	m.mu.Lock()
	m.timeLeft = 100
	m.mu.Unlock()

	require.NoError(t, m.SaveAndExit())
	assert.Equal(t, StageHome, m.Stage())
	require.NotNil(t, store.saved)

	// Resume restores the snapshot exactly, without a second fetch.
	m2 := newTestManager(store, source)
	require.NoError(t, m2.Resume())
	assert.Equal(t, 1, source.calls, "resume must not re-fetch questions")

	view := m2.CurrentView()
	assert.Equal(t, StageExam, view.Stage)
	assert.Equal(t, map[int]int{1: 2, 3: 1}, view.UserAnswers)
	assert.Equal(t, []int{2}, view.Flagged)
	assert.Equal(t, 3, view.CurrentIndex)
	assert.Equal(t, 100, view.TimeLeft)
}

func TestDiscardAndExitErasesSnapshot(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, &fakeSource{questions: sampleQuestions()})
	startSampleExam(t, m)
	require.NoError(t, m.Answer(1, 0))

	require.NoError(t, m.DiscardAndExit())
	assert.Equal(t, StageHome, m.Stage())
	assert.Nil(t, store.saved)
	assert.ErrorIs(t, m.Resume(), ErrNoSavedExam)
}

func TestGenerationFailureFallsBackHome(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeSource{err: assert.AnError})

	require.NoError(t, m.SelectDepartment("Law"))
	err := m.StartExam(context.Background(), "2024", "Session I (Jan/Feb)")
	assert.Error(t, err)
	assert.Equal(t, StageHome, m.Stage())
}

func TestStaleGenerationResponseDropped(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{questions: sampleQuestions()}
	m := newTestManager(store, source)

	// The user navigates home while the request is in flight; the
	// arriving response must not start an exam.
	source.onGenerate = func() { m.GoHome() }

	require.NoError(t, m.SelectDepartment("Economics"))
	require.NoError(t, m.StartExam(context.Background(), "2023", "Session II (June/July)"))
	assert.Equal(t, StageHome, m.Stage())
}

func TestStartExamDiscardsPreviousSnapshot(t *testing.T) {
	store := &fakeStore{saved: &SavedState{TimeLeft: 50}}
	m := newTestManager(store, &fakeSource{questions: sampleQuestions()})

	startSampleExam(t, m)
	assert.Nil(t, store.saved, "starting fresh clears any previous save")
}

func TestStageGuards(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeSource{questions: sampleQuestions()})

	assert.ErrorIs(t, m.Answer(1, 0), ErrWrongStage)
	assert.ErrorIs(t, m.ToggleFlag(0), ErrWrongStage)
	assert.ErrorIs(t, m.Navigate(0), ErrWrongStage)
	_, err := m.Submit()
	assert.ErrorIs(t, err, ErrWrongStage)
	assert.Error(t, m.SelectDepartment("No Such Department"))
	assert.ErrorIs(t, m.StartExam(context.Background(), "2025", "x"), ErrWrongStage)
}

func TestHistoryView(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, &fakeSource{questions: sampleQuestions()})

	require.NoError(t, m.ViewHistory())
	assert.Equal(t, StageHistory, m.Stage())
	m.GoHome()
	assert.Equal(t, StageHome, m.Stage())

	startSampleExam(t, m)
	_, err := m.Submit()
	require.NoError(t, err)

	items, err := m.History()
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, m.ClearHistory())
	items, _ = m.History()
	assert.Empty(t, items)
}

func TestStudyTip(t *testing.T) {
	m := newTestManager(&fakeStore{}, &fakeSource{questions: sampleQuestions(), tip: "Review graph algorithms."})

	_, err := m.StudyTip(context.Background())
	assert.ErrorIs(t, err, ErrWrongStage)

	startSampleExam(t, m)
	_, err = m.Submit()
	require.NoError(t, err)

	tip, err := m.StudyTip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Review graph algorithms.", tip)
}

func TestDebouncerCoalescesAndFlushes(t *testing.T) {
	fired := 0
	d := newDebouncer(20*time.Millisecond, func() { fired++ })

	d.Mark()
	d.Mark()
	d.Mark()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, fired, "a burst of changes flushes once")

	// A deterministic flush runs the pending write immediately.
	d.Mark()
	d.Flush()
	assert.Equal(t, 2, fired)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 2, fired, "flush consumes the pending state")

	// Cancel drops the pending write.
	d.Mark()
	d.Cancel()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 2, fired)
}
