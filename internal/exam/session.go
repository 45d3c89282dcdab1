package exam

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QuestionSource generates exam content. Implementations must be
// tolerant of upstream failure per the service contract; the manager
// additionally treats a returned error as "exam not started".
type QuestionSource interface {
	GenerateExamQuestions(ctx context.Context, cfg Config) ([]Question, error)
	StudyTip(ctx context.Context, score float64, department string) string
}

// Store persists the resumable snapshot and the attempt history.
type Store interface {
	SaveState(SavedState) error
	LoadState() (*SavedState, error)
	ClearState() error
	AppendHistory(HistoryItem) error
	History() ([]HistoryItem, error)
	ClearHistory() error
}

var (
	// ErrWrongStage is returned when an action is not legal in the
	// current stage of the exam flow.
	ErrWrongStage = errors.New("action not available in current stage")
	// ErrNoSavedExam is returned when there is no resumable snapshot.
	ErrNoSavedExam = errors.New("no saved exam to resume")
)

// Manager drives one user's exam flow through its stages:
// HOME → CONFIG_EXAM → LOADING → EXAM → RESULTS, with HISTORY reachable
// from HOME and an error during LOADING falling back to HOME.
type Manager struct {
	mu sync.Mutex

	stage      Stage
	department Department
	config     Config
	questions  []Question
	answers    map[int]int
	flagged    map[int]bool
	current    int
	timeLeft   int
	allowance  int
	submitted  bool
	result     *Session

	// genToken identifies the in-flight generation request; responses
	// carrying a superseded token are dropped.
	genToken string

	stopTimer   chan struct{}
	manualClock bool

	saver  *debouncer
	store  Store
	source QuestionSource
	now    func() time.Time
}

// NewManager creates a manager at the HOME stage.
func NewManager(store Store, source QuestionSource) *Manager {
	m := &Manager{
		stage:  StageHome,
		store:  store,
		source: source,
		now:    time.Now,
	}
	m.saver = newDebouncer(SaveDebounce, m.persistSnapshot)
	return m
}

// Stage returns the current stage of the flow.
func (m *Manager) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// Resumable returns the persisted in-progress snapshot, if one exists
// and is still fresh. Expiry and corruption are handled by the store.
func (m *Manager) Resumable() *SavedState {
	saved, err := m.store.LoadState()
	if err != nil {
		log.Printf("exam: failed to load saved state: %v", err)
		return nil
	}
	return saved
}

// SelectDepartment moves HOME → CONFIG_EXAM for the named department.
func (m *Manager) SelectDepartment(name string) error {
	dept, ok := DepartmentByName(name)
	if !ok {
		return fmt.Errorf("unknown department %q", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StageHome {
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	m.department = dept
	m.stage = StageConfig
	return nil
}

// StartExam requests a fresh question set and, on success, enters the
// EXAM stage. Any previous snapshot is discarded first. On failure the
// flow falls back to HOME and the error is returned; no retry is
// attempted. A response arriving after the request has been superseded
// (user navigated away, newer start issued) is dropped.
func (m *Manager) StartExam(ctx context.Context, year, session string) error {
	m.mu.Lock()
	if m.stage != StageConfig {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	cfg := Config{Department: m.department.Name, Year: year, Session: session}
	m.config = cfg
	m.stage = StageLoading
	token := uuid.NewString()
	m.genToken = token
	m.mu.Unlock()

	if err := m.store.ClearState(); err != nil {
		log.Printf("exam: failed to clear previous snapshot: %v", err)
	}

	questions, err := m.source.GenerateExamQuestions(ctx, cfg)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.genToken != token || m.stage != StageLoading {
		// Superseded while in flight; ignore this response.
		return nil
	}
	if err != nil {
		m.stage = StageHome
		return fmt.Errorf("exam generation failed: %w", err)
	}

	m.beginLocked(questions, nil)
	return nil
}

// Resume restores a persisted snapshot and enters EXAM directly,
// without re-fetching questions.
func (m *Manager) Resume() error {
	saved := m.Resumable()
	if saved == nil {
		return ErrNoSavedExam
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StageHome {
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	if dept, ok := DepartmentByName(saved.Config.Department); ok {
		m.department = dept
	}
	m.config = saved.Config
	m.beginLocked(saved.Questions, saved)
	return nil
}

// DiscardSaved erases the persisted snapshot immediately.
func (m *Manager) DiscardSaved() error {
	return m.store.ClearState()
}

// beginLocked enters the EXAM stage with the given questions, seeding
// answers, flags, index and countdown from the snapshot if resuming.
func (m *Manager) beginLocked(questions []Question, saved *SavedState) {
	m.questions = questions
	m.answers = make(map[int]int)
	m.flagged = make(map[int]bool)
	m.current = 0
	m.allowance = len(questions) * SecondsPerQuestion
	m.timeLeft = m.allowance
	m.submitted = false
	m.result = nil

	if saved != nil {
		for id, opt := range saved.UserAnswers {
			m.answers[id] = opt
		}
		for _, idx := range saved.FlaggedQuestions {
			m.flagged[idx] = true
		}
		m.current = saved.CurrentIndex
		m.timeLeft = saved.TimeLeft
	}

	m.stage = StageExam
	m.startTimerLocked()
}

func (m *Manager) startTimerLocked() {
	if m.manualClock {
		return
	}
	stop := make(chan struct{})
	m.stopTimer = stop
	go m.runCountdown(stop)
}

func (m *Manager) stopTimerLocked() {
	if m.stopTimer != nil {
		close(m.stopTimer)
		m.stopTimer = nil
	}
}

func (m *Manager) runCountdown(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if m.tick() {
				return
			}
		}
	}
}

// tick advances the countdown one second. Reaching zero clears the
// timer first and then forces submission, so the forced submit can fire
// only once. Returns true when the countdown is finished.
func (m *Manager) tick() bool {
	m.mu.Lock()
	if m.stage != StageExam || m.submitted {
		m.mu.Unlock()
		return true
	}

	m.timeLeft--
	if m.timeLeft > 0 {
		m.mu.Unlock()
		m.saver.Mark()
		return false
	}

	m.timeLeft = 0
	m.stopTimerLocked()
	m.submitLocked()
	m.mu.Unlock()
	m.saver.Cancel()
	return true
}

// Answer records the selected option for a question id, overwriting any
// prior answer. Answering never blocks navigation.
func (m *Manager) Answer(questionID, optionIndex int) error {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	if optionIndex < 0 || optionIndex > 3 {
		m.mu.Unlock()
		return fmt.Errorf("option index %d out of range", optionIndex)
	}
	m.answers[questionID] = optionIndex
	m.mu.Unlock()

	m.saver.Mark()
	return nil
}

// ToggleFlag flips the visual marker for a question index. Flags never
// affect scoring.
func (m *Manager) ToggleFlag(index int) error {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	if m.flagged[index] {
		delete(m.flagged, index)
	} else {
		m.flagged[index] = true
	}
	m.mu.Unlock()

	m.saver.Mark()
	return nil
}

// Navigate moves the current question pointer.
func (m *Manager) Navigate(index int) error {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	if index < 0 || index >= len(m.questions) {
		m.mu.Unlock()
		return fmt.Errorf("question index %d out of range", index)
	}
	m.current = index
	m.mu.Unlock()

	m.saver.Mark()
	return nil
}

// Submit scores the attempt, clears the resumable snapshot, appends a
// history entry and moves to RESULTS.
func (m *Manager) Submit() (Session, error) {
	m.mu.Lock()
	if m.stage != StageExam || m.submitted {
		m.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	m.stopTimerLocked()
	m.submitLocked()
	result := *m.result
	m.mu.Unlock()

	m.saver.Cancel()
	return result, nil
}

// submitLocked finalizes the attempt; callers must hold the lock and
// have stopped the countdown.
func (m *Manager) submitLocked() {
	m.submitted = true

	correct := 0
	for _, q := range m.questions {
		if answer, ok := m.answers[q.ID]; ok && answer == q.CorrectOptionIndex {
			correct++
		}
	}

	score := 0.0
	if len(m.questions) > 0 {
		score = float64(correct) / float64(len(m.questions)) * 100
	}

	m.result = &Session{
		Questions:   m.questions,
		UserAnswers: m.answers,
		IsSubmitted: true,
		Score:       score,
		TimeSpent:   m.allowance - m.timeLeft,
		Timestamp:   m.now().UnixMilli(),
	}
	m.stage = StageResults

	if err := m.store.ClearState(); err != nil {
		log.Printf("exam: failed to clear snapshot on submit: %v", err)
	}
	item := HistoryItem{
		ID:             uuid.NewString(),
		DepartmentName: m.config.Department,
		Score:          score,
		Date:           m.now().Format(time.RFC3339),
		TimeSpent:      m.result.TimeSpent,
		TotalQuestions: len(m.questions),
	}
	if err := m.store.AppendHistory(item); err != nil {
		log.Printf("exam: failed to append history: %v", err)
	}
}

// Result returns the scored session after submission.
func (m *Manager) Result() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.result == nil {
		return Session{}, false
	}
	return *m.result, true
}

// SaveAndExit flushes the snapshot deterministically, stops the
// countdown and returns to HOME. The snapshot stays resumable.
func (m *Manager) SaveAndExit() error {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	m.stopTimerLocked()
	snapshot := m.snapshotLocked()
	m.resetLocked()
	m.mu.Unlock()

	m.saver.Cancel()
	return m.store.SaveState(snapshot)
}

// DiscardAndExit erases the snapshot and returns to HOME.
func (m *Manager) DiscardAndExit() error {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	m.stopTimerLocked()
	m.resetLocked()
	m.mu.Unlock()

	m.saver.Cancel()
	return m.store.ClearState()
}

// GoHome resets the flow to HOME from any settled stage.
func (m *Manager) GoHome() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == StageExam || m.stage == StageLoading {
		// Leaving mid-exam goes through SaveAndExit/DiscardAndExit;
		// leaving mid-load invalidates the in-flight token.
		m.stopTimerLocked()
		m.genToken = ""
	}
	m.resetLocked()
}

// ViewHistory moves HOME → HISTORY.
func (m *Manager) ViewHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StageHome {
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	m.stage = StageHistory
	return nil
}

// History returns all recorded attempts, most recent first.
func (m *Manager) History() ([]HistoryItem, error) {
	return m.store.History()
}

// ClearHistory erases the attempt history.
func (m *Manager) ClearHistory() error {
	return m.store.ClearHistory()
}

// StudyTip fetches a short coaching tip for the submitted result.
func (m *Manager) StudyTip(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.result == nil {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: no submitted result", ErrWrongStage)
	}
	score := m.result.Score
	department := m.config.Department
	m.mu.Unlock()

	return m.source.StudyTip(ctx, score, department), nil
}

func (m *Manager) resetLocked() {
	m.stage = StageHome
	m.department = Department{}
	m.config = Config{}
	m.questions = nil
	m.answers = nil
	m.flagged = nil
	m.current = 0
	m.timeLeft = 0
	m.allowance = 0
	m.submitted = false
}

// snapshotLocked builds the persisted form of the in-progress state.
func (m *Manager) snapshotLocked() SavedState {
	answers := make(map[int]int, len(m.answers))
	for id, opt := range m.answers {
		answers[id] = opt
	}
	flags := make([]int, 0, len(m.flagged))
	for idx := range m.flagged {
		flags = append(flags, idx)
	}
	sort.Ints(flags)

	return SavedState{
		Config:           m.config,
		Questions:        m.questions,
		UserAnswers:      answers,
		TimeLeft:         m.timeLeft,
		CurrentIndex:     m.current,
		FlaggedQuestions: flags,
		Timestamp:        m.now().UnixMilli(),
	}
}

// persistSnapshot is the debounced flush target.
func (m *Manager) persistSnapshot() {
	m.mu.Lock()
	if m.stage != StageExam {
		m.mu.Unlock()
		return
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.store.SaveState(snapshot); err != nil {
		log.Printf("exam: auto-save failed: %v", err)
	}
}

// View is a read-only snapshot of the live exam state for handlers.
type View struct {
	Stage        Stage       `json:"stage"`
	Config       Config      `json:"config"`
	Questions    []Question  `json:"questions,omitempty"`
	UserAnswers  map[int]int `json:"userAnswers,omitempty"`
	Flagged      []int       `json:"flaggedQuestions,omitempty"`
	CurrentIndex int         `json:"currentIndex"`
	TimeLeft     int         `json:"timeLeft"`
}

// CurrentView returns the state a client needs to render the flow.
func (m *Manager) CurrentView() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Stage:        m.stage,
		Config:       m.config,
		CurrentIndex: m.current,
		TimeLeft:     m.timeLeft,
	}
	if m.stage == StageExam {
		v.Questions = m.questions
		v.UserAnswers = make(map[int]int, len(m.answers))
		for id, opt := range m.answers {
			v.UserAnswers[id] = opt
		}
		flags := make([]int, 0, len(m.flagged))
		for idx := range m.flagged {
			flags = append(flags, idx)
		}
		sort.Ints(flags)
		v.Flagged = flags
	}
	return v
}
