package exam

import "time"

// Question is one multiple-choice question with exactly four options.
type Question struct {
	ID                 int      `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
	Topic              string   `json:"topic,omitempty"`
}

// Config identifies which question set to request.
type Config struct {
	Department string `json:"department"`
	Year       string `json:"year"`
	Session    string `json:"session"`
}

// Session is one completed, scored exam attempt.
type Session struct {
	Questions   []Question  `json:"questions"`
	UserAnswers map[int]int `json:"userAnswers"`
	IsSubmitted bool        `json:"isSubmitted"`
	Score       float64     `json:"score"`
	TimeSpent   int         `json:"timeSpent"`
	Timestamp   int64       `json:"timestamp"`
}

// SavedState is the full in-progress snapshot persisted so a session
// survives a reload. Snapshots expire after StateMaxAge.
type SavedState struct {
	Config           Config      `json:"config"`
	Questions        []Question  `json:"questions"`
	UserAnswers      map[int]int `json:"userAnswers"`
	TimeLeft         int         `json:"timeLeft"`
	CurrentIndex     int         `json:"currentIndex"`
	FlaggedQuestions []int       `json:"flaggedQuestions"`
	Timestamp        int64       `json:"timestamp"`
}

// HistoryItem is one append-only record of a finished attempt.
type HistoryItem struct {
	ID             string  `json:"id"`
	DepartmentName string  `json:"departmentName"`
	Score          float64 `json:"score"`
	Date           string  `json:"date"`
	TimeSpent      int     `json:"timeSpent"`
	TotalQuestions int     `json:"totalQuestions"`
}

// Stage represents the position in the exam flow
type Stage string

const (
	StageHome    Stage = "HOME"
	StageConfig  Stage = "CONFIG_EXAM"
	StageLoading Stage = "LOADING"
	StageExam    Stage = "EXAM"
	StageResults Stage = "RESULTS"
	StageHistory Stage = "HISTORY"
)

const (
	// SecondsPerQuestion sets the countdown allowance per question.
	SecondsPerQuestion = 90
	// SaveDebounce is how long after the last state change the
	// in-progress snapshot is flushed.
	SaveDebounce = 2 * time.Second
	// StateMaxAge is the resume window for a persisted snapshot.
	StateMaxAge = 24 * time.Hour
)
