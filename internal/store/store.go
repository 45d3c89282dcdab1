// Package store persists the exam app's resumable snapshot and attempt
// history. The snapshot is a single keyed JSON blob with a freshness
// check applied at read time; history rows live until explicitly cleared.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"ethiosuite/internal/exam"
)

// stateKey is the well-known key of the single resumable snapshot.
const stateKey = "current_exam_state"

// stateRecord holds one persisted snapshot as a JSON payload.
type stateRecord struct {
	ID        uint   `gorm:"primary_key"`
	Key       string `gorm:"unique_index"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (stateRecord) TableName() string { return "exam_states" }

// historyRecord is one finished attempt.
type historyRecord struct {
	ID             string `gorm:"primary_key"`
	DepartmentName string
	Score          float64
	Date           string
	TimeSpent      int
	TotalQuestions int
	CreatedAt      time.Time
}

func (historyRecord) TableName() string { return "exam_history" }

// ExamStore is a gorm-backed implementation of exam.Store.
type ExamStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the configured database and migrates the schema.
// Supported drivers are "sqlite3" and "postgres".
func Open(driver, dsn string) (*ExamStore, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&stateRecord{}, &historyRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &ExamStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *ExamStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveState upserts the resumable snapshot.
func (s *ExamStore) SaveState(state exam.SavedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize exam state: %w", err)
	}

	var record stateRecord
	err = s.db.Where("key = ?", stateKey).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		record = stateRecord{Key: stateKey, Payload: string(payload)}
		return s.db.Create(&record).Error
	}
	if err != nil {
		return err
	}

	record.Payload = string(payload)
	return s.db.Save(&record).Error
}

// LoadState returns the persisted snapshot, or nil when there is none.
// A snapshot older than the resume window, or one that no longer
// parses, is discarded and treated as absent.
func (s *ExamStore) LoadState() (*exam.SavedState, error) {
	var record stateRecord
	err := s.db.Where("key = ?", stateKey).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state exam.SavedState
	if err := json.Unmarshal([]byte(record.Payload), &state); err != nil {
		log.Printf("store: discarding corrupt exam snapshot: %v", err)
		_ = s.ClearState()
		return nil, nil
	}

	age := s.now().UnixMilli() - state.Timestamp
	if age > exam.StateMaxAge.Milliseconds() {
		_ = s.ClearState()
		return nil, nil
	}

	return &state, nil
}

// ClearState deletes the resumable snapshot.
func (s *ExamStore) ClearState() error {
	return s.db.Where("key = ?", stateKey).Delete(&stateRecord{}).Error
}

// AppendHistory records one finished attempt.
func (s *ExamStore) AppendHistory(item exam.HistoryItem) error {
	record := historyRecord{
		ID:             item.ID,
		DepartmentName: item.DepartmentName,
		Score:          item.Score,
		Date:           item.Date,
		TimeSpent:      item.TimeSpent,
		TotalQuestions: item.TotalQuestions,
	}
	return s.db.Create(&record).Error
}

// History returns all attempts, most recent first.
func (s *ExamStore) History() ([]exam.HistoryItem, error) {
	var records []historyRecord
	if err := s.db.Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}

	items := make([]exam.HistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, exam.HistoryItem{
			ID:             r.ID,
			DepartmentName: r.DepartmentName,
			Score:          r.Score,
			Date:           r.Date,
			TimeSpent:      r.TimeSpent,
			TotalQuestions: r.TotalQuestions,
		})
	}
	return items, nil
}

// ClearHistory erases every recorded attempt.
func (s *ExamStore) ClearHistory() error {
	return s.db.Delete(&historyRecord{}).Error
}
