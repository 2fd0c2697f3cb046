// Package history persists chat conversations. A session's history is a
// single log; the last writer wins.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

type Store interface {
	Load(ctx context.Context, sessionID string) ([]Turn, error)
	Save(ctx context.Context, sessionID string, turns []Turn) error
	Delete(ctx context.Context, sessionID string) error
}

// Session is the persisted form of one conversation.
type Session struct {
	ID        string `gorm:"primaryKey"`
	Turns     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Session) TableName() string {
	return "chat_sessions"
}

type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the session table and returns a store over db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("migrate chat sessions: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	var row Session
	err := s.db.WithContext(ctx).First(&row, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(row.Turns), &turns); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return turns, nil
}

func (s *GormStore) Save(ctx context.Context, sessionID string, turns []Turn) error {
	b, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	row := Session{ID: sessionID, Turns: string(b)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"turns", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&Session{}, "id = ?", sessionID).Error
}

// MemoryStore keeps history in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Turn)}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Turn(nil), m.sessions[sessionID]...), nil
}

func (m *MemoryStore) Save(ctx context.Context, sessionID string, turns []Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append([]Turn(nil), turns...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
