package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Dashboard pages
const (
	PageOverview  = "overview"
	PageAnalysis  = "analysis"
	PageAssistant = "assistant"
	PageMonograph = "monograph"
)

// ChatMessage is one turn of the assistant conversation
type ChatMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ChatHistory is stored as a JSON column
type ChatHistory []ChatMessage

// Value implements driver.Valuer interface
func (h ChatHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner interface
func (h *ChatHistory) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*h = ChatHistory{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("chat history: unsupported column type %T", value)
	}
	if len(raw) == 0 {
		*h = ChatHistory{}
		return nil
	}
	var out ChatHistory
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*h = out
	return nil
}

// Session is the state of one dashboard user, passed explicitly to every
// handler. It is created on first visit and cleared by an explicit reset.
type Session struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Page          string      `json:"page" db:"page"`
	SelectedSheet string      `json:"selected_sheet" db:"selected_sheet"`
	Monograph     string      `json:"monograph" db:"monograph"`
	History       ChatHistory `json:"history" db:"history"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// NewSession creates an empty session on the overview page
func NewSession(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:        id,
		Page:      PageOverview,
		History:   ChatHistory{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records a chat turn
func (s *Session) Append(role, content string, at time.Time) {
	s.History = append(s.History, ChatMessage{Role: role, Content: content, At: at})
	s.UpdatedAt = at
}

// Reset clears the conversation and the generated monograph
func (s *Session) Reset(at time.Time) {
	s.History = ChatHistory{}
	s.Monograph = ""
	s.UpdatedAt = at
}

// Clone returns a deep copy so that callers cannot mutate stored state
func (s *Session) Clone() *Session {
	c := *s
	c.History = append(ChatHistory{}, s.History...)
	return &c
}
