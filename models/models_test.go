package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestChatHistory_ValueScan(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	history := ChatHistory{
		{Role: RoleUser, Content: "Quelle commune produit le plus de blé ?", At: at},
		{Role: RoleAssistant, Content: "Bab Taza.", At: at},
	}

	raw, err := history.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var decoded ChatHistory
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Content != history[0].Content || !decoded[1].At.Equal(at) {
		t.Errorf("Unexpected history after round trip: %+v", decoded)
	}
}

func TestChatHistory_ScanEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"nil", nil},
		{"empty bytes", []byte{}},
		{"empty array", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h ChatHistory
			if err := h.Scan(tt.value); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if h == nil || len(h) != 0 {
				t.Errorf("Expected empty non-nil history, got %#v", h)
			}
		})
	}

	var h ChatHistory
	if err := h.Scan(42); err == nil {
		t.Error("Expected error for integer column")
	}
}

func TestSession_ResetAndClone(t *testing.T) {
	now := time.Now()
	s := NewSession(uuid.New(), now)
	s.Append(RoleUser, "Bonjour", now)
	s.Monograph = "# Monographie"

	clone := s.Clone()
	clone.Append(RoleAssistant, "Bonjour !", now)
	if len(s.History) != 1 {
		t.Errorf("Clone shares history with original: %d messages", len(s.History))
	}

	later := now.Add(time.Minute)
	s.Reset(later)
	if len(s.History) != 0 || s.Monograph != "" || !s.UpdatedAt.Equal(later) {
		t.Errorf("Reset left state behind: %+v", s)
	}
	if s.Page != PageOverview {
		t.Errorf("Reset should not change page, got %s", s.Page)
	}
}
