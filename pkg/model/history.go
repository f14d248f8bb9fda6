package model

import (
	"time"

	"github.com/google/uuid"
)

type HistoryID string

// NewHistoryID generates a new unique HistoryID
func NewHistoryID() HistoryID {
	return HistoryID(uuid.New().String())
}

// History represents one answered question, kept for later review
type History struct {
	ID        HistoryID
	VideoID   VideoID
	Question  string
	Scope     Scope
	Rationale string
	Answer    string
	CreatedAt time.Time
}
