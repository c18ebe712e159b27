package domain

import "time"

// MemoryRecord is a research finding persisted for later recall
type MemoryRecord struct {
	ID           string    `json:"id"`
	Query        string    `json:"query"`
	Context      string    `json:"context,omitempty"`
	SessionID    string    `json:"session_id"`
	Mode         string    `json:"mode"`
	TotalResults int       `json:"total_results"`
	QualityScore float64   `json:"quality_score"`
	KeyFindings  []string  `json:"key_findings"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// MemoryReceipt acknowledges a stored record
type MemoryReceipt struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryStatusStored is the receipt status for a persisted record
const MemoryStatusStored = "stored"
