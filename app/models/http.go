package models

// BatchRequest is the POST /api/analyze/batch body.
type BatchRequest struct {
	Fens []string `json:"fens"`
	Mode string   `json:"mode"` // "analyze" (default) or "probe"
}

// HistoryEntry is one row of a caller's session history.
type HistoryEntry struct {
	FEN       string `json:"fen"`
	Mode      string `json:"mode"`
	Outcome   string `json:"outcome"`
	BestMove  string `json:"best_move,omitempty"`
	CP        *int   `json:"cp,omitempty"`
	Mate      *int   `json:"mate,omitempty"`
	CreatedAt int64  `json:"created_at_unix"`
}
