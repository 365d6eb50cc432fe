package models

// SearchMode selects how the engine is asked to look at a position.
type SearchMode string

const (
	// ModeAnalyze runs a short fixed-time search and waits for bestmove.
	ModeAnalyze SearchMode = "analyze"
	// ModeProbe runs a depth-1 search and settles early on any
	// tablebase-flavored output line.
	ModeProbe SearchMode = "probe"
)

// SessionOutcome says which event settled a session.
type SessionOutcome string

const (
	OutcomeBestMove SessionOutcome = "bestmove"
	OutcomeHint     SessionOutcome = "hint"
	OutcomeExit     SessionOutcome = "exit"
)

// EngineScore is the last evaluation the engine reported before settling.
type EngineScore struct {
	// Exactly one of these will be set:
	CP   *int `json:"cp,omitempty"`   // centipawns, positive favors side to move
	Mate *int `json:"mate,omitempty"` // mate in N, sign indicates who mates
}

// SessionResult is everything one engine session produced.
type SessionResult struct {
	Outcome  SessionOutcome `json:"outcome"`
	Raw      string         `json:"raw"`                 // newline-joined transcript up to settlement
	Line     string         `json:"line,omitempty"`      // matched hint line (OutcomeHint only)
	ExitCode int            `json:"code"`                // meaningful for OutcomeExit
	BestMove string         `json:"best_move,omitempty"` // parsed from the bestmove line, if any
	Score    EngineScore    `json:"score"`
}
