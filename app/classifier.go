package app

import (
	"strings"

	"example/engine-api/app/models"
)

type lineClass int

const (
	linePlain lineClass = iota
	lineBestMove
	lineTablebaseHint
)

// Tablebase-flavored tokens Stockfish and friends print when Syzygy data is
// in play ("info ... tbhits 1", "info string ... WDL/DTZ ...").
var hintMarkers = []string{"dtz", "tb", "tablebase", "wdl"}

// classifyLine decides whether one engine output line settles the session.
// The protocol is asynchronous and engine versions differ in how much
// progress chatter they emit, so nothing beyond these two marker patterns
// is assumed about line count or format.
func classifyLine(mode models.SearchMode, line string) lineClass {
	if strings.HasPrefix(line, "bestmove") {
		return lineBestMove
	}
	if mode == models.ModeProbe {
		lower := strings.ToLower(line)
		for _, m := range hintMarkers {
			if strings.Contains(lower, m) {
				return lineTablebaseHint
			}
		}
	}
	return linePlain
}
