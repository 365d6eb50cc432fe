package app

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// ValidateFEN checks that a caller-supplied position is structurally a FEN.
// Legality is the rules library's business, not ours.
func ValidateFEN(fen string) error {
	if strings.TrimSpace(fen) == "" {
		return fmt.Errorf("empty fen")
	}
	if _, err := chess.FEN(fen); err != nil {
		return err
	}
	return nil
}

// NormalizeFEN strips move counters and keeps only the structural position:
// <pieces> <side> <castling> <en-passant>
func NormalizeFEN(fen string) string {
	parts := strings.Split(fen, " ")
	if len(parts) < 4 {
		// malformed FEN, return original
		return fen
	}

	pieces := parts[0]
	side := parts[1]
	castling := parts[2]
	ep := parts[3]

	if castling == "" {
		castling = "-"
	}
	if ep == "" {
		ep = "-"
	}

	return pieces + " " + side + " " + castling + " " + ep
}

// converts string to int safely
func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func GetWorkerCount() int {
	//default number of workers = number of cpus. Otherwise can be overwritten with WORKERS env var
	n := runtime.NumCPU()
	if v := os.Getenv("WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return n
}
