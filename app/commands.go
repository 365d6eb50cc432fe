package app

import (
	"fmt"

	"example/engine-api/app/models"
)

const (
	// analyze searches on a fixed time budget so results are predictable
	// across hardware.
	analyzeMoveTimeMS = 800
	// probe only needs the engine to open its tablebase, not to search.
	probeDepth = 1
)

// buildCommandSequence returns the fixed, ordered UCI commands for one
// session. The fen is forwarded verbatim; nothing here interprets it.
func buildCommandSequence(mode models.SearchMode, fen, tablebasePath string) []string {
	cmds := []string{"uci"}
	if tablebasePath != "" {
		cmds = append(cmds, fmt.Sprintf("setoption name SyzygyPath value %s", tablebasePath))
	}
	cmds = append(cmds, fmt.Sprintf("position fen %s", fen))
	if mode == models.ModeProbe {
		cmds = append(cmds, fmt.Sprintf("go depth %d", probeDepth))
	} else {
		cmds = append(cmds, fmt.Sprintf("go movetime %d", analyzeMoveTimeMS))
	}
	return cmds
}

func feedCommands(e *EngineProcess, cmds []string) {
	for _, c := range cmds {
		e.Send(c)
	}
}
