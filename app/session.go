// One engine session per request: feed the command sequence, watch the
// output, settle exactly once, tear the process down.

package app

import (
	"fmt"
	"strings"
	"time"

	"example/engine-api/app/config"
	"example/engine-api/app/models"
)

// sessionTimeout is the wall-clock budget for a whole session. It is the
// only cancellation mechanism; caller disconnects do not cut a session short.
const sessionTimeout = 20000 * time.Millisecond

type session struct {
	mode       models.SearchMode
	proc       *EngineProcess
	timeout    time.Duration
	transcript []string
	settled    bool
	result     models.SessionResult
	score      models.EngineScore
}

// RunSession spawns one engine process, drives it through the fixed command
// sequence for the given mode, and blocks until the session settles. Exactly
// one result is produced; the process is reaped on every path. The only
// error is a spawn failure.
func RunSession(cfg *config.Config, mode models.SearchMode, fen string) (models.SessionResult, error) {
	proc, err := StartEngine(cfg.Engine.Path)
	if err != nil {
		return models.SessionResult{}, fmt.Errorf("start engine %q: %w", cfg.Engine.Path, err)
	}
	s := &session{mode: mode, proc: proc, timeout: sessionTimeout}
	feedCommands(proc, buildCommandSequence(mode, fen, cfg.Engine.TablebasePath))
	return s.run(), nil
}

// run is the session event loop. It owns the settled flag: every transition
// happens on this goroutine, so first settlement wins by construction.
func (s *session) run() models.SessionResult {
	defer s.proc.Close()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	// Lines are consumed to EOF before the exit code is consulted, so a
	// buffered terminal line always beats a racing process exit.
	lines := s.proc.Lines()
	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			s.observe(line)
		case <-timer.C:
			// No answer within budget. Quit/kill the engine; the
			// resulting EOF and exit code finish the session.
			s.proc.Close()
		}
	}

	// The engine can close stdout yet keep running; the timeout must still
	// force it out. Close's quit-then-kill guarantees the exit code arrives.
	var code int
	select {
	case code = <-s.proc.Exited():
	case <-timer.C:
		s.proc.Close()
		code = <-s.proc.Exited()
	}
	if !s.settled {
		s.settle(models.SessionResult{
			Outcome:  models.OutcomeExit,
			ExitCode: code,
		})
	}
	return s.result
}

// observe appends a line to the transcript and, if the session is still
// open, lets it decide the outcome. Lines after settlement are drained so
// the subprocess never blocks on a full pipe, but they change nothing.
func (s *session) observe(line string) {
	s.transcript = append(s.transcript, line)
	if s.settled {
		return
	}

	recordScore(line, &s.score)

	switch classifyLine(s.mode, line) {
	case lineBestMove:
		s.settle(models.SessionResult{
			Outcome:  models.OutcomeBestMove,
			BestMove: bestMoveToken(line),
		})
		s.proc.Close()
	case lineTablebaseHint:
		s.settle(models.SessionResult{
			Outcome: models.OutcomeHint,
			Line:    line,
		})
		s.proc.Close()
	}
}

func (s *session) settle(res models.SessionResult) {
	if s.settled {
		return
	}
	s.settled = true
	res.Raw = strings.Join(s.transcript, "\n")
	res.Score = s.score
	s.result = res
}

// recordScore keeps the most recent "score cp N" / "score mate N" pair from
// the engine's info chatter. Saved with the session for history rows.
func recordScore(line string, score *models.EngineScore) {
	if !strings.HasPrefix(line, "info ") {
		return
	}
	i := strings.Index(line, " score ")
	if i == -1 {
		return
	}
	rest := line[i+1:]
	if strings.Contains(rest, "score cp ") {
		var cp int
		if _, err := fmt.Sscanf(rest[strings.Index(rest, "score cp "):], "score cp %d", &cp); err == nil {
			score.CP = &cp
			score.Mate = nil
		}
	} else if strings.Contains(rest, "score mate ") {
		var m int
		if _, err := fmt.Sscanf(rest[strings.Index(rest, "score mate "):], "score mate %d", &m); err == nil {
			score.Mate = &m
			score.CP = nil
		}
	}
}

func bestMoveToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) >= 2 {
		return fields[1]
	}
	return ""
}
