package app

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"

	"example/engine-api/app/models"
)

const endgameFEN = "8/8/8/8/8/8/4k3/4KQ2 w - - 0 1"

// newFakeEngine builds an EngineProcess over an in-memory pipe. The returned
// writer plays the engine's stdout; sent commands land in the builder.
func newFakeEngine() (*EngineProcess, *io.PipeWriter, *strings.Builder) {
	pr, pw := io.Pipe()
	var sb strings.Builder
	e := &EngineProcess{
		in:     bufio.NewWriter(&sb),
		lines:  make(chan string, 64),
		exited: make(chan int, 1),
		done:   make(chan struct{}),
	}
	go e.readLines(pr)
	return e, pw, &sb
}

func (e *EngineProcess) fakeExit(code int) {
	e.exited <- code
	close(e.done)
}

func TestAnalyzeSettlesOnBestMove(t *testing.T) {
	eng, pw, _ := newFakeEngine()
	go func() {
		io.WriteString(pw, "info depth 10 score cp 23 pv f1e2\n")
		io.WriteString(pw, "bestmove f1e2 ponder e2d3\n")
		// chatter after the terminal line must be drained but ignored
		io.WriteString(pw, "info string late line\n")
		pw.Close()
		eng.fakeExit(0)
	}()

	s := &session{mode: models.ModeAnalyze, proc: eng, timeout: 5 * time.Second}
	res := s.run()

	if res.Outcome != models.OutcomeBestMove {
		t.Fatalf("outcome = %q, want bestmove", res.Outcome)
	}
	if res.BestMove != "f1e2" {
		t.Fatalf("best move = %q, want f1e2", res.BestMove)
	}
	want := "info depth 10 score cp 23 pv f1e2\nbestmove f1e2 ponder e2d3"
	if res.Raw != want {
		t.Fatalf("raw = %q, want %q", res.Raw, want)
	}
	if res.Score.CP == nil || *res.Score.CP != 23 {
		t.Fatalf("score cp = %v, want 23", res.Score.CP)
	}
}

func TestProbeSettlesOnTablebaseHint(t *testing.T) {
	eng, pw, _ := newFakeEngine()
	go func() {
		io.WriteString(pw, "info string Found 145 WDL and 145 DTZ tablebase files\n")
		io.WriteString(pw, "bestmove f1e2\n")
		pw.Close()
		eng.fakeExit(0)
	}()

	s := &session{mode: models.ModeProbe, proc: eng, timeout: 5 * time.Second}
	res := s.run()

	if res.Outcome != models.OutcomeHint {
		t.Fatalf("outcome = %q, want hint", res.Outcome)
	}
	if !strings.Contains(res.Line, "WDL") {
		t.Fatalf("matched line = %q, want the WDL line", res.Line)
	}
	if strings.Contains(res.Raw, "bestmove") {
		t.Fatalf("raw should stop at the hint line, got %q", res.Raw)
	}
}

func TestAnalyzeIgnoresTablebaseChatter(t *testing.T) {
	eng, pw, _ := newFakeEngine()
	go func() {
		io.WriteString(pw, "info depth 20 seldepth 5 tbhits 12 score mate 2 pv f1b5\n")
		io.WriteString(pw, "bestmove f1b5\n")
		pw.Close()
		eng.fakeExit(0)
	}()

	s := &session{mode: models.ModeAnalyze, proc: eng, timeout: 5 * time.Second}
	res := s.run()

	if res.Outcome != models.OutcomeBestMove {
		t.Fatalf("outcome = %q, want bestmove (hints only settle probe mode)", res.Outcome)
	}
	if res.Score.Mate == nil || *res.Score.Mate != 2 {
		t.Fatalf("score mate = %v, want 2", res.Score.Mate)
	}
}

func TestExitFallbackSettlesWithCode(t *testing.T) {
	eng, pw, _ := newFakeEngine()
	go func() {
		io.WriteString(pw, "info string no tablebase found\n")
		pw.Close()
		eng.fakeExit(3)
	}()

	s := &session{mode: models.ModeAnalyze, proc: eng, timeout: 5 * time.Second}
	res := s.run()

	if res.Outcome != models.OutcomeExit {
		t.Fatalf("outcome = %q, want exit", res.Outcome)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if res.Raw != "info string no tablebase found" {
		t.Fatalf("raw = %q", res.Raw)
	}
}

func TestTimeoutKillsAndSettlesOnce(t *testing.T) {
	eng, pw, sb := newFakeEngine()
	go func() {
		io.WriteString(pw, "info depth 1 currmove f1e2\n")
		// engine "hangs": no bestmove; die a while after the timeout fires
		time.Sleep(300 * time.Millisecond)
		pw.Close()
		eng.fakeExit(-1)
	}()

	s := &session{mode: models.ModeAnalyze, proc: eng, timeout: 50 * time.Millisecond}
	start := time.Now()
	res := s.run()

	if res.Outcome != models.OutcomeExit {
		t.Fatalf("outcome = %q, want exit fallback", res.Outcome)
	}
	if res.ExitCode != -1 {
		t.Fatalf("exit code = %d, want -1", res.ExitCode)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("session should settle promptly after exit, took %s", elapsed)
	}
	if !strings.Contains(sb.String(), "quit") {
		t.Fatalf("timeout should send quit, sent %q", sb.String())
	}
}

func TestTimeoutAfterStdoutClosesEarly(t *testing.T) {
	// An engine that closes stdout but keeps running must still be forced
	// out by the session timer.
	path := writeFakeEngine(t, `
exec >/dev/null
sleep 60
`)
	proc, err := StartEngine(path)
	if err != nil {
		t.Fatalf("StartEngine: %v", err)
	}

	s := &session{mode: models.ModeAnalyze, proc: proc, timeout: 200 * time.Millisecond}
	start := time.Now()
	res := s.run()

	if res.Outcome != models.OutcomeExit {
		t.Fatalf("outcome = %q, want exit fallback", res.Outcome)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("session should be killed by the timer, took %s", elapsed)
	}
}

func TestFeedCommandsAnalyze(t *testing.T) {
	eng, _, sb := newFakeEngine()
	feedCommands(eng, buildCommandSequence(models.ModeAnalyze, endgameFEN, "/var/syzygy"))

	want := "uci\n" +
		"setoption name SyzygyPath value /var/syzygy\n" +
		"position fen " + endgameFEN + "\n" +
		"go movetime 800\n"
	if sb.String() != want {
		t.Fatalf("sent = %q, want %q", sb.String(), want)
	}
}

func TestFeedCommandsProbe(t *testing.T) {
	eng, _, sb := newFakeEngine()
	feedCommands(eng, buildCommandSequence(models.ModeProbe, endgameFEN, ""))

	sent := sb.String()
	if strings.Contains(sent, "setoption") {
		t.Fatalf("no SyzygyPath configured, yet sent %q", sent)
	}
	if !strings.Contains(sent, "go depth 1") {
		t.Fatalf("probe should search depth 1, sent %q", sent)
	}
}

func TestRecordScore(t *testing.T) {
	var score models.EngineScore

	recordScore("info depth 12 score cp -41 nodes 100", &score)
	if score.CP == nil || *score.CP != -41 || score.Mate != nil {
		t.Fatalf("after cp line: %+v", score)
	}

	recordScore("info depth 14 score mate -3 nodes 200", &score)
	if score.Mate == nil || *score.Mate != -3 || score.CP != nil {
		t.Fatalf("after mate line: %+v", score)
	}

	recordScore("bestmove e2e4", &score)
	if score.Mate == nil || *score.Mate != -3 {
		t.Fatalf("non-info line should not clear the score: %+v", score)
	}
}
