package app

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("pipe closed") }

func TestSendSwallowsWriteErrors(t *testing.T) {
	e := &EngineProcess{in: bufio.NewWriter(failingWriter{})}
	// The process may already have answered and exited; a lost write must
	// not blow up the session.
	e.Send("stop")
}

func TestCloseIsIdempotent(t *testing.T) {
	var sb strings.Builder
	e := &EngineProcess{in: bufio.NewWriter(&sb)}
	e.Close()
	e.Close()

	if got := strings.Count(sb.String(), "quit"); got != 1 {
		t.Fatalf("quit sent %d times, want 1", got)
	}
}

func TestReadLinesSegmentsAndCloses(t *testing.T) {
	e := &EngineProcess{lines: make(chan string, 8)}
	go e.readLines(strings.NewReader("uciok\nreadyok\nbestmove e2e4\n"))

	var got []string
	for line := range e.lines {
		got = append(got, line)
	}
	want := []string{"uciok", "readyok", "bestmove e2e4"}
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadLinesHandlesLongLines(t *testing.T) {
	long := "info depth 40 pv " + strings.Repeat("e2e4 e7e5 ", 20000)
	e := &EngineProcess{lines: make(chan string, 2)}
	go e.readLines(io.MultiReader(strings.NewReader(long), strings.NewReader("\n")))

	line, ok := <-e.lines
	if !ok {
		t.Fatal("expected one long line")
	}
	if line != long {
		t.Fatalf("long line truncated: got %d bytes, want %d", len(line), len(long))
	}
}
