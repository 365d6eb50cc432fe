// Spawns the engine process and exposes its UCI streams to one session.

package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
	"time"
)

// closeGrace is how long Close waits after "quit" before killing the process.
const closeGrace = 500 * time.Millisecond

// EngineProcess owns one spawned engine subprocess for the lifetime of a
// single session: its stdin, its line-segmented stdout, and its teardown.
type EngineProcess struct {
	cmd      *exec.Cmd
	in       *bufio.Writer
	lines    chan string
	exited   chan int
	readDone chan struct{}
	done     chan struct{}
	closer   sync.Once
}

// StartEngine launches the engine executable and starts draining its streams.
// A spawn failure is surfaced immediately; there is no retry.
func StartEngine(path string) (*EngineProcess, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	e := &EngineProcess{
		cmd:      cmd,
		in:       bufio.NewWriter(stdin),
		lines:    make(chan string, 64),
		exited:   make(chan int, 1),
		readDone: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go drainStderr(stderr)
	go e.readLines(stdout)
	go e.awaitExit()
	return e, nil
}

// Send writes one newline-terminated command. Write errors are swallowed:
// the process may already have produced a terminal answer and exited.
func (e *EngineProcess) Send(line string) {
	if _, err := fmt.Fprintln(e.in, line); err != nil {
		log.Printf("engine write %q failed: %v", line, err)
		return
	}
	if err := e.in.Flush(); err != nil {
		log.Printf("engine flush failed: %v", err)
	}
}

// Lines returns the engine's stdout, one element per line. The channel is
// closed when stdout reaches EOF.
func (e *EngineProcess) Lines() <-chan string { return e.lines }

// Exited delivers the process exit code exactly once, after stdout closes.
func (e *EngineProcess) Exited() <-chan int { return e.exited }

// Close asks the engine to quit, then kills it if it lingers. Safe to call
// from every exit path; only the first call does anything.
func (e *EngineProcess) Close() {
	e.closer.Do(func() {
		e.Send("quit")
		if e.cmd == nil {
			return
		}
		select {
		case <-e.done:
		case <-time.After(closeGrace):
			if e.cmd.Process != nil {
				_ = e.cmd.Process.Kill()
			}
		}
	})
}

func (e *EngineProcess) readLines(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		e.lines <- sc.Text()
	}
	close(e.lines)
	if e.readDone != nil {
		close(e.readDone)
	}
}

func (e *EngineProcess) awaitExit() {
	// Wait closes the stdout pipe; reading must finish first or tail
	// output gets lost.
	<-e.readDone
	err := e.cmd.Wait()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	e.exited <- code
	close(e.done)
}

// Engines chat on stderr at startup; drain it so the process never blocks.
func drainStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
	}
}
