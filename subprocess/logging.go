package subprocess

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/livepeer/clip-api/log"
)

// Result holds everything a finished subprocess wrote and how it exited
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Run executes name with args, capturing stdout and stderr in full. When echo is true the
// output is also streamed line by line to our own stdout/stderr while the process runs.
// A non-nil error is returned for start failures, context cancellation and non-zero exits;
// the Result is populated in every case where the process started.
func Run(ctx context.Context, echo bool, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)

	var pipes []io.Reader
	if echo {
		stderrPipe, err := cmd.StderrPipe()
		if err != nil {
			return Result{}, fmt.Errorf("failed to open stderr pipe: %w", err)
		}
		stdoutPipe, err := cmd.StdoutPipe()
		if err != nil {
			return Result{}, fmt.Errorf("failed to open stdout pipe: %w", err)
		}
		pipes = []io.Reader{stdoutPipe, stderrPipe}
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	if echo {
		done := make(chan struct{}, 2)
		go func() {
			streamOutput(pipes[0], io.MultiWriter(&stdout, os.Stdout))
			done <- struct{}{}
		}()
		go func() {
			streamOutput(pipes[1], io.MultiWriter(&stderr, os.Stderr))
			done <- struct{}{}
		}()
		// pipes must be drained before Wait closes them
		<-done
		<-done
	}

	err := cmd.Wait()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, fmt.Errorf("%s exited with status %d: %w", name, res.ExitCode, err)
	}
	if err != nil {
		return res, fmt.Errorf("%s failed: %w", name, err)
	}
	return res, nil
}

func streamOutput(src io.Reader, out io.Writer) {
	s := bufio.NewReader(src)
	for {
		line, err := s.ReadSlice('\n')
		if len(line) > 0 {
			if _, werr := out.Write(line); werr != nil {
				log.LogNoRequestID("streamOutput out.Write error", "err", werr)
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil && err != bufio.ErrBufferFull {
			log.LogNoRequestID("streamOutput ReadSlice error", "err", err)
			return
		}
	}
}
