package subprocess

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	for _, echo := range []bool{false, true} {
		res, err := Run(context.Background(), echo, "sh", "-c", "echo to-stdout; echo to-stderr >&2")
		require.NoError(t, err)
		require.Equal(t, "to-stdout\n", string(res.Stdout))
		require.Equal(t, "to-stderr\n", string(res.Stderr))
		require.Equal(t, 0, res.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), false, "sh", "-c", "echo broken input >&2; exit 3")
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 3, res.ExitCode)
	require.Equal(t, "broken input\n", string(res.Stderr))
}

func TestRunHonoursDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, false, "sleep", "5")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), false, "/nonexistent/ffmpeg")
	require.ErrorContains(t, err, "failed to start")
}
