// Package exec runs child processes with profile properties injected into
// their environment.
package exec

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"strings"
	"syscall"
)

// Run executes command with env merged over the current process
// environment. Stdio is inherited, and SIGINT, SIGTERM and SIGHUP are
// forwarded to the child while it runs. The returned error preserves the
// child's exit code when available.
func Run(ctx context.Context, command []string, env map[string]string) error {
	if len(command) == 0 {
		return errors.New("command must not be empty")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Env = mergeEnv(os.Environ(), env)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting command %q: %w", command[0], err)
	}

	stop := forwardSignals(ctx, cmd.Process)
	defer stop()

	return cmd.Wait()
}

// ExitCode extracts the exit code from an error returned by Run: 0 for nil,
// the child's code for an *exec.ExitError, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return 1
}

// forwardSignals relays signals to process until the returned func is
// called or ctx ends.
func forwardSignals(ctx context.Context, process *os.Process) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigs:
				_ = process.Signal(sig)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// mergeEnv overlays additional on current and returns KEY=VALUE entries
// sorted by key. Neither input is mutated.
func mergeEnv(current []string, additional map[string]string) []string {
	merged := make(map[string]string, len(current)+len(additional))
	for _, entry := range current {
		key, value, _ := strings.Cut(entry, "=")
		if key != "" {
			merged[key] = value
		}
	}
	maps.Copy(merged, additional)

	out := make([]string, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, key+"="+merged[key])
	}
	return out
}
