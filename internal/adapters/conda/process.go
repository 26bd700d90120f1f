package conda

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/zerr"
)

// capture runs cmd and returns its stdout. A non-zero exit is returned as an
// *exec.ExitError together with whatever was written to stdout, because the
// package managers report failures as JSON on stdout.
func capture(cmd *exec.Cmd) (stdout, stderr []byte, err error) {
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err = cmd.Run()
	return out.Bytes(), errOut.Bytes(), err
}

// stream runs cmd with its output copied to out. A pseudo-terminal is used
// where available so the package manager keeps printing progress.
func stream(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if errors.Is(err, pty.ErrUnsupported) {
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master fails with EIO once the child exits.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

// exitCode extracts the process exit code, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tail returns the last non-empty line of b.
func tail(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func commandEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		out = append(out, k+"="+v)
	}
	return out
}
