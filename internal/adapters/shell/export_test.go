package shell

import "io"

// ResolveEnvironmentForTest exposes the environment merge.
var ResolveEnvironmentForTest = resolveEnvironment

// NewExecutorWithEnv creates an Executor that sees env as the host environment.
func NewExecutorWithEnv(stdout, stderr io.Writer, env []string) *Executor {
	e := NewExecutor(nil, stdout, stderr)
	e.environ = func() []string { return env }
	return e
}
