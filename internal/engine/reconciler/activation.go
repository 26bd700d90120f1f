package reconciler

import (
	"path/filepath"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// ActiveVar is set in the environment of processes started inside a project
// environment.
const ActiveVar = "COMAN_ACTIVE"

// Activation describes how to enter the environment of platform p of a
// loaded project. The environment must be in sync.
func (r *Reconciler) Activation(project *domain.Project, p domain.Platform) (domain.Command, error) {
	st, err := r.observe(project, p)
	if err != nil {
		return domain.Command{}, err
	}
	if st.State != domain.InSync {
		return domain.Command{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrEnvironmentNotInstalled, "run coman install"),
			"platform", string(p)), "state", st.StateName)
	}

	return domain.Command{
		Dir:         project.Dir,
		PathPrepend: r.registry.BinPaths(st.EnvPath, p),
		Env: []string{
			"CONDA_PREFIX=" + st.EnvPath,
			"CONDA_DEFAULT_ENV=" + filepath.Base(st.EnvPath),
			ActiveVar + "=1",
		},
	}, nil
}
