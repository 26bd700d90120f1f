package conda

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// solveResponse is the JSON printed by "create --dry-run --json".
// conda reports failures through exception_name, micromamba through solver_problems.
type solveResponse struct {
	Success bool `json:"success"`
	Actions struct {
		Fetch []action `json:"FETCH"`
		Link  []action `json:"LINK"`
	} `json:"actions"`
	ExceptionName  string   `json:"exception_name"`
	Message        string   `json:"message"`
	Error          string   `json:"error"`
	Packages       []string `json:"packages"`
	SolverProblems []string `json:"solver_problems"`
}

type action struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Build       string `json:"build"`
	BuildString string `json:"build_string"`
	Channel     string `json:"channel"`
	Subdir      string `json:"subdir"`
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	Fn          string `json:"fn"`
	BaseURL     string `json:"base_url"`
	DistName    string `json:"dist_name"`
	MD5         string `json:"md5"`
	SHA256      string `json:"sha256"`
}

// Solve runs a dry-run create for req.Platform and reads the pinned package list.
func (b *Backend) Solve(ctx context.Context, req domain.SolveRequest) ([]domain.LockedPackage, error) {
	tmp, err := os.MkdirTemp("", "coman-solve-*")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create solve prefix")
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	args := []string{"create", "--prefix", filepath.Join(tmp, "prefix"), "--dry-run", "--json"}
	if len(req.Channels) > 0 {
		args = append(args, "--override-channels")
	}
	for _, c := range req.Channels {
		args = append(args, "--channel", c)
	}

	exe, err := b.executable()
	if err != nil {
		return nil, err
	}
	if exe.Flavor == Micromamba {
		args = append(args, "--platform", string(req.Platform))
	}
	args = append(args, req.Specs...)

	cmd, _, err := b.command(ctx, map[string]string{
		"CONDA_SUBDIR":                          string(req.Platform),
		"CONDA_UNSATISFIABLE_HINTS_CHECK_DEPTH": "0",
		"CONDA_ADD_PIP_AS_PYTHON_DEPENDENCY":    "False",
	}, args...)
	if err != nil {
		return nil, err
	}

	stdout, stderr, runErr := capture(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return parseSolve(req.Platform, stdout, stderr, runErr)
}

func parseSolve(platform domain.Platform, stdout, stderr []byte, runErr error) ([]domain.LockedPackage, error) {
	var res solveResponse
	if err := json.Unmarshal(stdout, &res); err != nil {
		detail := tail(stderr)
		if detail == "" {
			detail = tail(stdout)
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrBackendFailed, "solve output is not JSON"),
			"platform", string(platform)), "detail", detail)
	}

	if runErr != nil || !res.Success {
		return nil, solveFailure(platform, res, runErr)
	}
	return lockedPackages(res), nil
}

func solveFailure(platform domain.Platform, res solveResponse, runErr error) error {
	switch {
	case res.ExceptionName == "PackagesNotFoundError":
		conflicts := make([]domain.Conflict, 0, len(res.Packages))
		for _, p := range res.Packages {
			conflicts = append(conflicts, domain.Conflict{Package: p})
		}
		return &domain.ResolutionError{Platform: platform, Conflicts: conflicts, Detail: res.Message}
	case res.ExceptionName == "UnsatisfiableError", res.ExceptionName == "ResolvePackageNotFound":
		return &domain.ResolutionError{Platform: platform, Conflicts: ParseConflicts(res.Message), Detail: firstLine(res.Message)}
	case len(res.SolverProblems) > 0:
		return &domain.ResolutionError{
			Platform:  platform,
			Conflicts: ParseConflicts(strings.Join(res.SolverProblems, "\n")),
			Detail:    strings.Join(res.SolverProblems, "; "),
		}
	}

	msg := res.Message
	if msg == "" {
		msg = res.Error
	}
	err := zerr.With(zerr.Wrap(domain.ErrBackendFailed, "solve failed"), "platform", string(platform))
	if res.ExceptionName != "" {
		err = zerr.With(err, "exception", res.ExceptionName)
	}
	if msg != "" {
		err = zerr.With(err, "detail", firstLine(msg))
	}
	if runErr != nil {
		err = zerr.With(err, "exit_code", exitCode(runErr))
	}
	return err
}

func lockedPackages(res solveResponse) []domain.LockedPackage {
	fetched := make(map[string]action, len(res.Actions.Fetch))
	for _, f := range res.Actions.Fetch {
		fetched[distName(f)] = f
	}

	out := make([]domain.LockedPackage, 0, len(res.Actions.Link))
	for _, l := range res.Actions.Link {
		subdir := l.Subdir
		if subdir == "" {
			subdir = l.Platform
		}
		build := l.BuildString
		if build == "" {
			build = l.Build
		}
		pkg := domain.LockedPackage{
			Name:    l.Name,
			Version: l.Version,
			Build:   build,
			Channel: channelName(l.Channel),
			Subdir:  subdir,
			URL:     l.URL,
			SHA256:  l.SHA256,
			MD5:     l.MD5,
		}
		if f, ok := fetched[distName(l)]; ok {
			pkg.URL = firstNonEmpty(f.URL, pkg.URL)
			pkg.SHA256 = firstNonEmpty(f.SHA256, pkg.SHA256)
			pkg.MD5 = firstNonEmpty(f.MD5, pkg.MD5)
		}
		if pkg.URL == "" && l.BaseURL != "" {
			pkg.URL = l.BaseURL + "/" + subdir + "/" + distName(l) + ".conda"
		}
		out = append(out, pkg)
	}
	domain.SortPackages(out)
	return out
}

// distName is the file name of a package without its archive extension.
func distName(a action) string {
	if a.DistName != "" {
		return filepath.Base(a.DistName)
	}
	fn := a.Fn
	if fn == "" && a.URL != "" {
		fn = a.URL[strings.LastIndex(a.URL, "/")+1:]
	}
	for _, ext := range []string{".conda", ".tar.bz2"} {
		if s, ok := strings.CutSuffix(fn, ext); ok {
			return s
		}
	}
	if fn != "" {
		return fn
	}
	return a.Name + "-" + a.Version + "-" + firstNonEmpty(a.BuildString, a.Build)
}

// channelName reduces "https://conda.anaconda.org/conda-forge/linux-64" to "conda-forge".
func channelName(ch string) string {
	if !strings.Contains(ch, "/") {
		return ch
	}
	u, err := url.Parse(ch)
	if err != nil {
		return ch
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && isSubdir(parts[len(parts)-1]) {
		return parts[len(parts)-2]
	}
	return parts[len(parts)-1]
}

func isSubdir(s string) bool {
	if s == string(domain.PlatformNoarch) {
		return true
	}
	_, err := domain.ParsePlatform(s)
	return err == nil
}

var conflictLine = regexp.MustCompile(
	`^(- )?(?:([A-Za-z0-9_.-]+)(?:\[version='([^']+)'\]|(==?[^ ]+))? -> )?([A-Za-z0-9_.-]+)(?:\[version='([^']+)'\]|(==?[^ ]+))?$`)

// ParseConflicts extracts conflicting entries from a solver message such as
//
//	Package python conflicts for:
//	numpy[version='>=1.20'] -> python[version='>=3.9']
//
// Lines without any version information are ignored.
func ParseConflicts(msg string) []domain.Conflict {
	byName := make(map[string]*domain.Conflict)
	var order []string

	for line := range strings.SplitSeq(msg, "\n") {
		m := conflictLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		specName, specVer := m[2], firstNonEmpty(m[3], m[4])
		depName, depVer := m[5], firstNonEmpty(m[6], m[7])
		if specVer == "" && depVer == "" {
			continue
		}

		c, ok := byName[depName]
		if !ok {
			c = &domain.Conflict{Package: depName}
			byName[depName] = c
			order = append(order, depName)
		}
		if specName == "" {
			c.Constraint = depVer
			continue
		}
		c.RequiredBy = append(c.RequiredBy, strings.TrimSpace(specName+" "+specVer))
	}

	out := make([]domain.Conflict, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
