package conda

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

// ExplicitFile renders set in the @EXPLICIT format accepted by "create --file".
func ExplicitFile(set domain.ResolvedSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# platform: %s\n", set.Platform)
	fmt.Fprintf(&b, "# content_hash: %s\n", set.ContentHash)
	b.WriteString("@EXPLICIT\n")
	for _, p := range set.Packages {
		b.WriteString(p.URL)
		switch {
		case p.MD5 != "":
			b.WriteString("#" + p.MD5)
		case p.SHA256 != "":
			b.WriteString("#sha256:" + p.SHA256)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Install creates prefix from the explicit package list of set. Output of
// the package manager is streamed to out. Afterwards every package must have
// a conda-meta record; missing records are reported as a partial failure.
func (b *Backend) Install(ctx context.Context, prefix string, set domain.ResolvedSet, out io.Writer) error {
	tmp, err := os.MkdirTemp("", "coman-install-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create explicit file")
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	explicit := filepath.Join(tmp, "explicit.txt")
	if err := os.WriteFile(explicit, []byte(ExplicitFile(set)), domain.PrivateFilePerm); err != nil {
		return zerr.Wrap(err, "failed to write explicit file")
	}

	cmd, _, err := b.command(ctx, map[string]string{
		"CONDA_SUBDIR": string(set.Platform),
	}, "create", "--yes", "--prefix", prefix, "--file", explicit)
	if err != nil {
		return err
	}

	runErr := stream(cmd, out)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if failed := missingRecords(prefix, set.Packages); len(failed) > 0 {
		return &domain.InstallPartialFailure{Platform: set.Platform, Prefix: prefix, Failed: failed}
	}
	if runErr != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrBackendFailed, "install failed"),
			"prefix", prefix), "exit_code", exitCode(runErr))
	}
	return nil
}

// missingRecords lists packages without a conda-meta/{name}-{version}-{build}.json.
func missingRecords(prefix string, pkgs []domain.LockedPackage) []domain.FailedPackage {
	var failed []domain.FailedPackage
	for _, p := range pkgs {
		record := filepath.Join(prefix, "conda-meta", fmt.Sprintf("%s-%s-%s.json", p.Name, p.Version, p.Build))
		if _, err := os.Stat(record); err != nil {
			failed = append(failed, domain.FailedPackage{Name: p.Name, Reason: "not linked"})
		}
	}
	return failed
}
