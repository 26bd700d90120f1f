package conda

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strings"

	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
)

type searchRecord struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
	Channel string `json:"channel"`
	Subdir  string `json:"subdir"`
}

// micromambaSearch is the shape printed by "micromamba search --json".
type micromambaSearch struct {
	Result struct {
		Pkgs []searchRecord `json:"pkgs"`
	} `json:"result"`
}

// Search queries the package index. A query without matches returns an empty list.
func (b *Backend) Search(ctx context.Context, query string, channels []string, platform domain.Platform) ([]domain.PackageInfo, error) {
	args := []string{"search", "--json"}
	if len(channels) > 0 {
		args = append(args, "--override-channels")
	}
	for _, c := range channels {
		args = append(args, "--channel", c)
	}

	exe, err := b.executable()
	if err != nil {
		return nil, err
	}
	env := map[string]string{}
	if platform != "" {
		env["CONDA_SUBDIR"] = string(platform)
		if exe.Flavor == Micromamba {
			args = append(args, "--platform", string(platform))
		} else {
			args = append(args, "--subdir", string(platform))
		}
	}
	args = append(args, query)

	cmd, _, err := b.command(ctx, env, args...)
	if err != nil {
		return nil, err
	}
	stdout, stderr, runErr := capture(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return parseSearch(stdout, stderr, runErr)
}

func parseSearch(stdout, stderr []byte, runErr error) ([]domain.PackageInfo, error) {
	var records []searchRecord

	var mm micromambaSearch
	if err := json.Unmarshal(stdout, &mm); err == nil && mm.Result.Pkgs != nil {
		records = mm.Result.Pkgs
	} else {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(stdout, &raw); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrBackendFailed, "search output is not JSON"), "detail", tail(stderr))
		}
		if exc, ok := raw["exception_name"]; ok {
			var name string
			_ = json.Unmarshal(exc, &name)
			if name == "PackagesNotFoundError" {
				return nil, nil
			}
			return nil, zerr.With(zerr.Wrap(domain.ErrBackendFailed, "search failed"), "exception", name)
		}
		for key, msg := range raw {
			if key == "error" {
				continue
			}
			var recs []searchRecord
			if err := json.Unmarshal(msg, &recs); err != nil {
				continue
			}
			records = append(records, recs...)
		}
	}
	if runErr != nil && len(records) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrBackendFailed, "search failed"), "exit_code", exitCode(runErr))
	}

	out := make([]domain.PackageInfo, 0, len(records))
	for _, r := range records {
		out = append(out, domain.PackageInfo{
			Name:    r.Name,
			Version: r.Version,
			Build:   r.Build,
			Channel: channelName(r.Channel),
			Subdir:  r.Subdir,
		})
	}
	slices.SortStableFunc(out, func(x, y domain.PackageInfo) int {
		return cmp.Or(
			strings.Compare(x.Name, y.Name),
			domain.CompareVersions(y.Version, x.Version),
			strings.Compare(y.Build, x.Build),
		)
	})
	return slices.CompactFunc(out, func(x, y domain.PackageInfo) bool { return x == y }), nil
}
