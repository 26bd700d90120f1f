package domain

import (
	"cmp"
	"path"
	"strings"
	"unicode"
)

// CompareVersions orders conda version strings the way conda's VersionOrder
// does. The epoch ("N!") is compared first, then the dotted components, then
// the local version after "+". Components split further at digit/letter
// boundaries; numbers beat strings, "dev" sorts below every string and "post"
// above everything, so 1.0dev < 1.0a1 < 1.0rc1 < 1.0 < 1.0.post1.
func CompareVersions(a, b string) int {
	x, y := parseVersion(a), parseVersion(b)
	if c := compareParts(x.epoch, y.epoch); c != 0 {
		return c
	}
	if c := compareComponents(x.main, y.main); c != 0 {
		return c
	}
	return compareComponents(x.local, y.local)
}

// versionPart is one run of digits or letters inside a component.
type versionPart struct {
	digits string
	word   string
}

type parsedVersion struct {
	epoch versionPart
	main  [][]versionPart
	local [][]versionPart
}

var zeroPart = versionPart{digits: "0"}

func parseVersion(v string) parsedVersion {
	v = strings.ToLower(strings.TrimSpace(v))
	out := parsedVersion{epoch: zeroPart}
	if epoch, rest, ok := strings.Cut(v, "!"); ok {
		out.epoch = numericPart(epoch)
		v = rest
	}
	v, local, _ := strings.Cut(v, "+")
	out.main = versionComponents(v)
	out.local = versionComponents(local)
	return out
}

func numericPart(s string) versionPart {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return versionPart{digits: s}
}

func versionComponents(v string) [][]versionPart {
	var out [][]versionPart
	for _, field := range strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' || r == '_' }) {
		var parts []versionPart
		start := 0
		for i := 1; i <= len(field); i++ {
			if i < len(field) && unicode.IsDigit(rune(field[i])) == unicode.IsDigit(rune(field[i-1])) {
				continue
			}
			run := field[start:i]
			if unicode.IsDigit(rune(run[0])) {
				parts = append(parts, numericPart(run))
			} else {
				parts = append(parts, versionPart{word: run})
			}
			start = i
		}
		// A component starting with letters gets an implicit leading zero.
		if parts[0].word != "" {
			parts = append([]versionPart{zeroPart}, parts...)
		}
		out = append(out, parts)
	}
	return out
}

func compareComponents(a, b [][]versionPart) int {
	for i := range max(len(a), len(b)) {
		x, y := []versionPart{zeroPart}, []versionPart{zeroPart}
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		for j := range max(len(x), len(y)) {
			p, q := zeroPart, zeroPart
			if j < len(x) {
				p = x[j]
			}
			if j < len(y) {
				q = y[j]
			}
			if c := compareParts(p, q); c != 0 {
				return c
			}
		}
	}
	return 0
}

// rank places special words around numbers: dev < words < numbers < post.
func (p versionPart) rank() int {
	switch {
	case p.word == "post":
		return 3
	case p.word == "":
		return 2
	case p.word == "dev":
		return 0
	default:
		return 1
	}
}

func compareParts(p, q versionPart) int {
	if c := cmp.Compare(p.rank(), q.rank()); c != 0 {
		return c
	}
	if p.word != "" || q.word != "" {
		return strings.Compare(p.word, q.word)
	}
	// Digit runs carry no leading zeros, so length orders them first.
	return cmp.Or(cmp.Compare(len(p.digits), len(q.digits)), strings.Compare(p.digits, q.digits))
}

// Matches reports whether version satisfies the constraint.
func (c Constraint) Matches(version string) bool {
	if c.IsAny() {
		return true
	}
	for _, clauses := range c.Alternatives {
		ok := true
		for _, cl := range clauses {
			if !cl.Matches(version) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Matches reports whether version satisfies the clause. A bare version or
// "=" matches the version itself and every version it is a prefix of.
func (cl Clause) Matches(version string) bool {
	want := cl.Version
	if strings.Contains(want, "*") {
		ok, _ := path.Match(want, version)
		ok = ok || version == strings.TrimSuffix(want, ".*")
		if cl.Op == "!=" {
			return !ok
		}
		if cl.Op == "" || cl.Op == "=" || cl.Op == "==" {
			return ok
		}
		want = strings.TrimRight(strings.TrimSuffix(want, "*"), ".")
	}

	cmp := CompareVersions(version, want)
	switch cl.Op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "~=":
		return cmp >= 0 && hasVersionPrefix(version, compatiblePrefix(want))
	default:
		return cmp == 0 || hasVersionPrefix(version, want)
	}
}

func hasVersionPrefix(version, prefix string) bool {
	if prefix == "" {
		return true
	}
	return version == prefix || strings.HasPrefix(version, prefix+".")
}

// compatiblePrefix drops the last segment: ~=1.4.2 requires 1.4.*.
func compatiblePrefix(v string) string {
	i := strings.LastIndex(v, ".")
	if i < 0 {
		return ""
	}
	return v[:i]
}
