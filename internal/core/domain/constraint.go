package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// operators are ordered so that two-character operators match first.
var operators = []string{"==", "!=", ">=", "<=", "~=", ">", "<", "="}

var versionPattern = regexp.MustCompile(`^[0-9A-Za-z_.*+!]+$`)

// Clause is a single version comparison such as ">=1.2".
// An empty Op is a bare version, which conda treats as a prefix or glob match.
type Clause struct {
	Op      string
	Version string
}

func (c Clause) String() string {
	return c.Op + c.Version
}

// Constraint is a version constraint in disjunctive normal form:
// alternatives are separated by "|", clauses within one alternative by ",".
// The zero value matches any version.
type Constraint struct {
	Alternatives [][]Clause
}

// ParseConstraint parses a constraint string. Whitespace between tokens is
// insignificant, so "  >= 1.0 , <2" and ">=1.0,<2" parse to the same value.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Constraint{}, nil
	}

	var c Constraint
	for alt := range strings.SplitSeq(s, "|") {
		var clauses []Clause
		for raw := range strings.SplitSeq(alt, ",") {
			clause, err := parseClause(raw)
			if err != nil {
				return Constraint{}, zerr.With(err, "constraint", s)
			}
			clauses = append(clauses, clause)
		}
		c.Alternatives = append(c.Alternatives, clauses)
	}
	return c, nil
}

func parseClause(raw string) (Clause, error) {
	token := strings.Join(strings.Fields(raw), "")
	if token == "" {
		return Clause{}, zerr.Wrap(ErrInvalidConstraint, "empty clause")
	}

	var clause Clause
	for _, op := range operators {
		if strings.HasPrefix(token, op) {
			clause.Op = op
			token = token[len(op):]
			break
		}
	}
	if token == "" || !versionPattern.MatchString(token) {
		return Clause{}, zerr.Wrap(ErrInvalidConstraint, fmt.Sprintf("clause %q", strings.TrimSpace(raw)))
	}
	clause.Version = token
	return clause, nil
}

// MustParseConstraint is ParseConstraint for literals known to be valid.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsAny reports whether the constraint accepts every version.
func (c Constraint) IsAny() bool {
	return len(c.Alternatives) == 0
}

// String renders the constraint with whitespace removed, keeping the clause
// order as written. It parses back to an equal Constraint.
func (c Constraint) String() string {
	return c.render(false)
}

// Canonical is String with clauses sorted inside each alternative and the
// alternatives sorted and deduplicated. Constraints that differ only in
// ordering share one canonical form.
func (c Constraint) Canonical() string {
	return c.render(true)
}

func (c Constraint) render(sorted bool) string {
	alts := make([]string, 0, len(c.Alternatives))
	for _, clauses := range c.Alternatives {
		parts := make([]string, 0, len(clauses))
		for _, cl := range clauses {
			parts = append(parts, cl.String())
		}
		if sorted {
			slices.Sort(parts)
			parts = slices.Compact(parts)
		}
		alts = append(alts, strings.Join(parts, ","))
	}
	if sorted {
		slices.Sort(alts)
		alts = slices.Compact(alts)
	}
	return strings.Join(alts, "|")
}

// Equal reports whether two constraints have the same canonical form.
func (c Constraint) Equal(other Constraint) bool {
	return c.Canonical() == other.Canonical()
}
