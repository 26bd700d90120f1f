// Package specfile reads and writes environment.yml.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.trai.ch/coman/internal/adapters/fs"
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	keyChannels     = "channels"
	keyPlatforms    = "platforms"
	keyDependencies = "dependencies"
)

// selectorComment matches a trailing "# [osx]" comment.
var selectorComment = regexp.MustCompile(`^#\s*\[\s*([A-Za-z0-9_-]+)\s*\]\s*$`)

// Store implements ports.SpecStore.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// Load parses and validates the specification file at path.
func (s *Store) Load(path string) (*domain.Spec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the project's own spec file
	if errors.Is(err, os.ErrNotExist) {
		return nil, zerr.With(zerr.Wrap(domain.ErrSpecNotFound, "missing"), "path", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read specification"), "path", path)
	}

	spec, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return spec, nil
}

// Save writes spec to path atomically in canonical form.
func (s *Store) Save(spec *domain.Spec, path string) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	data, err := Marshal(spec)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(path, data, domain.FilePerm)
}

// Parse decodes a specification document.
func Parse(data []byte) (*domain.Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(domain.ErrSpecFormat, err.Error())
	}

	spec := &domain.Spec{Channels: []string{}, Platforms: []domain.Platform{}, Dependencies: []domain.Dependency{}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, zerr.Wrap(domain.ErrSpecFormat, "document is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, formatErr(root, "top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		items, err := scalarSequence(key.Value, value)
		if err != nil {
			return nil, err
		}

		switch key.Value {
		case keyChannels:
			for _, item := range items {
				spec.Channels = append(spec.Channels, item.Value)
			}
		case keyPlatforms:
			for _, item := range items {
				spec.Platforms = append(spec.Platforms, domain.Platform(item.Value))
			}
		case keyDependencies:
			for _, item := range items {
				dep, err := parseDependency(item)
				if err != nil {
					return nil, err
				}
				spec.Dependencies = append(spec.Dependencies, dep)
			}
		default:
			return nil, formatErr(key, fmt.Sprintf("unknown key %q", key.Value))
		}
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Marshal renders spec deterministically. Platforms are sorted; channels and
// dependencies keep their order.
func Marshal(spec *domain.Spec) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	channels := sequence()
	for _, c := range spec.Channels {
		channels.Content = append(channels.Content, scalar(c))
	}

	platforms := sequence()
	for _, p := range domain.SortPlatforms(spec.Platforms) {
		platforms.Content = append(platforms.Content, scalar(string(p)))
	}

	deps := sequence()
	for _, d := range spec.Dependencies {
		item := scalar(d.String())
		if d.Selector != "" {
			item.LineComment = "# [" + d.Selector + "]"
		}
		deps.Content = append(deps.Content, item)
	}

	for _, kv := range []struct {
		key   string
		value *yaml.Node
	}{
		{keyChannels, channels},
		{keyPlatforms, platforms},
		{keyDependencies, deps},
	} {
		if len(kv.value.Content) == 0 {
			kv.value.Style = yaml.FlowStyle
		}
		root.Content = append(root.Content, scalar(kv.key), kv.value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, zerr.Wrap(err, "failed to encode specification")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to encode specification")
	}
	return buf.Bytes(), nil
}

func parseDependency(item *yaml.Node) (domain.Dependency, error) {
	dep, err := domain.ParseDependency(item.Value)
	if err != nil {
		return domain.Dependency{}, zerr.With(zerr.Wrap(domain.ErrSpecFormat, err.Error()), "line", item.Line)
	}

	comment := strings.TrimSpace(item.LineComment)
	if m := selectorComment.FindStringSubmatch(comment); m != nil {
		dep.Selector = m[1]
	}
	return dep, nil
}

func scalarSequence(key string, value *yaml.Node) ([]*yaml.Node, error) {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, formatErr(value, key+" must be a list")
	}
	for _, item := range value.Content {
		if item.Kind != yaml.ScalarNode || strings.TrimSpace(item.Value) == "" {
			return nil, formatErr(item, key+" entries must be non-empty strings")
		}
	}
	return value.Content, nil
}

func formatErr(node *yaml.Node, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrSpecFormat, msg), "line", node.Line)
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
