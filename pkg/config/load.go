package config

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// placeholderRE matches a scalar consisting of exactly one ${NAME} or
// ${NAME:default} placeholder.
var placeholderRE = regexp.MustCompile(`^\$\{([^}:]+)(?::([^}]*))?\}$`)

// Load reads the YAML file at path and returns its top-level mapping with
// environment placeholders substituted. An empty file yields an empty map.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, clienterr.WrapConfig(err, "unable to read configuration file %q", path)
	}

	out, err := Parse(data)
	if err != nil {
		return nil, clienterr.WrapConfig(err, "unable to parse configuration file %q", path)
	}
	return out, nil
}

// Parse decodes YAML data the way Load does.
func Parse(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return map[string]any{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return map[string]any{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, clienterr.Configf("top level of configuration must be a mapping, got %s", nodeKind(root))
	}

	substitute(root, os.LookupEnv)

	out := map[string]any{}
	if err := root.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// substitute rewrites placeholder scalars in place. Mapping keys are never
// rewritten.
func substitute(n *yaml.Node, lookup func(string) (string, bool)) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			substitute(n.Content[i], lookup)
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, c := range n.Content {
			substitute(c, lookup)
		}
	case yaml.ScalarNode:
		m := placeholderRE.FindStringSubmatch(strings.TrimSpace(n.Value))
		if m == nil {
			return
		}
		hasDefault := strings.Contains(n.Value, ":")
		if v, ok := lookup(m[1]); ok {
			setString(n, v)
		} else if hasDefault {
			setString(n, m[2])
		} else {
			n.Tag = "!!null"
			n.Value = "null"
			n.Style = 0
		}
	}
}

func setString(n *yaml.Node, v string) {
	n.Tag = "!!str"
	n.Value = v
	n.Style = yaml.DoubleQuotedStyle
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}
