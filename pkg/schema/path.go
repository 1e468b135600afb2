package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// path is a sequence of map keys (string) and list indices (int).
type path []any

func (p path) key(k string) path { return append(p[:len(p):len(p)], k) }

func (p path) index(i int) path { return append(p[:len(p):len(p)], i) }

// String renders the path expression, e.g. data['client']['hosts'][0].
func (p path) String() string {
	var b strings.Builder
	b.WriteString("data")
	for _, elem := range p {
		switch e := elem.(type) {
		case string:
			b.WriteString("['")
			b.WriteString(e)
			b.WriteString("']")
		case int:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(e))
			b.WriteString("]")
		}
	}
	return b.String()
}

var (
	exprRE    = regexp.MustCompile(`^data((?:\['[^']*'\]|\[\d+\])*)$`)
	segmentRE = regexp.MustCompile(`\['([^']*)'\]|\[(\d+)\]`)
)

// ParsePath parses a path expression back into its keys and indices.
func ParsePath(expr string) ([]any, bool) {
	m := exprRE.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, false
	}
	var out []any
	for _, seg := range segmentRE.FindAllStringSubmatch(m[1], -1) {
		if seg[2] != "" {
			n, err := strconv.Atoi(seg[2])
			if err != nil {
				return nil, false
			}
			out = append(out, n)
			continue
		}
		out = append(out, seg[1])
	}
	return out, true
}

// ExtractBadValue walks data along expr and returns the value found there.
// Any failure to follow the path yields clienterr.CouldNotDetermine.
func ExtractBadValue(data map[string]any, expr string) any {
	steps, ok := ParsePath(expr)
	if !ok || len(steps) == 0 {
		return clienterr.CouldNotDetermine
	}

	var cur any = data
	for _, step := range steps {
		switch s := step.(type) {
		case string:
			m, isMap := cur.(map[string]any)
			if !isMap {
				return clienterr.CouldNotDetermine
			}
			v, found := m[s]
			if !found {
				return clienterr.CouldNotDetermine
			}
			cur = v
		case int:
			items, isList := asList(cur)
			if !isList || s < 0 || s >= len(items) {
				return clienterr.CouldNotDetermine
			}
			cur = items[s]
		}
	}
	return cur
}
