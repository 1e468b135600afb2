package logging

import "strings"

// Predicate decides whether records from a named logger match.
type Predicate func(name string) bool

// Allow returns a predicate matching the given logger names and their
// dotted children.
func Allow(names ...string) Predicate {
	return matcher(names)
}

// Block returns a predicate matching the given logger names and their
// dotted children. Records matching a block predicate are dropped.
func Block(names ...string) Predicate {
	return matcher(names)
}

func matcher(names []string) Predicate {
	list := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			list = append(list, n)
		}
	}
	return func(name string) bool {
		for _, n := range list {
			if name == n || strings.HasPrefix(name, n+".") {
				return true
			}
		}
		return false
	}
}
