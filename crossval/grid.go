package crossval

import (
	"fmt"
	"sort"
)

// Grid maps hyperparameter names to ordered candidate values. The search
// space is the Cartesian product of all candidate lists.
type Grid map[string][]any

// Params is one configuration drawn from a Grid.
type Params map[string]any

// Enumerate expands the grid into every configuration, in deterministic
// order: parameter names sorted lexicographically, the last name varying
// fastest. An empty grid yields a single empty configuration.
func (g Grid) Enumerate() ([]Params, error) {
	names := make([]string, 0, len(g))
	for name := range g {
		if len(g[name]) == 0 {
			return nil, fmt.Errorf("crossval: parameter %q has no candidates", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	configs := []Params{{}}
	for _, name := range names {
		next := make([]Params, 0, len(configs)*len(g[name]))
		for _, base := range configs {
			for _, candidate := range g[name] {
				p := make(Params, len(base)+1)
				for k, v := range base {
					p[k] = v
				}
				p[name] = candidate
				next = append(next, p)
			}
		}
		configs = next
	}
	return configs, nil
}
