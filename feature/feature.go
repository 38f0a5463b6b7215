// Package feature turns paragraph text into named numeric signals.
//
// An Extractor is a pure function from text to a Dict of feature values.
// Extractors must be deterministic and side-effect free: the evaluation
// pipeline re-applies them once per example per trial.
//
// The built-in catalogue covers the hand-engineered cues used for
// integrative-complexity scoring: length, word-shape and lexical-diversity
// statistics, modal and hedge vocabulary, transitional and conjunctive
// markers, punctuation, determiner usage, intensifiers, and curated content
// flags.
package feature

import (
	"errors"
	"fmt"
)

// Dict maps feature names to numeric values.
type Dict map[string]float64

// Extractor is a named pure function from text to features.
type Extractor struct {
	Name    string
	Extract func(text string) Dict
}

// ErrUnknownExtractor is returned by ByName for names not in the catalogue.
var ErrUnknownExtractor = errors.New("unknown extractor")

// Merge unions dicts under the max rule: when two dicts emit the same
// feature name, the merged value is the larger of the two, never their sum.
//
// onCollision, if non-nil, is invoked for every name that appears in more
// than one dict, with the value kept so far and the incoming one.
func Merge(dicts []Dict, onCollision func(name string, kept, incoming float64)) Dict {
	merged := make(Dict)
	for _, d := range dicts {
		for name, v := range d {
			prev, seen := merged[name]
			if !seen {
				merged[name] = v
				continue
			}
			if onCollision != nil {
				onCollision(name, prev, v)
			}
			if v > prev {
				merged[name] = v
			}
		}
	}
	return merged
}

// ByName resolves catalogue extractors by name, preserving argument order.
func ByName(names ...string) ([]Extractor, error) {
	catalogue := Catalogue()
	byName := make(map[string]Extractor, len(catalogue))
	for _, e := range catalogue {
		byName[e.Name] = e
	}

	out := make([]Extractor, 0, len(names))
	for _, name := range names {
		e, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, name)
		}
		out = append(out, e)
	}
	return out, nil
}
