// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dag builds and persists the lemma dependency graph used to
// pick minimization candidates. Nodes are lemma names; an edge from a
// lemma to a dependency means the lemma's stored proof cites it.
package dag

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/formula"
	"github.com/AleutianAI/proofmin/services/minimize/lemma"
)

// ====== TYPES ======

// Graph maps each lemma name to the set of dependency names its proof
// cites.
type Graph map[string]map[string]bool

func (g Graph) add(parent, child string) {
	if g[parent] == nil {
		g[parent] = make(map[string]bool)
	}
	g[parent][child] = true
}

func (g Graph) extend(parent string, children []string) {
	if g[parent] == nil {
		g[parent] = make(map[string]bool)
	}
	for _, c := range children {
		g[parent][c] = true
	}
}

// Parents returns every node name in sorted order.
func (g Graph) Parents() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Children returns the dependency names of a node in sorted order.
func (g Graph) Children(parent string) []string {
	names := make([]string, 0, len(g[parent]))
	for name := range g[parent] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ====== PERSISTENCE ======

var dagLineRe = regexp.MustCompile(`^\s*(\S+)\s*->\s*\{([^}]*)\}`)

// Load parses a graph file written by Write.
func Load(path string) (Graph, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dag file %s: %w", path, err)
	}

	g := make(Graph)
	for _, line := range strings.Split(string(content), "\n") {
		cap := dagLineRe.FindStringSubmatch(line)
		if cap == nil {
			continue
		}
		parent := cap[1]
		g[parent] = make(map[string]bool)
		for _, c := range strings.Split(cap[2], ",") {
			c = strings.Trim(strings.TrimSpace(c), `"`)
			if c != "" {
				g[parent][c] = true
			}
		}
	}
	return g, nil
}

// Format renders a graph as one "parent -> {"c1", "c2"}" line per
// node, both levels sorted for stable diffs.
func Format(g Graph) string {
	var sb strings.Builder
	for _, parent := range g.Parents() {
		quoted := make([]string, 0, len(g[parent]))
		for _, c := range g.Children(parent) {
			quoted = append(quoted, fmt.Sprintf("%q", c))
		}
		fmt.Fprintf(&sb, "%s -> {%s}\n", parent, strings.Join(quoted, ", "))
	}
	return sb.String()
}

// Write persists a graph in the Format layout.
func Write(path string, g Graph) error {
	return os.WriteFile(path, []byte(Format(g)), 0o644)
}

// ====== CONSTRUCTION ======

// Build traverses the precomputed lemma index breadth-first from the
// root lemma and assembles the dependency graph.
//
// Description:
//
//	Built-in axioms ("a...") and conjecture references terminate the
//	walk. A lemma whose formula is alpha-equivalent to a completion
//	intermediate is a duplicate: instead of its own edges, the walk
//	redirects to the intermediate's smallest parent (by the number
//	formed from the digits in its name) and continues from there.
//	Dependencies get the same duplicate treatment. The second return
//	value maps every known dependency name to its formula.
//
// Outputs:
//
//	Graph - lemma name to cited dependency names.
//	map[string]string - dependency name to formula.
//	error - ErrLemmaNotFound or ErrNoParents (wrapped with detail).
func Build(rootLemma string, pre *lemma.Precomputed, m *formula.Matcher, log *logging.Logger) (Graph, map[string]string, error) {
	if log == nil {
		log = logging.Default()
	}

	g := make(Graph)
	seen := make(map[string]bool)
	queue := []string{rootLemma}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if lemma.IsAxiomName(name) || strings.HasPrefix(name, "conjecture_") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		info, ok := pre.AllLemmas[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrLemmaNotFound, name)
		}

		redirected := false
		for _, twee := range pre.AllTwee {
			if !m.AlphaEquivalent(info.Formula, twee.Formula) {
				continue
			}
			log.Info("lemma duplicates completion intermediate",
				"lemma", name, "intermediate", twee.Name)

			parent, err := smallestParent(twee.Parents)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: intermediate %s", err, twee.Name)
			}
			if parentInfo, ok := pre.AllLemmas[parent]; ok {
				g.extend(parent, dependencyNames(parentInfo))
			}
			queue = append(queue, parent)
			redirected = true
			break
		}

		for _, dep := range info.Dependencies {
			if strings.HasPrefix(dep.Name, "twee_") {
				continue
			}

			duplicate := false
			for _, twee := range pre.AllTwee {
				if !m.AlphaEquivalent(dep.Formula, twee.Formula) {
					continue
				}
				log.Info("dependency duplicates completion intermediate",
					"dependency", dep.Name, "intermediate", twee.Name)
				duplicate = true

				parent, err := smallestParent(twee.Parents)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: intermediate %s", err, twee.Name)
				}
				if parentInfo, ok := pre.AllLemmas[parent]; ok {
					g.extend(parent, dependencyNames(parentInfo))
				}
				if !seen[parent] {
					queue = append(queue, parent)
				}
				break
			}

			if duplicate || redirected {
				continue
			}

			g.add(name, dep.Name)
			if depInfo, ok := pre.AllLemmas[dep.Name]; ok {
				g.extend(dep.Name, dependencyNames(depInfo))
			}
			if !seen[dep.Name] {
				queue = append(queue, dep.Name)
			}
		}
	}

	lemmas := make(map[string]string, len(pre.Lemmas))
	for k, v := range pre.Lemmas {
		lemmas[k] = v
	}
	return g, lemmas, nil
}

// smallestParent picks the parent whose name's digits form the
// smallest number. Names without parseable digits sort last.
func smallestParent(parents []string) (string, error) {
	if len(parents) == 0 {
		return "", ErrNoParents
	}

	best := parents[0]
	bestKey := digitKey(parents[0])
	for _, p := range parents[1:] {
		if key := digitKey(p); key < bestKey {
			best = p
			bestKey = key
		}
	}
	return best, nil
}

func digitKey(name string) uint64 {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseUint(digits.String(), 10, 32)
	if err != nil {
		return math.MaxUint32
	}
	return n
}

func dependencyNames(info lemma.Info) []string {
	names := make([]string, 0, len(info.Dependencies))
	for _, dep := range info.Dependencies {
		names = append(names, dep.Name)
	}
	return names
}
