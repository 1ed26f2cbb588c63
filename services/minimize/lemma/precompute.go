// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lemma

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/formula"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

// ====== TYPES ======

// Info is a lemma with the dependencies its stored completion proof
// cites.
type Info struct {
	Formula      string
	Dependencies []steps.NamedFormula
}

// TweeDependency is a completion prover intermediate lemma, shared
// across every stored proof that derives it.
type TweeDependency struct {
	Name    string
	Formula string

	// Parents are the stored lemmas whose proofs derive this
	// intermediate.
	Parents []string
}

// Precomputed indexes every stored lemma and the completion prover
// intermediates appearing across their proofs.
type Precomputed struct {
	// AllLemmas maps lemma name to its formula and dependencies.
	AllLemmas map[string]Info

	// AllTwee lists deduplicated completion intermediates with their
	// parent lemmas.
	AllTwee []TweeDependency

	// Lemmas maps every dependency name seen to its formula.
	Lemmas map[string]string
}

// ====== COMPLETION PROOF PARSING ======

var (
	axiomLineRe = regexp.MustCompile(`Axiom\s+\d+\s+\(([^)]+)\)\s*:\s*(.+)`)
	goalLineRe  = regexp.MustCompile(`Goal\s+\d+\s+\(([^)]+)\)\s*:\s*(.+)`)

	// tweeLemmaRe captures an intermediate lemma block: the formula is
	// the last line before its "Proof:" marker.
	tweeLemmaRe = regexp.MustCompile(`(?s)Lemma\s+(\d+):\s*(.*?)Proof:`)

	tweeVarRe = regexp.MustCompile(`\b([A-Z][0-9]*)\b`)
)

// ExtractTweeLemmas pulls the intermediate lemmas out of completion
// prover output, quantifying their variables.
func ExtractTweeLemmas(output string) []steps.NamedFormula {
	var result []steps.NamedFormula

	for _, cap := range tweeLemmaRe.FindAllStringSubmatch(output, -1) {
		body := strings.TrimSpace(cap[2])

		line := body
		if parts := strings.Split(body, "\n"); len(parts) > 0 {
			line = strings.TrimSpace(parts[len(parts)-1])
		}
		line = strings.TrimSuffix(line, ".")

		seen := make(map[string]bool)
		var vars []string
		for _, m := range tweeVarRe.FindAllStringSubmatch(line, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				vars = append(vars, m[1])
			}
		}
		sort.Strings(vars)

		text := line
		if len(vars) > 0 {
			text = fmt.Sprintf("! [%s] : (%s)", strings.Join(vars, ", "), line)
		}

		idx, _ := strconv.Atoi(cap[1])
		result = append(result, steps.NamedFormula{
			Name:    fmt.Sprintf("twee_lemma_%02d", idx),
			Formula: text,
		})
	}

	return result
}

// ParseUsedLemmas extracts the named axioms and goals a completion
// proof cites, resolving lemma references through the proof store.
//
// Description:
//
//	Base axioms ("a...") are kept with their inline formulas. Cited
//	lemma_<idx> names are resolved to the stored variant that has a
//	proof, stripped of the prover suffix, and loaded from the lemma
//	store. Conjecture references are dropped. The result is sorted
//	for determinism.
func (r *Repository) ParseUsedLemmas(output string, log *logging.Logger) ([]steps.NamedFormula, error) {
	if log == nil {
		log = logging.Default()
	}
	var used []steps.NamedFormula

	resolve := func(name string) error {
		actual, ok := r.SelectActual(name)
		if !ok {
			log.Warn("no proof file for cited lemma", "lemma", name)
			return nil
		}
		clean := StripProverSuffix(actual)
		f, err := r.Load(clean)
		if err != nil {
			return err
		}
		used = append(used, steps.NamedFormula{Name: clean, Formula: f})
		return nil
	}

	for _, line := range strings.Split(output, "\n") {
		if cap := axiomLineRe.FindStringSubmatch(line); cap != nil {
			name := cap[1]
			text := strings.TrimSuffix(strings.TrimSpace(cap[2]), ".")

			switch {
			case isStoredLemmaName(name):
				if err := resolve(name); err != nil {
					return nil, err
				}
			case strings.HasPrefix(name, "conjecture_"):
			default:
				// Base axioms and any other symbol keep their inline
				// formula.
				used = append(used, steps.NamedFormula{Name: name, Formula: text})
			}
			continue
		}

		if cap := goalLineRe.FindStringSubmatch(line); cap != nil {
			if isStoredLemmaName(cap[1]) {
				if err := resolve(cap[1]); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.Slice(used, func(i, j int) bool {
		if used[i].Name != used[j].Name {
			return used[i].Name < used[j].Name
		}
		return used[i].Formula < used[j].Formula
	})
	return used, nil
}

// ====== PRECOMPUTE ======

// Precompute indexes the whole lemma store from the stored completion
// proofs.
//
// Description:
//
//	For every stored proof the completion variant is read from
//	tweeProofsDir. Cited lemmas become dependencies; intermediate
//	lemmas are deduplicated across proofs by alpha-normalized formula
//	and given canonical twee_lemma_<nn> names starting at 2, tracking
//	every parent lemma whose proof derives them.
func (r *Repository) Precompute(tweeProofsDir string, log *logging.Logger) (*Precomputed, error) {
	if log == nil {
		log = logging.Default()
	}

	entries, err := os.ReadDir(r.ProofsDir)
	if err != nil {
		return nil, fmt.Errorf("read proofs dir %s: %w", r.ProofsDir, err)
	}

	pre := &Precomputed{
		AllLemmas: make(map[string]Info),
		Lemmas:    make(map[string]string),
	}
	canonicalByKey := make(map[string]string)
	nextIndex := 2

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lemmaName := StripProverSuffix(strings.TrimSuffix(name, filepath.Ext(name)))

		tweePath := filepath.Join(tweeProofsDir, lemmaName+"_twee.proof")
		content, err := os.ReadFile(tweePath)
		if err != nil {
			return nil, fmt.Errorf("read completion proof %s: %w", tweePath, err)
		}
		proofText := string(content)

		used, err := r.ParseUsedLemmas(proofText, log)
		if err != nil {
			return nil, err
		}

		dependencies := make([]steps.NamedFormula, 0, len(used))
		for _, dep := range used {
			dependencies = append(dependencies, dep)
			pre.Lemmas[dep.Name] = dep.Formula
		}

		for _, twee := range ExtractTweeLemmas(proofText) {
			key := formula.Normalize(twee.Formula)
			canonical, ok := canonicalByKey[key]
			if !ok {
				canonical = fmt.Sprintf("twee_lemma_%02d", nextIndex)
				nextIndex++
				canonicalByKey[key] = canonical
			}

			found := false
			for i := range pre.AllTwee {
				if pre.AllTwee[i].Name == canonical {
					found = true
					if !containsString(pre.AllTwee[i].Parents, lemmaName) {
						pre.AllTwee[i].Parents = append(pre.AllTwee[i].Parents, lemmaName)
					}
					break
				}
			}
			if !found {
				pre.AllTwee = append(pre.AllTwee, TweeDependency{
					Name:    canonical,
					Formula: twee.Formula,
					Parents: []string{lemmaName},
				})
			}

			pre.Lemmas[canonical] = twee.Formula
			dependencies = append(dependencies, steps.NamedFormula{Name: canonical, Formula: twee.Formula})
		}

		f, err := r.Load(lemmaName)
		if err != nil {
			return nil, err
		}
		pre.AllLemmas[lemmaName] = Info{Formula: f, Dependencies: dependencies}
	}

	return pre, nil
}

// isStoredLemmaName reports whether a cited name should resolve
// through the lemma store rather than keep its inline formula.
func isStoredLemmaName(name string) bool {
	for _, prefix := range []string{"lemma_", PrefixSingle, PrefixHistory, PrefixAbstract} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
