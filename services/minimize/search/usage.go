// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"regexp"
	"strings"
)

// citationRe matches completion prover premise lines, e.g.
// "Axiom 2 (single_lemma_0012): ..." or "Goal 1 (conjecture): ...".
var citationRe = regexp.MustCompile(`^(?:Axiom|Goal)\s+\d+\s+\(([^)]+)\):`)

// proofUsesLemma reports whether a proof actually cites the named
// lemma. Completion prover output names every premise it loads, and
// annotated superposition headers list premise names after "| deps:".
// Raw refuter output erases premise names, so a proof that only
// carries "[input]" steps is treated as using the lemma.
func proofUsesLemma(proof, lemmaName string) bool {
	if lemmaName == "" {
		return false
	}
	sawUnnamed := false
	for _, raw := range strings.Split(proof, "\n") {
		line := strings.TrimSpace(raw)
		if cap := citationRe.FindStringSubmatch(line); cap != nil {
			if strings.TrimSpace(cap[1]) == lemmaName {
				return true
			}
			continue
		}
		if strings.Contains(line, "{ by") && strings.Contains(line, "("+lemmaName+")") {
			return true
		}
		if i := strings.Index(line, "| deps:"); i >= 0 {
			if containsName(line[i+len("| deps:"):], lemmaName) {
				return true
			}
			continue
		}
		if strings.Contains(line, "[input]") {
			sawUnnamed = true
		}
	}
	return sawUnnamed
}

// containsName reports whether s contains name as a whole token, not
// as a prefix of a longer name (lemma_0001 vs lemma_00010).
func containsName(s, name string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], name)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(name)
		beforeOK := start == 0 || !isNameRune(rune(s[start-1]))
		afterOK := end == len(s) || !isNameRune(rune(s[end]))
		if beforeOK && afterOK {
			return true
		}
		i = start + 1
	}
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
