// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package collect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Entry records the winning proof of one lemma index in the summary
// index shared between the collection and minimization phases.
type Entry struct {
	// Stem is the lemma file stem, e.g. "single_lemma_0012".
	Stem   string
	Prover string
	Proof  string
}

// Summary maps lemma index to its winning proof. On disk it is a JSON
// object keyed by the decimal index, each value a [stem, prover,
// proof] triple.
type Summary map[int]Entry

// MarshalJSON renders the on-disk triple format.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := make(map[string][3]string, len(s))
	for n, e := range s {
		out[strconv.Itoa(n)] = [3]string{e.Stem, e.Prover, e.Proof}
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalJSON parses the on-disk triple format.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw map[string][3]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Summary, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("summary key %q is not an index: %w", k, err)
		}
		out[n] = Entry{Stem: v[0], Prover: v[1], Proof: v[2]}
	}
	*s = out
	return nil
}

// LoadSummary reads a summary index file.
func LoadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return s, nil
}

// Save writes the summary index.
func (s Summary) Save(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// MaxIndex returns the highest lemma index, or false when empty.
func (s Summary) MaxIndex() (int, bool) {
	found := false
	max := 0
	for n := range s {
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found
}

// Suffix derives the artifact suffix for an input problem file from
// its file stem, so every phase names its outputs consistently.
func Suffix(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
