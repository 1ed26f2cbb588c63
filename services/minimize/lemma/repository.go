// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package lemma manages the on-disk lemma store: TPTP lemma files
// grouped by extraction mode, their stored proofs, and the index of
// lemmas precomputed from completion prover output.
//
// Naming scheme: a lemma file single_lemma_0012.p in the "single"
// subdirectory holds a block named conjecture_0012. Proof files carry
// the winning prover as a suffix, single_lemma_0012_twee.proof.
package lemma

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/proofmin/services/minimize/prover"
)

// Category prefixes for extracted lemmas.
const (
	PrefixSingle   = "single_lemma_"
	PrefixHistory  = "history_lemma_"
	PrefixAbstract = "abstract_lemma_"
)

var proverSuffixes = []string{"_twee", "_vampire", "_egg"}

// Repository resolves lemma formulas and stored proofs on disk.
//
// Thread Safety: read-only over the filesystem; safe for concurrent
// use as long as the directories are not mutated concurrently.
type Repository struct {
	// LemmasDir holds single/, history/ and abstract/ subdirectories
	// of lemma problem files.
	LemmasDir string

	// ProofsDir holds the stored shortest proofs.
	ProofsDir string
}

// DependencyProof is a stored proof loaded for a dependency lemma.
type DependencyProof struct {
	Name   string
	Prover string
	Steps  int
	Text   string
}

// IsAxiomName reports whether a name refers to a base axiom of the
// input problem ("a1", "a2", ...). Abstract lemma names also start
// with 'a' and must not be mistaken for axioms.
func IsAxiomName(name string) bool {
	if len(name) < 2 || name[0] != 'a' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StripProverSuffix removes a trailing _twee, _vampire or _egg from
// a lemma name.
func StripProverSuffix(name string) string {
	for _, suf := range proverSuffixes {
		if strings.HasSuffix(name, suf) {
			return strings.TrimSuffix(name, suf)
		}
	}
	return name
}

// categorySubdir maps a lemma name to its storage subdirectory.
func categorySubdir(name string) (string, error) {
	switch {
	case strings.HasPrefix(name, PrefixSingle):
		return "single", nil
	case strings.HasPrefix(name, PrefixHistory):
		return "history", nil
	case strings.HasPrefix(name, PrefixAbstract):
		return "abstract", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
}

// internalName maps a lemma file name to the TPTP block name used
// inside the file.
func internalName(name string) string {
	for _, prefix := range []string{PrefixSingle, PrefixHistory, PrefixAbstract} {
		if strings.HasPrefix(name, prefix) {
			return "conjecture_" + strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// Load returns the formula body of a lemma.
//
// Description:
//
//	The category subdirectory follows from the name prefix and any
//	prover suffix is stripped first. Inside the file the formula is
//	stored under the internal conjecture_<idx> block name.
//
// Outputs:
//
//	string - The formula body, whitespace-trimmed.
//	error - ErrUnknownType or ErrNotFound (wrapped with detail).
func (r *Repository) Load(name string) (string, error) {
	subdir, err := categorySubdir(name)
	if err != nil {
		return "", err
	}
	name = StripProverSuffix(name)

	path := filepath.Join(r.LemmasDir, subdir, name+".p")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s at %s", ErrNotFound, name, path)
	}

	body, err := ExtractFormulaBody(path, internalName(name))
	if err != nil {
		return "", fmt.Errorf("%w: formula for %s in %s", ErrNotFound, name, path)
	}
	return strings.TrimSpace(body), nil
}

// SelectActual resolves a bare lemma name to the stored proof variant
// that actually exists, returning the proof file stem including the
// prover suffix (e.g. "history_lemma_0047_twee").
//
// Built-in axioms ("a...") and conjecture names resolve to themselves.
func (r *Repository) SelectActual(name string) (string, bool) {
	if IsAxiomName(name) || strings.HasPrefix(name, "conjecture_") {
		return name, true
	}

	for _, variant := range []string{"history", "single", "abstract"} {
		base := name
		if !strings.HasPrefix(name, variant) {
			base = variant + "_" + name
		}
		for _, suf := range []string{"_twee.proof", "_vampire.proof"} {
			file := base + suf
			if _, err := os.Stat(filepath.Join(r.ProofsDir, file)); err == nil {
				return strings.TrimSuffix(file, ".proof"), true
			}
		}
	}
	return "", false
}

// LoadDependencyProofs loads the stored proof of every dependency and
// counts its steps with the prover that produced it.
func (r *Repository) LoadDependencyProofs(deps []string) ([]DependencyProof, error) {
	result := make([]DependencyProof, 0, len(deps))

	for _, dep := range deps {
		stem, ok := r.SelectActual(dep)
		if !ok {
			return nil, fmt.Errorf("%w: dependency %s", ErrNoProofFile, dep)
		}

		path := filepath.Join(r.ProofsDir, stem+".proof")
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read proof %s: %w", path, err)
		}

		proverName := stem
		if cut := strings.LastIndex(stem, "_"); cut >= 0 {
			proverName = stem[cut+1:]
		}

		result = append(result, DependencyProof{
			Name:   dep,
			Prover: proverName,
			Steps:  prover.ProofLength(proverName, string(text)),
			Text:   string(text),
		})
	}

	return result, nil
}
