// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package collect implements the collection side of the pipeline: it
// extracts lemma candidates from a refutation proof, races provers
// over them, maintains the summary index, rewrites history lemma
// files against abstract formulas, and groups proofs by the axioms
// they share.
package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/lemma"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
)

// Modes are the lemma extraction flavors, in extraction order.
var Modes = []string{"single", "history", "abstract"}

// Collector drives the collection phases around a lemma store.
type Collector struct {
	Repo      *lemma.Repository
	Set       *prover.Set
	Extractor Extractor
	Log       *logging.Logger

	// OutputDir receives summary and group artifacts.
	OutputDir string

	// Provers used during collection. Defaults to vampire and twee;
	// the shortening phase adds egg.
	Provers []string
}

func (c *Collector) log() *logging.Logger {
	if c.Log == nil {
		c.Log = logging.Default()
	}
	return c.Log
}

func (c *Collector) provers() []string {
	if len(c.Provers) > 0 {
		return c.Provers
	}
	return []string{prover.ProverVampire, prover.ProverTwee}
}

// ====== PHASE 1: COLLECTION ======

// Collect extracts lemma candidates from a refutation proof in every
// mode, proves them, and writes the summary index.
//
// Description:
//
//	The lemma store is cleaned first. For each mode the extractor
//	writes candidate .p files into the store root; they are moved
//	into the mode subdirectory. All candidates are then proved, the
//	winning proofs land in the proofs directory, and the summary is
//	saved as summary_<suffix>.json in the output directory.
func (c *Collector) Collect(ctx context.Context, inputFile, proofFile, suffix string) error {
	log := c.log()
	log.Info("collection started", "input", inputFile, "proof", proofFile)

	if err := c.cleanStoreRoot(); err != nil {
		return err
	}

	var lemmaFiles []string
	for _, mode := range Modes {
		modeDir := filepath.Join(c.Repo.LemmasDir, mode)
		if err := os.RemoveAll(modeDir); err != nil {
			return fmt.Errorf("clean mode dir %s: %w", modeDir, err)
		}
		if err := os.MkdirAll(modeDir, 0o755); err != nil {
			return fmt.Errorf("create mode dir %s: %w", modeDir, err)
		}

		if err := c.Extractor.Extract(ctx, proofFile, mode); err != nil {
			return fmt.Errorf("extract mode %s: %w", mode, err)
		}

		moved, err := c.moveExtracted(modeDir)
		if err != nil {
			return err
		}
		lemmaFiles = append(lemmaFiles, moved...)
	}

	results, err := c.Set.ProveLemmas(ctx, lemmaFiles, c.provers(), c.Repo.ProofsDir)
	if err != nil {
		return err
	}

	summary := make(Summary, len(results))
	indices := make([]int, 0, len(results))
	for n := range results {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	for _, n := range indices {
		best := results[n]
		log.Info("lemma proved",
			"index", n,
			"stem", best.Stem,
			"prover", best.Prover,
			"steps", prover.ProofLength(best.Prover, best.Proof))
		summary[n] = Entry{Stem: best.Stem, Prover: best.Prover, Proof: best.Proof}
	}

	summaryFile := filepath.Join(c.OutputDir, fmt.Sprintf("summary_%s.json", suffix))
	if err := summary.Save(summaryFile); err != nil {
		return fmt.Errorf("save summary %s: %w", summaryFile, err)
	}
	log.Info("collection finished", "lemmas", len(summary), "summary", summaryFile)
	return nil
}

// cleanStoreRoot removes loose files at the lemma store root, keeping
// the mode subdirectories.
func (c *Collector) cleanStoreRoot() error {
	entries, err := os.ReadDir(c.Repo.LemmasDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(c.Repo.LemmasDir, 0o755)
		}
		return fmt.Errorf("read lemma store %s: %w", c.Repo.LemmasDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.Repo.LemmasDir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale lemma file: %w", err)
		}
	}
	return nil
}

// moveExtracted moves freshly extracted .p files from the store root
// into the mode directory.
func (c *Collector) moveExtracted(modeDir string) ([]string, error) {
	entries, err := os.ReadDir(c.Repo.LemmasDir)
	if err != nil {
		return nil, fmt.Errorf("read lemma store %s: %w", c.Repo.LemmasDir, err)
	}

	var moved []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".p" {
			continue
		}
		src := filepath.Join(c.Repo.LemmasDir, entry.Name())
		dst := filepath.Join(modeDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("move lemma file %s: %w", src, err)
		}
		moved = append(moved, dst)
	}
	return moved, nil
}

// ====== PHASE 2: HISTORY SHORTENING ======

var historyBlockRe = regexp.MustCompile(`(?s)fof\(lemma_(\d{4}),\s*lemma\s*,.*?\)\s*\.`)

// ShortenHistories rewrites inline lemma blocks inside history files
// with the generalized abstract formulas and re-proves the updated
// files, replacing their stored proofs.
func (c *Collector) ShortenHistories(ctx context.Context, summaryFile string) error {
	log := c.log()
	summary, err := LoadSummary(summaryFile)
	if err != nil {
		return err
	}

	abstractByIndex := make(map[int]string)
	var historyIndices []int
	for n, entry := range summary {
		switch {
		case strings.HasPrefix(entry.Stem, lemma.PrefixAbstract):
			name := fmt.Sprintf("%s%04d", lemma.PrefixAbstract, n)
			f, err := c.Repo.Load(name)
			if err != nil {
				log.Warn("missing abstract lemma", "lemma", name, "error", err.Error())
				continue
			}
			abstractByIndex[n] = f
		case strings.HasPrefix(entry.Stem, lemma.PrefixHistory):
			historyIndices = append(historyIndices, n)
		}
	}
	sort.Ints(historyIndices)
	log.Info("history files to update", "count", len(historyIndices))

	var updated []string
	for _, n := range historyIndices {
		path := filepath.Join(c.Repo.LemmasDir, "history",
			fmt.Sprintf("%s%04d.p", lemma.PrefixHistory, n))
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read history file %s: %w", path, err)
		}

		replaced := false
		rewritten := historyBlockRe.ReplaceAllStringFunc(string(content), func(block string) string {
			idx, err := strconv.Atoi(historyBlockRe.FindStringSubmatch(block)[1])
			if err != nil {
				return block
			}
			formula, ok := abstractByIndex[idx]
			if !ok {
				return block
			}
			replaced = true
			log.Info("replacing inline lemma", "lemma", idx, "history", n)
			return fmt.Sprintf("fof(lemma_%04d, lemma,\n    %s\n).", idx, formula)
		})

		if replaced {
			if err := os.WriteFile(path, []byte(rewritten), 0o644); err != nil {
				return fmt.Errorf("write history file %s: %w", path, err)
			}
		}
		updated = append(updated, path)
	}

	if len(updated) == 0 {
		log.Info("no history files to re-prove")
		return nil
	}

	tmpOut, err := os.MkdirTemp("", "proofmin_shorten_*")
	if err != nil {
		return fmt.Errorf("create shortening workdir: %w", err)
	}
	defer os.RemoveAll(tmpOut)

	provers := append(c.provers(), prover.ProverEgg)
	results, err := c.Set.ProveLemmas(ctx, updated, provers, tmpOut)
	if err != nil {
		return err
	}

	attemptsDir := filepath.Join(c.Repo.ProofsDir, prover.AttemptsSubdir)
	if err := os.MkdirAll(attemptsDir, 0o755); err != nil {
		return fmt.Errorf("create attempts dir: %w", err)
	}

	for n, best := range results {
		log.Info("history lemma re-proved",
			"index", n,
			"prover", best.Prover,
			"steps", prover.ProofLength(best.Prover, best.Proof))

		dst := filepath.Join(c.Repo.ProofsDir,
			fmt.Sprintf("%s_%s.proof", best.Stem, best.Prover))
		if err := os.WriteFile(dst, []byte(best.Proof), 0o644); err != nil {
			return fmt.Errorf("write proof %s: %w", dst, err)
		}

		// Refresh the completion attempt so the precomputed index
		// reflects the updated file.
		tweeAttempt := filepath.Join(tmpOut, prover.AttemptsSubdir,
			fmt.Sprintf("%s_twee.proof", best.Stem))
		if data, err := os.ReadFile(tweeAttempt); err == nil {
			target := filepath.Join(attemptsDir, fmt.Sprintf("%s_twee.proof", best.Stem))
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("write attempt %s: %w", target, err)
			}
		}
	}
	return nil
}

// ====== PHASE 3: STRUCTURAL GROUPS ======

var (
	tweeAxiomRe    = regexp.MustCompile(`(?m)^Axiom\s+\d+\s*\(.*?\):\s*(.*?)\.`)
	vampireAxiomRe = regexp.MustCompile(`(?m)^\d*\.?\s*! \[.*?\] : (.*?) \[input\]`)
	axiomDigitsRe  = regexp.MustCompile(`X\d+`)
)

// StructuralGroups groups the proved lemmas by the set of axioms
// their proofs consume and writes a report.
func (c *Collector) StructuralGroups(summaryFile, groupsFile string) error {
	log := c.log()
	summary, err := LoadSummary(summaryFile)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		log.Info("summary is empty, nothing to group")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("=== Structural Groups ===\n")

	groups := make(map[string][]int)
	axiomsByKey := make(map[string][]string)
	for n, entry := range summary {
		proofPath := filepath.Join(c.Repo.ProofsDir,
			fmt.Sprintf("%s_%s.proof", entry.Stem, entry.Prover))
		text := entry.Proof
		if data, err := os.ReadFile(proofPath); err == nil {
			text = string(data)
		}

		axioms := extractAxioms(text)
		if len(axioms) == 0 {
			fmt.Fprintf(&sb, "[WARN] lemma_%04d has no recognizable axioms.\n", n)
			continue
		}

		sort.Strings(axioms)
		key := strings.Join(axioms, "|")
		axiomsByKey[key] = axioms
		groups[key] = append(groups[key], n)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)
		fmt.Fprintf(&sb, "\n[GROUP] Lemmas %v\n", members)
		sb.WriteString("  Shared axioms:\n")
		for _, ax := range axiomsByKey[key] {
			fmt.Fprintf(&sb, "    - %s\n", ax)
		}
	}

	if err := os.WriteFile(groupsFile, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("save groups %s: %w", groupsFile, err)
	}
	log.Info("structural analysis complete", "groups", groupsFile)
	return nil
}

// extractAxioms collects normalized axiom formulas from completion or
// refutation proof text.
func extractAxioms(proof string) []string {
	set := make(map[string]bool)
	for _, cap := range tweeAxiomRe.FindAllStringSubmatch(proof, -1) {
		set[normalizeAxiom(cap[1])] = true
	}
	for _, cap := range vampireAxiomRe.FindAllStringSubmatch(proof, -1) {
		set[normalizeAxiom(cap[1])] = true
	}

	axioms := make([]string, 0, len(set))
	for ax := range set {
		axioms = append(axioms, ax)
	}
	return axioms
}

// normalizeAxiom collapses variable numbering and whitespace so
// structurally identical axioms compare equal.
func normalizeAxiom(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = axiomDigitsRe.ReplaceAllString(s, "X")
	s = strings.ReplaceAll(s, "[input]", "")
	return strings.TrimSpace(s)
}
