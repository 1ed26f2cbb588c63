// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/proofmin/pkg/logging"
)

// AttemptsSubdir is where every per-prover attempt proof is stored
// inside a proof output directory.
const AttemptsSubdir = "attempts"

// ====== TYPES ======

// Attempt is one prover's successful output for a problem file.
type Attempt struct {
	Prover string
	Proof  string
}

// Best is the shortest proof found for a lemma group.
type Best struct {
	// Stem is the file stem of the winning problem variant.
	Stem string

	Prover string
	Proof  string
	Length int
}

// Set tries multiple provers on lemma files and keeps the shortest
// proof per lemma.
type Set struct {
	runner Runner
	log    *logging.Logger

	// Parallelism bounds how many lemma groups are proved at once.
	// Zero or negative means sequential.
	Parallelism int
}

// NewSet wraps a runner with proof selection.
func NewSet(runner Runner, log *logging.Logger) *Set {
	if log == nil {
		log = logging.Default()
	}
	return &Set{runner: runner, log: log}
}

// ====== OPERATIONS ======

// TryProvers runs every requested prover on a problem file and
// collects the outputs. A saveDir, when non-empty, receives each
// proof as <stem>_<prover>.proof.
func (s *Set) TryProvers(ctx context.Context, lemmaFile string, provers []string, saveDir string) []Attempt {
	stem := fileStem(lemmaFile)
	var attempts []Attempt

	for _, p := range provers {
		proof, err := s.runner.Prove(ctx, p, lemmaFile)
		if err != nil {
			s.log.Info("prover attempt failed",
				"prover", p,
				"file", lemmaFile,
				"error", err.Error())
			continue
		}

		if saveDir != "" {
			out := filepath.Join(saveDir, fmt.Sprintf("%s_%s.proof", stem, p))
			if werr := os.WriteFile(out, []byte(proof), 0o644); werr != nil {
				s.log.Warn("cannot save proof", "path", out, "error", werr.Error())
			}
		}

		if p != ProverEgg && !IsTheorem(proof) {
			s.log.Info("non-theorem status",
				"prover", p,
				"file", lemmaFile,
				"status", statusLine(proof))
		}

		attempts = append(attempts, Attempt{Prover: p, Proof: proof})
	}

	return attempts
}

// ProveLemmas proves each lemma group and stores the shortest proof.
//
// Description:
//
//	Problem files are grouped by the trailing digits of their stem,
//	so variants of one lemma (different axiom selections) compete
//	within a group. Every prover runs on every variant; the shortest
//	proof wins, with completion proofs preferred over refutation
//	proofs on ties. Non-theorem outputs rank with the sentinel
//	length, so they only win when nothing proves the lemma. The
//	winning proof is written to outDir as <stem>_<prover>.proof.
//
// Outputs:
//
//	map[int]Best - Lemma index to winning proof.
//	error - Non-nil when outDir cannot be prepared.
func (s *Set) ProveLemmas(ctx context.Context, lemmaFiles []string, provers []string, outDir string) (map[int]Best, error) {
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clear proof dir %s: %w", outDir, err)
	}
	perProver := filepath.Join(outDir, AttemptsSubdir)
	if err := os.MkdirAll(perProver, 0o755); err != nil {
		return nil, fmt.Errorf("create proof dir %s: %w", outDir, err)
	}

	groups := make(map[int][]string)
	for _, f := range lemmaFiles {
		groups[trailingIndex(fileStem(f))] = append(groups[trailingIndex(fileStem(f))], f)
	}

	indices := make([]int, 0, len(groups))
	for n := range groups {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	var (
		mu      sync.Mutex
		results = make(map[int]Best)
	)
	grp, gctx := errgroup.WithContext(ctx)
	if s.Parallelism > 1 {
		grp.SetLimit(s.Parallelism)
	} else {
		grp.SetLimit(1)
	}

	for _, n := range indices {
		n := n
		grp.Go(func() error {
			s.log.Info("proving lemma", "index", n, "variants", len(groups[n]))

			var best *Best
			for _, file := range groups[n] {
				for _, att := range s.TryProvers(gctx, file, provers, perProver) {
					length := RankedLength(att.Prover, att.Proof)
					s.log.Info("proof found",
						"prover", att.Prover,
						"file", file,
						"length", length)

					cand := Best{Stem: fileStem(file), Prover: att.Prover, Proof: att.Proof, Length: length}
					if best == nil || better(cand, *best) {
						c := cand
						best = &c
					}
				}
			}

			if best == nil {
				s.log.Warn("no successful proof", "index", n)
				return nil
			}

			out := filepath.Join(outDir, fmt.Sprintf("%s_%s.proof", best.Stem, best.Prover))
			if err := os.WriteFile(out, []byte(best.Proof), 0o644); err != nil {
				s.log.Error("cannot save shortest proof", "path", out, "error", err.Error())
			} else {
				s.log.Info("shortest proof saved",
					"index", n,
					"prover", best.Prover,
					"length", best.Length,
					"path", out)
			}

			mu.Lock()
			results[n] = *best
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// better orders candidates by length, breaking ties in favor of
// completion proofs.
func better(a, b Best) bool {
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	return proverRank(a.Prover) < proverRank(b.Prover)
}

func proverRank(p string) int {
	switch p {
	case ProverTwee:
		return 0
	case ProverVampire:
		return 1
	default:
		return 2
	}
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// trailingIndex extracts the numeric suffix of a lemma file stem,
// or 0 when there is none.
func trailingIndex(stem string) int {
	i := len(stem)
	for i > 0 && stem[i-1] >= '0' && stem[i-1] <= '9' {
		i--
	}
	if i == len(stem) {
		return 0
	}
	n := 0
	for _, c := range stem[i:] {
		n = n*10 + int(c-'0')
	}
	return n
}
