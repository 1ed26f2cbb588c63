// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/AleutianAI/proofmin/services/minimize/collect"
	"github.com/AleutianAI/proofmin/services/minimize/formula"
	"github.com/AleutianAI/proofmin/services/minimize/lemma"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/search"
)

func newRunner() *prover.ExecRunner {
	return prover.NewExecRunner(cfg.ProverPaths(), cfg.Provers.Timeout, appLog)
}

func newRepository() *lemma.Repository {
	return &lemma.Repository{
		LemmasDir: cfg.Dirs.Lemmas,
		ProofsDir: cfg.Dirs.Proofs,
	}
}

func newCollector() *collect.Collector {
	set := prover.NewSet(newRunner(), appLog)
	set.Parallelism = cfg.Collect.Parallelism
	if collectParallelism > 0 {
		set.Parallelism = collectParallelism
	}

	extractor := collect.NewExecExtractor(cfg.Provers.ExtractorPath, appLog)
	extractor.Timeout = cfg.Provers.ExtractTimeout

	return &collect.Collector{
		Repo:      newRepository(),
		Set:       set,
		Extractor: extractor,
		Log:       appLog,
		OutputDir: cfg.Dirs.Output,
	}
}

func newMinimizer() *search.Minimizer {
	offset := cfg.Search.Offset
	if minimizeOffset > 0 {
		offset = minimizeOffset
	}
	candidates := cfg.Search.MaxCandidates
	if minimizeCandidates > 0 {
		candidates = minimizeCandidates
	}

	return &search.Minimizer{
		Repo:          newRepository(),
		Runner:        newRunner(),
		Matcher:       &formula.Matcher{PermutationBound: cfg.Search.PermutationBound},
		Log:           appLog,
		OutputDir:     cfg.Dirs.Output,
		TmpDir:        cfg.Dirs.Tmp,
		TweeProofsDir: cfg.TweeProofsDir(),
		Offset:        offset,
		MaxCandidates: candidates,
	}
}
