// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/proofmin/services/minimize/collect"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

// runRefute runs the refutation prover on a problem file and stores
// its annotated proof. When the refutation argues backwards from the
// negated conjecture, a reoriented forward variant is written next to
// it for the extraction tooling.
func runRefute(cmd *cobra.Command, args []string) {
	inputFile := args[0]
	suffix := collect.Suffix(inputFile)

	if err := os.MkdirAll(cfg.Dirs.Output, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	fmt.Printf("Refuting %s\n", inputFile)
	runner := newRunner()
	out, err := runner.Prove(context.Background(), prover.ProverVampire, inputFile)
	if err != nil {
		log.Fatalf("Refutation prover failed: %v", err)
	}
	if !prover.IsTheorem(out) {
		log.Fatalf("No refutation found for %s", inputFile)
	}

	proofFile := filepath.Join(cfg.Dirs.Output, fmt.Sprintf("vampire_proof_%s.out", suffix))
	if err := os.WriteFile(proofFile, []byte(out), 0o644); err != nil {
		log.Fatalf("Failed to write proof file: %v", err)
	}
	fmt.Printf("Proof written to %s\n", proofFile)

	annotated := steps.ParseAnnotated(out)
	if !steps.NeedsTurnaround(annotated) {
		return
	}

	forward := steps.TurnAround(annotated)
	forwardFile := filepath.Join(cfg.Dirs.Output, fmt.Sprintf("vampire_proof_%s_forward.out", suffix))
	if err := os.WriteFile(forwardFile, []byte(steps.FormatAnnotated(forward)), 0o644); err != nil {
		log.Fatalf("Failed to write forward proof file: %v", err)
	}
	fmt.Printf("Forward-oriented proof written to %s\n", forwardFile)
}
