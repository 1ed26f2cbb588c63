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
)

// runCollect extracts lemma candidates from a refutation proof in
// every mode and proves each candidate with the prover portfolio.
func runCollect(cmd *cobra.Command, args []string) {
	inputFile, proofFile := args[0], args[1]
	suffix := collect.Suffix(inputFile)

	if err := os.MkdirAll(cfg.Dirs.Output, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	fmt.Printf("Collecting lemmas for %s\n", inputFile)
	c := newCollector()
	if err := c.Collect(context.Background(), inputFile, proofFile, suffix); err != nil {
		log.Fatalf("Collection failed: %v", err)
	}

	summaryFile := filepath.Join(cfg.Dirs.Output, fmt.Sprintf("summary_%s.json", suffix))
	fmt.Printf("Summary written to %s\n", summaryFile)
}

// runShorten rewrites proved history lemmas against their named
// dependencies and re-proves the shortened problems.
func runShorten(cmd *cobra.Command, args []string) {
	summaryFile := args[0]

	fmt.Printf("Shortening history lemmas from %s\n", summaryFile)
	c := newCollector()
	if err := c.ShortenHistories(context.Background(), summaryFile); err != nil {
		log.Fatalf("Shortening failed: %v", err)
	}
	fmt.Println("History lemmas shortened.")
}

// runGroup clusters collected lemmas whose proofs share an axiom set
// modulo variable renaming.
func runGroup(cmd *cobra.Command, args []string) {
	summaryFile := args[0]
	groupsFile := filepath.Join(cfg.Dirs.Output, "structural_groups.txt")

	c := newCollector()
	if err := c.StructuralGroups(summaryFile, groupsFile); err != nil {
		log.Fatalf("Grouping failed: %v", err)
	}
	fmt.Printf("Structural groups written to %s\n", groupsFile)
}
