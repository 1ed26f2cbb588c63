// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/config"
)

// --- Global Command Variables ---
var (
	configPath         string
	collectParallelism int // CLI override for collect.parallelism
	minimizeOffset     int // CLI override for search.offset
	minimizeCandidates int // CLI override for search.max_candidates

	cfg    config.Config
	appLog *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "proofmin",
		Short: "A cli to shrink refutation proofs into minimal lemma certificates",
		Long: `Proofmin drives the lemma pipeline for equational problems:
extract lemma candidates from a refutation proof, prove each one with
a portfolio of provers, and search for the smallest annotated proof
of the original conjecture built from the stored certificates.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				log.Fatalf("Error loading configuration: %v", err)
			}
			appLog = cfg.Logger("proofmin")
		},
	}

	// --- Collection ---
	collectCmd = &cobra.Command{
		Use:   "collect [input.p] [proof.out]",
		Short: "Extract lemma candidates from a refutation proof and prove each one",
		Args:  cobra.ExactArgs(2),
		Run:   runCollect, // Defined in cmd_collect.go
	}
	shortenCmd = &cobra.Command{
		Use:   "shorten [summary.json]",
		Short: "Rewrite history lemmas against their named dependencies and re-prove them",
		Args:  cobra.ExactArgs(1),
		Run:   runShorten, // Defined in cmd_collect.go
	}
	groupCmd = &cobra.Command{
		Use:   "group [summary.json]",
		Short: "Group collected lemmas that share an axiom set modulo variable renaming",
		Args:  cobra.ExactArgs(1),
		Run:   runGroup, // Defined in cmd_collect.go
	}

	// --- Minimization ---
	minimizeCmd = &cobra.Command{
		Use:   "minimize [input.p] [vampire_proof.out] [summary.json]",
		Short: "Search for the smallest annotated proof built from stored lemmas",
		Args:  cobra.ExactArgs(3),
		Run:   runMinimize, // Defined in cmd_minimize.go
	}

	// --- Refuter ---
	refuteCmd = &cobra.Command{
		Use:   "run-refuter [input.p]",
		Short: "Run the refutation prover on a problem and store its annotated proof",
		Args:  cobra.ExactArgs(1),
		Run:   runRefute, // Defined in cmd_refute.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "proofmin.yaml",
		"Path to the configuration file")

	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().IntVar(&collectParallelism, "parallelism", 0,
		"Number of lemma groups proved concurrently (0 uses the configured value)")
	rootCmd.AddCommand(shortenCmd)
	rootCmd.AddCommand(groupCmd)

	rootCmd.AddCommand(minimizeCmd)
	minimizeCmd.Flags().IntVar(&minimizeOffset, "offset", 0,
		"Distance below the final refutation step where the candidate scan starts (0 uses the configured value)")
	minimizeCmd.Flags().IntVar(&minimizeCandidates, "max-candidates", 0,
		"Number of root candidates to evaluate (0 uses the configured value)")

	rootCmd.AddCommand(refuteCmd)
}
