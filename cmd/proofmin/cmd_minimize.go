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

	"github.com/spf13/cobra"
)

// runMinimize searches the stored lemma certificates for the smallest
// annotated proof of the problem's conjecture.
func runMinimize(cmd *cobra.Command, args []string) {
	inputFile, vampireFile, summaryFile := args[0], args[1], args[2]

	fmt.Printf("Minimizing proof for %s\n", inputFile)
	m := newMinimizer()
	res, err := m.Minimize(context.Background(), inputFile, vampireFile, summaryFile)
	if err != nil {
		log.Fatalf("Minimization failed: %v", err)
	}

	fmt.Printf("Root lemma:      %s\n", res.RootLemma)
	if res.HistoryLemma != "" {
		fmt.Printf("History lemma:   %s\n", res.HistoryLemma)
	}
	fmt.Printf("Steps total:     %d (refutation had %d)\n", res.StepsTotal, res.InitialSteps)
	fmt.Printf("Lemmas involved: %d\n", res.LemmaCount)
	fmt.Printf("Dag:             %s\n", res.DagFile)
	fmt.Printf("Lemmas:          %s\n", res.LemmasFile)
	fmt.Printf("Proof:           %s\n", res.ProofFile)
}
