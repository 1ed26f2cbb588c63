// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prover

import "strings"

// NonTheoremLength is the sentinel proof length assigned to outputs
// whose status is satisfiable, counter-satisfiable, or unknown. It
// keeps such outputs comparable but never preferable to a real proof.
const NonTheoremLength = 1000

// vampireCountKeywords are the inference tags counted as proof steps
// in refutation prover output.
var vampireCountKeywords = []string{
	"demodulation",
	"superposition",
	"resolution",
	"trivial inequality removal",
}

// ProofLength counts the reasoning steps in a proof, using the
// counting scheme of the prover that produced it. Unknown provers
// fall back to raw line count.
func ProofLength(prover, proof string) int {
	switch prover {
	case ProverVampire:
		return proofLengthVampire(proof)
	case ProverTwee:
		return proofLengthTwee(proof)
	case ProverEgg:
		return proofLengthEgg(proof)
	default:
		return len(strings.Split(strings.TrimRight(proof, "\n"), "\n"))
	}
}

func proofLengthVampire(proof string) int {
	count := 0
	for _, raw := range strings.Split(proof, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if pos := strings.Index(line, "."); pos >= 0 {
			line = strings.TrimSpace(line[pos+1:])
		}
		if !strings.Contains(line, "[") {
			continue
		}
		for _, kw := range vampireCountKeywords {
			if strings.Contains(line, kw) {
				count++
				break
			}
		}
	}
	return count
}

// proofLengthTwee counts rewrite steps. The proof section follows a
// "Proof:" marker and each step is a "= { by ... }" justification.
func proofLengthTwee(proof string) int {
	count := 0
	inProof := false
	for _, raw := range strings.Split(proof, "\n") {
		line := strings.TrimLeft(raw, " \t")
		if strings.HasPrefix(line, "Proof:") {
			inProof = true
			continue
		}
		if inProof && strings.Contains(line, "= { by") {
			count++
		}
	}
	return count
}

func proofLengthEgg(proof string) int {
	count := 0
	for _, raw := range strings.Split(proof, "\n") {
		line := strings.TrimLeft(raw, " \t")
		if strings.HasPrefix(line, "fof(") &&
			strings.Contains(line, ", plain") &&
			strings.Contains(line, "inference(") {
			count++
		}
	}
	return count
}

// statusLine finds the SZS status (or RESULT) line of a proof,
// lowercased, or "" when none is present.
func statusLine(proof string) string {
	for _, line := range strings.Split(proof, "\n") {
		if strings.Contains(line, "SZS status") || strings.Contains(line, "RESULT:") {
			return strings.ToLower(line)
		}
	}
	return ""
}

// IsTheorem reports whether a proof's status line claims a theorem.
func IsTheorem(proof string) bool {
	s := statusLine(proof)
	return strings.Contains(s, "theorem") || strings.Contains(s, "unsatisfiable")
}

// isNonTheorem reports whether the status marks the conjecture as
// satisfiable, counter-satisfiable, or undecided.
func isNonTheorem(status string) bool {
	if strings.Contains(status, "countersatisfiable") ||
		strings.Contains(status, "counter-satisfiable") ||
		strings.Contains(status, "counter_satisfiable") ||
		strings.Contains(status, "unknown") {
		return true
	}
	return strings.Contains(status, "satisfiable") && !strings.Contains(status, "unsatisfiable")
}

// RankedLength is ProofLength with the non-theorem sentinel applied.
func RankedLength(prover, proof string) int {
	if isNonTheorem(statusLine(proof)) {
		return NonTheoremLength
	}
	return ProofLength(prover, proof)
}
