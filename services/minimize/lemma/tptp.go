// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lemma

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ====== TPTP FILE PLUMBING ======

// ExtractFormulaBody pulls the formula out of the fof block named
// blockName. Handles both one-line blocks ("fof(n, axiom, f).") and
// blocks whose formula spans following lines until ").".
func ExtractFormulaBody(path, blockName string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if !strings.Contains(line, blockName) {
			continue
		}

		var parts []string
		if strings.Contains(line, ").") {
			body := line
			// Skip the name and role segments.
			if first := strings.Index(body, ","); first >= 0 {
				if second := strings.Index(body[first+1:], ","); second >= 0 {
					body = body[first+1+second+1:]
				}
			}
			if pos := strings.LastIndex(body, ")."); pos >= 0 {
				body = body[:pos]
			}
			parts = append(parts, strings.TrimSpace(body))
		} else {
			for _, next := range lines[i+1:] {
				trimmed := strings.TrimSpace(next)
				if strings.HasSuffix(trimmed, ").") {
					parts = append(parts, strings.TrimSuffix(trimmed, ")."))
					break
				}
				parts = append(parts, trimmed)
			}
		}
		return strings.TrimSpace(strings.Join(parts, " ")), nil
	}

	return "", fmt.Errorf("%w: block %s in %s", ErrNotFound, blockName, path)
}

// ExtractConjecture returns the formula body of the first conjecture
// block in a TPTP file.
func ExtractConjecture(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var parts []string
	inConjecture := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if !inConjecture {
			if strings.HasPrefix(trimmed, "fof") && strings.Contains(trimmed, ", conjecture,") {
				inConjecture = true
				rest := trimmed[strings.Index(trimmed, ", conjecture,")+len(", conjecture,"):]
				if rest = strings.TrimSpace(rest); rest != "" {
					parts = append(parts, rest)
					if strings.HasSuffix(rest, ").") {
						break
					}
				}
			}
			continue
		}
		parts = append(parts, trimmed)
		if strings.HasSuffix(trimmed, ").") {
			break
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoConjecture, path)
	}

	body := strings.TrimSpace(strings.Join(parts, " "))
	body = strings.TrimSpace(strings.TrimSuffix(body, ")."))
	return body, nil
}

var axiomVarRe = regexp.MustCompile(`\bX\d+\b`)

// AppendAsAxiom appends a formula to a TPTP file as a named axiom,
// universally quantifying any free X<digits> variables. Refuter step
// formulas come unquantified; completion lemmas arrive quantified
// already and have no X variables left.
func AppendAsAxiom(path, formulaText, name string) error {
	formulaText = strings.TrimSpace(formulaText)

	seen := make(map[string]bool)
	var vars []string
	for _, v := range axiomVarRe.FindAllString(formulaText, -1) {
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	sort.Strings(vars)

	quantified := formulaText
	if len(vars) > 0 {
		quantified = fmt.Sprintf("! [%s] : (%s)", strings.Join(vars, ", "), formulaText)
	}

	block := fmt.Sprintf("\nfof(%s, axiom,\n%s\n).\n", name, quantified)

	current, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%s\n%s", current, block)), 0o644)
}

var fofBlockRe = regexp.MustCompile(`(?is)^\s*fof\s*\(\s*([^,]+)\s*,\s*([^,]+)\s*,(.*?)\)\s*\.\s*$`)

// PromoteToConjecture rewrites a TPTP file so the named axiom block
// becomes the conjecture. Existing conjecture blocks are removed;
// all other blocks stay untouched.
func PromoteToConjecture(path, rootLemma string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var out []string
	for _, block := range strings.Split(string(content), ").\n") {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		full := trimmed + ").\n"

		cap := fofBlockRe.FindStringSubmatch(full)
		if cap == nil {
			out = append(out, full)
			continue
		}
		name := strings.TrimSpace(cap[1])
		role := strings.ToLower(strings.TrimSpace(cap[2]))

		if strings.Contains(role, "conjecture") {
			continue
		}
		if name == rootLemma && role == "axiom" {
			out = append(out, fmt.Sprintf("fof(%s, conjecture,%s).\n", name, cap[3]))
			continue
		}
		out = append(out, full)
	}

	return os.WriteFile(path, []byte(strings.Join(out, "\n")), 0o644)
}

// TempCopy copies a problem file into tmpDir under a unique name so
// concurrent candidates never clobber each other's working copies.
func TempCopy(inputFile, tmpDir string) (string, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir %s: %w", tmpDir, err)
	}

	content, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", inputFile, err)
	}

	base := filepath.Base(inputFile)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	tmpPath := filepath.Join(tmpDir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext))

	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmpPath, err)
	}
	return tmpPath, nil
}
