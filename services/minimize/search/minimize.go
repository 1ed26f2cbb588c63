// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package search picks the best root/history lemma combination for a
// refuted problem and assembles an annotated minimal proof from the
// stored lemma certificates.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/AleutianAI/proofmin/pkg/logging"
	"github.com/AleutianAI/proofmin/services/minimize/collect"
	"github.com/AleutianAI/proofmin/services/minimize/dag"
	"github.com/AleutianAI/proofmin/services/minimize/formula"
	"github.com/AleutianAI/proofmin/services/minimize/lemma"
	"github.com/AleutianAI/proofmin/services/minimize/prover"
	"github.com/AleutianAI/proofmin/services/minimize/steps"
)

// ====== CONFIG ======

const (
	// DefaultOffset is how far below the newest summary index the
	// candidate scan starts.
	DefaultOffset = 4

	// DefaultMaxCandidates caps how many root lemmas are evaluated.
	DefaultMaxCandidates = 4
)

// skolemConstRe matches Skolem constants introduced by the refuter.
// Lemmas mentioning them are not reusable statements.
var skolemConstRe = regexp.MustCompile(`\bsK\d+\b`)

// Minimizer searches for the smallest annotated proof of a refuted
// problem built from stored lemma certificates.
type Minimizer struct {
	Repo    *lemma.Repository
	Runner  prover.Runner
	Matcher *formula.Matcher
	Log     *logging.Logger

	// OutputDir receives the dag, lemma and proof artifacts.
	OutputDir string

	// TmpDir holds the augmented problem copies fed to the provers.
	TmpDir string

	// TweeProofsDir holds the per-lemma completion prover attempts
	// used to recover dependency structure.
	TweeProofsDir string

	// Offset and MaxCandidates override the scan defaults when
	// positive.
	Offset        int
	MaxCandidates int
}

// Result describes the winning combination and where its artifacts
// were written.
type Result struct {
	RootLemma    string
	HistoryLemma string
	StepsTotal   int
	LemmaCount   int
	InitialSteps int

	DagFile    string
	LemmasFile string
	ProofFile  string
}

func (m *Minimizer) log() *logging.Logger {
	if m.Log != nil {
		return m.Log
	}
	return logging.Default()
}

func (m *Minimizer) startOffset() int {
	if m.Offset > 0 {
		return m.Offset
	}
	return DefaultOffset
}

func (m *Minimizer) maxCandidates() int {
	if m.MaxCandidates > 0 {
		return m.MaxCandidates
	}
	return DefaultMaxCandidates
}

// localResult is the best combination found for one root lemma.
type localResult struct {
	stepsTotal int
	history    string
	annotated  string
}

// candidateBest is the best combination seen across all evaluated
// roots, together with its persistable artifacts.
type candidateBest struct {
	lemmaCount int
	local      localResult
	root       string
	dagText    string
	lemmasText string
}

// searchEnv carries the per-root context shared by the candidate
// evaluations.
type searchEnv struct {
	inputFile    string
	inputContent string
	vampireFile  string
	g            dag.Graph
	root         string
	rootFormula  string
}

// ====== MINIMIZE ======

// Minimize scans summary entries below the newest index for root
// lemma candidates, evaluates each against its history and single
// lemma dependencies, and persists the combination with the fewest
// total proof steps.
//
// Outputs:
//
//	*Result - The winning combination.
//	error - ErrEmptySummary or ErrNoCandidates when nothing works.
func (m *Minimizer) Minimize(ctx context.Context, inputFile, vampireFile, summaryFile string) (*Result, error) {
	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", inputFile, err)
	}
	inputContent := string(raw)
	suffix := collect.Suffix(inputFile)

	summary, err := collect.LoadSummary(summaryFile)
	if err != nil {
		return nil, err
	}
	maxKey, ok := summary.MaxIndex()
	if !ok {
		return nil, ErrEmptySummary
	}

	pre, err := m.Repo.Precompute(m.TweeProofsDir, m.log())
	if err != nil {
		return nil, err
	}

	var best *candidateBest

	accepted := 0
	for off := m.startOffset(); accepted < m.maxCandidates() && off < maxKey; off++ {
		entry, ok := summary[maxKey-off]
		if !ok {
			continue
		}
		root := entry.Stem

		rootFormula, err := m.Repo.Load(root)
		if err != nil {
			m.log().Warn("missing root lemma, skipping candidate", "root", root, "error", err)
			continue
		}
		if skolemConstRe.MatchString(rootFormula) {
			m.log().Debug("skipping root with skolem constants",
				"root", root, "formula", rootFormula)
			continue
		}
		accepted++
		m.log().Info("evaluating root lemma", "root", root)

		g, lemmas, err := dag.Build(root, pre, m.Matcher, m.log())
		if err != nil {
			return nil, err
		}

		env := &searchEnv{
			inputFile:    inputFile,
			inputContent: inputContent,
			vampireFile:  vampireFile,
			g:            g,
			root:         root,
			rootFormula:  rootFormula,
		}

		local, err := m.evaluateRoot(ctx, env)
		if err != nil {
			return nil, err
		}
		if local == nil {
			continue
		}
		count := nodeCount(g)
		// Steps dominate the ordering, the dag size breaks ties.
		if best == nil || local.stepsTotal < best.local.stepsTotal ||
			(local.stepsTotal == best.local.stepsTotal && count < best.lemmaCount) {
			best = &candidateBest{
				lemmaCount: count,
				local:      *local,
				root:       root,
				dagText:    dag.Format(g),
				lemmasText: formatLemmas(lemmas),
			}
		}
	}

	if best == nil {
		return nil, ErrNoCandidates
	}

	initialSteps := 0
	if vampContent, err := os.ReadFile(vampireFile); err == nil {
		initialSteps = prover.ProofLength(prover.ProverVampire, string(vampContent))
	}

	res := &Result{
		RootLemma:    best.root,
		HistoryLemma: best.local.history,
		StepsTotal:   best.local.stepsTotal,
		LemmaCount:   best.lemmaCount,
		InitialSteps: initialSteps,
		DagFile:      filepath.Join(m.OutputDir, "dag_"+suffix+".txt"),
		LemmasFile:   filepath.Join(m.OutputDir, "lemmas_"+suffix+".p"),
		ProofFile:    filepath.Join(m.OutputDir, "proof_"+suffix+".out"),
	}
	if err := os.MkdirAll(m.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.DagFile, []byte(best.dagText), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.LemmasFile, []byte(best.lemmasText), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.ProofFile, []byte(best.local.annotated), 0o644); err != nil {
		return nil, err
	}

	m.log().Info("best combination found",
		"root", res.RootLemma,
		"history", res.HistoryLemma,
		"steps_total", res.StepsTotal,
		"initial_steps", res.InitialSteps)
	return res, nil
}

// evaluateRoot tries every candidate combination for one root lemma
// and returns the local best, or nil when nothing worked.
func (m *Minimizer) evaluateRoot(ctx context.Context, env *searchEnv) (*localResult, error) {
	rootIndex := lastSegment(env.root)

	var histories []string
	for _, k := range env.g.Parents() {
		if strings.HasPrefix(k, lemma.PrefixHistory) && lastSegment(k) < rootIndex {
			histories = append(histories, k)
		}
	}

	if len(histories) > 0 {
		var best *localResult
		for _, h := range histories {
			if h == env.root {
				continue
			}
			m.log().Info("trying history candidate", "candidate", h, "total", len(histories))
			local, err := m.evalHistory(ctx, env, h)
			if err != nil {
				return nil, err
			}
			if local != nil && (best == nil || local.stepsTotal < best.stepsTotal) {
				best = local
			}
		}
		return best, nil
	}

	var singles []string
	for _, k := range env.g.Parents() {
		if k == env.root {
			continue
		}
		if strings.HasPrefix(k, lemma.PrefixSingle) || strings.HasPrefix(k, lemma.PrefixAbstract) {
			singles = append(singles, k)
		}
	}

	if len(singles) == 0 {
		for _, d := range env.g.Children(env.root) {
			if strings.HasPrefix(d, lemma.PrefixHistory) {
				m.log().Warn("root depends on history lemma, refusing root-only proof",
					"root", env.root, "dependency", d)
				return nil, nil
			}
		}
		m.log().Info("no history or single lemmas found, falling back to root-only proof",
			"root", env.root)
		return m.evalRootOnly(ctx, env)
	}

	m.log().Info("no history lemmas found, falling back to single lemmas",
		"root", env.root, "candidates", len(singles))
	var best *localResult
	for _, c := range singles {
		var (
			local *localResult
			err   error
		)
		if strings.HasPrefix(c, lemma.PrefixAbstract) {
			local, err = m.evalAbstract(ctx, env, c)
		} else {
			local, err = m.evalSingle(ctx, env, c)
		}
		if err != nil {
			return nil, err
		}
		if local != nil && (best == nil || local.stepsTotal < best.stepsTotal) {
			best = local
		}
	}
	return best, nil
}

// ====== CANDIDATE EVALUATION ======

// evalHistory proves the history candidate, the root and the input
// conjecture on top of each other and assembles the annotated proof
// from whichever layers the conjecture proof actually uses.
func (m *Minimizer) evalHistory(ctx context.Context, env *searchEnv, h string) (*localResult, error) {
	sp := m.superpositionSteps(env.g, env.vampireFile, h)
	var (
		deps          []string
		derivation    = map[int]steps.Step{}
		derivedName   string
		derivedIdx    int
		provedHistory bool
	)
	if sp != nil {
		deps = sp.deps
		derivation = sp.derivation
		derivedName = sp.derivedName
		derivedIdx = sp.derivedIdx
		provedHistory = sp.provedHistory
	}
	count := len(derivation)

	if containsString(deps, h) {
		m.log().Info("candidate already proven via its own dependencies", "candidate", h)
		return nil, nil
	}
	if provedHistory && len(deps) > 0 {
		// Cyclic duplicate redirection upstream. Known defect class,
		// skip the candidate.
		m.log().Warn("skipping candidate", "candidate", h, "reason", ErrInconsistentDeps)
		return nil, nil
	}

	depProofs, err := m.Repo.LoadDependencyProofs(deps)
	if errors.Is(err, lemma.ErrNotFound) || errors.Is(err, lemma.ErrNoProofFile) {
		m.log().Warn("dependency proof missing, skipping candidate", "candidate", h, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	totalDepSteps := 0
	texts := make([]string, 0, len(depProofs))
	for _, dp := range depProofs {
		totalDepSteps += dp.Steps
		texts = append(texts, dp.Text)
	}
	combined := strings.Join(texts, "\n\n")

	useSuper := totalDepSteps == 0 || (count > 0 && count <= totalDepSteps)

	extra := []steps.NamedFormula{}
	var start string
	var startSteps int
	if totalDepSteps <= count && totalDepSteps != 0 {
		start, startSteps = combined, totalDepSteps
	} else {
		text, renaming := steps.Prepend(derivation, nil, derivedName, derivedIdx, m.Matcher)
		steps.ExtendDependencies(&extra, derivation, renaming)
		start, startSteps = text, count
	}

	hFormula, err := m.Repo.Load(h)
	if err != nil {
		m.log().Warn("missing lemma, skipping candidate", "candidate", h, "error", err)
		return nil, nil
	}

	base := proveTask{}
	if useSuper {
		base.derivation = derivation
	} else {
		base.dependencies = deps
	}

	historyTask := base
	historyTask.axioms = []steps.NamedFormula{{Name: h, Formula: hFormula}}
	historyTask.conjecture = h
	historyProof, historySteps, ok, err := m.proveLemma(ctx, env.inputFile, historyTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	// When the candidate itself was derived in the refutation, keep
	// the derivation unless the prover's own proof is shorter.
	useProvedHistory := provedHistory && historySteps > count

	rootTask := base
	rootTask.axioms = []steps.NamedFormula{
		{Name: h, Formula: hFormula},
		{Name: env.root, Formula: env.rootFormula},
	}
	rootTask.conjecture = env.root
	rootProof, rootSteps, ok, err := m.proveLemma(ctx, env.inputFile, rootTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	subTask := rootTask
	subTask.conjecture = ""
	subProof, subSteps, ok, err := m.proveLemma(ctx, env.inputFile, subTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rootUsed := proofUsesLemma(subProof, env.root)
	historyUsed := false
	if !useProvedHistory && rootUsed {
		historyUsed = proofUsesLemma(rootProof, h) || proofUsesLemma(subProof, h)
	} else if !useProvedHistory {
		historyUsed = proofUsesLemma(subProof, h)
	}

	var annotated string
	var total int
	switch {
	case !rootUsed && !historyUsed:
		m.log().Info("root and history unused in conjecture proof",
			"root", env.root, "history", h)
		annotated = assemble(env.inputContent, start, subProof)
		total = startSteps + subSteps
	case !rootUsed:
		m.log().Info("root unused in conjecture proof", "root", env.root)
		annotated = assemble(env.inputContent, start, historyProof, subProof)
		total = startSteps + historySteps + subSteps
	case !historyUsed:
		m.log().Info("history unused in conjecture proof", "history", h)
		annotated = assemble(env.inputContent, start, rootProof, subProof)
		total = startSteps + rootSteps + subSteps
	default:
		annotated = assemble(env.inputContent, start, historyProof, rootProof, subProof)
		total = startSteps + historySteps + rootSteps + subSteps
	}

	m.log().Info("candidate evaluated",
		"root", env.root, "history", h,
		"steps_total", total, "start_steps", startSteps)
	return &localResult{stepsTotal: total, history: h, annotated: annotated}, nil
}

// evalSingle proves the root from a single lemma dependency and then
// the input conjecture from the root.
func (m *Minimizer) evalSingle(ctx context.Context, env *searchEnv, candidate string) (*localResult, error) {
	m.log().Info("trying single candidate", "candidate", candidate)

	sp := m.superpositionSteps(env.g, env.vampireFile, candidate)
	var (
		deps        []string
		derivation  = map[int]steps.Step{}
		derivedName string
		derivedIdx  int
	)
	if sp != nil {
		deps = sp.deps
		derivation = sp.derivation
		derivedName = sp.derivedName
		derivedIdx = sp.derivedIdx
	}
	count := len(derivation)

	depProofs, err := m.Repo.LoadDependencyProofs(deps)
	if errors.Is(err, lemma.ErrNotFound) || errors.Is(err, lemma.ErrNoProofFile) {
		m.log().Warn("dependency proof missing, skipping candidate", "candidate", candidate, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	totalDepSteps := 0
	texts := make([]string, 0, len(depProofs))
	for _, dp := range depProofs {
		totalDepSteps += dp.Steps
		texts = append(texts, dp.Text)
	}
	combined := strings.Join(texts, "\n\n")

	useSuper := totalDepSteps == 0 || (count > 0 && count <= totalDepSteps)

	extra := []steps.NamedFormula{}
	var start string
	var startSteps int
	if totalDepSteps <= count && totalDepSteps != 0 {
		start, startSteps = combined, totalDepSteps
	} else {
		text, renaming := steps.Prepend(derivation, nil, derivedName, derivedIdx, m.Matcher)
		steps.ExtendDependencies(&extra, derivation, renaming)
		start, startSteps = text, count
	}

	base := proveTask{}
	if useSuper {
		base.derivation = derivation
	} else {
		base.dependencies = deps
	}

	rootTask := base
	rootTask.axioms = []steps.NamedFormula{{Name: env.root, Formula: env.rootFormula}}
	rootTask.conjecture = env.root
	rootProof, rootSteps, ok, err := m.proveLemma(ctx, env.inputFile, rootTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	subTask := rootTask
	subTask.conjecture = ""
	subProof, subSteps, ok, err := m.proveLemma(ctx, env.inputFile, subTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var annotated string
	var total int
	if proofUsesLemma(subProof, env.root) {
		annotated = assemble(env.inputContent, start, rootProof, subProof)
		total = startSteps + rootSteps + subSteps
	} else {
		m.log().Info("root unused in conjecture proof", "root", env.root)
		annotated = assemble(env.inputContent, start, subProof)
		total = startSteps + subSteps
	}
	return &localResult{stepsTotal: total, history: candidate, annotated: annotated}, nil
}

// evalAbstract proves the root from an abstracted lemma whose own
// completion proof is reused as the start of the certificate.
func (m *Minimizer) evalAbstract(ctx context.Context, env *searchEnv, candidate string) (*localResult, error) {
	m.log().Info("trying abstract candidate", "candidate", candidate)

	path := filepath.Join(m.Repo.ProofsDir, candidate+"_twee.proof")
	raw, err := os.ReadFile(path)
	if err != nil {
		m.log().Warn("abstract lemma proof file missing", "candidate", candidate, "path", path)
		return nil, nil
	}
	abstractProof := string(raw)
	abstractSteps := prover.ProofLength(prover.ProverTwee, abstractProof)

	abstractFormula, err := m.Repo.Load(candidate)
	if err != nil {
		m.log().Warn("cannot load abstract lemma", "candidate", candidate, "error", err)
		return nil, nil
	}

	extra := []steps.NamedFormula{}
	axioms := []steps.NamedFormula{
		{Name: env.root, Formula: env.rootFormula},
		{Name: candidate, Formula: abstractFormula},
	}

	rootTask := proveTask{axioms: axioms, conjecture: env.root}
	rootProof, rootSteps, ok, err := m.proveLemma(ctx, env.inputFile, rootTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	subTask := proveTask{axioms: axioms}
	subProof, subSteps, ok, err := m.proveLemma(ctx, env.inputFile, subTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var annotated string
	var total int
	if proofUsesLemma(subProof, env.root) {
		annotated = assemble(env.inputContent, abstractProof, rootProof, subProof)
		total = abstractSteps + rootSteps + subSteps
	} else {
		m.log().Info("root unused in conjecture proof", "root", env.root)
		annotated = assemble(env.inputContent, abstractProof, subProof)
		total = abstractSteps + subSteps
	}
	return &localResult{stepsTotal: total, history: candidate, annotated: annotated}, nil
}

// evalRootOnly reuses the root lemma's stored proof as the start of
// the certificate and proves only the input conjecture on top.
func (m *Minimizer) evalRootOnly(ctx context.Context, env *searchEnv) (*localResult, error) {
	actual, ok := m.Repo.SelectActual(env.root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRootProof, env.root)
	}
	path := filepath.Join(m.Repo.ProofsDir, actual+".proof")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRootProof, env.root)
	}
	rootProof := string(raw)
	proverName := lastSegment(actual)

	extra := []steps.NamedFormula{}
	var rootSteps int
	if proverName == prover.ProverVampire {
		parsed := steps.ParseProof(rootProof)
		derivation, idx, xerr := steps.Extract(parsed, m.Matcher, env.rootFormula)
		if xerr == nil {
			text, renaming := steps.Prepend(derivation, extra, env.root, idx, m.Matcher)
			steps.ExtendDependencies(&extra, derivation, renaming)
			rootProof = text
			rootSteps = len(derivation)
		} else {
			rootSteps = prover.ProofLength(proverName, rootProof)
		}
	} else {
		rootSteps = prover.ProofLength(proverName, rootProof)
	}

	subTask := proveTask{
		axioms: []steps.NamedFormula{{Name: env.root, Formula: env.rootFormula}},
	}
	subProof, subSteps, ok, err := m.proveLemma(ctx, env.inputFile, subTask, &extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return &localResult{
		stepsTotal: rootSteps + subSteps,
		annotated:  assemble(env.inputContent, rootProof, subProof),
	}, nil
}

// ====== HELPERS ======

// assemble joins the input problem and the proof layers into one
// annotated certificate.
func assemble(inputContent string, parts ...string) string {
	return "% === Input Problem ===\n" + inputContent + "\n\n" + strings.Join(parts, "")
}

// formatLemmas renders the dag's lemma formulas as fof lemma blocks
// in name order.
func formatLemmas(lemmas map[string]string) string {
	names := make([]string, 0, len(lemmas))
	for name := range lemmas {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "fof(%s, lemma,\n    %s\n).\n\n", name, lemmas[name])
	}
	return b.String()
}

// nodeCount counts distinct graph nodes, parents and children alike.
func nodeCount(g dag.Graph) int {
	nodes := make(map[string]bool)
	for parent, children := range g {
		nodes[parent] = true
		for child := range children {
			nodes[child] = true
		}
	}
	return len(nodes)
}

// lastSegment returns the text after the final underscore.
func lastSegment(name string) string {
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
