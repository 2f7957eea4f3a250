package service

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mendel-inheritance-server/internal/domain"
	"github.com/mendel-inheritance-server/internal/genotype"
	"github.com/mendel-inheritance-server/internal/pedigree"
)

// Analyzer runs the full deduction pipeline: genotype normalization, the
// parallel per-variant first pass, the compound-heterozygous second pass and
// final prioritization.
//
// The first pass is embarrassingly parallel: each variant evaluation is a
// pure function of its own record and the immutable pedigree graph. The
// second pass is a synchronization barrier — it needs the complete variant
// set for gene grouping and must not start earlier.
type Analyzer struct {
	logger      *logrus.Logger
	model       *genotype.Model
	evaluator   *PatternEvaluator
	linker      *CompoundHetLinker
	prioritizer *Prioritizer
	workers     int
}

// NewAnalyzer creates an analyzer. A non-positive worker count falls back to
// GOMAXPROCS.
func NewAnalyzer(logger *logrus.Logger, cfg domain.AnalysisConfig) *Analyzer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		logger:      logger,
		model:       genotype.NewModel(),
		evaluator:   NewPatternEvaluator(logger),
		linker:      NewCompoundHetLinker(logger),
		prioritizer: NewPrioritizer(),
		workers:     workers,
	}
}

// Run analyzes every variant for the given individuals of interest. When
// sampleIDs is empty, all affected individuals in the pedigree are analyzed.
// Results are deterministic regardless of scheduling: partner lists are
// sorted and no step depends on variant processing order.
func (a *Analyzer) Run(ctx context.Context, graph *pedigree.Graph, records []*domain.VariantRecord, sampleIDs []string) (*domain.AnalysisResult, error) {
	if graph == nil {
		return nil, fmt.Errorf("analysis: pedigree graph is required")
	}
	if len(sampleIDs) == 0 {
		sampleIDs = graph.AffectedSampleIDs()
	}

	runID := uuid.NewString()
	a.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"variants": len(records),
		"samples":  len(sampleIDs),
		"workers":  a.workers,
	}).Info("Starting inheritance analysis run")

	callDiags, err := a.normalizeGenotypes(ctx, graph, records)
	if err != nil {
		return nil, err
	}

	// First pass: evaluate every (variant, individual) pair in parallel.
	// perVariant[i][j] is the result for records[i] and sampleIDs[j].
	perVariant := make([][]*domain.PatternResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := records[i]
			row := make([]*domain.PatternResult, len(sampleIDs))
			for j, sampleID := range sampleIDs {
				matched, diags := a.evaluator.Evaluate(rec, sampleID, graph)
				diags = append(a.relevantCallDiags(callDiags[i], sampleID, graph), diags...)
				row[j] = &domain.PatternResult{
					VariantKey:      rec.Key,
					SampleID:        sampleID,
					MatchedPatterns: matched,
					Diagnostics:     diags,
				}
			}
			perVariant[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run %s: %w", runID, err)
	}

	results := make(map[string]map[string]*domain.PatternResult, len(sampleIDs))
	for j, sampleID := range sampleIDs {
		byKey := make(map[string]*domain.PatternResult, len(records))
		for i := range records {
			byKey[perVariant[i][j].VariantKey] = perVariant[i][j]
		}
		results[sampleID] = byKey
	}

	// Second pass: cross-variant linkage, then collapse to final labels.
	a.linker.Link(records, graph, results)
	for _, byKey := range results {
		for _, result := range byKey {
			result.PrioritizedPattern = a.prioritizer.Prioritize(result.MatchedPatterns, result.CompHet)
		}
	}

	a.logger.WithField("run_id", runID).Info("Completed inheritance analysis run")
	return &domain.AnalysisResult{RunID: runID, Results: results}, nil
}

// normalizeGenotypes derives the zygosity map of every record from its raw
// calls, in parallel. Each record is written exactly once here and treated as
// read-only afterwards. The returned per-record diagnostics describe
// malformed calls.
func (a *Analyzer) normalizeGenotypes(ctx context.Context, graph *pedigree.Graph, records []*domain.VariantRecord) ([][]domain.Diagnostic, error) {
	diags := make([][]domain.Diagnostic, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := records[i]
			if rec.Key == "" {
				rec.Key = domain.VariantKey(rec.Chromosome, rec.Position, rec.Reference, rec.Alternate)
			}
			rec.Genotypes = make(map[string]domain.Zygosity, len(rec.Calls))
			for sampleID, raw := range rec.Calls {
				sex := domain.SEX_UNKNOWN
				if ind, ok := graph.Individual(sampleID); ok {
					sex = ind.Sex
				}
				z, d := a.model.Normalize(raw, rec.Chromosome, sex)
				rec.Genotypes[sampleID] = z
				if d != nil {
					d.SampleID = sampleID
					d.VariantKey = rec.Key
					diags[i] = append(diags[i], *d)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("genotype normalization: %w", err)
	}
	return diags, nil
}

// relevantCallDiags filters a record's normalization diagnostics down to the
// ones that matter for an individual of interest: their own call and the
// calls of their trio parents.
func (a *Analyzer) relevantCallDiags(diags []domain.Diagnostic, sampleID string, graph *pedigree.Graph) []domain.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	trio := graph.Trio(sampleID)
	relevant := map[string]bool{sampleID: true}
	if trio.Father != nil {
		relevant[trio.Father.SampleID] = true
	}
	if trio.Mother != nil {
		relevant[trio.Mother.SampleID] = true
	}

	var out []domain.Diagnostic
	for _, d := range diags {
		if relevant[d.SampleID] {
			out = append(out, d)
		}
	}
	return out
}
