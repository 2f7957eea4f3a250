package service

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mendel-inheritance-server/internal/domain"
	"github.com/mendel-inheritance-server/internal/pedigree"
)

// CompoundHetLinker performs the cross-variant second pass: it groups
// heterozygous candidate variants by gene and affected individual, classifies
// the phase of every pair against the trio genotypes, and attaches
// compound-heterozygous metadata to the qualifying pattern results.
//
// The gene index is transient, built fresh for each Link call and discarded
// afterwards; the linker holds no state between runs.
type CompoundHetLinker struct {
	logger *logrus.Logger
}

// pairPhase classifies one unordered variant pair in a candidate gene.
type pairPhase int

const (
	phaseRejected pairPhase = iota
	phasePossible
	phaseConfirmed
)

// NewCompoundHetLinker creates the linker.
func NewCompoundHetLinker(logger *logrus.Logger) *CompoundHetLinker {
	return &CompoundHetLinker{logger: logger}
}

// Link augments the results of each affected individual of interest with
// CompHetDetails. It must run only after every variant has a first-pass
// result, since gene grouping is global across the variant set. Partner lists
// are sorted ascending so output is independent of processing order.
func (l *CompoundHetLinker) Link(records []*domain.VariantRecord, graph *pedigree.Graph, results map[string]map[string]*domain.PatternResult) {
	for sampleID, sampleResults := range results {
		subject, ok := graph.Individual(sampleID)
		if !ok || subject.Affected != domain.AFFECTED {
			continue
		}
		l.linkSample(records, graph, subject, sampleResults)
	}
}

// linkSample runs the gene grouping and pair classification for one affected
// individual.
func (l *CompoundHetLinker) linkSample(records []*domain.VariantRecord, graph *pedigree.Graph, subject *pedigree.Individual, results map[string]*domain.PatternResult) {
	byGene := l.groupByGene(records, subject)
	trio := graph.Trio(subject.SampleID)

	type partnerSets struct {
		confirmed map[string]struct{}
		possible  map[string]struct{}
		gene      string
		geneWeak  string
	}
	partners := make(map[string]*partnerSets)
	get := func(key string) *partnerSets {
		ps, ok := partners[key]
		if !ok {
			ps = &partnerSets{
				confirmed: make(map[string]struct{}),
				possible:  make(map[string]struct{}),
			}
			partners[key] = ps
		}
		return ps
	}

	genes := make([]string, 0, len(byGene))
	for gene := range byGene {
		genes = append(genes, gene)
	}
	sort.Strings(genes)

	for _, gene := range genes {
		group := byGene[gene]
		if len(group) < 2 {
			continue // not a candidate gene
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				switch l.classifyPair(trio, a, b) {
				case phaseConfirmed:
					pa, pb := get(a.Key), get(b.Key)
					pa.confirmed[b.Key] = struct{}{}
					pb.confirmed[a.Key] = struct{}{}
					if pa.gene == "" {
						pa.gene = gene
					}
					if pb.gene == "" {
						pb.gene = gene
					}
				case phasePossible:
					pa, pb := get(a.Key), get(b.Key)
					pa.possible[b.Key] = struct{}{}
					pb.possible[a.Key] = struct{}{}
					if pa.geneWeak == "" {
						pa.geneWeak = gene
					}
					if pb.geneWeak == "" {
						pb.geneWeak = gene
					}
				}
			}
		}
	}

	for key, ps := range partners {
		result, ok := results[key]
		if !ok {
			continue
		}
		switch {
		case len(ps.confirmed) > 0:
			result.CompHet = &domain.CompHetDetails{
				IsCandidate:        true,
				Confirmed:          true,
				GeneSymbol:         ps.gene,
				PartnerVariantKeys: sortedKeys(ps.confirmed),
			}
		case len(ps.possible) > 0:
			result.CompHet = &domain.CompHetDetails{
				IsCandidate:        true,
				Confirmed:          false,
				GeneSymbol:         ps.geneWeak,
				PartnerVariantKeys: sortedKeys(ps.possible),
			}
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Component:  "comphet",
				SampleID:   subject.SampleID,
				VariantKey: key,
				Message:    "parental genotypes missing or uninformative; phase not confirmed",
			})
		}
	}

	l.logger.WithFields(logrus.Fields{
		"sample_id":       subject.SampleID,
		"candidate_genes": len(genes),
		"linked_variants": len(partners),
	}).Debug("Completed compound-heterozygous linkage pass")
}

// groupByGene collects the variants where the subject is heterozygous and at
// least one gene symbol is attached. Sex-chromosome loci of males are
// excluded: a hemizygous locus cannot carry two alleles in trans.
func (l *CompoundHetLinker) groupByGene(records []*domain.VariantRecord, subject *pedigree.Individual) map[string][]*domain.VariantRecord {
	byGene := make(map[string][]*domain.VariantRecord)
	for _, rec := range records {
		if rec.Zygosity(subject.SampleID) != domain.HET {
			continue
		}
		if subject.Sex == domain.MALE && rec.Chromosome.IsSexChromosome() {
			continue
		}
		for _, gene := range rec.SortedGeneSymbols() {
			if gene == "" {
				continue
			}
			byGene[gene] = append(byGene[gene], rec)
		}
	}
	// Deduplicate by variant key within each gene
	for gene, group := range byGene {
		seen := make(map[string]struct{}, len(group))
		var uniq []*domain.VariantRecord
		for _, rec := range group {
			if _, dup := seen[rec.Key]; dup {
				continue
			}
			seen[rec.Key] = struct{}{}
			uniq = append(uniq, rec)
		}
		byGene[gene] = uniq
	}
	return byGene
}

// classifyPair decides the phase of two candidate variants from the parental
// genotypes. Confirmed requires the biologically mandatory trans
// configuration: each parent carries exactly one of the two variants.
// Missing or uninformative parental data yields phasePossible; a pair
// demonstrably inherited through one parent (cis) is rejected.
func (l *CompoundHetLinker) classifyPair(trio pedigree.Trio, a, b *domain.VariantRecord) pairPhase {
	if !trio.Complete {
		return phasePossible
	}

	fa := a.Zygosity(trio.Father.SampleID)
	fb := b.Zygosity(trio.Father.SampleID)
	ma := a.Zygosity(trio.Mother.SampleID)
	mb := b.Zygosity(trio.Mother.SampleID)
	if fa == domain.MISSING || fb == domain.MISSING || ma == domain.MISSING || mb == domain.MISSING {
		return phasePossible
	}

	faC, fbC := fa.Carries(), fb.Carries()
	maC, mbC := ma.Carries(), mb.Carries()

	if (faC && !fbC && mbC && !maC) || (fbC && !faC && maC && !mbC) {
		return phaseConfirmed
	}
	// Both parents carrying the same variant leaves the child's copy
	// unattributable, so phase stays ambiguous.
	if (faC && maC) || (fbC && mbC) {
		return phasePossible
	}
	return phaseRejected
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
