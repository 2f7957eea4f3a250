// Package service implements the inheritance-pattern deduction engine: the
// per-variant rule evaluation, the cross-variant compound-heterozygous pass
// and the final prioritization.
package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mendel-inheritance-server/internal/domain"
	"github.com/mendel-inheritance-server/internal/pedigree"
)

// PatternEvaluator applies the Mendelian inheritance rule set to a single
// (variant, individual) pair. Rules are evaluated independently; more than
// one may match and reduction to a single label is deferred entirely to the
// Prioritizer.
type PatternEvaluator struct {
	logger *logrus.Logger
	rules  []patternRule
}

// patternRule is an individual inheritance model check.
type patternRule struct {
	Label     domain.PatternLabel
	Name      string
	Evaluator func(in evalInput) bool
}

// evalInput bundles everything a rule may consult. Parental zygosities are
// MISSING whenever the parent is unregistered or ungenotyped, so rules can
// degrade instead of aborting.
type evalInput struct {
	variant *domain.VariantRecord
	subject *pedigree.Individual
	trio    pedigree.Trio

	zygosity domain.Zygosity
	father   domain.Zygosity
	mother   domain.Zygosity
}

func (in evalInput) affected() bool {
	return in.subject.Affected == domain.AFFECTED
}

func (in evalInput) autosomal() bool {
	return in.variant.Chromosome.IsAutosomal()
}

// genotypedParents lists parents that are registered and genotyped at this
// variant.
func (in evalInput) genotypedParents() []parentCall {
	var out []parentCall
	if in.trio.Father != nil && in.father != domain.MISSING {
		out = append(out, parentCall{in.trio.Father, in.father})
	}
	if in.trio.Mother != nil && in.mother != domain.MISSING {
		out = append(out, parentCall{in.trio.Mother, in.mother})
	}
	return out
}

type parentCall struct {
	individual *pedigree.Individual
	zygosity   domain.Zygosity
}

// NewPatternEvaluator creates the evaluator with the full Mendelian rule set.
func NewPatternEvaluator(logger *logrus.Logger) *PatternEvaluator {
	e := &PatternEvaluator{logger: logger}
	e.rules = []patternRule{
		{domain.DE_NOVO, "Variant absent from both genotyped parents of an affected child", e.evaluateDeNovo},
		{domain.AUTOSOMAL_RECESSIVE, "Affected individual homozygous on an autosome with carrier parents", e.evaluateAutosomalRecessive},
		{domain.AUTOSOMAL_DOMINANT, "Affected carrier on an autosome with consistent segregation", e.evaluateAutosomalDominant},
		{domain.X_LINKED_RECESSIVE, "Hemizygous affected male or homozygous affected female on X", e.evaluateXLinkedRecessive},
		{domain.X_LINKED_DOMINANT, "Affected carrier on X with an affected transmitting parent", e.evaluateXLinkedDominant},
	}
	return e
}

// Evaluate returns every inheritance model consistent with the observed data
// for one variant and one individual of interest, plus the diagnostics
// accumulated on the way. It is pure: no state is retained between calls.
func (e *PatternEvaluator) Evaluate(variant *domain.VariantRecord, sampleID string, graph *pedigree.Graph) ([]domain.PatternLabel, []domain.Diagnostic) {
	var diags []domain.Diagnostic

	subject, ok := graph.Individual(sampleID)
	if !ok {
		diags = append(diags, domain.Diagnostic{
			Component:  "evaluator",
			SampleID:   sampleID,
			VariantKey: variant.Key,
			Message:    "individual of interest is not in the pedigree",
		})
		return []domain.PatternLabel{domain.MISSING_GENOTYPES}, diags
	}

	z := variant.Zygosity(sampleID)

	// A missing call for the individual of interest short-circuits everything:
	// no model can be argued from absent data.
	if z == domain.MISSING {
		diags = append(diags, domain.Diagnostic{
			Component:  "evaluator",
			SampleID:   sampleID,
			VariantKey: variant.Key,
			Message:    "genotype of individual of interest is missing",
		})
		return []domain.PatternLabel{domain.MISSING_GENOTYPES}, diags
	}

	// A reference genotype short-circuits the model rules.
	if z == domain.HOM_REF {
		return []domain.PatternLabel{domain.REFERENCE}, diags
	}

	trio := graph.Trio(sampleID)
	in := evalInput{
		variant:  variant,
		subject:  subject,
		trio:     trio,
		zygosity: z,
		father:   domain.MISSING,
		mother:   domain.MISSING,
	}
	if trio.Father != nil {
		in.father = variant.Zygosity(trio.Father.SampleID)
	}
	if trio.Mother != nil {
		in.mother = variant.Zygosity(trio.Mother.SampleID)
	}
	if !trio.Complete {
		diags = append(diags, domain.Diagnostic{
			Component:  "evaluator",
			SampleID:   sampleID,
			VariantKey: variant.Key,
			Message:    "incomplete trio; trio-dependent checks degraded",
		})
	}

	var matched []domain.PatternLabel
	for _, rule := range e.rules {
		if rule.Evaluator(in) {
			matched = append(matched, rule.Label)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"variant_key":   variant.Key,
		"sample_id":     sampleID,
		"zygosity":      z.String(),
		"matched_count": len(matched),
	}).Debug("Evaluated inheritance model rules")

	if len(matched) == 0 {
		diags = append(diags, domain.Diagnostic{
			Component:  "evaluator",
			SampleID:   sampleID,
			VariantKey: variant.Key,
			Message:    fmt.Sprintf("no inheritance model consistent with zygosity %s", z),
		})
	}
	return matched, diags
}

// evaluateDeNovo matches when an affected child carries the variant while
// both parents of a complete trio are genotyped homozygous reference.
func (e *PatternEvaluator) evaluateDeNovo(in evalInput) bool {
	if !in.affected() {
		return false
	}
	if in.zygosity != domain.HET && in.zygosity != domain.HOM_ALT {
		return false
	}
	if !in.trio.Complete {
		return false
	}
	return in.father == domain.HOM_REF && in.mother == domain.HOM_REF
}

// evaluateAutosomalRecessive matches an affected homozygous-alternate
// individual on an autosome. Genotyped parents must be obligate heterozygous
// carriers; ungenotyped parents weaken but do not break the match.
func (e *PatternEvaluator) evaluateAutosomalRecessive(in evalInput) bool {
	if !in.autosomal() || !in.affected() || in.zygosity != domain.HOM_ALT {
		return false
	}
	if in.trio.Father != nil && in.father != domain.MISSING && in.father != domain.HET {
		return false
	}
	if in.trio.Mother != nil && in.mother != domain.MISSING && in.mother != domain.HET {
		return false
	}
	return true
}

// evaluateAutosomalDominant matches an affected carrier on an autosome when
// segregation is consistent: either an affected genotyped parent also carries
// the allele, or no genotyped unaffected parent does. Dominant claims rest on
// observed transmission, so at least one genotyped parent is required;
// recessive rules stand on the proband genotype alone.
func (e *PatternEvaluator) evaluateAutosomalDominant(in evalInput) bool {
	if !in.autosomal() || !in.affected() {
		return false
	}
	if in.zygosity != domain.HET && in.zygosity != domain.HOM_ALT {
		return false
	}

	parents := in.genotypedParents()
	if len(parents) == 0 {
		return false
	}

	affectedCarrier := false
	unaffectedCarrier := false
	for _, p := range parents {
		if !p.zygosity.Carries() {
			continue
		}
		switch p.individual.Affected {
		case domain.AFFECTED:
			affectedCarrier = true
		case domain.UNAFFECTED:
			unaffectedCarrier = true
		}
	}
	return affectedCarrier || !unaffectedCarrier
}

// evaluateXLinkedRecessive matches a hemizygous affected male or a homozygous
// affected female on X, with a heterozygous carrier mother and no unaffected
// carrier father when those genotypes are available.
func (e *PatternEvaluator) evaluateXLinkedRecessive(in evalInput) bool {
	if !in.variant.Chromosome.IsX() || !in.affected() {
		return false
	}

	switch in.subject.Sex {
	case domain.MALE:
		if in.zygosity != domain.HEMI_ALT {
			return false
		}
	case domain.FEMALE:
		if in.zygosity != domain.HOM_ALT {
			return false
		}
	default:
		if in.zygosity != domain.HEMI_ALT && in.zygosity != domain.HOM_ALT {
			return false
		}
	}

	if in.trio.Mother != nil && in.mother != domain.MISSING && in.mother != domain.HET {
		return false
	}
	if in.trio.Father != nil && in.father != domain.MISSING &&
		in.father.Carries() && in.trio.Father.Affected != domain.AFFECTED {
		return false
	}
	return true
}

// evaluateXLinkedDominant matches an affected carrier of either sex on X
// with at least one genotyped affected parent transmitting the allele.
func (e *PatternEvaluator) evaluateXLinkedDominant(in evalInput) bool {
	if !in.variant.Chromosome.IsX() || !in.affected() {
		return false
	}
	switch in.zygosity {
	case domain.HET, domain.HOM_ALT, domain.HEMI_ALT:
	default:
		return false
	}

	for _, p := range in.genotypedParents() {
		if p.individual.Affected == domain.AFFECTED && p.zygosity.Carries() {
			return true
		}
	}
	return false
}
