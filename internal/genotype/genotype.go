// Package genotype normalizes raw diploid genotype calls into closed
// zygosity values, including sex-chromosome hemizygosity for males.
package genotype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mendel-inheritance-server/internal/domain"
)

// Model parses raw genotype calls. It never returns an error: genotype
// quality issues must not abort a batch, so every unparseable call degrades
// to MISSING with an attached diagnostic.
type Model struct{}

// NewModel creates a genotype model.
func NewModel() *Model {
	return &Model{}
}

// Normalize converts a raw call ("0/1", "1|1", ".", "1", ...) into a
// Zygosity. On X or Y for a male individual a single-allele call is a valid
// hemizygous state; anywhere else a call with fewer than two alleles is
// missing. The returned diagnostic is nil for clean calls.
func (m *Model) Normalize(raw string, chrom domain.Chromosome, sex domain.Sex) (domain.Zygosity, *domain.Diagnostic) {
	call := strings.TrimSpace(raw)
	if call == "" || call == "." {
		return domain.MISSING, nil
	}

	alleles := splitAlleles(call)

	switch len(alleles) {
	case 1:
		if chrom.IsSexChromosome() && sex == domain.MALE {
			return m.normalizeHemizygous(alleles[0], call)
		}
		return domain.MISSING, diag(fmt.Sprintf("single-allele call %q on non-hemizygous locus", call))
	case 2:
		return m.normalizeDiploid(alleles[0], alleles[1], call)
	default:
		return domain.MISSING, diag(fmt.Sprintf("call %q has %d alleles", call, len(alleles)))
	}
}

// normalizeHemizygous handles single-allele calls on male sex chromosomes.
func (m *Model) normalizeHemizygous(allele, call string) (domain.Zygosity, *domain.Diagnostic) {
	alt, ok := parseAllele(allele)
	if !ok {
		if allele == "." {
			return domain.MISSING, nil
		}
		return domain.MISSING, diag(fmt.Sprintf("unparseable allele %q in call %q", allele, call))
	}
	if alt {
		return domain.HEMI_ALT, nil
	}
	return domain.HOM_REF, nil
}

// normalizeDiploid handles conventional two-allele calls.
func (m *Model) normalizeDiploid(a, b, call string) (domain.Zygosity, *domain.Diagnostic) {
	if a == "." || b == "." {
		return domain.MISSING, nil
	}

	altA, okA := parseAllele(a)
	altB, okB := parseAllele(b)
	if !okA || !okB {
		return domain.MISSING, diag(fmt.Sprintf("unparseable call %q", call))
	}

	switch {
	case altA && altB:
		return domain.HOM_ALT, nil
	case altA || altB:
		return domain.HET, nil
	default:
		return domain.HOM_REF, nil
	}
}

// splitAlleles splits a call on the conventional separators.
func splitAlleles(call string) []string {
	if strings.ContainsRune(call, '|') {
		return strings.Split(call, "|")
	}
	return strings.Split(call, "/")
}

// parseAllele interprets a single allele token. Index 0 is the reference
// allele; any positive index counts as alternate.
func parseAllele(token string) (alt bool, ok bool) {
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 {
		return false, false
	}
	return idx > 0, true
}

func diag(message string) *domain.Diagnostic {
	return &domain.Diagnostic{
		Component: "genotype",
		Message:   message,
	}
}
