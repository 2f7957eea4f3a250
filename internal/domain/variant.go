package domain

import (
	"fmt"
	"sort"
)

// VariantRecord is one input variant with its per-sample genotype calls.
// Records are produced by the variant reader and the annotation collaborator
// and consumed read-only by the deduction engine; Genotypes is filled exactly
// once before evaluation and never mutated afterwards.
type VariantRecord struct {
	// Canonical chromosome-position-ref-alt identity
	Key        string     `json:"variant_key"`
	Chromosome Chromosome `json:"chromosome"`
	Position   int64      `json:"position"`
	Reference  string     `json:"reference"`
	Alternate  string     `json:"alternate"`

	// Gene symbols associated with this variant; may be empty when the
	// annotation collaborator had nothing to offer
	GeneSymbols []string `json:"gene_symbols,omitempty"`

	// Raw diploid calls keyed by sample id, as read from the input
	Calls map[string]string `json:"calls"`

	// Normalized zygosities keyed by sample id, derived from Calls
	Genotypes map[string]Zygosity `json:"genotypes,omitempty"`
}

// VariantKey builds the canonical chromosome-position-ref-alt key.
func VariantKey(chrom Chromosome, pos int64, ref, alt string) string {
	return fmt.Sprintf("%s-%d-%s-%s", chrom, pos, ref, alt)
}

// Zygosity returns the normalized genotype of the given sample, or MISSING
// when the sample was never genotyped for this variant.
func (v *VariantRecord) Zygosity(sampleID string) Zygosity {
	if z, ok := v.Genotypes[sampleID]; ok {
		return z
	}
	return MISSING
}

// SortedGeneSymbols returns the gene symbols in ascending order without
// modifying the record.
func (v *VariantRecord) SortedGeneSymbols() []string {
	out := make([]string, len(v.GeneSymbols))
	copy(out, v.GeneSymbols)
	sort.Strings(out)
	return out
}

// Validate ensures the record carries the minimum identity fields.
func (v *VariantRecord) Validate() error {
	if v.Key == "" {
		return NewValidationError("variant_key", "variant key is required", v.Key)
	}
	if v.Chromosome == "" {
		return NewValidationError("chromosome", "chromosome is required", string(v.Chromosome))
	}
	if v.Position <= 0 {
		return NewValidationError("position", "position must be positive", v.Position)
	}
	return nil
}
