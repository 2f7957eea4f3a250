package domain

import "sort"

// CompHetDetails carries the compound-heterozygous linkage metadata attached
// to a variant by the cross-variant second pass.
//
// Confirmed means the trio genotypes prove the trans configuration (one
// partner inherited from each parent). When only ambiguous-phase pairs exist
// (missing or uninformative parental genotypes) Confirmed is false and the
// prioritizer surfaces the weaker "possible" label instead.
type CompHetDetails struct {
	IsCandidate        bool     `json:"is_candidate"`
	Confirmed          bool     `json:"confirmed"`
	GeneSymbol         string   `json:"gene_symbol"`
	PartnerVariantKeys []string `json:"partner_variant_keys"`
}

// PatternResult is the per-(variant, individual) output of the engine.
// It is immutable once the prioritizer has run; CompHet is nil for variants
// that never entered a candidate gene group.
type PatternResult struct {
	VariantKey         string          `json:"variant_key"`
	SampleID           string          `json:"sample_id"`
	PrioritizedPattern PatternLabel    `json:"prioritized_pattern"`
	MatchedPatterns    []PatternLabel  `json:"matched_patterns"`
	CompHet            *CompHetDetails `json:"comp_het_details,omitempty"`
	Diagnostics        []Diagnostic    `json:"diagnostics,omitempty"`
}

// HasMatch reports whether the single-variant pass found the given model
// consistent with the data.
func (r *PatternResult) HasMatch(label PatternLabel) bool {
	for _, m := range r.MatchedPatterns {
		if m == label {
			return true
		}
	}
	return false
}

// AnalysisResult is the output of one full pipeline run: per individual of
// interest, per variant key, the deduced pattern result.
type AnalysisResult struct {
	RunID   string                               `json:"run_id"`
	Results map[string]map[string]*PatternResult `json:"results"`
}

// SampleIDs returns the analyzed sample ids in ascending order.
func (a *AnalysisResult) SampleIDs() []string {
	ids := make([]string, 0, len(a.Results))
	for id := range a.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VariantKeys returns the variant keys analyzed for a sample in ascending
// order, so serialized output is reproducible across runs.
func (a *AnalysisResult) VariantKeys(sampleID string) []string {
	keys := make([]string, 0, len(a.Results[sampleID]))
	for k := range a.Results[sampleID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
