package service

import (
	"github.com/mendel-inheritance-server/internal/domain"
)

// Prioritizer collapses a multi-valued rule result into the single final
// label. The total order is a fixed design decision: de novo and biallelic
// recessive evidence outrank dominant calls, and ambiguous-phase compound-het
// candidates rank below every confirmed model. Changing this order changes
// externally observable output for ambiguous cases, so it is not derived at
// runtime.
type Prioritizer struct{}

// NewPrioritizer creates the prioritizer.
func NewPrioritizer() *Prioritizer {
	return &Prioritizer{}
}

// priorityOrder lists the labels from strongest to weakest evidence. The two
// compound-heterozygous entries are satisfied from the linkage metadata
// rather than the matched set.
var priorityOrder = []domain.PatternLabel{
	domain.DE_NOVO,
	domain.AUTOSOMAL_RECESSIVE,
	domain.COMPOUND_HET,
	domain.X_LINKED_RECESSIVE,
	domain.X_LINKED_DOMINANT,
	domain.AUTOSOMAL_DOMINANT,
	domain.COMPOUND_HET_POSSIBLE,
	domain.REFERENCE,
	domain.MISSING_GENOTYPES,
}

// Prioritize returns the highest-precedence label satisfied by the matched
// model set and the compound-het details. It never returns an empty label:
// when nothing is satisfied the result is UNKNOWN_PATTERN.
func (p *Prioritizer) Prioritize(matched []domain.PatternLabel, compHet *domain.CompHetDetails) domain.PatternLabel {
	matchedSet := make(map[domain.PatternLabel]struct{}, len(matched))
	for _, m := range matched {
		matchedSet[m] = struct{}{}
	}

	for _, label := range priorityOrder {
		switch label {
		case domain.COMPOUND_HET:
			if compHet != nil && compHet.IsCandidate && compHet.Confirmed {
				return domain.COMPOUND_HET
			}
		case domain.COMPOUND_HET_POSSIBLE:
			if compHet != nil && compHet.IsCandidate && !compHet.Confirmed {
				return domain.COMPOUND_HET_POSSIBLE
			}
		default:
			if _, ok := matchedSet[label]; ok {
				return label
			}
		}
	}
	return domain.UNKNOWN_PATTERN
}
