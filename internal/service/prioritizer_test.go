package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mendel-inheritance-server/internal/domain"
)

func TestPrioritizeFixedOrder(t *testing.T) {
	p := NewPrioritizer()

	confirmed := &domain.CompHetDetails{IsCandidate: true, Confirmed: true, GeneSymbol: "G"}
	possible := &domain.CompHetDetails{IsCandidate: true, Confirmed: false, GeneSymbol: "G"}

	tests := []struct {
		name     string
		matched  []domain.PatternLabel
		compHet  *domain.CompHetDetails
		expected domain.PatternLabel
	}{
		{
			"De novo beats everything",
			[]domain.PatternLabel{domain.AUTOSOMAL_DOMINANT, domain.DE_NOVO, domain.AUTOSOMAL_RECESSIVE},
			confirmed,
			domain.DE_NOVO,
		},
		{
			"Recessive beats confirmed compound het",
			[]domain.PatternLabel{domain.AUTOSOMAL_RECESSIVE},
			confirmed,
			domain.AUTOSOMAL_RECESSIVE,
		},
		{
			"Confirmed compound het beats X-linked",
			[]domain.PatternLabel{domain.X_LINKED_RECESSIVE, domain.X_LINKED_DOMINANT},
			confirmed,
			domain.COMPOUND_HET,
		},
		{
			"X-linked recessive beats dominant models",
			[]domain.PatternLabel{domain.X_LINKED_RECESSIVE, domain.X_LINKED_DOMINANT, domain.AUTOSOMAL_DOMINANT},
			nil,
			domain.X_LINKED_RECESSIVE,
		},
		{
			"Dominant beats possible compound het",
			[]domain.PatternLabel{domain.AUTOSOMAL_DOMINANT},
			possible,
			domain.AUTOSOMAL_DOMINANT,
		},
		{
			"Possible compound het beats reference",
			[]domain.PatternLabel{domain.REFERENCE},
			possible,
			domain.COMPOUND_HET_POSSIBLE,
		},
		{
			"Reference beats missing",
			[]domain.PatternLabel{domain.REFERENCE, domain.MISSING_GENOTYPES},
			nil,
			domain.REFERENCE,
		},
		{
			"Missing genotypes on its own",
			[]domain.PatternLabel{domain.MISSING_GENOTYPES},
			nil,
			domain.MISSING_GENOTYPES,
		},
		{
			"Nothing matched falls back to unknown",
			nil,
			nil,
			domain.UNKNOWN_PATTERN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Prioritize(tt.matched, tt.compHet)
			assert.Equal(t, tt.expected, got)
			assert.True(t, got.IsValid(), "prioritized label must be in the closed set")
		})
	}
}
