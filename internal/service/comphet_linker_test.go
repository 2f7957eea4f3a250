package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendel-inheritance-server/internal/domain"
	"github.com/mendel-inheritance-server/internal/pedigree"
)

// geneVariant builds a heterozygous-candidate record in a gene.
func geneVariant(pos int64, gene string, genotypes map[string]domain.Zygosity) *domain.VariantRecord {
	v := variantWith("2", pos, genotypes)
	v.GeneSymbols = []string{gene}
	return v
}

// resultsFor seeds empty first-pass results for one sample.
func resultsFor(sampleID string, records []*domain.VariantRecord) map[string]map[string]*domain.PatternResult {
	byKey := make(map[string]*domain.PatternResult)
	for _, rec := range records {
		byKey[rec.Key] = &domain.PatternResult{VariantKey: rec.Key, SampleID: sampleID}
	}
	return map[string]map[string]*domain.PatternResult{sampleID: byKey}
}

func TestLinkConfirmedTransPair(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	v1 := geneVariant(100, "BRCA2", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HET, "mother": domain.HOM_REF,
	})
	v2 := geneVariant(200, "BRCA2", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HOM_REF, "mother": domain.HET,
	})
	records := []*domain.VariantRecord{v1, v2}
	results := resultsFor("child", records)

	linker.Link(records, g, results)

	for _, key := range []string{v1.Key, v2.Key} {
		ch := results["child"][key].CompHet
		require.NotNil(t, ch, "variant %s should be linked", key)
		assert.True(t, ch.IsCandidate)
		assert.True(t, ch.Confirmed)
		assert.Equal(t, "BRCA2", ch.GeneSymbol)
	}
	assert.Equal(t, []string{v2.Key}, results["child"][v1.Key].CompHet.PartnerVariantKeys)
	assert.Equal(t, []string{v1.Key}, results["child"][v2.Key].CompHet.PartnerVariantKeys)
}

func TestLinkPossibleWhenParentsUngenotyped(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	v1 := geneVariant(100, "PKD1", map[string]domain.Zygosity{"child": domain.HET})
	v2 := geneVariant(200, "PKD1", map[string]domain.Zygosity{"child": domain.HET})
	records := []*domain.VariantRecord{v1, v2}
	results := resultsFor("child", records)

	linker.Link(records, g, results)

	ch := results["child"][v1.Key].CompHet
	require.NotNil(t, ch)
	assert.True(t, ch.IsCandidate)
	assert.False(t, ch.Confirmed, "missing parental genotypes must not confirm phase")
	assert.NotEmpty(t, results["child"][v1.Key].Diagnostics)
}

func TestLinkRejectsCisPair(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	// Both variants inherited through the father: cis, not compound het.
	v1 := geneVariant(100, "CFTR", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HET, "mother": domain.HOM_REF,
	})
	v2 := geneVariant(200, "CFTR", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HET, "mother": domain.HOM_REF,
	})
	records := []*domain.VariantRecord{v1, v2}
	results := resultsFor("child", records)

	linker.Link(records, g, results)

	assert.Nil(t, results["child"][v1.Key].CompHet)
	assert.Nil(t, results["child"][v2.Key].CompHet)
}

func TestLinkNeedsTwoDistinctVariants(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	v1 := geneVariant(100, "TP53", map[string]domain.Zygosity{"child": domain.HET})
	records := []*domain.VariantRecord{v1}
	results := resultsFor("child", records)

	linker.Link(records, g, results)
	assert.Nil(t, results["child"][v1.Key].CompHet)
}

func TestLinkIgnoresUnaffectedAndNonHet(t *testing.T) {
	g, err := pedigree.Build([]pedigree.Individual{
		{FamilyID: "FAM1", SampleID: "child", FatherID: "0", MotherID: "0", Sex: domain.FEMALE, Affected: domain.UNAFFECTED},
	})
	require.NoError(t, err)
	linker := NewCompoundHetLinker(testLogger())

	v1 := geneVariant(100, "GBA", map[string]domain.Zygosity{"child": domain.HET})
	v2 := geneVariant(200, "GBA", map[string]domain.Zygosity{"child": domain.HET})
	records := []*domain.VariantRecord{v1, v2}
	results := resultsFor("child", records)

	linker.Link(records, g, results)
	assert.Nil(t, results["child"][v1.Key].CompHet, "unaffected individuals are not comp-het candidates")

	// Hom-alt variants do not enter the het grouping either
	g2 := testTrioGraph(t)
	v3 := geneVariant(300, "GBA", map[string]domain.Zygosity{"child": domain.HOM_ALT})
	v4 := geneVariant(400, "GBA", map[string]domain.Zygosity{"child": domain.HET})
	records2 := []*domain.VariantRecord{v3, v4}
	results2 := resultsFor("child", records2)
	linker.Link(records2, g2, results2)
	assert.Nil(t, results2["child"][v4.Key].CompHet)
}

func TestLinkExcludesMaleSexChromosomeVariants(t *testing.T) {
	linker := NewCompoundHetLinker(testLogger())

	xVariant := func(pos int64, father, mother domain.Zygosity) *domain.VariantRecord {
		v := variantWith("X", pos, map[string]domain.Zygosity{
			"child": domain.HET, "father": father, "mother": mother,
		})
		v.GeneSymbols = []string{"DMD"}
		return v
	}
	// Trans configuration: one variant through each parent
	records := []*domain.VariantRecord{
		xVariant(100, domain.HOM_REF, domain.HET),
		xVariant(200, domain.HEMI_ALT, domain.HOM_REF),
	}

	// Male child: a hemizygous locus cannot carry two alleles in trans
	g := testTrioGraph(t)
	results := resultsFor("child", records)
	linker.Link(records, g, results)
	assert.Nil(t, results["child"][records[0].Key].CompHet)
	assert.Nil(t, results["child"][records[1].Key].CompHet)

	// The same calls for a female child do link
	gf, err := pedigree.Build([]pedigree.Individual{
		{FamilyID: "FAM1", SampleID: "father", FatherID: "0", MotherID: "0", Sex: domain.MALE, Affected: domain.UNAFFECTED},
		{FamilyID: "FAM1", SampleID: "mother", FatherID: "0", MotherID: "0", Sex: domain.FEMALE, Affected: domain.UNAFFECTED},
		{FamilyID: "FAM1", SampleID: "child", FatherID: "father", MotherID: "mother", Sex: domain.FEMALE, Affected: domain.AFFECTED},
	})
	require.NoError(t, err)
	resultsFemale := resultsFor("child", records)
	linker.Link(records, gf, resultsFemale)
	ch := resultsFemale["child"][records[0].Key].CompHet
	require.NotNil(t, ch)
	assert.True(t, ch.Confirmed)
}

func TestLinkAmbiguousWhenBothParentsCarrySameVariant(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	// Both parents het at v1: the child's copy of v1 cannot be attributed
	// to either parent, so phase stays ambiguous rather than confirmed or
	// rejected.
	v1 := geneVariant(100, "MYO7A", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HET, "mother": domain.HET,
	})
	v2 := geneVariant(200, "MYO7A", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HOM_REF, "mother": domain.HOM_REF,
	})
	records := []*domain.VariantRecord{v1, v2}
	results := resultsFor("child", records)

	linker.Link(records, g, results)

	ch := results["child"][v1.Key].CompHet
	require.NotNil(t, ch)
	assert.True(t, ch.IsCandidate)
	assert.False(t, ch.Confirmed)
	assert.NotEmpty(t, results["child"][v1.Key].Diagnostics)
}

func TestLinkPartnerOrderIsDeterministic(t *testing.T) {
	g := testTrioGraph(t)
	linker := NewCompoundHetLinker(testLogger())

	// Three confirmed-trans variants: one from the father, two from the mother.
	v1 := geneVariant(900, "ABCA4", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HET, "mother": domain.HOM_REF,
	})
	v2 := geneVariant(100, "ABCA4", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HOM_REF, "mother": domain.HET,
	})
	v3 := geneVariant(500, "ABCA4", map[string]domain.Zygosity{
		"child": domain.HET, "father": domain.HOM_REF, "mother": domain.HET,
	})

	forward := []*domain.VariantRecord{v1, v2, v3}
	reversed := []*domain.VariantRecord{v3, v2, v1}

	resForward := resultsFor("child", forward)
	linker.Link(forward, g, resForward)
	resReversed := resultsFor("child", reversed)
	linker.Link(reversed, g, resReversed)

	chF := resForward["child"][v1.Key].CompHet
	chR := resReversed["child"][v1.Key].CompHet
	require.NotNil(t, chF)
	require.NotNil(t, chR)
	assert.Equal(t, chF.PartnerVariantKeys, chR.PartnerVariantKeys)
	assert.Equal(t, []string{v2.Key, v3.Key}, chF.PartnerVariantKeys)
}
