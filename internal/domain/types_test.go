package domain

import (
	"testing"
)

func TestPatternLabelConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    PatternLabel
		expected string
	}{
		{"Reference", REFERENCE, "reference"},
		{"De Novo", DE_NOVO, "de_novo"},
		{"Autosomal Recessive", AUTOSOMAL_RECESSIVE, "autosomal_recessive"},
		{"Autosomal Dominant", AUTOSOMAL_DOMINANT, "autosomal_dominant"},
		{"X-Linked Recessive", X_LINKED_RECESSIVE, "x_linked_recessive"},
		{"X-Linked Dominant", X_LINKED_DOMINANT, "x_linked_dominant"},
		{"Compound Het", COMPOUND_HET, "compound_heterozygous"},
		{"Compound Het Possible", COMPOUND_HET_POSSIBLE, "compound_heterozygous_possible_missing_parents"},
		{"Missing Genotypes", MISSING_GENOTYPES, "undetermined_missing_genotypes"},
		{"Unknown", UNKNOWN_PATTERN, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}

	if PatternLabel("something_else").IsValid() {
		t.Error("Expected unrecognized label to be invalid")
	}
}

func TestZygosityCarries(t *testing.T) {
	tests := []struct {
		name     string
		value    Zygosity
		expected bool
	}{
		{"Hom Ref", HOM_REF, false},
		{"Het", HET, true},
		{"Hom Alt", HOM_ALT, true},
		{"Hemi Alt", HEMI_ALT, true},
		{"Missing", MISSING, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Carries() != tt.expected {
				t.Errorf("Expected Carries()=%v for %s", tt.expected, tt.value)
			}
		})
	}
}

func TestParseSexAndStatus(t *testing.T) {
	if ParseSex("1") != MALE || ParseSex("2") != FEMALE {
		t.Error("Expected standard pedigree sex codes to parse")
	}
	if ParseSex("0") != SEX_UNKNOWN || ParseSex("banana") != SEX_UNKNOWN {
		t.Error("Expected unrecognized sex codes to default to unknown")
	}
	if ParseAffectedStatus("1") != UNAFFECTED || ParseAffectedStatus("2") != AFFECTED {
		t.Error("Expected standard phenotype codes to parse")
	}
	if ParseAffectedStatus("-9") != STATUS_UNKNOWN {
		t.Error("Expected -9 to default to unknown status")
	}
}

func TestNormalizeChromosome(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Chromosome
	}{
		{"Plain autosome", "7", "7"},
		{"Prefixed autosome", "chr12", "12"},
		{"Prefixed X", "chrX", "X"},
		{"Lowercase X", "chrx", "X"},
		{"Y", "Y", "Y"},
		{"Mitochondrial", "chrMT", "MT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeChromosome(tt.input); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}

	if !Chromosome("7").IsAutosomal() || Chromosome("X").IsAutosomal() || Chromosome("MT").IsAutosomal() {
		t.Error("Autosome classification is wrong")
	}
}
