// Package domain contains core business entities and types for Mendelian
// inheritance-pattern deduction over pedigree and genotype data.
//
// The engine deduces which inheritance models (de novo, autosomal recessive,
// autosomal dominant, X-linked recessive, X-linked dominant, compound
// heterozygous) are consistent with the observed genotypes of a family, and
// collapses ambiguity with a fixed priority order.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sex represents the pedigree sex code of an individual.
// Standard 6-column pedigree encoding: 0 = unknown, 1 = male, 2 = female.
type Sex int

const (
	SEX_UNKNOWN Sex = 0
	MALE        Sex = 1
	FEMALE      Sex = 2
)

// AffectedStatus represents the phenotype code of an individual.
// Standard 6-column pedigree encoding: 0 = unknown, 1 = unaffected, 2 = affected.
type AffectedStatus int

const (
	STATUS_UNKNOWN AffectedStatus = 0
	UNAFFECTED     AffectedStatus = 1
	AFFECTED       AffectedStatus = 2
)

// Zygosity represents the normalized state of a genotype call at one locus.
// Invalid or unparseable calls are mapped to MISSING rather than rejected so
// that a single bad call never aborts a batch analysis.
type Zygosity string

const (
	HOM_REF  Zygosity = "hom_ref"
	HET      Zygosity = "het"
	HOM_ALT  Zygosity = "hom_alt"
	HEMI_ALT Zygosity = "hemi_alt"
	MISSING  Zygosity = "missing"
)

// PatternLabel represents an inheritance model label produced by the engine.
// The set is closed; PrioritizedPattern is always one of these values.
type PatternLabel string

const (
	REFERENCE             PatternLabel = "reference"
	DE_NOVO               PatternLabel = "de_novo"
	AUTOSOMAL_RECESSIVE   PatternLabel = "autosomal_recessive"
	AUTOSOMAL_DOMINANT    PatternLabel = "autosomal_dominant"
	X_LINKED_RECESSIVE    PatternLabel = "x_linked_recessive"
	X_LINKED_DOMINANT     PatternLabel = "x_linked_dominant"
	COMPOUND_HET          PatternLabel = "compound_heterozygous"
	COMPOUND_HET_POSSIBLE PatternLabel = "compound_heterozygous_possible_missing_parents"
	MISSING_GENOTYPES     PatternLabel = "undetermined_missing_genotypes"
	UNKNOWN_PATTERN       PatternLabel = "unknown"
)

// Validation errors for pedigree and genotype data integrity
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSex      = errors.New("invalid sex code")
	ErrInvalidStatus   = errors.New("invalid affected status code")
	ErrInvalidZygosity = errors.New("invalid zygosity")
	ErrInvalidPattern  = errors.New("invalid inheritance pattern label")
)

// IsValid validates the sex code against the pedigree encoding.
func (s Sex) IsValid() bool {
	switch s {
	case SEX_UNKNOWN, MALE, FEMALE:
		return true
	default:
		return false
	}
}

// String returns the human-readable sex label.
func (s Sex) String() string {
	switch s {
	case MALE:
		return "male"
	case FEMALE:
		return "female"
	default:
		return "unknown"
	}
}

// ParseSex maps a pedigree sex column token to a Sex value.
// Unrecognized tokens default to SEX_UNKNOWN; pedigree anomalies are
// tolerated, never fatal.
func ParseSex(token string) Sex {
	switch strings.ToLower(token) {
	case "1", "male", "m":
		return MALE
	case "2", "female", "f":
		return FEMALE
	default:
		return SEX_UNKNOWN
	}
}

// IsValid validates the affected status code against the pedigree encoding.
func (a AffectedStatus) IsValid() bool {
	switch a {
	case STATUS_UNKNOWN, UNAFFECTED, AFFECTED:
		return true
	default:
		return false
	}
}

// String returns the human-readable affected status label.
func (a AffectedStatus) String() string {
	switch a {
	case UNAFFECTED:
		return "unaffected"
	case AFFECTED:
		return "affected"
	default:
		return "unknown"
	}
}

// ParseAffectedStatus maps a pedigree phenotype column token to an
// AffectedStatus value. "-9" is a common missing-phenotype marker and maps to
// STATUS_UNKNOWN like any other unrecognized token.
func ParseAffectedStatus(token string) AffectedStatus {
	switch strings.ToLower(token) {
	case "1", "unaffected":
		return UNAFFECTED
	case "2", "affected":
		return AFFECTED
	default:
		return STATUS_UNKNOWN
	}
}

// IsValid validates the zygosity value.
func (z Zygosity) IsValid() bool {
	switch z {
	case HOM_REF, HET, HOM_ALT, HEMI_ALT, MISSING:
		return true
	default:
		return false
	}
}

// String returns the string representation of the zygosity.
func (z Zygosity) String() string {
	return string(z)
}

// Carries reports whether the genotype carries at least one alternate allele.
func (z Zygosity) Carries() bool {
	switch z {
	case HET, HOM_ALT, HEMI_ALT:
		return true
	default:
		return false
	}
}

// IsValid validates the pattern label against the closed label set.
func (p PatternLabel) IsValid() bool {
	switch p {
	case REFERENCE, DE_NOVO, AUTOSOMAL_RECESSIVE, AUTOSOMAL_DOMINANT,
		X_LINKED_RECESSIVE, X_LINKED_DOMINANT, COMPOUND_HET,
		COMPOUND_HET_POSSIBLE, MISSING_GENOTYPES, UNKNOWN_PATTERN:
		return true
	default:
		return false
	}
}

// String returns the string representation of the pattern label.
func (p PatternLabel) String() string {
	return string(p)
}

// LogFields returns structured logging fields for audit trails.
func (p PatternLabel) LogFields() map[string]any {
	return map[string]any{
		"pattern":  string(p),
		"is_valid": p.IsValid(),
	}
}

// Chromosome is a normalized chromosome name ("1".."22", "X", "Y", "MT").
type Chromosome string

// NormalizeChromosome strips any "chr" prefix and upper-cases sex chromosomes
// so that "chrx", "chrX" and "X" compare equal.
func NormalizeChromosome(name string) Chromosome {
	if len(name) > 3 && (name[:3] == "chr" || name[:3] == "CHR" || name[:3] == "Chr") {
		name = name[3:]
	}
	switch name {
	case "x":
		name = "X"
	case "y":
		name = "Y"
	case "m", "M", "mt", "Mt":
		name = "MT"
	}
	return Chromosome(name)
}

// IsX reports whether the chromosome is the X chromosome.
func (c Chromosome) IsX() bool { return c == "X" }

// IsY reports whether the chromosome is the Y chromosome.
func (c Chromosome) IsY() bool { return c == "Y" }

// IsSexChromosome reports whether the chromosome is X or Y.
func (c Chromosome) IsSexChromosome() bool { return c.IsX() || c.IsY() }

// IsAutosomal reports whether the chromosome is an autosome.
// Mitochondrial loci are neither autosomal nor sex-linked for rule purposes.
func (c Chromosome) IsAutosomal() bool {
	return c != "" && !c.IsSexChromosome() && c != "MT"
}

// Diagnostic is a non-fatal note produced while evaluating a variant, such as
// a malformed genotype call or a skipped trio rule. Diagnostics are carried on
// the PatternResult so that degradations are inspectable without intercepting
// log output.
type Diagnostic struct {
	Component  string `json:"component"`
	SampleID   string `json:"sample_id,omitempty"`
	VariantKey string `json:"variant_key,omitempty"`
	Message    string `json:"message"`
}

// String renders the diagnostic for logs and error reports.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (sample=%s variant=%s)", d.Component, d.Message, d.SampleID, d.VariantKey)
}
