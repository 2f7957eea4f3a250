// Package report renders analysis results as JSON, TSV or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mendel-inheritance-server/internal/domain"
)

// Format identifies a report output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a user-supplied format name, defaulting to JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "tsv":
		return FormatTSV, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", s)
	}
}

// Row is one (individual, variant) line of the report.
type Row struct {
	SampleID           string                 `json:"sample_id"`
	VariantKey         string                 `json:"variant_key"`
	GeneSymbols        []string               `json:"gene_symbols,omitempty"`
	PrioritizedPattern domain.PatternLabel    `json:"prioritized_pattern"`
	MatchedPatterns    []domain.PatternLabel  `json:"matched_patterns,omitempty"`
	CompHet            *domain.CompHetDetails `json:"compound_het,omitempty"`
	Diagnostics        []domain.Diagnostic    `json:"diagnostics,omitempty"`
}

// Report is the complete JSON document.
type Report struct {
	RunID       string                            `json:"run_id"`
	Rows        []Row                             `json:"rows"`
	Annotations map[string]*domain.GeneAnnotation `json:"gene_annotations,omitempty"`
}

// BuildRows flattens an analysis result into rows ordered by sample id, then
// variant key. The ordering is stable across runs.
func BuildRows(result *domain.AnalysisResult, records []*domain.VariantRecord) []Row {
	genesByKey := make(map[string][]string, len(records))
	for _, rec := range records {
		genesByKey[rec.Key] = rec.SortedGeneSymbols()
	}

	var rows []Row
	for _, sampleID := range result.SampleIDs() {
		for _, key := range result.VariantKeys(sampleID) {
			r := result.Results[sampleID][key]
			rows = append(rows, Row{
				SampleID:           sampleID,
				VariantKey:         key,
				GeneSymbols:        genesByKey[key],
				PrioritizedPattern: r.PrioritizedPattern,
				MatchedPatterns:    r.MatchedPatterns,
				CompHet:            r.CompHet,
				Diagnostics:        r.Diagnostics,
			})
		}
	}
	return rows
}

// WriteJSON writes the full report as indented JSON.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

var tableHeader = []string{
	"sample_id", "variant_key", "gene_symbols", "prioritized_pattern",
	"matched_patterns", "comp_het_candidate", "comp_het_confirmed",
	"comp_het_gene", "comp_het_partners", "diagnostics",
}

// WriteTable writes rows as a delimited table. TSV uses a tab separator, CSV
// a comma.
func WriteTable(w io.Writer, rows []Row, format Format) error {
	cw := csv.NewWriter(w)
	if format == FormatTSV {
		cw.Comma = '\t'
	}

	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(tableRecord(row)); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func tableRecord(row Row) []string {
	matched := make([]string, len(row.MatchedPatterns))
	for i, p := range row.MatchedPatterns {
		matched[i] = p.String()
	}

	candidate, confirmed, gene, partners := "false", "false", "", ""
	if row.CompHet != nil {
		candidate = strconv.FormatBool(row.CompHet.IsCandidate)
		confirmed = strconv.FormatBool(row.CompHet.Confirmed)
		gene = row.CompHet.GeneSymbol
		partners = strings.Join(row.CompHet.PartnerVariantKeys, ";")
	}

	diags := make([]string, len(row.Diagnostics))
	for i, d := range row.Diagnostics {
		diags[i] = d.String()
	}

	return []string{
		row.SampleID,
		row.VariantKey,
		strings.Join(row.GeneSymbols, ";"),
		row.PrioritizedPattern.String(),
		strings.Join(matched, ";"),
		candidate,
		confirmed,
		gene,
		partners,
		strings.Join(diags, "; "),
	}
}

// Write renders the report in the requested format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatTSV, FormatCSV:
		return WriteTable(w, report.Rows, format)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
