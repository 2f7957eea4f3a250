// Package variantio reads variant call tables in the VCF tab-separated
// layout: meta lines (##), a #CHROM header naming the samples, then one
// record per line with INFO and per-sample genotype columns.
package variantio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mendel-inheritance-server/internal/domain"
)

const fixedColumns = 9 // CHROM POS ID REF ALT QUAL FILTER INFO FORMAT

// geneInfoKeys are the INFO keys recognized as gene annotations, in lookup
// order.
var geneInfoKeys = []string{"GENE", "ANN_GENE", "SYMBOL"}

// Reader parses variant records from a VCF-shaped stream.
type Reader struct {
	scanner *bufio.Scanner
	samples []string
	line    int
}

// NewReader creates a reader. The header is consumed lazily on the first
// Read call.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{scanner: sc}
}

// Samples returns the sample IDs from the #CHROM header, in column order.
// It is empty until the header has been read.
func (r *Reader) Samples() []string {
	return r.samples
}

// ReadAll consumes the stream and returns every record. Multi-allelic sites
// are split into one record per alternate allele.
func (r *Reader) ReadAll() ([]*domain.VariantRecord, error) {
	var records []*domain.VariantRecord
	for {
		recs, err := r.next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
}

// next returns the records produced by the next data line, reading through
// the header first if needed.
func (r *Reader) next() ([]*domain.VariantRecord, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r\n")
		switch {
		case line == "" || strings.HasPrefix(line, "##"):
			continue
		case strings.HasPrefix(line, "#CHROM"):
			if err := r.parseHeader(line); err != nil {
				return nil, err
			}
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}
		if r.samples == nil {
			return nil, domain.NewValidationError("header", "data line before #CHROM header", fmt.Sprintf("line %d", r.line))
		}
		return r.parseRecord(line)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading variant table: %w", err)
	}
	return nil, io.EOF
}

func (r *Reader) parseHeader(line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) < fixedColumns {
		return domain.NewValidationError("header", "expected at least 9 columns in #CHROM line", line)
	}
	r.samples = fields[fixedColumns:]
	return nil
}

func (r *Reader) parseRecord(line string) ([]*domain.VariantRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < fixedColumns+len(r.samples) {
		return nil, domain.NewValidationError("record",
			fmt.Sprintf("expected %d columns, got %d", fixedColumns+len(r.samples), len(fields)),
			fmt.Sprintf("line %d", r.line))
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, domain.NewValidationError("pos", "position is not an integer", fields[1])
	}

	chrom := domain.NormalizeChromosome(fields[0])
	ref := fields[3]
	alts := strings.Split(fields[4], ",")
	genes := parseGenes(fields[7])
	gtIndex := formatIndex(fields[8], "GT")

	records := make([]*domain.VariantRecord, 0, len(alts))
	for altIdx, alt := range alts {
		if alt == "" || alt == "." {
			continue
		}
		rec := &domain.VariantRecord{
			Chromosome:  chrom,
			Position:    pos,
			Reference:   ref,
			Alternate:   alt,
			GeneSymbols: genes,
			Calls:       make(map[string]string, len(r.samples)),
		}
		rec.Key = domain.VariantKey(chrom, pos, ref, alt)
		for i, sampleID := range r.samples {
			call := sampleField(fields[fixedColumns+i], gtIndex)
			rec.Calls[sampleID] = recodeCall(call, altIdx+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

// formatIndex returns the position of a key in the FORMAT column, or -1.
func formatIndex(format, key string) int {
	for i, k := range strings.Split(format, ":") {
		if k == key {
			return i
		}
	}
	return -1
}

// sampleField extracts the GT subfield of a sample column.
func sampleField(column string, gtIndex int) string {
	if gtIndex < 0 {
		return "."
	}
	parts := strings.Split(column, ":")
	if gtIndex >= len(parts) {
		return "."
	}
	return parts[gtIndex]
}

// recodeCall rewrites a multi-allelic call against one alternate allele:
// alleles matching altIdx become 1, missing stays missing, everything else
// becomes 0. The phase separator is preserved.
func recodeCall(call string, altIdx int) string {
	sep := "/"
	if strings.Contains(call, "|") {
		sep = "|"
	}
	alleles := strings.Split(call, sep)
	out := make([]string, len(alleles))
	for i, a := range alleles {
		switch {
		case a == "." || a == "":
			out[i] = a
		case a == strconv.Itoa(altIdx):
			out[i] = "1"
		default:
			if _, err := strconv.Atoi(a); err != nil {
				out[i] = a
				continue
			}
			out[i] = "0"
		}
	}
	return strings.Join(out, sep)
}

// parseGenes extracts gene symbols from the INFO column.
func parseGenes(info string) []string {
	if info == "" || info == "." {
		return nil
	}
	for _, entry := range strings.Split(info, ";") {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		for _, geneKey := range geneInfoKeys {
			if key == geneKey {
				var genes []string
				for _, g := range strings.Split(value, ",") {
					if g = strings.TrimSpace(g); g != "" {
						genes = append(genes, g)
					}
				}
				return genes
			}
		}
	}
	return nil
}

// ReadFile parses a variant table from disk.
func ReadFile(path string) ([]*domain.VariantRecord, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening variant table %s: %w", path, err)
	}
	defer f.Close()

	r := NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return records, r.Samples(), nil
}
