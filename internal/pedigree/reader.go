package pedigree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mendel-inheritance-server/internal/domain"
)

// ReadRecords parses standard 6-column pedigree data
// (family, sample, father, mother, sex, affected status) from r.
// Lines starting with '#' and blank lines are skipped. Unknown sex or
// phenotype codes default to their unknown values; only syntactically broken
// rows (fewer than six columns) are an error, since a truncated pedigree file
// is an input defect rather than a data-quality degradation.
func ReadRecords(r io.Reader) ([]Individual, error) {
	var records []Individual

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, domain.NewValidationError(
				"pedigree",
				fmt.Sprintf("line %d has %d columns, expected 6", lineNo, len(fields)),
				line,
			)
		}

		records = append(records, Individual{
			FamilyID: fields[0],
			SampleID: fields[1],
			FatherID: fields[2],
			MotherID: fields[3],
			Sex:      domain.ParseSex(fields[4]),
			Affected: domain.ParseAffectedStatus(fields[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pedigree: %w", err)
	}

	return records, nil
}

// ReadFile reads pedigree records from a file path and builds the graph.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pedigree file: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, err
	}
	return Build(records)
}
