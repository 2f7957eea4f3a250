// Package pedigree holds the in-memory family structure: individuals, their
// parent/child relations and trio lookups derived from 6-column pedigree
// records.
package pedigree

import (
	"github.com/mendel-inheritance-server/internal/domain"
)

// FounderID is the parent-column sentinel marking an unknown/founder parent.
const FounderID = "0"

// Individual is one pedigree record. Immutable after graph construction.
type Individual struct {
	FamilyID string                `json:"family_id"`
	SampleID string                `json:"sample_id"`
	FatherID string                `json:"father_id"`
	MotherID string                `json:"mother_id"`
	Sex      domain.Sex            `json:"sex"`
	Affected domain.AffectedStatus `json:"affected_status"`
}

// IsFounder reports whether the individual has no parents listed.
func (i *Individual) IsFounder() bool {
	return (i.FatherID == FounderID || i.FatherID == "") &&
		(i.MotherID == FounderID || i.MotherID == "")
}

// Trio is the child/father/mother lookup for one individual. Complete is true
// only when both parent ids resolve to registered individuals; rules that need
// a full trio are skipped otherwise.
type Trio struct {
	Child    *Individual
	Father   *Individual
	Mother   *Individual
	Complete bool
}

// Graph is the immutable pedigree graph shared read-only by all concurrent
// evaluations.
type Graph struct {
	individuals map[string]*Individual
	order       []string
}

// Build constructs the graph and verifies the single structural invariant: no
// individual may be its own ancestor. A cycle is the only fatal pedigree
// error; dangling parent references are treated as ungenotyped founders.
func Build(records []Individual) (*Graph, error) {
	g := &Graph{
		individuals: make(map[string]*Individual, len(records)),
		order:       make([]string, 0, len(records)),
	}
	for i := range records {
		rec := records[i]
		if rec.SampleID == "" || rec.SampleID == FounderID {
			continue
		}
		if _, seen := g.individuals[rec.SampleID]; !seen {
			g.order = append(g.order, rec.SampleID)
		}
		g.individuals[rec.SampleID] = &rec
	}

	if err := g.checkCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkCycles walks parent edges from every individual with a three-color
// depth-first search.
func (g *Graph) checkCycles() error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(g.individuals))

	var visit func(id string) error
	visit = func(id string) error {
		ind, ok := g.individuals[id]
		if !ok {
			return nil // dangling parent reference, tolerated
		}
		switch color[id] {
		case grey:
			return &domain.PedigreeCycleError{SampleID: id}
		case black:
			return nil
		}
		color[id] = grey
		for _, parent := range []string{ind.FatherID, ind.MotherID} {
			if parent == FounderID || parent == "" {
				continue
			}
			if err := visit(parent); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Individual looks up a registered individual by sample id.
func (g *Graph) Individual(sampleID string) (*Individual, bool) {
	ind, ok := g.individuals[sampleID]
	return ind, ok
}

// Size returns the number of registered individuals.
func (g *Graph) Size() int {
	return len(g.individuals)
}

// SampleIDs returns registered sample ids in input order.
func (g *Graph) SampleIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Trio resolves the trio for a sample. The child pointer is nil when the
// sample itself is unregistered.
func (g *Graph) Trio(sampleID string) Trio {
	child, ok := g.individuals[sampleID]
	if !ok {
		return Trio{}
	}
	t := Trio{Child: child}
	if child.FatherID != FounderID && child.FatherID != "" {
		t.Father = g.individuals[child.FatherID]
	}
	if child.MotherID != FounderID && child.MotherID != "" {
		t.Mother = g.individuals[child.MotherID]
	}
	t.Complete = t.Father != nil && t.Mother != nil
	return t
}

// IsFounder reports whether the sample has no registered parents. Unknown
// samples and samples whose parent ids dangle count as founders.
func (g *Graph) IsFounder(sampleID string) bool {
	t := g.Trio(sampleID)
	if t.Child == nil {
		return true
	}
	return t.Father == nil && t.Mother == nil
}

// AffectedSampleIDs returns the ids of all affected individuals in input
// order. These are the default individuals of interest for an analysis run.
func (g *Graph) AffectedSampleIDs() []string {
	var out []string
	for _, id := range g.order {
		if g.individuals[id].Affected == domain.AFFECTED {
			out = append(out, id)
		}
	}
	return out
}
