package domain

import "time"

// GeneAnnotation holds the gene metadata attached to analysis reports. It is
// fetched from the remote annotation service and cached locally.
type GeneAnnotation struct {
	Symbol      string     `json:"symbol"`
	EnsemblID   string     `json:"ensembl_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Biotype     string     `json:"biotype,omitempty"`
	Chromosome  Chromosome `json:"chromosome,omitempty"`
	Start       int64      `json:"start,omitempty"`
	End         int64      `json:"end,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
}
