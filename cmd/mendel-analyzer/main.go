// Package main provides the command-line batch analyzer: it reads a pedigree
// and a variant table, runs the inheritance deduction pipeline and writes a
// report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mendel-inheritance-server/internal/annotation"
	"github.com/mendel-inheritance-server/internal/config"
	"github.com/mendel-inheritance-server/internal/logging"
	"github.com/mendel-inheritance-server/internal/pedigree"
	"github.com/mendel-inheritance-server/internal/report"
	"github.com/mendel-inheritance-server/internal/repository"
	"github.com/mendel-inheritance-server/internal/service"
	"github.com/mendel-inheritance-server/internal/variantio"
)

func main() {
	pedPath := flag.String("ped", "", "pedigree file (6-column PED format)")
	vcfPath := flag.String("vcf", "", "variant table (VCF layout)")
	samples := flag.String("samples", "", "comma-separated sample ids to analyze (default: all affected)")
	format := flag.String("format", "json", "report format: json, tsv or csv")
	outPath := flag.String("out", "", "output path (default: stdout)")
	annotate := flag.Bool("annotate", false, "fetch gene annotations for the report")
	flag.Parse()

	if *pedPath == "" || *vcfPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)

	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	graph, err := pedigree.ReadFile(*pedPath)
	if err != nil {
		log.Fatalf("Failed to read pedigree: %v", err)
	}

	records, _, err := variantio.ReadFile(*vcfPath)
	if err != nil {
		log.Fatalf("Failed to read variant table: %v", err)
	}

	var sampleIDs []string
	if *samples != "" {
		for _, id := range strings.Split(*samples, ",") {
			if id = strings.TrimSpace(id); id != "" {
				sampleIDs = append(sampleIDs, id)
			}
		}
	}

	ctx := context.Background()
	analyzer := service.NewAnalyzer(logger, *configManager.GetAnalysisConfig())
	result, err := analyzer.Run(ctx, graph, records, sampleIDs)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	rep := &report.Report{
		RunID: result.RunID,
		Rows:  report.BuildRows(result, records),
	}

	if *annotate {
		annCfg := configManager.GetAnnotationConfig()
		store, err := repository.NewAnnotationStore(annCfg.CachePath, annCfg.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to open annotation store: %v", err)
		}
		defer store.Close()

		remote := annotation.NewClient(*annCfg, logger)
		annotator, err := annotation.NewCachedClient(remote, store, annCfg.CacheSize, logger)
		if err != nil {
			log.Fatalf("Failed to create annotation cache: %v", err)
		}

		var symbols []string
		for _, rec := range records {
			symbols = append(symbols, rec.GeneSymbols...)
		}
		rep.Annotations = annotator.AnnotateGenes(ctx, symbols)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Write(out, rep, reportFormat); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	if *outPath != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outPath)
	}
}
