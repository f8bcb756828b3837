// Command simulate runs the back-office scenario in process: it submits
// sample records to every module, exports the stores and writes a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/erp/backoffice/internal/application/export"
	"github.com/erp/backoffice/internal/application/ingestion"
	"github.com/erp/backoffice/internal/application/report"
	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/infrastructure/artifact"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// options holds the command line flags
type options struct {
	dir  string
	fake int
	seed uint64
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", ".", "base directory for exported data, reports and fiscal documents")
	flag.IntVar(&opts.fake, "fake", 0, "number of generated records to add per module")
	flag.Uint64Var(&opts.seed, "seed", 0, "seed for generated records (0 picks a random seed)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(context.Background(), opts, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stdout, "ERRO: %v\n", err)
		os.Exit(1)
	}
}

// run executes the scenario and prints every result as indented JSON to out
func run(ctx context.Context, opts options, out io.Writer, log *zap.Logger) error {
	registry := record.DefaultRegistry()
	store := persistence.NewMemoryRecordStore(registry.Modules()...)
	sink := artifact.NewFileSink(opts.dir, artifact.DefaultLayout())

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(ingestion.NewFiscalDocumentHandler(sink, nil, log))
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	defer func() {
		_ = bus.Stop(ctx)
	}()

	ingestionService := ingestion.NewService(registry, store, log, ingestion.WithPublisher(bus))
	exportService := export.NewService(registry, store, sink, nil, log)
	reportService := report.NewService(registry, store, sink, log)

	fmt.Fprintln(out, "=== Iniciando simulação local ===")
	fmt.Fprintln(out)

	subs := sampleSubmissions(time.Now())
	if opts.fake > 0 {
		subs = append(subs, fakeSubmissions(gofakeit.New(opts.seed), registry.Modules(), opts.fake)...)
	}

	for _, sub := range subs {
		result, err := ingestionService.Submit(ctx, sub.module.String(), sub.record)
		if err != nil {
			return fmt.Errorf("%s: %w", sub.label, err)
		}
		if err := printResult(out, sub.label, result); err != nil {
			return err
		}
	}

	exported, err := exportService.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := printResult(out, "Exportação de dados", map[string]any{
		"message": "Dados exportados com sucesso",
		"modulos": exported.Exported,
		"falhas":  exported.Failed,
	}); err != nil {
		return err
	}

	generated, err := reportService.Generate(ctx)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := printResult(out, "Geração de relatório", map[string]any{
		"message":   "Relatório gerado com sucesso",
		"arquivo":   generated.Name,
		"relatorio": generated.Report,
	}); err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Simulação concluída com sucesso ===")
	return nil
}

func printResult(out io.Writer, label string, v any) error {
	data, err := artifact.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", label, err)
	}
	_, err = fmt.Fprintf(out, "%s: %s\n", label, data)
	return err
}
