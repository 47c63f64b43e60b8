// Command qualify runs a qualification over a directory of OCR'd .txt files
// and prints the result, or writes an audit export.
//
// Usage:
//
//	qualify run ./kit-42
//	qualify run ./kit-42 --format xlsx --out audit.xlsx
//	qualify checklist
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"registrum/internal/auditexport"
	"registrum/internal/catalog"
	"registrum/internal/config"
	"registrum/internal/domain"
	"registrum/internal/llm/chain"
	"registrum/internal/logger"
	"registrum/internal/metrics"
	"registrum/internal/qualification"
	"registrum/internal/service"
)

var (
	exportFormat string
	exportOut    string
)

var rootCmd = &cobra.Command{
	Use:           "qualify",
	Short:         "Qualify a real-estate document kit against the registry checklist",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run <dir>",
	Short: "Qualify every .txt file in dir",
	Args:  cobra.ExactArgs(1),
	RunE:  runQualify,
}

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Print the requirement catalog",
	Args:  cobra.NoArgs,
	RunE:  runChecklist,
}

func init() {
	runCmd.Flags().StringVar(&exportFormat, "format", "", "write an audit export instead of JSON (csv or xlsx)")
	runCmd.Flags().StringVar(&exportOut, "out", "", "export destination (default: generated filename in the working directory)")
	rootCmd.AddCommand(runCmd, checklistCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runQualify(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputs, err := readTexts(args[0])
	if err != nil {
		return err
	}

	svc, zl, err := buildService()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	if exportFormat == "" {
		result, err := svc.Qualify(ctx, service.QualifyInput{Documents: inputs})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	format, err := auditexport.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	out, err := svc.Export(ctx, service.QualifyInput{Documents: inputs}, format)
	if err != nil {
		return err
	}
	dest := exportOut
	if dest == "" {
		dest = out.Filename
	}
	if err := os.WriteFile(dest, out.Data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (score %d)\n", dest, out.Result.Status, out.Result.Score)
	return nil
}

func runChecklist(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "catalog %s (%d items)\n", cat.Version(), cat.Len())
	for _, item := range cat.Items() {
		flag := " "
		if item.Mandatory {
			flag = "*"
		}
		fmt.Fprintf(w, "%s %-8s %-11s %s\n", flag, item.ID, item.Category, item.Question)
	}
	return nil
}

// readTexts loads every .txt file in dir, in filename order.
func readTexts(dir string) ([]domain.TextInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	inputs := make([]domain.TextInput, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, domain.TextInput{Filename: name, Text: string(data)})
	}
	return inputs, nil
}

func buildService() (service.QualificationService, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		return nil, nil, err
	}

	m := metrics.New(prometheus.NewRegistry())
	completer, err := chain.Build(&cfg.LLM, m, zl.Named("llm"))
	if err != nil {
		return nil, nil, err
	}
	engine, err := qualification.NewEngine(cat, completer, qualification.Config{
		DocumentConcurrency:   cfg.Qualification.DocumentConcurrency,
		EvaluationConcurrency: cfg.Qualification.EvaluationConcurrency,
		ApprovalThreshold:     cfg.Qualification.ApprovalThreshold,
		MandatoryItems:        cfg.Qualification.MandatoryItems,
		ExcerptLength:         cfg.Qualification.ExcerptLength,
		MinTextLength:         cfg.Qualification.MinTextLength,
	}, m, zl.Named("engine"))
	if err != nil {
		return nil, nil, err
	}
	return service.NewQualificationService(engine, nil, zl.Named("service")), zl, nil
}
