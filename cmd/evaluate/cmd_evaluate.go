package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/config"
	"alfredoptarigan/ats-evaluator/internal/models"
	"alfredoptarigan/ats-evaluator/internal/services"
)

var evaluateFlags struct {
	jd      string
	resume  string
	pretty  bool
	verbose bool
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&evaluateFlags.jd, "jd", "", "Job description text file (required)")
	f.StringVar(&evaluateFlags.resume, "resume", "", "Resume file, .pdf or plain text (required)")
	f.BoolVar(&evaluateFlags.pretty, "pretty", false, "Indent the JSON report")
	f.BoolVar(&evaluateFlags.verbose, "verbose", false, "Log pipeline progress to stderr")

	_ = rootCmd.MarkFlagRequired("jd")
	_ = rootCmd.MarkFlagRequired("resume")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	log := zap.NewNop()
	if evaluateFlags.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		log = l
	}
	defer log.Sync()

	inputs, err := readInputs(evaluateFlags.jd, evaluateFlags.resume)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	prompts, err := services.LoadPrompts(cfg.Prompts.Dir)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	gateway, err := services.NewModelGateway(ctx, cfg.Model, log)
	if err != nil {
		return err
	}

	preview := cfg.Model.LogPreviewLength
	svc := services.NewEvaluatorService(
		services.NewExtractionOrchestrator(gateway, prompts, cfg.Model.FinalizeFacts, log, preview),
		services.NewEvaluatorRunner(gateway, prompts, log, preview),
		services.NewReviewerRunner(gateway, prompts, log, preview),
		cfg.Server.RequestTimeout,
		log,
	)

	report, err := svc.Evaluate(ctx, uuid.New(), inputs)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), report, evaluateFlags.pretty)
}

func readInputs(jdPath, resumePath string) (models.RawInputs, error) {
	jd, err := os.ReadFile(jdPath)
	if err != nil {
		return models.RawInputs{}, fmt.Errorf("read job description: %w", err)
	}

	var resume string
	if strings.EqualFold(filepath.Ext(resumePath), ".pdf") {
		resume, err = services.NewPDFParserService().ExtractTextFromFile(resumePath)
	} else {
		var data []byte
		data, err = os.ReadFile(resumePath)
		resume = string(data)
	}
	if err != nil {
		return models.RawInputs{}, fmt.Errorf("read resume: %w", err)
	}

	return models.RawInputs{
		JobDescription: strings.ToValidUTF8(string(jd), ""),
		Resume:         strings.ToValidUTF8(resume, ""),
	}, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
