package main

import (
	"github.com/spf13/cobra"

	"alfredoptarigan/ats-evaluator/internal/models"
	"alfredoptarigan/ats-evaluator/internal/services"
)

var factsFlags struct {
	jd     string
	resume string
	pretty bool
}

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Print the heuristic facts without calling a model",
	RunE:  runFacts,
}

func init() {
	f := factsCmd.Flags()
	f.StringVar(&factsFlags.jd, "jd", "", "Job description text file (required)")
	f.StringVar(&factsFlags.resume, "resume", "", "Resume file, .pdf or plain text (required)")
	f.BoolVar(&factsFlags.pretty, "pretty", false, "Indent the JSON output")

	_ = factsCmd.MarkFlagRequired("jd")
	_ = factsCmd.MarkFlagRequired("resume")
}

func runFacts(cmd *cobra.Command, _ []string) error {
	inputs, err := readInputs(factsFlags.jd, factsFlags.resume)
	if err != nil {
		return err
	}

	name := services.ExtractCandidateName(inputs.Resume)
	years := services.ExtractYearsOfExperience(inputs.JobDescription)
	score := services.ComputeATSScore(inputs.JobDescription, inputs.Resume)

	return writeJSON(cmd.OutOrStdout(), models.FactRecord{
		CandidateName:     &name,
		YearsOfExperience: &years,
		ATSScore:          &score,
	}, factsFlags.pretty)
}
