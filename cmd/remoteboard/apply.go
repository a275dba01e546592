package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remoteboard/remoteboard/internal/orchestrator"
)

var (
	applyServerURL string
	applyJobURL    string
	applyJobID     string
	applyYes       bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run the auto-apply workflow for one job",
	Long: `Analyze a job posting's application form, show the generated responses,
and submit the application after confirmation. Reads the session token from
the REMOTEBOARD_TOKEN environment variable.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyServerURL, "server", "http://localhost:8080", "Server base URL")
	applyCmd.Flags().StringVar(&applyJobURL, "job-url", "", "Job posting URL (required)")
	applyCmd.Flags().StringVar(&applyJobID, "job-id", "", "Job ID (required)")
	applyCmd.Flags().BoolVar(&applyYes, "yes", false, "Submit without asking for confirmation")
	_ = applyCmd.MarkFlagRequired("job-url")
	_ = applyCmd.MarkFlagRequired("job-id")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	token := orchestrator.StaticToken(os.Getenv("REMOTEBOARD_TOKEN"))
	client := orchestrator.NewClient(strings.TrimRight(applyServerURL, "/"), token)

	job := orchestrator.JobReference{URL: applyJobURL, ID: applyJobID}
	o := orchestrator.New(client, token, job, func(applicationID string) {
		fmt.Printf("Application submitted. ID: %s\n", applicationID)
	})
	defer o.Close()

	ctx := cmd.Context()
	if state := o.Apply(ctx); state != orchestrator.StatePreviewReady {
		return fmt.Errorf("%s", o.Err().Message)
	}

	preview := o.Preview()
	fmt.Printf("Form has %d fields, %d with generated responses.\n", preview.TotalFields, preview.FieldsWithResponses)
	fmt.Printf("Profile completeness: %d%%", preview.UserProfileCompleteness.OverallPercentage)
	if !preview.UserProfileCompleteness.ReadyForAutoApply {
		fmt.Print(" (below the recommended threshold)")
	}
	fmt.Println()
	for _, fp := range preview.FieldPreviews {
		value := "(no response)"
		if fp.GeneratedValue != nil {
			value = *fp.GeneratedValue
		}
		fmt.Printf("  %s: %s\n", fp.FieldLabel, value)
	}

	if !applyYes && !confirmSubmit() {
		o.Cancel()
		fmt.Println("Cancelled.")
		return nil
	}

	if state := o.Confirm(ctx); state != orchestrator.StateApplied {
		return fmt.Errorf("%s", o.Err().Message)
	}
	return nil
}

func confirmSubmit() bool {
	fmt.Print("Submit this application? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
