package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"worldsmith/internal/validate"
	"worldsmith/internal/world"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run integrity checks against the current world",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd, func(ctx context.Context, e *env, ws *world.Workspace) error {
		report := validate.Run(ws)
		out := cmd.OutOrStdout()

		var errorIssues []validate.Issue
		var warnIssues []validate.Issue
		for _, issue := range report.Issues {
			switch issue.Severity {
			case validate.SeverityError:
				errorIssues = append(errorIssues, issue)
			case validate.SeverityWarn:
				warnIssues = append(warnIssues, issue)
			}
		}

		if len(errorIssues) == 0 && len(warnIssues) == 0 {
			fmt.Fprintln(out, "No issues found.")
			return nil
		}

		if len(errorIssues) > 0 {
			fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
			printIssues(out, errorIssues)
		}
		if len(warnIssues) > 0 {
			if len(errorIssues) > 0 {
				fmt.Fprintln(out, "")
			}
			fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
			printIssues(out, warnIssues)
		}

		if len(errorIssues) > 0 {
			return fmt.Errorf("check found errors")
		}
		return nil
	})
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := string(issue.Kind)
		if issue.ID != "" {
			location = fmt.Sprintf("%s %s", issue.Kind, issue.ID)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
