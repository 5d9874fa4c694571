package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/report"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Analyse one WAV file and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (json|yaml)", format)
			}

			a, err := build(cmd.Context(), c.cfg, c.log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.svc.SubmitFile(args[0])
			if err != nil {
				return err
			}
			job, err = a.svc.Wait(cmd.Context(), job.ID)
			if err != nil {
				return err
			}
			if job.Status == jobs.StatusFailed {
				return fmt.Errorf("analysis failed (%s): %s", job.Failure.Kind, job.Failure.Message)
			}

			c.log.WithFields(logrus.Fields{
				"job_id":    job.ID,
				"artifacts": a.svc.ArtifactDir(job.ID),
			}).Info("analysis complete")
			return writeReport(cmd.OutOrStdout(), *job.Result, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func writeReport(w io.Writer, r report.Report, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
