package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"env-access-broker/internal/adapters/notebook"
	"env-access-broker/internal/config"

	"github.com/spf13/cobra"
)

type probeOutput struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	CheckedAt string `json:"checked_at"`
	LatencyMS int64  `json:"latency_ms"`
}

var errNotHealthy = errors.New("notebook service is not healthy")

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check the notebook service once and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p, err := notebook.NewProbe(notebook.Config{
				BaseURL:    cfg.NotebookBaseURL,
				HealthPath: cfg.NotebookHealthPath,
				Timeout:    cfg.NotebookHealthTimeout,
			})
			if err != nil {
				return err
			}

			res := p.Check(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(probeOutput{
				Status:    string(res.Status),
				Detail:    res.Detail,
				CheckedAt: res.CheckedAt.Format(time.RFC3339),
				LatencyMS: res.Latency.Milliseconds(),
			}); err != nil {
				return fmt.Errorf("write probe result: %w", err)
			}

			if !res.Healthy() {
				return errNotHealthy
			}
			return nil
		},
	}
}
