package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/api"
)

type probeOptions struct {
	health bool
}

func newProbeCmd() *cobra.Command {
	opts := &probeOptions{}
	c := &cobra.Command{
		Use:   "probe",
		Short: "Check that the HTTP API is reachable and accepts the credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, opts)
		},
	}
	c.Flags().BoolVar(&opts.health, "health", false, "also run alarm and quorum critical health checks")
	return c
}

func runProbe(cmd *cobra.Command, opts *probeOptions) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	outcome := client.ProbeReachability(ctx)
	if !outcome.Reached() {
		return fmt.Errorf("%s is unreachable: %w", client.Endpoint(), outcome.Err)
	}
	fmt.Fprintf(out, "%s is reachable as %s (%s)\n", client.Endpoint(), outcome.CurrentUser.Name, outcome.Duration)
	if !opts.health {
		return nil
	}

	checks := []struct {
		name string
		run  func() error
	}{
		{"cluster-wide alarms", func() error { return client.HealthCheckClusterWideAlarms(ctx) }},
		{"local alarms", func() error { return client.HealthCheckLocalAlarms(ctx) }},
		{"quorum critical", func() error { return client.HealthCheckIfNodeIsQuorumCritical(ctx) }},
	}
	var failed int
	for _, check := range checks {
		if err := check.run(); err != nil {
			failed++
			fmt.Fprintf(out, "%s: failed: %v\n", check.name, err)
			var failure *api.HealthCheckFailedError
			if !errors.As(err, &failure) {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", check.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d health checks failed", failed, len(checks))
	}
	return nil
}
