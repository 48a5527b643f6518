package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/rabbitmq"
)

type declareOptions struct {
	in             string
	connectTimeout time.Duration
}

func newDeclareCmd() *cobra.Command {
	opts := &declareOptions{}
	c := &cobra.Command{
		Use:   "declare",
		Short: "Declare exchanges, queues and bindings from a TOML topology file over AMQP",
		Long: `Declare exchanges, queues and bindings from a TOML topology file over AMQP.

The connection is configured with RABBITMQ_AMQP_* variables, the topology
file defaults to RABBITMQ_DEFINITIONS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeclare(cmd, opts)
		},
	}
	c.Flags().StringVarP(&opts.in, "in", "i", "", "TOML topology file (env: RABBITMQ_DEFINITIONS)")
	c.Flags().DurationVar(&opts.connectTimeout, "connect-timeout", 30*time.Second, "give up connecting after this long")
	return c
}

func runDeclare(cmd *cobra.Command, opts *declareOptions) error {
	if opts.in != "" {
		cfg.Definitions = opts.in
	}
	topology, err := cfg.Topology()
	if err != nil {
		return err
	}
	addr, err := cfg.AMQPURI()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := rabbitmq.New("rabbitmq-defs", addr)
	connectCtx, connectCancel := context.WithTimeout(ctx, opts.connectTimeout)
	err = client.Connect(connectCtx)
	connectCancel()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close AMQP connection", "err", err)
		}
	}()
	go client.HandleReconnect(ctx)

	declarer, err := client.NewDeclarer(ctx)
	if err != nil {
		return err
	}
	summary, err := declarer.Declare(ctx, topology)
	fmt.Fprintf(cmd.OutOrStdout(), "Declared %d exchanges, %d queues and %d bindings, skipped %d.\n",
		summary.Exchanges, summary.Queues, summary.Bindings, summary.Skipped)
	return err
}
