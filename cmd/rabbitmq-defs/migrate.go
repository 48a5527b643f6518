package main

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

var defaultMigrationRules = []string{
	"prepare_for_quorum_queue_migration",
	"drop_empty_policies",
}

type migrateOptions struct {
	vhost    string
	rules    []string
	snapshot string
	dryRun   bool
}

func newMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Export definitions, transform them and import the result",
		Long: `Export definitions, transform them and import the result.

The exported definitions can be kept with --snapshot before anything is
imported. With --dry-run only the changes are printed.`,
		Example: `  rabbitmq-defs migrate --dry-run
  rabbitmq-defs migrate --snapshot s3://rabbitmq-definitions/before-migration.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts)
		},
	}
	c.Flags().StringVar(&opts.vhost, "vhost", "", "migrate only this virtual host")
	c.Flags().StringSliceVar(&opts.rules, "rules", defaultMigrationRules, "comma-separated transformation names, applied in order")
	c.Flags().StringVar(&opts.snapshot, "snapshot", "", "file path or s3://bucket/key to keep the exported definitions at")
	c.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the changes without importing them")
	return c
}

func runMigrate(cmd *cobra.Command, opts *migrateOptions) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var exported string
	if opts.vhost != "" {
		exported, err = client.ExportVirtualHostDefinitionsAsString(ctx, opts.vhost)
	} else {
		exported, err = client.ExportClusterWideDefinitionsAsString(ctx)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if opts.snapshot != "" {
		if err := writeDefinitions(ctx, cmd, opts.snapshot, formatJSON, []byte(exported)); err != nil {
			return err
		}
		logger.Info("saved snapshot", "location", opts.snapshot)
	}

	data := []byte(exported)
	var (
		rows        []diffRow
		transformed any
	)
	if opts.vhost != "" {
		before, err := definitions.ParseVirtualHostDefinitionSet(data)
		if err != nil {
			return err
		}
		after, err := transformVirtualHost(data, opts.rules)
		if err != nil {
			return err
		}
		rows = virtualHostDiffRows(definitions.DiffVirtualHost(before, after))
		transformed = after
	} else {
		before, err := definitions.ParseClusterDefinitionSet(data)
		if err != nil {
			return err
		}
		after, err := transformCluster(data, opts.rules)
		if err != nil {
			return err
		}
		rows = clusterDiffRows(definitions.Diff(before, after))
		transformed = after
	}

	if err := printDiffRows(cmd.OutOrStdout(), rows); err != nil {
		return err
	}
	if opts.dryRun {
		return nil
	}

	var buf bytes.Buffer
	if err := definitions.Encode(&buf, transformed); err != nil {
		return err
	}
	start := time.Now()
	if opts.vhost != "" {
		err = client.ImportVirtualHostDefinitions(ctx, opts.vhost, buf.Bytes())
	} else {
		err = client.ImportClusterWideDefinitions(ctx, buf.Bytes())
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("imported transformed definitions", "rules", opts.rules, "took", time.Since(start))
	return nil
}

type diffRow struct {
	collection string
	removed    int
	added      int
	modified   int
}

func rowOf[T any](collection string, d definitions.CollectionDiff[T]) diffRow {
	return diffRow{
		collection: collection,
		removed:    len(d.OnlyInLeft),
		added:      len(d.OnlyInRight),
		modified:   len(d.Modified),
	}
}

func clusterDiffRows(d definitions.ClusterDefinitionSetDiff) []diffRow {
	return []diffRow{
		rowOf("vhosts", d.VirtualHosts),
		rowOf("users", d.Users),
		rowOf("permissions", d.Permissions),
		rowOf("topic_permissions", d.TopicPermissions),
		rowOf("parameters", d.Parameters),
		rowOf("global_parameters", d.GlobalParameters),
		rowOf("policies", d.Policies),
		rowOf("operator_policies", d.OperatorPolicies),
		rowOf("queues", d.Queues),
		rowOf("exchanges", d.Exchanges),
		rowOf("bindings", d.Bindings),
	}
}

func virtualHostDiffRows(d definitions.VirtualHostDefinitionSetDiff) []diffRow {
	return []diffRow{
		rowOf("parameters", d.Parameters),
		rowOf("policies", d.Policies),
		rowOf("queues", d.Queues),
		rowOf("exchanges", d.Exchanges),
		rowOf("bindings", d.Bindings),
	}
}

// printDiffRows prints only collections that changed.
func printDiffRows(w io.Writer, rows []diffRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tREMOVED\tADDED\tMODIFIED")
	changed := 0
	for _, r := range rows {
		if r.removed == 0 && r.added == 0 && r.modified == 0 {
			continue
		}
		changed++
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", r.collection, r.removed, r.added, r.modified)
	}
	if changed == 0 {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}
	return tw.Flush()
}
