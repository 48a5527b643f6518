package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/transformers"
)

type exportOptions struct {
	vhost  string
	out    string
	format string
}

func newExportCmd() *cobra.Command {
	opts := &exportOptions{}
	c := &cobra.Command{
		Use:   "export",
		Short: "Export cluster-wide or virtual host definitions",
		Example: `  # Export all definitions to stdout
  rabbitmq-defs export

  # Export one virtual host as YAML to a file
  rabbitmq-defs export --vhost orders --format yaml --out orders.yaml

  # Keep a snapshot in S3-compatible storage
  rabbitmq-defs export --out s3://rabbitmq-definitions/prod/2026-10-17.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	c.Flags().StringVar(&opts.vhost, "vhost", "", "export only this virtual host")
	c.Flags().StringVarP(&opts.out, "out", "o", "-", "file path, s3://bucket/key or - for stdout")
	c.Flags().StringVar(&opts.format, "format", formatJSON, "json or yaml")
	return c
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var body string
	if opts.vhost != "" {
		body, err = client.ExportVirtualHostDefinitionsAsString(ctx, opts.vhost)
	} else {
		body, err = client.ExportClusterWideDefinitionsAsString(ctx)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	logger.Debug("exported definitions", "vhost", opts.vhost, "bytes", len(body))
	return writeDefinitions(ctx, cmd, opts.out, opts.format, []byte(body))
}

type transformOptions struct {
	in          string
	out         string
	format      string
	rules       []string
	vhostScoped bool
}

func newTransformCmd() *cobra.Command {
	opts := &transformOptions{}
	c := &cobra.Command{
		Use:   "transform",
		Short: "Apply a chain of named transformations to a definition file",
		Long: `Apply a chain of named transformations to a definition file.

Cluster-wide rules: ` + strings.Join(transformers.Names(), ", ") + `
Virtual host rules: ` + strings.Join(transformers.VirtualHostNames(), ", "),
		Example: `  rabbitmq-defs transform --in defs.json --out migrated.json \
    --rules prepare_for_quorum_queue_migration,drop_empty_policies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, opts)
		},
	}
	c.Flags().StringVarP(&opts.in, "in", "i", "-", "file path, s3://bucket/key or - for stdin")
	c.Flags().StringVarP(&opts.out, "out", "o", "-", "file path, s3://bucket/key or - for stdout")
	c.Flags().StringVar(&opts.format, "format", formatJSON, "json or yaml")
	c.Flags().StringSliceVar(&opts.rules, "rules", nil, "comma-separated transformation names, applied in order")
	c.Flags().BoolVar(&opts.vhostScoped, "vhost-scoped", false, "the input is a virtual host definition set")
	return c
}

func runTransform(cmd *cobra.Command, opts *transformOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}
	ctx := cmd.Context()
	data, err := readDefinitions(ctx, cmd, opts.in)
	if err != nil {
		return err
	}

	var transformed any
	if opts.vhostScoped {
		transformed, err = transformVirtualHost(data, opts.rules)
	} else {
		transformed, err = transformCluster(data, opts.rules)
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := definitions.Encode(&buf, transformed); err != nil {
		return err
	}
	return writeDefinitions(ctx, cmd, opts.out, opts.format, buf.Bytes())
}

func transformCluster(data []byte, rules []string) (*definitions.ClusterDefinitionSet, error) {
	chain, err := transformers.NewTransformationChainFromNames(rules)
	if err != nil {
		return nil, err
	}
	defs, err := definitions.ParseClusterDefinitionSet(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("applying transformations", "rules", rules)
	return chain.Apply(defs), nil
}

func transformVirtualHost(data []byte, rules []string) (*definitions.VirtualHostDefinitionSet, error) {
	chain, err := transformers.NewVirtualHostTransformationChainFromNames(rules)
	if err != nil {
		return nil, err
	}
	defs, err := definitions.ParseVirtualHostDefinitionSet(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("applying transformations", "rules", rules)
	return chain.Apply(defs), nil
}

type importOptions struct {
	in    string
	vhost string
}

func newImportCmd() *cobra.Command {
	opts := &importOptions{}
	c := &cobra.Command{
		Use:   "import",
		Short: "Import a definition file into the cluster or a virtual host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}
	c.Flags().StringVarP(&opts.in, "in", "i", "-", "file path, s3://bucket/key or - for stdin")
	c.Flags().StringVar(&opts.vhost, "vhost", "", "import into this virtual host")
	return c
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	ctx := cmd.Context()
	data, err := readDefinitions(ctx, cmd, opts.in)
	if err != nil {
		return err
	}
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	if opts.vhost != "" {
		err = client.ImportVirtualHostDefinitions(ctx, opts.vhost, data)
	} else {
		err = client.ImportClusterWideDefinitions(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("imported definitions", "source", opts.in, "vhost", opts.vhost)
	return nil
}
