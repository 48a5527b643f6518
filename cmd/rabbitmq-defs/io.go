package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/snapshot"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// stdio is used when a location is empty or "-"
func isStdio(location string) bool {
	return location == "" || location == "-"
}

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("invalid output format %q, must be json or yaml", format)
}

func isYAMLLocation(location string) bool {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readDefinitions reads a definition set from a file, an s3:// URL or stdin
// and returns it as JSON. Files ending in .yaml or .yml are converted.
func readDefinitions(ctx context.Context, cmd *cobra.Command, location string) ([]byte, error) {
	var data []byte
	if isStdio(location) {
		var err error
		if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		store, key, err := snapshot.Open(location, cfg.S3())
		if err != nil {
			return nil, err
		}
		if data, err = store.Get(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", location, err)
		}
	}
	if isYAMLLocation(location) {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s to JSON: %w", location, err)
		}
		return converted, nil
	}
	return data, nil
}

// writeDefinitions writes JSON data in format to a file, an s3:// URL or stdout.
func writeDefinitions(ctx context.Context, cmd *cobra.Command, location, format string, data []byte) error {
	if format == formatYAML {
		converted, err := yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("failed to convert definitions to YAML: %w", err)
		}
		data = converted
	}
	if isStdio(location) {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	store, key, err := snapshot.Open(location, cfg.S3())
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return nil
}
