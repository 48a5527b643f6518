package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/passwordhashing"
	"github.com/michaelklishin/rabbitmq-http-api-go/internal/uris"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print a salted SHA-256 hash usable as a user's password_hash",
		Long: `Print a salted SHA-256 hash usable as a user's password_hash.

Without an argument the password is read from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := passwordhashing.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

type amqpURIOptions struct {
	verifyPeer bool
	caCert     string
	cert       string
	key        string
	sni        string
}

func newAMQPURICmd() *cobra.Command {
	opts := &amqpURIOptions{}
	c := &cobra.Command{
		Use:   "amqp-uri [BASE_URI]",
		Short: "Print an AMQP URI with TLS query parameters",
		Long: `Print an AMQP URI with TLS query parameters.

Without BASE_URI the URI is built from RABBITMQ_AMQP_* variables.`,
		Example: `  rabbitmq-defs amqp-uri amqps://rabbit.local --cacertfile /etc/rabbitmq/ca.pem`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAMQPURI(cmd, args, opts)
		},
	}
	c.Flags().BoolVar(&opts.verifyPeer, "verify-peer", true, "verify the server certificate")
	c.Flags().StringVar(&opts.caCert, "cacertfile", "", "CA bundle path")
	c.Flags().StringVar(&opts.cert, "certfile", "", "client certificate path")
	c.Flags().StringVar(&opts.key, "keyfile", "", "client private key path")
	c.Flags().StringVar(&opts.sni, "server-name-indication", "", "SNI host name")
	return c
}

func runAMQPURI(cmd *cobra.Command, args []string, opts *amqpURIOptions) error {
	var (
		base string
		err  error
	)
	if len(args) == 1 {
		base = args[0]
	} else if base, err = cfg.AMQPURI(); err != nil {
		return err
	}
	b, err := uris.NewBuilder(base)
	if err != nil {
		return err
	}

	settings := uris.TLSClientSettings{
		CACertificateFile:    opts.caCert,
		ClientCertificate:    opts.cert,
		ClientPrivateKey:     opts.key,
		ServerNameIndication: opts.sni,
	}
	if cmd.Flags().Changed("verify-peer") || strings.HasPrefix(base, "amqps://") {
		if opts.verifyPeer {
			settings = settings.Merge(uris.WithVerification())
		} else {
			settings = settings.Merge(uris.WithoutVerification())
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), b.Merge(settings).Build())
	return nil
}
