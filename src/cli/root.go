// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/ct-cert-checker/src/config"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/checker"
	x509chain "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/logger"
)

var (
	// ErrChainFileRequired indicates that no chain file argument was given.
	ErrChainFileRequired = errors.New("chain file is required (use - for stdin)")

	// ErrEmptyChain indicates a chain file holding no certificates.
	ErrEmptyChain = errors.New("no certificates found in chain input")

	// ErrUntrusted indicates a chain that loaded but did not verify.
	ErrUntrusted = errors.New("chain is not trusted")
)

var (
	// OperationPerformed is set once a chain check has started.
	OperationPerformed bool

	// OperationPerformedSuccessfully is set when the checked chain is trusted.
	OperationPerformedSuccessfully bool
)

// stdinName is the CHAIN_FILE argument that reads the chain from stdin.
const stdinName = "-"

type options struct {
	configFile    string
	roots         []string
	intermediates []string
	precert       bool
	format        string
	verbose       bool
	outputFile    string
	derFormat     bool
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewCommand(version, log).ExecuteContext(ctx)
}

// NewCommand builds the root command. Results are written to the command's
// output stream and diagnostics to log.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	opts := &options{}
	name := posix.ExecutableName()

	cmd := &cobra.Command{
		Use:   name + " [CHAIN_FILE]",
		Short: "Certificate Transparency certificate chain checker",
		Long: `Check that a leaf-first certificate chain, or a CT precertificate chain,
is correctly signed link by link and ends at a trusted certificate.

The chain may be PEM, concatenated DER or PKCS#7. Exits non-zero when the
chain is not trusted.`,
		Example: fmt.Sprintf(`  %[1]s -r roots/ca.pem chain.pem
  %[1]s -r roots/ca.pem -a intermediate.pem -o full-chain.pem leaf.pem
  %[1]s -r roots/ca.pem -p -f tree precert-chain.pem
  cat chain.pem | %[1]s -c checker.yaml -`, name),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "JSON or YAML config file (env "+config.EnvConfigFile+")")
	flags.StringArrayVarP(&opts.roots, "root", "r", nil, "trusted certificate file (repeatable)")
	flags.StringArrayVarP(&opts.intermediates, "intermediate", "a", nil, "certificate file appended to the chain (repeatable)")
	flags.BoolVarP(&opts.precert, "precert", "p", false, "check as a precertificate chain")
	flags.StringVarP(&opts.format, "format", "f", config.FormatText, "output format: text, tree, table or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log trust loading and verification steps")
	flags.StringVarP(&opts.outputFile, "output", "o", "", "write the assembled chain to OUTPUT_FILE")
	flags.BoolVarP(&opts.derFormat, "der", "d", false, "write --output in DER format instead of PEM")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options, log logger.Logger) error {
	if len(args) == 0 {
		return ErrChainFileRequired
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	cfg.Roots = append(cfg.Roots, opts.roots...)
	cfg.Intermediates = append(cfg.Intermediates, opts.intermediates...)
	cfg.Precert = cfg.Precert || opts.precert
	if cmd.Flags().Changed("format") {
		cfg.Format = opts.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	OperationPerformed = true

	var checkerOpts []checker.Option
	if opts.verbose {
		checkerOpts = append(checkerOpts, checker.WithLogger(log))
	}
	c := checker.New(checkerOpts...)

	if _, err := c.LoadTrustedCertificates(cfg.Roots...); err != nil {
		return fmt.Errorf("loading trusted certificates: %w", err)
	}

	ch, err := readChain(cmd, args[0])
	if err != nil {
		return err
	}
	for _, path := range cfg.Intermediates {
		extra, err := readChain(cmd, path)
		if err != nil {
			return err
		}
		for _, cert := range extra.Certificates() {
			ch.AddCert(cert)
		}
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}

	var verr error
	if cfg.Precert {
		verr = c.VerifyProtoCertChain(x509chain.PrecertFromChain(ch))
	} else {
		verr = c.VerifyCertChain(ch)
	}

	if err := render(cmd.OutOrStdout(), cfg.Format, ch, verr); err != nil {
		return err
	}

	if opts.outputFile != "" {
		data := ch.EncodePEM()
		if opts.derFormat {
			data = ch.EncodeDER()
		}
		if err := os.WriteFile(opts.outputFile, data, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	}

	if verr != nil {
		return fmt.Errorf("%w: %w", ErrUntrusted, verr)
	}
	OperationPerformedSuccessfully = true
	return nil
}

// readChain loads the chain at path, or from stdin for "-".
func readChain(cmd *cobra.Command, path string) (*x509chain.Chain, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinName {
		data, err = gc.ReadAll(cmd.InOrStdin())
	} else {
		data, err = gc.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	ch := x509chain.New(data)
	if ch.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyChain, path)
	}
	return ch, nil
}

func render(w io.Writer, format string, ch *x509chain.Chain, verr error) error {
	status := checker.Status(ch.Len(), verr)

	switch format {
	case config.FormatTree:
		_, err := fmt.Fprintln(w, ch.RenderASCIITree(status))
		return err
	case config.FormatTable:
		_, err := fmt.Fprint(w, ch.RenderTable(status))
		return err
	case config.FormatJSON:
		data, err := ch.ToVisualizationJSON(status)
		if err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return renderText(w, ch, status, verr)
	}
}

func renderText(w io.Writer, ch *x509chain.Chain, status x509chain.Status, verr error) error {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	for i, cert := range ch.Certificates() {
		subject := "<unparsed>"
		if cert.IsLoaded() {
			subject = cert.SubjectName()
		}
		note, ok := status[i]
		if !ok {
			note = "unchecked"
		}
		fmt.Fprintf(buf, "%d: %s [%s]\n", i, subject, note)
	}

	if verr != nil {
		fmt.Fprintf(buf, "FAIL: %v\n", verr)
	} else {
		buf.WriteString("OK: chain is trusted\n")
	}

	_, err := buf.WriteTo(w)
	return err
}
