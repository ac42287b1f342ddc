package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thriftmap/thriftmap-backend/config"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	"github.com/thriftmap/thriftmap-backend/internal/db"
	"github.com/thriftmap/thriftmap-backend/internal/importer"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"github.com/thriftmap/thriftmap-backend/pkg/qrcode"
)

type seedOptions struct {
	file   string
	yes    bool
	dryRun bool
}

func main() {
	if err := newSeedCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed --file <stores.xlsx|stores.yaml>",
		Short: "Import thrift store listings into the database",
		Long: `Reads store listings from an XLSX sheet or a YAML document and creates
them through the same validation as the HTTP API. Invalid rows are reported
and skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to an .xlsx, .yaml or .yml file")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse the file and report without writing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *seedOptions) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Reading file: %s\n", opts.file)
	result, err := importer.ReadFile(opts.file)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Stores to import: %d\n", len(result.Stores))
	fmt.Fprintf(out, "Skipped rows: %d\n", len(result.Skipped))
	for _, skip := range result.Skipped {
		fmt.Fprintf(out, "  line %d: %s\n", skip.Line, skip.Reason)
	}

	if opts.dryRun || len(result.Stores) == 0 {
		return nil
	}
	if !opts.yes && !confirm(cmd.InOrStdin(), out) {
		fmt.Fprintln(out, "Import cancelled.")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Initialize(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := db.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	stores := service.NewStoreService(
		repository.NewStoreRepository(db.GetDB()),
		qrcode.NewGenerator(cfg.Share.QRCodeSize, "M"),
		cfg.Share.PublicBaseURL,
	)
	summary, err := importer.Import(context.Background(), stores, result.Stores)
	fmt.Fprintf(out, "Created: %d, rejected: %d\n", summary.Created, summary.Rejected)
	if err != nil {
		return err
	}
	if summary.Created == 0 {
		return errors.New("no stores were imported")
	}

	fmt.Fprintln(out, "Import completed successfully!")
	return nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Do you want to proceed with the import? (yes/no): ")
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
