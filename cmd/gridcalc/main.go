// Package main provides the gridcalc command line entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edusuite/gridcalc/internal/config"
	"github.com/edusuite/gridcalc/internal/logging"
	"github.com/edusuite/gridcalc/internal/web"
	"github.com/edusuite/gridcalc/sheet"
	"github.com/edusuite/gridcalc/xlsxio"
)

var (
	cellRef    string
	pretty     bool
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridcalc",
		Short: "Evaluate spreadsheet formulas",
		Long: `gridcalc evaluates spreadsheet cells containing literals and formulas
(arithmetic over cell references plus SUM, AVERAGE, COUNT, MAX, MIN)
and reports evaluation faults in-band as marker strings.`,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [input.xlsx|input.json]",
		Short: "Evaluate a sheet file and print cell values as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().StringVar(&cellRef, "cell", "", "Evaluate a single cell instead of the whole sheet")
	evalCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	evalCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation HTTP server",
		RunE:  runServe,
	}

	rootCmd.AddCommand(evalCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	snap, err := loadSheet(inputPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inputPath, err)
	}

	var result any
	if cellRef != "" {
		addr, ok := sheet.Canonicalize(cellRef)
		if !ok {
			return fmt.Errorf("%q is not a cell reference", cellRef)
		}
		result = map[string]string{addr: snap.Display(addr)}
	} else {
		result = snap.EvaluateAll()
	}

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, append(out, '\n'), 0644)
	}
	fmt.Println(string(out))
	return nil
}

func loadSheet(path string) (sheet.Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return xlsxio.LoadJSON(f)
	case ".xlsx":
		return xlsxio.Load(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Missing .env is fine, real deployments configure the environment
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	srv := web.NewServer(cfg, web.NewSheetStore())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
