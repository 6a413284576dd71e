// Package main provides the CLI entry point for unxlsx.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simp-lee/unxlsx"
	"github.com/spf13/cobra"
)

var (
	outputPath         string
	sheetNames         []string
	keepWorkbook       bool
	keepSheets         bool
	keepVBA            bool
	allowSignatureLoss bool
	logLevel           string
	logFormat          string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "unxlsx",
		Short: "Remove protection markers from xlsx/xlsm spreadsheets",
		Long: `unxlsx removes workbook structure protection, per-sheet protection,
and embedded VBA projects from Office Open XML spreadsheet packages
without altering any other content. It does not break encryption:
password-encrypted files are rejected.`,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Report protection markers without modifying the file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	unprotectCmd := &cobra.Command{
		Use:   "unprotect [input.xlsx]",
		Short: "Write an unprotected copy of the spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnprotect,
	}
	unprotectCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: <input>_unprotected<ext>)")
	unprotectCmd.Flags().StringSliceVar(&sheetNames, "sheets", nil, "Only unprotect the named sheets (default: all)")
	unprotectCmd.Flags().BoolVar(&keepWorkbook, "keep-workbook-protection", false, "Leave workbook structure protection in place")
	unprotectCmd.Flags().BoolVar(&keepSheets, "keep-sheet-protection", false, "Leave sheet protection in place")
	unprotectCmd.Flags().BoolVar(&keepVBA, "keep-vba", false, "Leave an embedded VBA project in place")
	unprotectCmd.Flags().BoolVar(&allowSignatureLoss, "allow-signature-loss", false, "Edit signed packages, invalidating their signature")

	rootCmd.AddCommand(inspectCmd, unprotectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	pkg, err := unxlsx.Open(args[0])
	if err != nil {
		return err
	}

	report, err := unxlsx.Inspect(pkg)
	if err != nil {
		return err
	}

	fmt.Printf("Workbook structure protected: %v\n", report.WorkbookProtected)
	fmt.Printf("Protected sheets (%d):\n", len(report.ProtectedSheets))
	for _, s := range report.ProtectedSheets {
		fmt.Printf("  %s (%s)\n", s.Name, s.Path)
	}
	fmt.Printf("Unprotected sheets (%d):\n", len(report.UnprotectedSheets))
	for _, s := range report.UnprotectedSheets {
		fmt.Printf("  %s (%s)\n", s.Name, s.Path)
	}
	fmt.Printf("VBA project: %v\n", report.HasVBA)
	fmt.Printf("Digitally signed: %v\n", report.Signed)
	return nil
}

func runUnprotect(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	outPath := outputPath
	if outPath == "" {
		ext := filepath.Ext(inPath)
		outPath = strings.TrimSuffix(inPath, ext) + "_unprotected" + ext
	}

	opts := []unxlsx.Option{
		unxlsx.WithWorkbookProtection(!keepWorkbook),
		unxlsx.WithSheetProtection(!keepSheets),
		unxlsx.WithVBARemoval(!keepVBA),
		unxlsx.WithAllowSignatureLoss(allowSignatureLoss),
		unxlsx.WithLogger(newLogger(logLevel, logFormat)),
	}
	if len(sheetNames) > 0 {
		opts = append(opts, unxlsx.WithSheets(sheetNames...))
	}

	result, err := unxlsx.UnprotectFile(inPath, outPath, opts...)
	if err != nil {
		return err
	}

	if !result.Changed() {
		fmt.Printf("No protection markers found; wrote unchanged copy to %s\n", outPath)
		return nil
	}
	if result.WorkbookStripped {
		fmt.Println("Removed workbook structure protection")
	}
	if len(result.SheetsStripped) > 0 {
		fmt.Printf("Unprotected sheets: %s\n", strings.Join(result.SheetsStripped, ", "))
	}
	if result.VBARemoved {
		fmt.Println("Removed VBA project")
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

// newLogger builds the slog logger that receives pipeline stage events.
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
