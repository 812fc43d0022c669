package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/shift-pay/api"
	"github.com/warp/shift-pay/config"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/report"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/session/memory"
	"github.com/warp/shift-pay/sheet"
)

const appVersion = "0.3.0"

// now is the clock used for result file names.
var now = time.Now

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "shiftpay",
		Short:         "Daily pay calculator for shift attendance sheets",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("shiftpay v{{.Version}}\n")
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional .env file to load")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.SetupLogging()
		return cfg, nil
	}

	root.AddCommand(newComputeCmd(loadConfig), newTemplateCmd(), newServeCmd(loadConfig))
	return root
}

// =============================================================================
// COMPUTE
// =============================================================================

func newComputeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		out       string
		ratesFile string
		strict    bool
		lenient   bool
	)

	cmd := &cobra.Command{
		Use:   "compute <file>",
		Short: "Compute every row of an attendance sheet (.csv, .xlsx, .xls)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if ratesFile != "" {
				cfg.RatesFile = ratesFile
			}
			if strict {
				cfg.StrictTimes = true
			}
			if lenient {
				cfg.StrictShiftTypes = false
			}

			rates, err := cfg.Rates()
			if err != nil {
				return fmt.Errorf("failed to load rates: %w", err)
			}
			svc := session.NewService(memory.New(), pay.NewCalculator(rates), cfg.SessionConfig())
			return runCompute(cmd.Context(), svc, args[0], out, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Result file; .xlsx writes Excel, anything else CSV (default: 給与計算結果_<time>.csv)")
	cmd.Flags().StringVar(&ratesFile, "rates", "", "JSON rates file (overrides RATES_FILE)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject malformed start/end times instead of treating them as zero hours")
	cmd.Flags().BoolVar(&lenient, "lenient-shifts", false, "Pay unrecognized shift labels as night shifts")
	return cmd
}

func runCompute(ctx context.Context, svc *session.Service, in, out string, stdout, stderr io.Writer) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()

	sess, err := svc.Upload(ctx, filepath.Base(in), f)
	if err != nil {
		var verr *sheet.ValidationError
		if errors.As(err, &verr) {
			for _, r := range verr.Rows {
				fmt.Fprintln(stderr, r)
			}
			return fmt.Errorf("%s: %d invalid cell(s)", in, len(verr.Rows))
		}
		return err
	}

	format := formatFor(out)
	if out == "" {
		out = sheet.ResultFileName(now(), format)
	}
	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	if _, err := svc.Export(ctx, sess.ID, dst, format); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write result file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}

	printSummary(stdout, report.Summarize(sess.Entries()))
	fmt.Fprintf(stdout, "\n%d row(s) written to %s\n", len(sess.Rows), out)
	return nil
}

func formatFor(path string) sheet.Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sheet.FormatXLSX
	}
	return sheet.FormatCSV
}

func printSummary(w io.Writer, s report.Summary) {
	fmt.Fprintln(w, "従業員別集計")
	for _, e := range s.Employees {
		fmt.Fprintf(w, "  %s: %d日, %s時間, %s\n",
			e.Name, e.Days, report.FormatDecimalHours(e.WorkedHours), report.FormatYen(e.TotalPay))
	}

	o := s.Overall
	fmt.Fprintln(w, "全体集計")
	fmt.Fprintf(w, "  勤務件数: %d (日勤 %d, 夜勤 %d)\n", o.Records, o.DayShifts, o.NightShifts)
	fmt.Fprintf(w, "  実働時間: %s時間, 休憩時間: %s時間\n",
		report.FormatDecimalHours(o.WorkedHours), report.FormatDecimalHours(o.BreakHours))
	fmt.Fprintf(w, "  基本給: %s\n", report.FormatYen(o.BasicPay))
	fmt.Fprintf(w, "  夜勤手当: %s\n", report.FormatYen(o.NightAllowance))
	fmt.Fprintf(w, "  深夜手当: %s\n", report.FormatYen(o.MidnightAllowance))
	fmt.Fprintf(w, "  残業手当: %s\n", report.FormatYen(o.OvertimeAllowance))
	fmt.Fprintf(w, "  処遇改善加算手当: %s\n", report.FormatYen(o.BenefitAllowance))
	fmt.Fprintf(w, "  合計: %s\n", report.FormatYen(o.GrandTotal))
	fmt.Fprintf(w, "総支給額: %s\n", report.FormatYen(s.PayrollTotal))
}

// =============================================================================
// TEMPLATE
// =============================================================================

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank attendance sheet with sample rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := formatFor(out)
			if out == "" {
				out = sheet.TemplateFileName(format)
			}
			dst, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}
			if err := sheet.Write(dst, sheet.Template(), format); err != nil {
				dst.Close()
				return fmt.Errorf("failed to write template: %w", err)
			}
			if err := dst.Close(); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Template file; .xlsx writes Excel, anything else CSV")
	return cmd
}

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var port, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return api.Serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "HTTP server port (overrides PORT)")
	cmd.Flags().StringVar(&dbPath, "db", ":memory:", "SQLite database path (overrides DB_PATH)")
	return cmd
}
