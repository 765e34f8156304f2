package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/services"
	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		userID, invoiceID uint
		format, out       string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one invoice as PDF or XLSX",
		Example: `  # PDF named after the invoice number
  invoicer export --user 1 --invoice 3

  # Spreadsheet to an explicit path
  invoicer export --user 1 --invoice 3 --format xlsx --out march.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := e.open("off")
			if err != nil {
				return err
			}
			d, err := services.NewInvoiceService(conn).FetchInvoiceWithDetails(cmd.Context(), userID, invoiceID)
			if err != nil {
				return fmt.Errorf("invoice %d: %w", invoiceID, err)
			}

			var data []byte
			var name string
			switch strings.ToLower(format) {
			case "pdf":
				data, err = export.RenderPDF(d, layoutFromConfig(e.cfg.Export))
				name = export.PDFFilename(d.InvoiceNumber)
			case "xlsx":
				data, err = export.RenderSpreadsheet(d)
				name = export.XLSXFilename(d.InvoiceNumber)
			default:
				return fmt.Errorf("unknown format %q (want pdf or xlsx)", format)
			}
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "owner user id")
	cmd.Flags().UintVar(&invoiceID, "invoice", 0, "invoice id")
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default invoice-{number}.{format})")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("invoice")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.xlsx",
		Short: "Print the cells of an exported spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := export.ReadSpreadsheet(f)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, row := range rows {
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			return tw.Flush()
		},
	}
}
