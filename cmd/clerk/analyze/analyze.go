// Package analyzecmder provides the analyze command that submits a batch of
// invoices for reimbursement analysis.
package analyzecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/cliui"
	"github.com/papercomputeco/clerk/pkg/client"
	"github.com/papercomputeco/clerk/pkg/config"
)

type analyzeCommander struct {
	employee    string
	policyPath  string
	invoicePath string
	apiTarget   string
}

const analyzeLongDesc string = `Analyze a batch of invoices against a reimbursement policy.

The policy PDF and a ZIP archive of invoice PDFs are uploaded to the clerk
API. Each invoice is analyzed, stored with its reimbursement status and
amounts, and becomes searchable.

Examples:
  clerk analyze --employee "Alice Smith" --policy policy.pdf --invoices may.zip`

const analyzeShortDesc string = "Analyze a batch of invoices"

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.employee, "employee", "e", "", "Employee the invoices belong to")
	cmd.Flags().StringVarP(&cmder.policyPath, "policy", "p", "", "Reimbursement policy PDF")
	cmd.Flags().StringVarP(&cmder.invoicePath, "invoices", "i", "", "ZIP archive of invoice PDFs")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("invoices")

	return cmd
}

func (c *analyzeCommander) run(ctx context.Context) error {
	cl, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	policy, err := os.ReadFile(c.policyPath)
	if err != nil {
		return fmt.Errorf("reading policy: %w", err)
	}
	archive, err := os.ReadFile(c.invoicePath)
	if err != nil {
		return fmt.Errorf("reading invoices: %w", err)
	}

	fmt.Println()
	var result *analysis.BatchResult
	err = cliui.Step(os.Stdout, "Analyzing invoices", func() error {
		var err error
		result, err = cl.Analyze(ctx,
			c.employee,
			filepath.Base(c.policyPath), policy,
			filepath.Base(c.invoicePath), archive,
		)
		return err
	})
	if err != nil {
		return err
	}

	printResult(result)

	if result.Status == analysis.StatusFailure {
		return errors.New("no invoice could be analyzed")
	}
	return nil
}

func printResult(result *analysis.BatchResult) {
	mark := cliui.SuccessMark
	if result.Status != analysis.StatusSuccess {
		mark = cliui.WarnStyle.Render("!")
	}
	if result.Status == analysis.StatusFailure {
		mark = cliui.FailMark
	}

	fmt.Printf("\n  %s %s\n", mark, result.Message)
	for _, id := range result.InvoiceIDs {
		fmt.Printf("    %s\n", cliui.KeyStyle.Render(id))
	}
	for _, e := range result.Errors {
		fmt.Printf("    %s %s\n", cliui.FailMark, cliui.DimStyle.Render(e))
	}
	fmt.Println()
}
