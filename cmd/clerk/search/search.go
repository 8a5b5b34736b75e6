// Package searchcmder provides the search command for hybrid invoice search.
package searchcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/clerk/pkg/cliui"
	"github.com/papercomputeco/clerk/pkg/client"
	"github.com/papercomputeco/clerk/pkg/config"
	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
)

type searchCommander struct {
	query string
	limit uint
	quiet bool

	employee  string
	status    string
	invoiceID string
	amount    string
	date      string

	apiTarget string
}

const searchLongDesc string = `Search analyzed invoices via the clerk API.

Results are ranked by similarity to the query text. Employee, status and
invoice id filters match exactly; --amount keeps invoices whose total is
within 20 of the given amount, and --date accepts a day (2024-05-14) or a
whole month (May 2024).

Use --quiet to output only invoice ids, one per line.

Examples:
  clerk search "taxi rides"
  clerk search "hotel" --employee "Alice Smith" --date "May 2024"
  clerk search "dinner" --amount 120 --status Declined
  clerk search "conference" --limit 3 --quiet`

const searchShortDesc string = "Search analyzed invoices"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
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
			if !cmd.Flags().Changed("limit") {
				cmder.limit = cfg.Search.Limit
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddUintFlag(cmd, config.Flags, config.FlagSearchLimit, &cmder.limit)
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only invoice ids, one per line")
	cmd.Flags().StringVar(&cmder.employee, "employee", "", "Only invoices of this employee")
	cmd.Flags().StringVar(&cmder.status, "status", "", "Only invoices with this status")
	cmd.Flags().StringVar(&cmder.invoiceID, "invoice-id", "", "Only the invoice with this id")
	cmd.Flags().StringVar(&cmder.amount, "amount", "", "Approximate total amount")
	cmd.Flags().StringVar(&cmder.date, "date", "", "A day or a month")

	return cmd
}

// Bag collects the non-empty filter flags.
func (c *searchCommander) Bag() retrieval.FilterBag {
	bag := retrieval.FilterBag{}
	for key, value := range map[string]string{
		retrieval.FilterEmployeeName: c.employee,
		retrieval.FilterStatus:       c.status,
		retrieval.FilterInvoiceID:    c.invoiceID,
		retrieval.FilterAmount:       c.amount,
		retrieval.FilterDate:         c.date,
	} {
		if value = strings.TrimSpace(value); value != "" {
			bag[key] = value
		}
	}
	return bag
}

func (c *searchCommander) run(ctx context.Context) error {
	cl, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	output, err := cl.Search(ctx, c.query, c.Bag(), int(c.limit))
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Println(result.ID)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		cliui.HeaderStyle.Render("Search Results for:"),
		cliui.KeyStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, result := range output.Results {
		printResult(i+1, result)
	}

	return nil
}

func printResult(rank int, result records.Result) {
	m := result.Metadata

	fmt.Printf("  %s  %s  %s\n",
		cliui.NameStyle.Render(fmt.Sprintf("#%d", rank)),
		cliui.DimStyle.Render(fmt.Sprintf("distance: %.4f", result.Distance)),
		cliui.KeyStyle.Render(result.ID),
	)
	fmt.Printf("  %s  %s  %s\n",
		cliui.ValueStyle.Render(m.EmployeeName),
		cliui.StatusStyle(string(m.Status)).Render(string(m.Status)),
		cliui.DimStyle.Render(m.Date),
	)
	fmt.Printf("  %s %s   %s %s\n",
		cliui.DimStyle.Render("total:"),
		cliui.ValueStyle.Render(fmt.Sprintf("$%.2f", m.TotalAmount)),
		cliui.DimStyle.Render("approved:"),
		cliui.ValueStyle.Render(fmt.Sprintf("$%.2f", m.ApprovedAmount)),
	)
	if m.Reason != "" {
		reason := strings.ReplaceAll(m.Reason, "\n", " ")
		fmt.Printf("  %s\n", cliui.DimStyle.Render(ansi.Truncate(reason, 100, "...")))
	}
	fmt.Println()
}
