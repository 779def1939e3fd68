package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/epitools/tracetab/pkg/errors"
	"github.com/epitools/tracetab/pkg/pipeline"
	"github.com/epitools/tracetab/pkg/store"
)

// resultsCommand creates the results command for the persistent store.
func (c *CLI) resultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Manage saved flatten results",
		Long:  `List, inspect, export, and delete results saved with "tracetab flatten --save".`,
	}

	cmd.AddCommand(c.resultsListCommand())
	cmd.AddCommand(c.resultsShowCommand())
	cmd.AddCommand(c.resultsDeleteCommand())

	return cmd
}

// openStore connects to the configured result store, failing with a user
// friendly error when none is configured.
func (c *CLI) openStore(cmd *cobra.Command) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if cfg.Store.MongoURI == "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "no result store configured (set store.mongo_uri in the config file)")
	}
	return store.NewMongoStore(cmd.Context(), cfg.Store.MongoURI, cfg.Store.Database)
}

// resultsListCommand creates the "results list" subcommand.
func (c *CLI) resultsListCommand() *cobra.Command {
	var (
		limit       int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())

			spin := newSpinnerWithContext(cmd.Context(), "Loading results")
			spin.Start()
			summaries, err := st.ListResults(cmd.Context(), limit)
			spin.Stop()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No saved results")
				return nil
			}

			if interactive {
				return c.pickAndShow(cmd, st, summaries)
			}

			for _, s := range summaries {
				label := s.Label
				if label == "" {
					label = StyleDim.Render("(unlabeled)")
				}
				fmt.Printf("%s  %s  %s  %s\n",
					StyleHighlight.Render(s.ID),
					label,
					StyleDim.Render(fmt.Sprintf("%d rows", s.RowCount)),
					StyleDim.Render(formatRelativeTime(s.CreatedAt)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results to list (0 for the store default)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a result interactively")

	return cmd
}

// pickAndShow runs the interactive picker and prints the chosen result.
func (c *CLI) pickAndShow(cmd *cobra.Command, st store.Store, summaries []store.Summary) error {
	model := NewResultListModel(summaries)
	prog := tea.NewProgram(model)
	final, err := prog.Run()
	if err != nil {
		return err
	}
	m, ok := final.(ResultListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	result, err := st.GetResult(cmd.Context(), m.Selected.Result.ID)
	if err != nil {
		return wrapStoreErr(err, m.Selected.Result.ID)
	}
	showResult(result)
	return nil
}

// resultsShowCommand creates the "results show" subcommand.
func (c *CLI) resultsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())

			result, err := st.GetResult(cmd.Context(), args[0])
			if err != nil {
				return wrapStoreErr(err, args[0])
			}

			if format != "" {
				if err := pipeline.ValidateFormat(format); err != nil {
					return err
				}
				runner := pipeline.NewRunner(nil, nil, nil, c.Logger)
				data, err := runner.Export(cmd.Context(), result.Rows, format)
				if err != nil {
					return err
				}
				os.Stdout.Write(data)
				return nil
			}

			showResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "export as json or csv instead of the table preview")

	return cmd
}

// resultsDeleteCommand creates the "results delete" subcommand.
func (c *CLI) resultsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close(cmd.Context())

			if err := st.DeleteResult(cmd.Context(), args[0]); err != nil {
				return wrapStoreErr(err, args[0])
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// showResult prints a result header and its table preview.
func showResult(result store.Result) {
	printKeyValue("ID", result.ID)
	if result.Label != "" {
		printKeyValue("Label", result.Label)
	}
	printKeyValue("Created", result.CreatedAt.Format("2006-01-02 15:04:05"))
	printKeyValue("Rows", fmt.Sprintf("%d", result.RowCount))
	printNewline()
	printNetworkTable(result.Rows)
}

// wrapStoreErr maps store sentinels onto CLI error codes.
func wrapStoreErr(err error, id string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeResultNotFound, "no result with ID %q", id)
	}
	return errors.Wrap(errors.ErrCodeStore, err, "result store")
}
