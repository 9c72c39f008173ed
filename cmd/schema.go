package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"tablesync/core/database"

	"github.com/spf13/cobra"
)

// tablesCmd represents the tables command
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the relational tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		tables, err := database.NewCatalog(a.db).ListTables(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Println(t)
		}
		return nil
	},
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema [table...]",
	Short: "Print the column type tags used by the codec",
	Long: `Prints every column of the given tables (all tables by default) in codec order,
id first, with its declared type and the type tag values are coerced to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		catalog := database.NewCatalog(a.db)
		tables := args
		if len(tables) == 0 {
			if tables, err = catalog.ListTables(ctx); err != nil {
				return err
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tCOLUMN\tTYPE\tTAG")
		var failed error
		for _, table := range tables {
			cols, err := catalog.Columns(ctx, table)
			if err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t%v\n", table, err)
				failed = fmt.Errorf("schema of %s: %w", table, err)
				continue
			}
			for _, c := range cols {
				tag := c.Tag.String()
				if !c.Tag.Supported() {
					tag += " (unsupported)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", table, c.Name, c.Type, tag)
			}
		}
		_ = w.Flush()
		return failed
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd, schemaCmd)
}
