/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/usecase"
)

// dbInitCmd creates the schema, stores the configured ladder and optionally
// seeds words from a table file.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database and optionally seed words from a table",
	Long: `db-init creates the tables, saves the configured ladder and, with --seed,
imports an .xlsx or .csv word table. Running it again is harmless. Note that
the sqlite3 driver needs a CGO_ENABLED=1 build; use driver "sqlite" otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetString("seed")
		sheet, _ := cmd.Flags().GetString("sheet")

		var rows []usecase.TableRow
		if seed != "" {
			var err error
			if rows, err = usecase.ReadTableFile(seed, sheet); err != nil {
				return err
			}
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Trainer.Persist(ctx); err != nil {
				return fmt.Errorf("store initial state: %w", err)
			}
			c.Logger.WithField("driver", c.Config.DatabaseDriver()).Info("schema ready")

			if len(rows) > 0 {
				report, err := c.Trainer.ImportTable(ctx, rows)
				if err != nil {
					return err
				}
				cmd.Printf("seeded %d of %d rows from %s\n", report.Added, report.Rows, seed)
				for _, e := range report.Errors {
					cmd.Printf("  %s\n", e)
				}
			}

			report, err := c.Trainer.Report(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("database ready: %d words, %d due today\n", report.Words, report.DueRepeat+report.DueNew)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("seed", "", "word table (.xlsx or .csv) to import after initialization")
	dbInitCmd.Flags().String("sheet", "", "worksheet name for .xlsx seeds")
}
