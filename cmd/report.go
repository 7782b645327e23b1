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
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/repository"
	"github.com/eslsoft/wordladder/internal/usecase"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show the words due today, most overdue first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			queues, err := c.Trainer.Due(ctx)
			if err != nil {
				return err
			}
			return render(cmd, queues, func(w io.Writer) error {
				if queues.Empty() {
					_, err := fmt.Fprintln(w, "nothing is due today")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "QUEUE\tWORD\tOVERDUE")
				for _, rw := range queues.Repeat {
					fmt.Fprintf(tw, "repeat\t%s\t%d\n", rw.Word, rw.OverdueDays)
				}
				for _, rw := range queues.New {
					fmt.Fprintf(tw, "new\t%s\t%d\n", rw.Word, rw.OverdueDays)
				}
				return tw.Flush()
			})
		})
	},
}

type statsOutput struct {
	usecase.Report `yaml:",inline"`
	History        map[string]entity.DayStatistics `json:"history,omitempty" yaml:"history,omitempty"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts by state, attempt totals and today's activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, _ := cmd.Flags().GetBool("history")
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			report, err := c.Trainer.Report(ctx)
			if err != nil {
				return err
			}
			out := statsOutput{Report: report}
			if history {
				stats, err := c.Trainer.History(ctx)
				if err != nil {
					return err
				}
				out.History = make(map[string]entity.DayStatistics, len(stats.ByDay))
				for _, d := range stats.Days() {
					day, _ := stats.Lookup(d)
					out.History[d.Time().Format(time.DateOnly)] = day
				}
			}
			return render(cmd, out, func(w io.Writer) error {
				return writeReport(w, out)
			})
		})
	},
}

func writeReport(w io.Writer, out statsOutput) error {
	r := out.Report
	fmt.Fprintf(w, "day:       %s\n", r.Day)
	fmt.Fprintf(w, "words:     %d\n", r.Words)
	fmt.Fprintf(w, "due:       %d repeat, %d new\n", r.DueRepeat, r.DueNew)
	fmt.Fprintf(w, "attempts:  %d correct, %d incorrect (still learning)\n", r.AttemptTotals.Correct, r.AttemptTotals.Incorrect)
	fmt.Fprintf(w, "today:     %s\n", r.Today)
	fmt.Fprintln(w, "records by state:")
	for _, b := range r.CountsByState.Buckets() {
		fmt.Fprintf(w, "  %-10s %d\n", b, r.CountsByState[b])
	}
	if len(out.History) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, "history:")
	dates := lo.Keys(out.History)
	sort.Strings(dates)
	for _, date := range dates {
		fmt.Fprintf(w, "  %s  %s\n", date, out.History[date])
	}
	return err
}

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Print the learning ladder in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			ladder, err := c.Trainer.Ladder(ctx)
			if err != nil {
				return err
			}
			return render(cmd, ladder, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "LEVEL\tWAIT\tCOUNT\tMODE")
				for i, r := range ladder {
					mode := "guess"
					if r.RevealPrompt {
						mode = "type"
					}
					fmt.Fprintf(tw, "%d\t%dd\t%d\t%s\n", i, r.WaitDays, r.RequiredCount, mode)
				}
				return tw.Flush()
			})
		})
	},
}

type listOutput struct {
	Words []usecase.WordSummary `json:"words" yaml:"words"`
	Total int64                 `json:"total" yaml:"total"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List words with an optional filter and ordering",
	Example: `  wordladder list --filter "state == 'to_learn' && level >= 1" --order-by "overdue desc"
  wordladder list --filter "word.startsWith('ap')" -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		page, _ := cmd.Flags().GetInt32("page")
		pageSize, _ := cmd.Flags().GetInt32("page-size")
		query := &repository.ListWordsQuery{
			Pagination:  repository.Pagination{PageNo: page, PageSize: pageSize},
			FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			rows, total, err := c.Trainer.ListWords(ctx, query)
			if err != nil {
				return err
			}
			out := listOutput{Words: rows, Total: total}
			return render(cmd, out, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "WORD\tSTATE\tLEVEL\tOVERDUE\tATTEMPTS\tTRANSLATIONS")
				for _, row := range rows {
					level := "-"
					if row.Level >= 0 {
						level = fmt.Sprint(row.Level)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d/%d\t%s\n", row.Word, row.State, level, row.OverdueDays,
						row.Stats.Correct, row.Stats.Total(), strings.Join(row.Translations, ", "))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "page %d, %d of %d words\n", query.PageNo, len(rows), total)
				return err
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(dueCmd, statsCmd, ladderCmd, listCmd)

	for _, c := range []*cobra.Command{dueCmd, statsCmd, ladderCmd, listCmd} {
		addOutputFlag(c)
	}
	statsCmd.Flags().Bool("history", false, "include the per-day history")

	listCmd.Flags().String("filter", "", "CEL filter over word, state, level, overdue, attempts")
	listCmd.Flags().String("order-by", "", "ordering, e.g. \"overdue desc, word\"")
	listCmd.Flags().Int32("page", 1, "page number")
	listCmd.Flags().Int32("page-size", repository.DefaultPageSize, "page size")
}
