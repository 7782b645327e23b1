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
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/entity"
	"github.com/eslsoft/wordladder/internal/usecase"
	"github.com/eslsoft/wordladder/pkg/textscan"
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Extract candidate words from a text or .srt file",
	Long: `scan splits a text into words, drops the ones already in the store and
lists the rest by frequency. Use - to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		radius, _ := cmd.Flags().GetInt("context")
		srt, _ := cmd.Flags().GetBool("srt")
		addAs, _ := cmd.Flags().GetString("add-as")

		var mark entity.Disposition
		switch addAs {
		case "":
		case "known":
			mark = entity.DispositionKnown()
		case "trash":
			mark = entity.DispositionTrash()
		default:
			return fmt.Errorf("%w: --add-as must be known or trash", entity.ErrInvalidDisposition)
		}

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		if strings.EqualFold(filepath.Ext(args[0]), ".srt") {
			srt = true
		}
		var res textscan.Result
		if srt {
			if res, err = textscan.ScanSRT(data); err != nil {
				return fmt.Errorf("parse subtitles: %w", err)
			}
		} else {
			res = textscan.Scan(data)
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			report, err := c.Trainer.Ingest(ctx, res)
			if err != nil {
				return err
			}
			if limit > 0 && len(report.Unknown) > limit {
				report.Unknown = report.Unknown[:limit]
			}
			if addAs != "" {
				for _, occ := range report.Unknown {
					if err := c.Trainer.AddWord(ctx, occ.Word, mark); err != nil {
						return fmt.Errorf("add %q: %w", occ.Word, err)
					}
				}
				cmd.Printf("marked %d words as %s\n", len(report.Unknown), addAs)
				return nil
			}
			return render(cmd, report, func(w io.Writer) error {
				return writeIngestReport(w, report, res, radius)
			})
		})
	},
}

func writeIngestReport(w io.Writer, report usecase.IngestReport, res textscan.Result, radius int) error {
	fmt.Fprintf(w, "%d words, %d unique, %d unknown, %d learning, %d settled\n",
		report.WordsCount, report.UniqueCount, len(report.Unknown), len(report.Learning), len(report.Settled))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tCOUNT\tCONTEXT")
	for _, occ := range report.Unknown {
		snippet := ""
		if radius > 0 && len(occ.Spans) > 0 {
			snippet = res.Context(occ.Spans[0], radius)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", occ.Word, len(occ.Spans), snippet)
	}
	return tw.Flush()
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

var importTableCmd = &cobra.Command{
	Use:   "import-table FILE",
	Short: "Import words from an .xlsx or .csv table",
	Long: `import-table reads rows of word, translations, disposition. Translations
are separated by ';'. The disposition is learn (default), learned, known or
trash. A first row starting with "word" is treated as a header.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		rows, err := usecase.ReadTableFile(args[0], sheet)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			report, err := c.Trainer.ImportTable(ctx, rows)
			if err != nil {
				return err
			}
			return render(cmd, report, func(w io.Writer) error {
				fmt.Fprintf(w, "imported %d of %d rows\n", report.Added, report.Rows)
				for _, e := range report.Errors {
					fmt.Fprintf(w, "  %s\n", e)
				}
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd, importTableCmd)

	addOutputFlag(scanCmd)
	scanCmd.Flags().Int("limit", 0, "show at most this many unknown words")
	scanCmd.Flags().Int("context", 30, "bytes of context around the first occurrence, 0 to hide")
	scanCmd.Flags().Bool("srt", false, "treat input as SubRip subtitles (implied by .srt)")
	scanCmd.Flags().String("add-as", "", "store the listed unknown words as known or trash instead of printing them")

	addOutputFlag(importTableCmd)
	importTableCmd.Flags().String("sheet", "", "worksheet name for .xlsx files (default: first sheet)")
}
