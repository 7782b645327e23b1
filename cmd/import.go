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
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/usecase/backup"
)

const (
	importInputKey    = "backup.import.input"
	importGzipKey     = "backup.import.gzip"
	importSectionsKey = "backup.import.sections"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore the trainer state from an NDJSON backup",
	Long: `import replaces the selected sections of the stored state with the
content of a backup. The result is validated before anything is saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := viper.GetString(importInputKey)
		gzipEnabled := viper.GetBool(importGzipKey)
		sections, err := sectionsFromConfig(importSectionsKey)
		if err != nil {
			return err
		}

		if inputPath == "" {
			return errors.New("pass the backup file with --input, or - for stdin")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) (err error) {
			var (
				reader  = cmd.InOrStdin()
				closers []func() error
			)

			if inputPath != "-" {
				file, openErr := os.Open(filepath.Clean(inputPath))
				if openErr != nil {
					return fmt.Errorf("open backup file: %w", openErr)
				}
				reader = file
				closers = append(closers, file.Close)
			}

			if gzipEnabled {
				gzr, gzErr := gzip.NewReader(reader)
				if gzErr != nil {
					for _, closer := range closers {
						_ = closer()
					}
					return fmt.Errorf("open gzip reader: %w", gzErr)
				}
				reader = gzr
				closers = append([]func() error{gzr.Close}, closers...)
			}

			defer func() {
				for _, closer := range closers {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			var importOpts []backup.ImportOption
			if len(sections) > 0 {
				importOpts = append(importOpts, backup.WithImportSections(sections))
			}

			if err := c.Backup.Import(ctx, reader, importOpts...); err != nil {
				return fmt.Errorf("import backup: %w", err)
			}

			if inputPath == "-" {
				cmd.Println("import complete: read from stdin")
			} else {
				cmd.Printf("import complete: %s\n", inputPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().StringSlice("sections", nil, "only import these sections: ladder, words, statistics")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importSectionsKey, importCmd.Flags().Lookup("sections"))
}
