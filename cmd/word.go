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
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/entity"
)

var addCmd = &cobra.Command{
	Use:   "add WORD",
	Short: "Add a word with translations to learn, or mark it known or trash",
	Example: `  wordladder add cat --learn kot --learn koshka
  wordladder add the --trash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dispositionFromFlags(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Trainer.AddWord(ctx, args[0], d); err != nil {
				return fmt.Errorf("add %q: %w", args[0], err)
			}
			cmd.Printf("added %s as %s\n", args[0], d.State)
			return nil
		})
	},
}

func dispositionFromFlags(cmd *cobra.Command) (entity.Disposition, error) {
	known, _ := cmd.Flags().GetBool("known")
	trash, _ := cmd.Flags().GetBool("trash")
	toLearn, _ := cmd.Flags().GetStringSlice("learn")
	learned, _ := cmd.Flags().GetStringSlice("learned")

	switch {
	case known && trash:
		return entity.Disposition{}, fmt.Errorf("%w: --known and --trash are exclusive", entity.ErrInvalidDisposition)
	case (known || trash) && len(toLearn)+len(learned) > 0:
		return entity.Disposition{}, fmt.Errorf("%w: inert words take no translations", entity.ErrInvalidDisposition)
	case known:
		return entity.DispositionKnown(), nil
	case trash:
		return entity.DispositionTrash(), nil
	default:
		return entity.DispositionLearn(toLearn, learned), nil
	}
}

var removeCmd = &cobra.Command{
	Use:   "remove WORD",
	Short: "Remove a word and every record pointing back at it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Trainer.RemoveWord(ctx, args[0]); err != nil {
				return fmt.Errorf("remove %q: %w", args[0], err)
			}
			cmd.Printf("removed %s\n", args[0])
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename WORD NEW",
	Short: "Rename a word, or one of its translations with --translation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		translation, _ := cmd.Flags().GetString("translation")
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if translation != "" {
				if err := c.Trainer.RenameTranslation(ctx, args[0], translation, args[1]); err != nil {
					return fmt.Errorf("rename translation %q of %q: %w", translation, args[0], err)
				}
				cmd.Printf("renamed %s → %s to %s\n", args[0], translation, args[1])
				return nil
			}
			if err := c.Trainer.RenameWord(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("rename %q: %w", args[0], err)
			}
			cmd.Printf("renamed %s to %s\n", args[0], args[1])
			return nil
		})
	},
}

var deleteRecordCmd = &cobra.Command{
	Use:   "delete-record WORD TRANSLATION",
	Short: "Delete one word/translation pair in both directions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Trainer.DeleteRecord(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("delete record: %w", err)
			}
			cmd.Printf("deleted %s → %s\n", args[0], args[1])
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit WORD TRANSLATION",
	Short: "Adjust one record: state, ladder position, counters or last practice day",
	Example: `  wordladder edit cat kot --state learned
  wordladder edit cat kot --level 2 --progress 1 --last-practiced 2025-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := recordEditFromFlags(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Trainer.EditRecord(ctx, args[0], args[1], edit); err != nil {
				return fmt.Errorf("edit record: %w", err)
			}
			records, err := c.Trainer.Records(ctx, args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				if r.Points(args[1]) {
					cmd.Printf("%s → %s: %s level %d progress %d last %s (%d/%d)\n", args[0], r.Translation, r.State,
						r.LadderIndex, r.RungProgress, r.LastPracticed, r.Stats.Correct, r.Stats.Total())
				}
			}
			return nil
		})
	},
}

func recordEditFromFlags(cmd *cobra.Command) (entity.RecordEdit, error) {
	var edit entity.RecordEdit
	flags := cmd.Flags()
	if flags.Changed("state") {
		name, _ := flags.GetString("state")
		state, err := entity.ParseRecordState(name)
		if err != nil {
			return edit, err
		}
		edit.State = &state
	}
	if flags.Changed("level") {
		v, _ := flags.GetUint8("level")
		edit.LadderIndex = &v
	}
	if flags.Changed("progress") {
		v, _ := flags.GetUint8("progress")
		edit.RungProgress = &v
	}
	if flags.Changed("last-practiced") {
		raw, _ := flags.GetString("last-practiced")
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return edit, fmt.Errorf("%w: last-practiced: %v", entity.ErrInvalidRecordEdit, err)
		}
		day := entity.DayOf(t, 0)
		edit.LastPracticed = &day
	}
	if flags.Changed("correct") || flags.Changed("incorrect") {
		correct, _ := flags.GetUint64("correct")
		incorrect, _ := flags.GetUint64("incorrect")
		edit.Stats = &entity.AttemptStats{Correct: correct, Incorrect: incorrect}
	}
	if edit == (entity.RecordEdit{}) {
		return edit, fmt.Errorf("%w: nothing to change", entity.ErrInvalidRecordEdit)
	}
	return edit, nil
}

func init() {
	rootCmd.AddCommand(addCmd, removeCmd, renameCmd, deleteRecordCmd, editCmd)

	addCmd.Flags().StringSlice("learn", nil, "translation to learn, repeatable or comma separated")
	addCmd.Flags().StringSlice("learned", nil, "translation already mastered")
	addCmd.Flags().Bool("known", false, "mark the word as previously known")
	addCmd.Flags().Bool("trash", false, "mark the word as noise")

	renameCmd.Flags().String("translation", "", "rename this translation of WORD instead of WORD itself")

	editCmd.Flags().String("state", "", "force the record to to_learn or learned")
	editCmd.Flags().Uint8("level", 0, "ladder index")
	editCmd.Flags().Uint8("progress", 0, "correct answers already counted on the current rung")
	editCmd.Flags().String("last-practiced", "", "last practice day, YYYY-MM-DD")
	editCmd.Flags().Uint64("correct", 0, "correct answers counter; --correct and --incorrect replace both counters")
	editCmd.Flags().Uint64("incorrect", 0, "incorrect answers counter")
}
