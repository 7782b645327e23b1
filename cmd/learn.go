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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/usecase"
)

var errInputClosed = errors.New("input closed")

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Practice today's due words interactively",
	Long: `learn draws a batch of due words and asks for each of their due
translations. Revealed translations must be retyped; hidden ones must be
recalled in any order. Progress is saved after every word.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			sess, err := c.Trainer.StartSession(ctx)
			if err != nil {
				return err
			}
			started := time.Now()
			defer func() {
				if err := c.Trainer.AddWorkingTime(ctx, time.Since(started)); err != nil {
					c.Logger.WithError(err).Warn("store working time")
				}
			}()

			t := &terminal{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			err = runSession(ctx, cmd, t, sess, c.Trainer)
			if errors.Is(err, errInputClosed) {
				sess.Cancel()
				t.println("\nbye")
				return c.Trainer.Persist(ctx)
			}
			return err
		})
	},
}

type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func (t *terminal) println(a ...any) { fmt.Fprintln(t.out, a...) }

func (t *terminal) printf(format string, a ...any) { fmt.Fprintf(t.out, format, a...) }

func (t *terminal) ask(prompt string) (string, error) {
	t.printf("%s", prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *terminal) askInt(prompt string, def int) (int, error) {
	for {
		line, err := t.ask(fmt.Sprintf("%s [%d]: ", prompt, def))
		if err != nil {
			return 0, err
		}
		if line == "" {
			return def, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 0 {
			return n, nil
		}
		t.println("enter a non-negative number")
	}
}

func runSession(ctx context.Context, cmd *cobra.Command, t *terminal, sess *usecase.Session, uc usecase.TrainerUsecase) error {
	batches := 0
	for {
		switch sess.State() {
		case usecase.SessionIdle:
			t.printf("nothing left to practice today (%d words done)\n", sess.Finished())
			return uc.Persist(ctx)
		case usecase.SessionChoosing:
			targets, err := chooseTargets(cmd, t, sess, batches)
			if err != nil {
				return err
			}
			batches++
			if targets == (usecase.Targets{}) {
				return uc.Persist(ctx)
			}
			if err := sess.Choose(targets); err != nil {
				return err
			}
		case usecase.SessionTyping:
			if err := askPrompt(t, sess); err != nil {
				return err
			}
			if err := uc.Persist(ctx); err != nil {
				return err
			}
		case usecase.SessionChecked:
			if err := retypeMistakes(t, sess); err != nil {
				return err
			}
			if err := sess.Next(); err != nil {
				return err
			}
		}
	}
}

// chooseTargets asks for batch sizes. When --repeat or --new is given the
// flags drive the first batch and the session ends after it.
func chooseTargets(cmd *cobra.Command, t *terminal, sess *usecase.Session, batches int) (usecase.Targets, error) {
	q := sess.Queues()
	defaults := sess.DefaultTargets()
	t.printf("due today: %d to repeat, %d new\n", len(q.Repeat), len(q.New))

	flags := cmd.Flags()
	if flags.Changed("repeat") || flags.Changed("new") {
		repeat, _ := flags.GetInt("repeat")
		fresh, _ := flags.GetInt("new")
		if !flags.Changed("repeat") {
			repeat = defaults.Repeat
		}
		if !flags.Changed("new") {
			fresh = defaults.New
		}
		if batches > 0 {
			return usecase.Targets{}, nil
		}
		return usecase.Targets{Repeat: repeat, New: fresh}, nil
	}

	repeat, err := t.askInt("words to repeat", defaults.Repeat)
	if err != nil {
		return usecase.Targets{}, err
	}
	fresh, err := t.askInt("new words", defaults.New)
	if err != nil {
		return usecase.Targets{}, err
	}
	return usecase.Targets{Repeat: repeat, New: fresh}, nil
}

func askPrompt(t *terminal, sess *usecase.Session) error {
	p, ok := sess.Prompt()
	if !ok {
		return fmt.Errorf("%w: no prompt", usecase.ErrSessionState)
	}
	t.printf("\n== %s  (%d attempts on this rung, %d words left)\n", p.Word, p.AttemptsRemaining, p.WordsRemaining)
	for _, k := range p.Known {
		t.printf("   known: %s\n", k)
	}

	typed := make([]string, len(p.ToType))
	for i, want := range p.ToType {
		answer, err := t.ask(fmt.Sprintf("   type %q: ", want))
		if err != nil {
			return err
		}
		typed[i] = answer
	}
	guesses := make([]string, p.GuessCount)
	for i := range guesses {
		answer, err := t.ask(fmt.Sprintf("   translation %d/%d: ", i+1, p.GuessCount))
		if err != nil {
			return err
		}
		guesses[i] = answer
	}

	res, err := sess.Check(typed, guesses)
	if err != nil {
		return err
	}
	if res.AllCorrect() {
		t.println("   ✓ all correct")
	}
	return nil
}

func retypeMistakes(t *terminal, sess *usecase.Session) error {
	res, ok := sess.Checked()
	if !ok {
		return nil
	}
	for _, a := range res.Answers {
		mark := "✓"
		if !a.Correct {
			mark = "✗"
		}
		t.printf("   %s %-20s expected %s\n", mark, a.Given, a.Expected)
	}
	for i, a := range res.Answers {
		if a.Correct || a.Expected == "" {
			continue
		}
		for {
			line, err := t.ask(fmt.Sprintf("   retype %q (empty to skip): ", a.Expected))
			if err != nil {
				return err
			}
			if line == "" {
				break
			}
			match, err := sess.Retype(i, line)
			if err != nil {
				return err
			}
			if match {
				break
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().Int("repeat", 0, "words to repeat in the first batch (skips the question)")
	learnCmd.Flags().Int("new", 0, "new words in the first batch (skips the question)")
}
