package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/wordladder/internal/app"
	"github.com/eslsoft/wordladder/internal/usecase/backup"
)

// sectionsFromConfig reads the backup sections selected under key. An empty
// selection means every section.
func sectionsFromConfig(key string) ([]string, error) {
	return parseSections(viper.GetStringSlice(key))
}

func parseSections(values []string) ([]string, error) {
	names := lo.Uniq(lo.FilterMap(values, func(v string, _ int) (string, bool) {
		name := strings.ToLower(strings.TrimSpace(v))
		return name, name != ""
	}))
	if len(names) == 0 {
		return nil, nil
	}
	if unknown, _ := lo.Difference(names, backup.AllSections); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown backup section %s (choose from %s)",
			strings.Join(unknown, ", "), strings.Join(backup.AllSections, ", "))
	}
	return names, nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// withContainer builds the application container for one command run.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	c, cleanup, err := app.Initialize(configPath())
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, c)
}
