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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/wordladder/internal/app"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API and the statistics snapshot job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			logger := c.Logger

			// Warm the state so a broken store fails before listening.
			if _, err := c.Trainer.Ladder(ctx); err != nil {
				return fmt.Errorf("load state: %w", err)
			}

			if c.Config.Snapshot.Enabled {
				if err := c.Scheduler.Start(c.Config.Snapshot.Cron); err != nil {
					return err
				}
				defer c.Scheduler.Stop()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- c.Server.StartHTTP() }()

			// Graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			select {
			case sig := <-sigCh:
				logger.Infof("received signal: %s, shutting down", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := c.Server.Shutdown(shutdownCtx); err != nil {
					logger.WithError(err).Warn("http shutdown")
				}
				return c.Trainer.Snapshot(shutdownCtx)
			case err := <-errCh:
				return err
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.http_port)")
	bindFlagToViper("server.host", serveCmd.Flags().Lookup("host"))
	bindFlagToViper("server.http_port", serveCmd.Flags().Lookup("port"))
}
