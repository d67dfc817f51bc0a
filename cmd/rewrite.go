package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gofex/gofex"
	"github.com/gofex/gofex/internal/batch"
	"github.com/gofex/gofex/internal/report"
)

var (
	rewriteInPlace   bool
	rewriteRecursive bool
	rewriteDiff      bool
	rewriteWatch     bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Apply the rule set and emit the rewritten source",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		if len(args) == 0 {
			logger.Fatal("no paths given")
		}

		if rewriteWatch {
			runWatch(engine, args)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results, err := batch.Process(ctx, logger, engine, args, batch.Options{
			Recursive: rewriteRecursive,
			Progress:  rewriteInPlace,
		})
		if err != nil {
			logger.Fatal("processing failed", zap.Error(err))
		}

		hadErr := false
		hadConflict := false
		for _, res := range results {
			if res.Err != nil {
				hadErr = true
				continue
			}
			for _, c := range res.Result.Dropped {
				logger.Warn("overlapping substitution dropped",
					zap.String("file", res.Path), zap.String("conflict", c.String()))
			}
			if res.Result.Unresolved() {
				hadConflict = true
			}
			if rewriteDiff && res.Changed() {
				fmt.Print(report.FormatDiff(res.Path, res.Original, res.Result.Text))
			}
			if res.Changed() {
				fmt.Fprint(os.Stderr, report.FormatMessages(res.Path, res.Result.Applied))
			}
		}

		if rewriteInPlace {
			if err := batch.WriteInPlace(results); err != nil {
				logger.Fatal("writing results", zap.Error(err))
			}
		} else if !rewriteDiff {
			// Stream rewritten sources to stdout, in path order.
			for _, res := range results {
				if res.Err != nil {
					continue
				}
				if len(results) > 1 {
					fmt.Printf("--- %s ---\n", res.Path)
				}
				fmt.Print(res.Result.Text)
			}
		}

		if hadErr || hadConflict {
			os.Exit(1)
		}
	},
}

func runWatch(engine *gofex.Engine, paths []string) {
	watcher, err := batch.NewWatcher(logger, engine, paths, func(res batch.FileResult) {
		if res.Err != nil || !res.Changed() {
			return
		}
		if rewriteDiff {
			fmt.Print(report.FormatDiff(res.Path, res.Original, res.Result.Text))
		}
		fmt.Fprint(os.Stderr, report.FormatMessages(res.Path, res.Result.Applied))
		if rewriteInPlace {
			if err := batch.WriteInPlace([]batch.FileResult{res}); err != nil {
				logger.Error("writing result", zap.String("path", res.Path), zap.Error(err))
			}
		}
	})
	if err != nil {
		logger.Fatal("starting watcher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("watching for changes", zap.Strings("paths", paths))
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("watch failed", zap.Error(err))
	}
}

func init() {
	rewriteCmd.Flags().BoolVarP(&rewriteInPlace, "in-place", "i", false, "write results back to the input files")
	rewriteCmd.Flags().BoolVarP(&rewriteRecursive, "recursive", "R", false, "descend into directories")
	rewriteCmd.Flags().BoolVar(&rewriteDiff, "diff", false, "print a diff instead of the rewritten source")
	rewriteCmd.Flags().BoolVar(&rewriteWatch, "watch", false, "keep running and rewrite files as they change")
}
