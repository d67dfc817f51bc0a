package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gofex/gofex/internal/batch"
	"github.com/gofex/gofex/internal/report"
	"github.com/gofex/gofex/internal/types"
)

var (
	searchRecursive bool
	searchFirst     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [paths...]",
	Short: "Report where the rule set matches, without rewriting anything",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine()
		if err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		files, err := batch.Expand(args, searchRecursive)
		if err != nil {
			logger.Fatal("resolving paths", zap.Error(err))
		}
		if len(files) == 0 {
			logger.Fatal("no source files to search")
		}

		found := false
		hadErr := false
		for _, path := range files {
			src, err := os.ReadFile(path)
			if err != nil {
				logger.Error("reading file", zap.String("path", path), zap.Error(err))
				hadErr = true
				continue
			}
			it, err := engine.FindIter(path, string(src))
			if err != nil {
				logger.Error("parsing file", zap.String("path", path), zap.Error(err))
				hadErr = true
				continue
			}

			var subs []types.Substitution
			if searchFirst {
				if sub, ok := it.Next(); ok {
					subs = append(subs, sub)
				}
			} else {
				subs = it.All()
			}
			for _, iterErr := range it.Errs() {
				logger.Warn("skipped candidate", zap.String("path", path), zap.Error(iterErr))
			}
			if len(subs) == 0 {
				continue
			}
			found = true
			fmt.Print(report.FormatSubstitutions(path, string(src), subs))
		}

		if hadErr {
			os.Exit(2)
		}
		if found {
			os.Exit(1)
		}
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchRecursive, "recursive", "R", false, "descend into directories")
	searchCmd.Flags().BoolVar(&searchFirst, "first", false, "stop at the first match per file")
}
