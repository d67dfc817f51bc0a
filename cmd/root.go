package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gofex/gofex"
)

var (
	rulesFile     string
	matchPatterns []string
	subTemplates  []string
	iterate       bool
	maxIterations int
	timeout       time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gofex",
	Short: "gofex - syntax-aware search and replace for Go source",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	rootCmd.SetArgs(dispatch(os.Args[1:]))
	return rootCmd.Execute()
}

// dispatch routes bare `gofex [flags] [paths...]` invocations to the search
// subcommand, so search's own flags go through cobra's parsing. Explicit
// subcommands and root-level help pass through untouched.
func dispatch(args []string) []string {
	if len(args) == 0 {
		return args
	}
	switch args[0] {
	case "help", "completion", "-h", "--help":
		return args
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == args[0] || c.HasAlias(args[0]) {
			return args
		}
	}
	return append([]string{"search"}, args...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rule set to load")
	rootCmd.PersistentFlags().StringArrayVar(&matchPatterns, "match", nil, "pattern to match (repeatable, paired with --sub)")
	rootCmd.PersistentFlags().StringArrayVar(&subTemplates, "sub", nil, "replacement template (repeatable, paired with --match)")
	rootCmd.PersistentFlags().BoolVar(&iterate, "iterate", false, "re-apply the rule set on its own output until a fixpoint")
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 0, "cap on fixpoint passes (0 = default)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall processing timeout")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(initCmd)
}

// buildRuleSet merges the rule file (if any) with --match/--sub pairs, file
// rules first.
func buildRuleSet() (gofex.RuleSet, error) {
	var rs gofex.RuleSet
	if rulesFile != "" {
		loaded, err := gofex.LoadRules(rulesFile)
		if err != nil {
			return rs, err
		}
		rs = loaded
	}
	if len(matchPatterns) != len(subTemplates) {
		return rs, fmt.Errorf("--match and --sub must be paired: %d patterns, %d templates",
			len(matchPatterns), len(subTemplates))
	}
	for i := range matchPatterns {
		rs.Rules = append(rs.Rules, gofex.Rule{
			Name:       fmt.Sprintf("cli-%d", i+1),
			Pattern:    matchPatterns[i],
			Template:   subTemplates[i],
			Importance: gofex.ImportanceWarning,
		})
	}
	if iterate {
		rs.Iterate = true
	}
	if maxIterations > 0 {
		rs.MaxIterations = maxIterations
	}
	if len(rs.Rules) == 0 {
		return rs, fmt.Errorf("no rules: provide --rules or --match/--sub pairs")
	}
	return rs, nil
}

func newEngine() (*gofex.Engine, error) {
	rs, err := buildRuleSet()
	if err != nil {
		return nil, err
	}
	engine, err := gofex.NewEngine(rs)
	if err != nil {
		return nil, err
	}
	for _, ruleErr := range engine.RuleErrors() {
		logger.Warn("skipping rule", zap.Error(ruleErr))
	}
	return engine, nil
}
