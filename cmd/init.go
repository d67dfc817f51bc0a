package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultRulesFile = "gofex.yaml"

const starterRules = `# gofex rule set.
#
# Each rule pairs a pattern with a replacement template. $name matches any
# expression or statement and carries what it matched into the template.
rules:
  - name: simplify-self-assign
    pattern: "$x = $x"
    template: ""
    importance: info
    message: "assignment of a variable to itself has no effect"

  - name: double-negation
    pattern: "!!$x"
    template: "$x"
    importance: warning

iterate: false
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter rule file in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(defaultRulesFile); err == nil {
			logger.Fatal("rule file already exists", zap.String("path", defaultRulesFile))
		}
		if err := os.WriteFile(defaultRulesFile, []byte(starterRules), 0o644); err != nil {
			logger.Fatal("writing rule file", zap.Error(err))
		}
		fmt.Printf("wrote %s\n", defaultRulesFile)
	},
}
