package gofex

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gofex/gofex/internal/types"
)

type ruleEntry struct {
	Name       string `yaml:"name"`
	Pattern    string `yaml:"pattern"`
	Template   string `yaml:"template"`
	Importance string `yaml:"importance"`
	Message    string `yaml:"message"`
	URL        string `yaml:"url"`
}

type ruleFile struct {
	Rules         []ruleEntry `yaml:"rules"`
	Iterate       bool        `yaml:"iterate"`
	MaxIterations int         `yaml:"max_iterations"`
}

// LoadRules reads a YAML rule set:
//
//	iterate: true
//	rules:
//	  - name: assert-equal
//	    pattern: self.assertTrue($x == $y)
//	    template: self.assertEqual($x, $y)
//	    importance: warning
//	    message: prefer assertEqual for better failure output
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, err
	}
	var cfg ruleFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rule file %s: %w", path, err)
	}
	rs := RuleSet{Iterate: cfg.Iterate, MaxIterations: cfg.MaxIterations}
	for _, entry := range cfg.Rules {
		rs.Rules = append(rs.Rules, Rule{
			Name:       entry.Name,
			Pattern:    entry.Pattern,
			Template:   entry.Template,
			Importance: types.ParseImportance(entry.Importance),
			Message:    entry.Message,
			URL:        entry.URL,
		})
	}
	return rs, nil
}
