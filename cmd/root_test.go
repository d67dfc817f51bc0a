package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no args show help",
			args: nil,
			want: nil,
		},
		{
			name: "bare paths route to search",
			args: []string{"./src"},
			want: []string{"search", "./src"},
		},
		{
			name: "search flags survive routing",
			args: []string{"-R", "./src"},
			want: []string{"search", "-R", "./src"},
		},
		{
			name: "persistent flags route too",
			args: []string{"--rules", "r.yaml", "main.go"},
			want: []string{"search", "--rules", "r.yaml", "main.go"},
		},
		{
			name: "explicit subcommand untouched",
			args: []string{"rewrite", "-i", "main.go"},
			want: []string{"rewrite", "-i", "main.go"},
		},
		{
			name: "init untouched",
			args: []string{"init"},
			want: []string{"init"},
		},
		{
			name: "root help untouched",
			args: []string{"--help"},
			want: []string{"--help"},
		},
		{
			name: "help command untouched",
			args: []string{"help", "rewrite"},
			want: []string{"help", "rewrite"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dispatch(tt.args))
		})
	}
}
