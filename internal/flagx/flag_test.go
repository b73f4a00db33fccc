package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-a", "http://api.local/api", "-i", "30"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", "http://api.local/api"},
		},
		{
			name:         "equals form",
			args:         []string{"-a=http://x/api", "-l", "debug"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a=http://x/api"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "dash-prefixed next token is not a value",
			args:         []string{"-c", "-d", "state.db"},
			allowedFlags: []string{"-c", "-d"},
			want:         []string{"-c", "-d", "state.db"},
		},
		{
			name:         "repeated flag keeps order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "empty args",
			args:         nil,
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestSourceFiles(t *testing.T) {
	t.Run("short -c", func(t *testing.T) {
		j, e := SourceFiles([]string{"-c", "/etc/nytevibe.json"})
		assert.Equal(t, "/etc/nytevibe.json", j)
		assert.Empty(t, e)
	})

	t.Run("long -config and -env", func(t *testing.T) {
		j, e := SourceFiles([]string{"-a", "x", "-config", "cfg.json", "-env", ".env.local"})
		assert.Equal(t, "cfg.json", j)
		assert.Equal(t, ".env.local", e)
	})

	t.Run("last one wins", func(t *testing.T) {
		j, _ := SourceFiles([]string{"-c", "1.json", "-config=2.json"})
		assert.Equal(t, "2.json", j)
	})

	t.Run("nothing given", func(t *testing.T) {
		j, e := SourceFiles([]string{"-i", "60"})
		assert.Empty(t, j)
		assert.Empty(t, e)
	})
}
