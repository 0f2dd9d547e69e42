package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCommand string
		wantOK      bool
		wantOut     []string
	}{
		{name: "known command", args: []string{"climate-db", "stats"}, wantCommand: "stats", wantOK: true},
		{name: "no command", args: []string{"climate-db"}, wantOut: []string{"usage: climate-db <command>", "import", "migrate", "stats"}},
		{name: "unknown command", args: []string{"climate-db", "drop"}, wantOut: []string{"unknown command: drop", "usage: climate-db <command>", "migrate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			command, ok := parseArgs(tt.args, &out)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCommand, command)
			if tt.wantOK {
				assert.Empty(t, out.String())
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}
