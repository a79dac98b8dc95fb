package main

import (
	"testing"

	"github.com/trezcool/darasa/storage/database/inmem"
)

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := &commandLine{db: inmem.NewStore()}

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "initschema", args: []string{"initschema"}},
		{name: "initschema with timeout", args: []string{"initschema", "-timeout", "5s"}},
		{name: "ping", args: []string{"ping"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != tt.wantErr {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
