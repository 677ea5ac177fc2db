package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"validate": false, "lookup": false, "watch": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %q subcommand registered on root command", name)
		}
	}
}

func TestBuildCommandTree_AllCommandsHaveRunE(t *testing.T) {
	root := NewRootCmd()
	for _, sub := range root.Commands() {
		c := sub
		t.Run(c.Name(), func(t *testing.T) {
			if c.RunE == nil {
				t.Errorf("command %q has nil RunE; must wire RunE for error visibility", c.Name())
			}
		})
	}
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "calmlint") {
		t.Errorf("expected help output to contain \"calmlint\", got: %s", out.String())
	}
}

func TestRootCmd_ConfigFlagIsPersistent(t *testing.T) {
	root := NewRootCmd()
	validate, _, err := root.Find([]string{"validate"})
	if err != nil {
		t.Fatalf("Find(validate) error = %v", err)
	}
	if validate.InheritedFlags().Lookup("config") == nil {
		t.Error("validate does not inherit --config")
	}
}
