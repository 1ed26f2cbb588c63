// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestCommandRegistration(t *testing.T) {
	for _, name := range []string{"collect", "shorten", "group", "minimize", "run-refuter"} {
		t.Run(name, func(t *testing.T) {
			cmd := findCommand(t, name)
			assert.NotNil(t, cmd.Run)
			assert.NotNil(t, cmd.Args)
		})
	}
}

func TestCommandFlags(t *testing.T) {
	t.Run("config flag default", func(t *testing.T) {
		flag := rootCmd.PersistentFlags().Lookup("config")
		require.NotNil(t, flag)
		assert.Equal(t, "proofmin.yaml", flag.DefValue)
	})

	t.Run("minimize overrides default to configured values", func(t *testing.T) {
		cmd := findCommand(t, "minimize")
		for _, name := range []string{"offset", "max-candidates"} {
			flag := cmd.Flags().Lookup(name)
			require.NotNil(t, flag, name)
			assert.Equal(t, "0", flag.DefValue, name)
		}
	})

	t.Run("collect parallelism", func(t *testing.T) {
		cmd := findCommand(t, "collect")
		require.NotNil(t, cmd.Flags().Lookup("parallelism"))
	})
}

func TestArgumentArity(t *testing.T) {
	cases := map[string]int{
		"collect":     2,
		"shorten":     1,
		"group":       1,
		"minimize":    3,
		"run-refuter": 1,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			cmd := findCommand(t, name)
			args := make([]string, want)
			assert.NoError(t, cmd.Args(cmd, args))
			assert.Error(t, cmd.Args(cmd, append(args, "extra")))
		})
	}
}
