// Copyright 2024 The Deptrast Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetlevel/deptrast/graphbuild"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "deptrast",
	Short: "Synthesize a software bill of materials from a resolved dependency graph",
	Long: "deptrast fetches resolved dependency trees from a package metadata service, " +
		"reconciles version conflicts, and emits a CycloneDX software bill of materials.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// An InternalInvariantViolation is a bug in the pipeline, not a
		// recoverable condition for a library caller — but the CLI is the
		// one place that must not crash the user's terminal for it.
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "deptrast.yaml", "path to the project configuration file")
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the deptrast version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("deptrast", Version)
	},
}

func recoverInvariantViolation() {
	if r := recover(); r != nil {
		if invErr, ok := r.(*graphbuild.InvariantError); ok {
			fmt.Fprintln(os.Stderr, "deptrast: internal invariant violation:", invErr.Error())
			os.Exit(2)
		}
		panic(r)
	}
}
