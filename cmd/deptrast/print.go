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

	"github.com/spf13/cobra"

	"github.com/planetlevel/deptrast/tree"
)

var printStyle string

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Resolve the project's dependency graph and print it as a text tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer recoverInvariantViolation()

		g, err := runPipeline(cmd.Context(), configPath)
		if err != nil {
			return err
		}

		style, err := parseStyle(printStyle)
		if err != nil {
			return err
		}

		fmt.Print(tree.Render(g, style))
		return nil
	},
}

func init() {
	printCmd.Flags().StringVar(&printStyle, "style", "unicode", "tree style: unicode, ascii, or maven")
}

func parseStyle(raw string) (tree.Style, error) {
	switch raw {
	case "unicode":
		return tree.Unicode, nil
	case "ascii":
		return tree.ASCII, nil
	case "maven":
		return tree.Maven, nil
	default:
		return tree.Unicode, fmt.Errorf("unknown tree style %q (want unicode, ascii, or maven)", raw)
	}
}
