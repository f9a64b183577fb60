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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetlevel/deptrast/sbom"
)

var createOutputPath string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Resolve the project's dependency graph and emit a CycloneDX SBOM",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer recoverInvariantViolation()

		g, err := runPipeline(cmd.Context(), configPath)
		if err != nil {
			return err
		}

		bom, err := sbom.NewAssembler().Assemble(g)
		if err != nil {
			return fmt.Errorf("assembling sbom: %w", err)
		}

		out := os.Stdout
		if createOutputPath != "" {
			f, err := os.Create(createOutputPath)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bom)
	},
}

func init() {
	createCmd.Flags().StringVarP(&createOutputPath, "output", "o", "", "output file path (default: stdout)")
}
