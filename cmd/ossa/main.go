// OSSA CLI.
// Validates agent manifests and works with trace context on the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blueflyio/ossa-go/manifest"
)

const version = "0.3.3"

var (
	schemaPath string
	outputJSON bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ossa",
		Short:   "OSSA CLI - Open Standard for Scalable AI Agents",
		Long:    "OSSA CLI validates agent manifests and creates, parses, and emits trace context.",
		Version: version,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate an OSSA manifest",
		Long:  "Validates an OSSA manifest against the JSON Schema specification.",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to custom schema (defaults to embedded v0.3.3)")
	validateCmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "Output as JSON")

	infoCmd := &cobra.Command{
		Use:   "info [manifest]",
		Short: "Display manifest information",
		Long:  "Loads and displays information about an OSSA manifest.",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	infoCmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(newContextCmd())
	rootCmd.AddCommand(newEmitCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	result, err := manifest.ValidateFile(path, schemaPath)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if outputJSON {
		if result.Valid {
			fmt.Println(`{"valid": true}`)
		} else {
			fmt.Printf("{\"valid\": false, \"errors\": %d}\n", len(result.Issues))
		}
		if !result.Valid {
			return fmt.Errorf("validation failed")
		}
		return nil
	}

	if result.Valid {
		fmt.Printf("✅ %s is valid\n", path)
		return nil
	}

	fmt.Printf("❌ %s is invalid (%d errors)\n", path, len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Printf("  • %s\n", issue)
	}
	return fmt.Errorf("validation failed")
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	if outputJSON {
		data, err := m.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Name:        %s\n", m.Metadata.Name)
	fmt.Printf("Kind:        %s\n", m.Kind)
	fmt.Printf("API Version: %s\n", m.APIVersion)
	if m.Metadata.Version != "" {
		fmt.Printf("Version:     %s\n", m.Metadata.Version)
	}
	if m.Metadata.Description != "" {
		fmt.Printf("Description: %s\n", m.Metadata.Description)
	}
	if m.Spec.LLM != nil {
		fmt.Printf("LLM:         %s/%s\n", m.Spec.LLM.Provider, m.Spec.LLM.Model)
	}
	if len(m.Spec.Tools) > 0 {
		fmt.Printf("Tools:       %d\n", len(m.Spec.Tools))
	}

	return nil
}
