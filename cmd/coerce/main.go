package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	coerce "github.com/kushiro/coerce"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coerce",
		Short:         "Validate and coerce data against a schema definition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(validateCmd(), showCmd())
	return root
}

func validateCmd() *cobra.Command {
	var schemaPath string
	var sparse bool
	cmd := &cobra.Command{
		Use:   "validate [data-file]",
		Short: "Validate a JSON or YAML document, printing the cleaned data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			data, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			clean, err := s.Validate(context.Background(), data, coerce.ValidateOpt{Sparse: sparse})
			if err != nil {
				if ve, ok := coerce.AsValidationError(err); ok {
					payload, merr := json.MarshalIndent(ve.Validation, "", "  ")
					if merr != nil {
						return merr
					}
					fmt.Fprintln(cmd.ErrOrStderr(), string(payload))
					return fmt.Errorf("validation failed (%d)", ve.Validation.Status())
				}
				return err
			}
			out, err := json.MarshalIndent(clean, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema definition file (.json/.yaml)")
	cmd.Flags().BoolVar(&sparse, "sparse", false, "tolerate missing required fields (partial update)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func showCmd() *cobra.Command {
	var sparse bool
	cmd := &cobra.Command{
		Use:   "show [schema-file]",
		Short: "Print the canonical serialized form of a schema definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			if sparse {
				s = s.WithSparse()
			}
			out, err := json.MarshalIndent(s.SchemaArray(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sparse, "sparse", false, "strip required lists before printing")
	return cmd
}

func loadSchema(path string) (*coerce.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return coerce.FromYAML(raw)
	}
	return coerce.FromJSON(raw)
}

func loadDocument(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return coerce.YAMLBytes(raw)
	}
	return coerce.JSONBytes(raw)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
