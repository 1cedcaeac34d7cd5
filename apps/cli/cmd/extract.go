package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqflow/packages/jsonfield"
)

var extractFlags struct {
	input      string
	syntax     string
	defaultVal string
	returnType string
	multiple   bool
}

var extractCmd = &cobra.Command{
	Use:   "extract PATH",
	Short: "Extract a field from a JSON document",
	Long: `Extract resolves a path expression against a JSON document read from
stdin or --input. Supported syntaxes: simple dot notation, nested bracket
notation, and jsonpath-style path queries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if extractFlags.input != "" {
			data, err = os.ReadFile(extractFlags.input)
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		result := jsonfield.Extract(string(data), args[0], jsonfield.Options{
			Syntax:     jsonfield.Syntax(extractFlags.syntax),
			Default:    extractFlags.defaultVal,
			ReturnType: jsonfield.ReturnType(extractFlags.returnType),
			Multiple:   extractFlags.multiple,
		})

		if !result.Found {
			fmt.Fprintln(os.Stderr, result.Message)
			if result.Value == "" {
				os.Exit(1)
			}
		}
		fmt.Println(result.Value)
		return nil
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.input, "input", "", "read JSON from a file instead of stdin")
	f.StringVar(&extractFlags.syntax, "syntax", "jsonpath", "path syntax: simple, nested, jsonpath")
	f.StringVar(&extractFlags.defaultVal, "default", "", "value to print when the path does not match")
	f.StringVar(&extractFlags.returnType, "return", "auto", "result rendering: auto, string, json")
	f.BoolVar(&extractFlags.multiple, "multiple", false, "print all matches as a JSON array")
}
