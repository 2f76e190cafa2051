package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/raphaelvigee/gmk/lexer"
	"github.com/raphaelvigee/gmk/parser"
)

var dumpMacros bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpMacros, "macros", false, "Also dump the macro tokens of every variable")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file|dir/...>",
	Short: "Dump tokens and the parsed makefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := args[0]
		if strings.HasSuffix(p, "/...") {
			p = strings.TrimSuffix(p, "/...")
			c := 0
			err := filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				if info.IsDir() {
					return nil
				}

				if info.Name() == "Makefile" || strings.HasSuffix(info.Name(), ".mk") {
					fmt.Println(path)
					c++
					return dump(path, false)
				}

				return nil
			})
			fmt.Printf("Found %v files\n", c)
			return err
		} else {
			return dump(p, true)
		}
	},
}

func dump(path string, print bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tokens := lexer.Tokenize(string(data), path)
	if print {
		PrintTokens(tokens)
		fmt.Println()
	}

	mf, err := parser.Parse(tokens)
	if err != nil {
		return err
	}

	if !print {
		return nil
	}

	repr.Println(mf.Vars.All())
	repr.Println(mf.Rules)
	fmt.Println()

	if dumpMacros {
		for _, v := range mf.Vars.All() {
			if err := PrintMacroTokens(v.Name, v.Value); err != nil {
				return err
			}
		}
	}

	w, err := load(path)
	if err != nil {
		return err
	}
	if err := w.exp.Expand(w.mf); err != nil {
		return err
	}

	repr.Println(w.exp.Vars().Names())
	repr.Println(w.mf.Rules)

	return nil
}

func PrintTokens(tokens []lexer.Token) {
	for _, t := range tokens {
		fmt.Println(t.StringAlign())
	}
}

func PrintMacroTokens(name, value string) error {
	toks, err := lexer.TokenizeMacro(value)
	if err != nil {
		return err
	}

	fmt.Println(name)
	for _, t := range toks {
		fmt.Println("  " + t.StringAlign())
	}

	return nil
}
