package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"exprvm/pkg/compiler"
)

const testSource = `x = 10;
y = x++ + 2;
z = (x + y) * -3;
`

var rawDumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

// Dumps every stage of the pipeline for each line: tokens, tree, assembly
// and the machine state after the statement.
func main() {
	raw := flag.Bool("raw", false, "dump tokens and trees as raw Go values")
	flag.Parse()

	var in io.Reader
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	} else {
		fmt.Printf("Source:\n%s\n", testSource)
		in = strings.NewReader(testSource)
	}

	session := compiler.NewSession(compiler.DefaultConfig())
	scanner := bufio.NewScanner(in)
	for n := 1; scanner.Scan(); n++ {
		src := scanner.Text()
		fmt.Printf("== line %d: %s\n", n, src)

		tokens, err := compiler.Lex(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lex error:", err)
		} else {
			fmt.Printf("Tokens (%d)\n", len(tokens))
			if *raw {
				rawDumper.Fdump(os.Stdout, tokens)
			} else {
				fmt.Print(compiler.FormatTokens(compiler.Disambiguate(tokens)))
			}

			root, err := compiler.Parse(tokens)
			if err != nil {
				fmt.Fprintln(os.Stderr, "parse error:", err)
			} else {
				fmt.Println("Tree")
				if *raw {
					rawDumper.Fdump(os.Stdout, root)
				} else {
					fmt.Print(compiler.FormatTree(root))
				}
			}
		}

		asm, err := session.Compile(src)
		if err != nil {
			fmt.Println(compiler.FailureIndicator)
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Println("Generated Assembly")
			fmt.Print(asm)
		}
		fmt.Print(session.State())
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
}
