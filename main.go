package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AsLeonardo/Compilador-Lusitano/compiler"
)

var (
	path   = flag.String("path", "", "path of the lusitano source file")
	output = flag.String("o", "", "path of the generated python file, defaults to the source path with a .py suffix")
)

func main() {
	flag.Parse()
	if *path == "" {
		fmt.Println("please use -path to specify the lusitano source file")
		flag.PrintDefaults()
		os.Exit(1)
	}
	source, err := os.ReadFile(*path)
	if err != nil {
		fmt.Printf("failed to read %s: %v\n", *path, err)
		os.Exit(1)
	}

	result := compiler.Compile(string(source))
	for _, phase := range []compiler.Phase{compiler.LexicalPhase, compiler.SyntaxPhase, compiler.SemanticPhase} {
		for _, diag := range result.Diagnostics.ByPhase(phase) {
			fmt.Fprintln(os.Stderr, diag)
		}
	}
	if !result.Success {
		fmt.Fprintf(os.Stderr, "compilation failed with %d error(s)\n", result.Diagnostics.Len())
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(*path, ".lus") + ".py"
	}
	if err := os.WriteFile(outPath, []byte(result.Output), 0644); err != nil {
		fmt.Printf("failed to write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("compiled %s to %s\n", *path, outPath)
}
