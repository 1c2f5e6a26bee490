package compiler

// The pipeline. Compile runs the four stages in order on one source text.
// Scanning, parsing and semantic analysis always all run, they share one
// diagnostics collector and each stage works on whatever its predecessor
// produced. Code generation only runs when the source scanned and parsed
// cleanly, semantic errors do not block it. The run counts as a success only
// when no diagnostic of any phase was recorded.

type Result struct {
	Program     *Program
	Output      string
	Diagnostics *Diagnostics
	Success     bool
}

func Compile(source string) *Result {
	diags := NewDiagnostics()
	tokens := NewScanner(source, diags).Scan()
	program := NewParser(tokens, diags).Parse()
	NewAnalyzer(diags).Analyze(program)

	result := &Result{Program: program, Diagnostics: diags}
	if !diags.HasFatal(LexicalPhase) && !diags.HasFatal(SyntaxPhase) {
		result.Output = NewGenerator().Generate(program)
	}
	result.Success = diags.Len() == 0
	return result
}
