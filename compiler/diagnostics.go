package compiler

import "fmt"

// Diagnostics collected across the whole pipeline. Every phase appends to the
// same collector instead of aborting, so a single run reports all lexical,
// syntax and semantic problems of a file at once.

type Phase int

const (
	LexicalPhase Phase = iota
	SyntaxPhase
	SemanticPhase
)

func (p Phase) String() string {
	switch p {
	case LexicalPhase:
		return "lexical"
	case SyntaxPhase:
		return "syntax"
	case SemanticPhase:
		return "semantic"
	}
	return "unknown"
}

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	// SeverityFatal blocks code generation. Lexical and syntax errors are
	// fatal, semantic errors are not.
	SeverityFatal
)

type DiagCode int

const (
	UnrecognizedCharacter DiagCode = iota
	UnterminatedString
	UnterminatedComment
	MalformedNumber
	UnexpectedToken
	DuplicateDeclaration
	UndeclaredIdentifier
	TypeMismatch
	ConstantReassignment
	ReturnTypeMismatch
	ReturnOutsideFunction
	ArgumentCountMismatch
	NotCallable
)

type Diagnostic struct {
	Phase    Phase
	Severity Severity
	Code     DiagCode
	Message  string
	Line     int
	Column   int
	// Expected and Found describe the token mismatch on syntax errors.
	Expected string
	Found    string
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s error at line %d column %d: %s", d.Phase, d.Line, d.Column, d.Message)
}

type Diagnostics struct {
	list []*Diagnostic
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (ds *Diagnostics) addLexical(code DiagCode, line, column int, format string, args ...interface{}) {
	ds.list = append(ds.list, &Diagnostic{
		Phase:    LexicalPhase,
		Severity: SeverityFatal,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
	})
}

func (ds *Diagnostics) addSyntax(expected, found string, line, column int) {
	ds.list = append(ds.list, &Diagnostic{
		Phase:    SyntaxPhase,
		Severity: SeverityFatal,
		Code:     UnexpectedToken,
		Message:  fmt.Sprintf("%s, found '%s'", expected, found),
		Line:     line,
		Column:   column,
		Expected: expected,
		Found:    found,
	})
}

func (ds *Diagnostics) addSemantic(code DiagCode, line, column int, format string, args ...interface{}) {
	ds.list = append(ds.list, &Diagnostic{
		Phase:    SemanticPhase,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
	})
}

func (ds *Diagnostics) All() []*Diagnostic {
	return ds.list
}

func (ds *Diagnostics) ByPhase(phase Phase) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range ds.list {
		if d.Phase == phase {
			out = append(out, d)
		}
	}
	return out
}

func (ds *Diagnostics) HasFatal(phase Phase) bool {
	for _, d := range ds.list {
		if d.Phase == phase && d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

func (ds *Diagnostics) Len() int {
	return len(ds.list)
}
