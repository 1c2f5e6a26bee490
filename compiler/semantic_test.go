package compiler

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func analyzeSource(source string) *Diagnostics {
	diags := NewDiagnostics()
	tokens := NewScanner(source, diags).Scan()
	program := NewParser(tokens, diags).Parse()
	NewAnalyzer(diags).Analyze(program)
	return diags
}

func TestAnalyzer_ValidPrograms(t *testing.T) {
	testData := []string{
		`
funcao fatorial(n: inteiro): inteiro {
	se (n <= 1) {
		retorna 1
	}
	retorna n * fatorial(n - 1)
}

funcao principal() {
	escreva("fatorial de 5: ", paraTexto(fatorial(5)))
}
`,
		`
var n: real = raiz(16.0)
var m: real = absoluto(-3)
var k: inteiro = arredonda(2.7)
var c: inteiro = tamanho("abc")
var s: texto = paraTexto(123)
var i: inteiro = paraInteiro("42")
var r: real = paraReal(1)
`,
		`
var x = 10
var pronto = falso
enquanto (x > 0 e nao pronto) {
	x = x - 1
	se (x == 0 ou x < 0) {
		pronto = verdadeiro
	}
}
`,
		`
const LIMITE = 100
para i de 1 ate LIMITE passo 2 {
	escreva(paraTexto(i))
}
`,
		`
var nome: texto = ""
leia("seu nome: ", nome)
escreva("ola, ", nome)
`,
	}
	for _, source := range testData {
		diags := analyzeSource(source)
		assert.Equal(t, 0, diags.Len(), source)
	}
}

func TestAnalyzer_Errors(t *testing.T) {
	testData := []struct {
		source        string
		expectedCode  DiagCode
		expectedCount int
	}{
		// One report per use site of an undeclared name.
		{source: `escreva(paraTexto(y))`, expectedCode: UndeclaredIdentifier, expectedCount: 1},
		{source: `escreva(paraTexto(y), paraTexto(z))`, expectedCode: UndeclaredIdentifier, expectedCount: 2},
		// Strict typing, no implicit widening in either direction.
		{source: `var x: inteiro = 2.5`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `var r: real = 1`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: "var x = 1\nvar x = 2", expectedCode: DuplicateDeclaration, expectedCount: 1},
		{source: "const PI = 3.14\nPI = 3.0", expectedCode: ConstantReassignment, expectedCount: 1},
		{source: "const PI = 3.14\nleia(PI)", expectedCode: ConstantReassignment, expectedCount: 1},
		{source: "var x = 1\nx = \"ola\"", expectedCode: TypeMismatch, expectedCount: 1},
		{source: `se (1 + 2) { }`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `enquanto ("sim") { }`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `para i de 1.5 ate 10 { }`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `retorna 1`, expectedCode: ReturnOutsideFunction, expectedCount: 1},
		{source: `funcao f() { retorna 1 }`, expectedCode: ReturnTypeMismatch, expectedCount: 1},
		{source: `funcao f(): inteiro { retorna }`, expectedCode: ReturnTypeMismatch, expectedCount: 1},
		{source: `funcao f(): inteiro { retorna "a" }`, expectedCode: ReturnTypeMismatch, expectedCount: 1},
		{source: "var x = 1\nx(2)", expectedCode: NotCallable, expectedCount: 1},
		{source: `var x = 1 + "a"`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `var x = nao 5`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `var x = raiz("a")`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `var x = tamanho(1)`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: `var x`, expectedCode: TypeMismatch, expectedCount: 1},
		{source: "funcao f(a: inteiro, a: texto) { }", expectedCode: DuplicateDeclaration, expectedCount: 1},
	}
	for _, data := range testData {
		diags := analyzeSource(data.source)
		semantic := diags.ByPhase(SemanticPhase)
		assert.Len(t, semantic, data.expectedCount, data.source)
		assert.Equal(t, data.expectedCode, semantic[0].Code, data.source)
		// Semantic problems are errors, never fatal.
		assert.False(t, diags.HasFatal(SemanticPhase), data.source)
	}
}

func TestAnalyzer_CallChecks(t *testing.T) {
	testData := []struct {
		source       string
		expectedCode DiagCode
	}{
		{
			source: `
funcao soma(a: inteiro, b: inteiro): inteiro { retorna a + b }
var x = soma(1)
`,
			expectedCode: ArgumentCountMismatch,
		},
		{
			source: `
funcao soma(a: inteiro, b: inteiro): inteiro { retorna a + b }
var x = soma(1, "dois")
`,
			expectedCode: TypeMismatch,
		},
	}
	for _, data := range testData {
		semantic := analyzeSource(data.source).ByPhase(SemanticPhase)
		assert.Len(t, semantic, 1, data.source)
		assert.Equal(t, data.expectedCode, semantic[0].Code)
	}
}

// The error sentinel type stops a single fault from cascading, the bad value
// flows through a declaration, an assignment and a call with one report.
func TestAnalyzer_ErrorTypeDoesNotCascade(t *testing.T) {
	source := `
var x = y + 1
x = x * 2
escreva(paraTexto(x))
`
	semantic := analyzeSource(source).ByPhase(SemanticPhase)
	assert.Len(t, semantic, 1)
	assert.Equal(t, UndeclaredIdentifier, semantic[0].Code)
}

func TestAnalyzer_TypeAnnotations(t *testing.T) {
	testData := []struct {
		expression string
		expectedTP Type
	}{
		{expression: "1 + 2", expectedTP: IntegerType},
		{expression: "1 + 2.0", expectedTP: RealType},
		{expression: "7 / 2", expectedTP: IntegerType},
		{expression: "7.0 / 2", expectedTP: RealType},
		{expression: "2 ** 3", expectedTP: IntegerType},
		{expression: `"a" + "b"`, expectedTP: TextType},
		{expression: "1 < 2", expectedTP: LogicType},
		{expression: `"a" == "b"`, expectedTP: LogicType},
		{expression: "verdadeiro e falso", expectedTP: LogicType},
		{expression: "nao verdadeiro", expectedTP: LogicType},
		{expression: "-3.5", expectedTP: RealType},
		{expression: "raiz(4.0)", expectedTP: RealType},
		{expression: "tamanho(\"abc\")", expectedTP: IntegerType},
	}
	for _, data := range testData {
		diags := NewDiagnostics()
		tokens := NewScanner(data.expression, diags).Scan()
		program := NewParser(tokens, diags).Parse()
		NewAnalyzer(diags).Analyze(program)
		assert.Equal(t, 0, diags.Len(), data.expression)
		expr := program.Statements[0].Statement.(*ExprStatementAst).Expr
		assert.Equal(t, data.expectedTP, expr.TP, data.expression)
	}
}

func TestAnalyzer_ScopesShadowAndExpire(t *testing.T) {
	// The inner x shadows the outer one, texto assignment to it is fine.
	clean := `
var x = 1
{
	var x = "interno"
	x = "outro"
}
x = 2
`
	assert.Equal(t, 0, analyzeSource(clean).Len())

	// A block local is gone after the block ends.
	expired := `
{
	var interno = 1
}
interno = 2
`
	semantic := analyzeSource(expired).ByPhase(SemanticPhase)
	assert.Len(t, semantic, 1)
	assert.Equal(t, UndeclaredIdentifier, semantic[0].Code)
}

func TestAnalyzer_ForLoopVariableIsScoped(t *testing.T) {
	source := `
para i de 1 ate 3 {
	escreva(paraTexto(i))
}
escreva(paraTexto(i))
`
	semantic := analyzeSource(source).ByPhase(SemanticPhase)
	assert.Len(t, semantic, 1)
	assert.Equal(t, UndeclaredIdentifier, semantic[0].Code)
}
