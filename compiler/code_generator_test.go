package compiler

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func compileOutput(t *testing.T, source string) string {
	result := Compile(source)
	assert.True(t, result.Success, source)
	return result.Output
}

func TestGenerator_SimpleProgram(t *testing.T) {
	source := `
var x: inteiro = 20 + 5
escreva("x = ", paraTexto(x))
`
	expected := `def paraTexto(valor):
    return str(valor)

x = (20 + 5)
print("x = ", paraTexto(x), sep='')
`
	assert.Equal(t, expected, compileOutput(t, source))
}

func TestGenerator_VarDefaults(t *testing.T) {
	source := `
var a: inteiro
var b: real
var c: texto
var d: logico
`
	expected := `a = 0
b = 0.0
c = ""
d = False
`
	assert.Equal(t, expected, compileOutput(t, source))
}

func TestGenerator_IfElifElse(t *testing.T) {
	source := `
var x = 0
se (x > 0) {
	escreva("positivo")
} senaose (x < 0) {
	escreva("negativo")
} senao {
	escreva("zero")
}
`
	expected := `x = 0
if (x > 0):
    print("positivo", sep='')
elif (x < 0):
    print("negativo", sep='')
else:
    print("zero", sep='')
`
	assert.Equal(t, expected, compileOutput(t, source))
}

// The lusitano range includes both ends, so range gets the + 1.
func TestGenerator_ForRange(t *testing.T) {
	testData := []struct {
		source       string
		expectedLine string
	}{
		{
			source:       "para i de 1 ate 10 { escreva(paraTexto(i)) }",
			expectedLine: "for i in range(1, 10 + 1):",
		},
		{
			source:       "para i de 0 ate 10 passo 2 { escreva(paraTexto(i)) }",
			expectedLine: "for i in range(0, 10 + 1, 2):",
		},
	}
	for _, data := range testData {
		assert.Contains(t, compileOutput(t, data.source), data.expectedLine)
	}
}

func TestGenerator_IntegerDivisionIsFloor(t *testing.T) {
	testData := []struct {
		source       string
		expectedLine string
	}{
		{source: "var a: inteiro = 7 / 2", expectedLine: "a = (7 // 2)"},
		{source: "var b: real = 7.0 / 2", expectedLine: "b = (7.0 / 2)"},
	}
	for _, data := range testData {
		assert.Contains(t, compileOutput(t, data.source), data.expectedLine)
	}
}

func TestGenerator_WhileAndLogicOperators(t *testing.T) {
	source := `
var x = 3
var pronto = falso
enquanto (x > 0 e nao pronto) {
	x -= 1
}
`
	expected := `x = 3
pronto = False
while ((x > 0) and (not pronto)):
    x = (x - 1)
`
	assert.Equal(t, expected, compileOutput(t, source))
}

func TestGenerator_Leia(t *testing.T) {
	source := `
var nome: texto = ""
leia("seu nome: ", nome)
escreva("ola, ", nome)
`
	expected := `nome = ""
nome = input("seu nome: ")
print("ola, ", nome, sep='')
`
	assert.Equal(t, expected, compileOutput(t, source))
}

func TestGenerator_EmptyPrint(t *testing.T) {
	assert.Equal(t, "print()\n", compileOutput(t, "escreva()"))
}

func TestGenerator_PrincipalGuard(t *testing.T) {
	source := `
funcao principal() {
	escreva("ola")
}
`
	expected := `def principal():
    print("ola", sep='')

if __name__ == '__main__':
    principal()
`
	assert.Equal(t, expected, compileOutput(t, source))
	// No principal, no guard.
	assert.NotContains(t, compileOutput(t, "escreva(\"ola\")"), "__main__")
}

func TestGenerator_Factorial(t *testing.T) {
	source := `
funcao fatorial(n: inteiro): inteiro {
	se (n <= 1) {
		retorna 1
	}
	retorna n * fatorial(n - 1)
}

funcao principal() {
	escreva("fatorial de 5: ", paraTexto(fatorial(5)))
}
`
	output := compileOutput(t, source)
	assert.Contains(t, output, "def fatorial(n):")
	assert.Contains(t, output, "if (n <= 1):")
	assert.Contains(t, output, "return 1")
	assert.Contains(t, output, "return (n * fatorial((n - 1)))")
	assert.Contains(t, output, "def paraTexto(valor):")
	assert.Contains(t, output, "if __name__ == '__main__':")
}

func TestGenerator_EmptyFunctionBodyEmitsPass(t *testing.T) {
	assert.Contains(t, compileOutput(t, "funcao nada() { }"), "def nada():\n    pass\n")
}

// Only the builtins a program calls get a helper def.
func TestGenerator_BuiltinHelpersOnDemand(t *testing.T) {
	output := compileOutput(t, "var r: real = raiz(2.0)")
	assert.Contains(t, output, "def raiz(valor):")
	assert.NotContains(t, output, "def paraTexto")
	assert.NotContains(t, output, "def tamanho")
}

func TestGenerator_NestedAssignUsesWalrus(t *testing.T) {
	source := `
var x = 0
var y = 0
x = (y = 5) + 1
`
	assert.Contains(t, compileOutput(t, source), "x = ((y := 5) + 1)")
}

func TestGenerator_ErrorStatementEmitsPass(t *testing.T) {
	program := &Program{Statements: []*Statement{{Kind: ErrorStatement}}}
	assert.Equal(t, "pass\n", NewGenerator().Generate(program))
}

func TestGenerator_PowerAndModulo(t *testing.T) {
	source := `
var a: inteiro = 2 ** 10
var b: inteiro = 17 % 5
`
	output := compileOutput(t, source)
	assert.Contains(t, output, "a = (2 ** 10)")
	assert.Contains(t, output, "b = (17 % 5)")
}
