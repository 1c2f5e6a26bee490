package compiler

import (
	"strconv"
	"strings"
)

// The code generator lowers the annotated ast to runnable python 3. One
// emission rule per node kind, indentation by nesting depth. Only the
// builtins a program actually calls get their helper emitted, and a program
// declaring `funcao principal` gets the __main__ guard at the end.
//
// Statements the parser replaced with ErrorStatement emit `pass`, so even a
// partially broken source still lowers to syntactically valid python. The
// pipeline never shows that output to the user, generation is skipped on
// fatal diagnostics, but the property keeps the generator total.

var builtinOrder = []string{
	"paraInteiro", "paraReal", "paraTexto", "raiz", "absoluto", "arredonda", "tamanho",
}

var builtinHelpers = map[string]string{
	"paraInteiro": "def paraInteiro(valor):\n    return int(valor)\n",
	"paraReal":    "def paraReal(valor):\n    return float(valor)\n",
	"paraTexto":   "def paraTexto(valor):\n    return str(valor)\n",
	"raiz":        "def raiz(valor):\n    return valor ** 0.5\n",
	"absoluto":    "def absoluto(valor):\n    return float(abs(valor))\n",
	"arredonda":   "def arredonda(valor):\n    return int(round(valor))\n",
	"tamanho":     "def tamanho(valor):\n    return len(valor)\n",
}

type Generator struct {
	body         strings.Builder
	indent       int
	usedBuiltins map[string]bool
	hasPrincipal bool
}

func NewGenerator() *Generator {
	return &Generator{usedBuiltins: map[string]bool{}}
}

func (generator *Generator) Generate(program *Program) string {
	for _, stmt := range program.Statements {
		if stmt.Kind == FunctionDeclStatement && stmt.Statement.(*FunctionDeclAst).Name == "principal" {
			generator.hasPrincipal = true
		}
		generator.genStatement(stmt)
		if stmt.Kind == FunctionDeclStatement {
			generator.body.WriteByte('\n')
		}
	}

	var out strings.Builder
	for _, name := range builtinOrder {
		if generator.usedBuiltins[name] {
			out.WriteString(builtinHelpers[name])
			out.WriteByte('\n')
		}
	}
	out.WriteString(generator.body.String())
	if generator.hasPrincipal {
		out.WriteString("if __name__ == '__main__':\n    principal()\n")
	}
	return out.String()
}

func (generator *Generator) writeLine(line string) {
	generator.body.WriteString(strings.Repeat("    ", generator.indent))
	generator.body.WriteString(line)
	generator.body.WriteByte('\n')
}

func (generator *Generator) genStatement(stmt *Statement) {
	switch stmt.Kind {
	case FunctionDeclStatement:
		generator.genFunctionDecl(stmt.Statement.(*FunctionDeclAst))
	case VarDeclStatement, ConstDeclStatement:
		generator.genVarDecl(stmt.Statement.(*VarDeclAst))
	case BlockStatement:
		generator.genStatements(stmt.Statement.(*BlockAst).Statements)
	case IfStatement:
		generator.genIf(stmt.Statement.(*IfAst), "if")
	case WhileStatement:
		whileAst := stmt.Statement.(*WhileAst)
		generator.writeLine("while " + generator.genExpression(whileAst.Condition) + ":")
		generator.genSuite(whileAst.Body)
	case ForRangeStatement:
		generator.genForRange(stmt.Statement.(*ForRangeAst))
	case PrintStatement:
		generator.genPrint(stmt.Statement.(*PrintAst))
	case ReadStatement:
		generator.genRead(stmt.Statement.(*ReadAst))
	case ReturnStatement:
		returnAst := stmt.Statement.(*ReturnAst)
		if returnAst.Value == nil {
			generator.writeLine("return")
		} else {
			generator.writeLine("return " + generator.genExpression(returnAst.Value))
		}
	case ExpressionStatement:
		generator.genExpressionStatement(stmt.Statement.(*ExprStatementAst).Expr)
	case ErrorStatement:
		generator.writeLine("pass")
	}
}

// genStatements emits a statement list at the current indentation, python has
// no bare block so a lusitano block flattens into its parent suite.
func (generator *Generator) genStatements(statements []*Statement) {
	if len(statements) == 0 {
		generator.writeLine("pass")
		return
	}
	for _, stmt := range statements {
		generator.genStatement(stmt)
	}
}

// genSuite emits stmt one level deeper, as the body of a def/if/while/for.
func (generator *Generator) genSuite(stmt *Statement) {
	generator.indent++
	generator.genStatement(stmt)
	generator.indent--
}

func (generator *Generator) genFunctionDecl(fn *FunctionDeclAst) {
	names := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		names[i] = param.Name
	}
	generator.writeLine("def " + fn.Name + "(" + strings.Join(names, ", ") + "):")
	generator.indent++
	generator.genStatements(fn.Body.Statements)
	generator.indent--
}

func (generator *Generator) genVarDecl(decl *VarDeclAst) {
	if decl.Init != nil {
		generator.writeLine(decl.Name + " = " + generator.genExpression(decl.Init))
		return
	}
	generator.writeLine(decl.Name + " = " + defaultValue(decl.TP))
}

func defaultValue(tp Type) string {
	switch tp {
	case IntegerType:
		return "0"
	case RealType:
		return "0.0"
	case TextType:
		return "\"\""
	case LogicType:
		return "False"
	}
	return "None"
}

// genIf flattens a senaose chain into if/elif/else.
func (generator *Generator) genIf(ifAst *IfAst, keyword string) {
	generator.writeLine(keyword + " " + generator.genExpression(ifAst.Condition) + ":")
	generator.genSuite(ifAst.Then)
	if ifAst.Else == nil {
		return
	}
	if ifAst.Else.Kind == IfStatement {
		generator.genIf(ifAst.Else.Statement.(*IfAst), "elif")
		return
	}
	generator.writeLine("else:")
	generator.genSuite(ifAst.Else)
}

func (generator *Generator) genForRange(forAst *ForRangeAst) {
	from := generator.genExpression(forAst.From)
	// The lusitano range is inclusive at both ends, python's is not.
	to := generator.genExpression(forAst.To) + " + 1"
	if forAst.Step != nil {
		generator.writeLine("for " + forAst.Variable + " in range(" + from + ", " + to + ", " +
			generator.genExpression(forAst.Step) + "):")
	} else {
		generator.writeLine("for " + forAst.Variable + " in range(" + from + ", " + to + "):")
	}
	generator.genSuite(forAst.Body)
}

func (generator *Generator) genPrint(printAst *PrintAst) {
	if len(printAst.Args) == 0 {
		generator.writeLine("print()")
		return
	}
	args := make([]string, len(printAst.Args))
	for i, arg := range printAst.Args {
		args[i] = generator.genExpression(arg)
	}
	generator.writeLine("print(" + strings.Join(args, ", ") + ", sep='')")
}

func (generator *Generator) genRead(readAst *ReadAst) {
	if readAst.Prompt != nil {
		generator.writeLine(readAst.Target + " = input(" + generator.genExpression(readAst.Prompt) + ")")
		return
	}
	generator.writeLine(readAst.Target + " = input()")
}

func (generator *Generator) genExpressionStatement(expr *Expression) {
	// A statement level assignment is a plain python assignment, the walrus
	// form is only needed when the assignment nests inside an expression.
	if expr.Kind == AssignExpression {
		assign := expr.Expr.(*AssignAst)
		generator.writeLine(assign.Name + " = " + generator.genExpression(assign.Value))
		return
	}
	generator.writeLine(generator.genExpression(expr))
}

func (generator *Generator) genExpression(expr *Expression) string {
	switch expr.Kind {
	case LiteralExpression:
		return genLiteral(expr.Expr.(*LiteralAst))
	case IdentifierExpression:
		return expr.Expr.(*IdentifierAst).Name
	case BinaryExpression:
		return generator.genBinary(expr)
	case UnaryExpression:
		unary := expr.Expr.(*UnaryAst)
		operand := generator.genExpression(unary.Operand)
		if unary.Op == NotTP {
			return "(not " + operand + ")"
		}
		return "(-" + operand + ")"
	case CallExpression:
		return generator.genCall(expr.Expr.(*CallAst))
	case AssignExpression:
		assign := expr.Expr.(*AssignAst)
		return "(" + assign.Name + " := " + generator.genExpression(assign.Value) + ")"
	}
	return ""
}

func genLiteral(literal *LiteralAst) string {
	switch literal.TP {
	case TextType:
		return strconv.Quote(literal.Value.(string))
	case LogicType:
		if literal.Value.(bool) {
			return "True"
		}
		return "False"
	}
	return literal.Lexeme
}

func (generator *Generator) genBinary(expr *Expression) string {
	binary := expr.Expr.(*BinaryAst)
	op := binary.OpLexeme
	switch binary.Op {
	case AndTP:
		op = "and"
	case OrTP:
		op = "or"
	case DivideTP:
		// inteiro / inteiro is floor division, the analyzer typed it.
		if expr.TP == IntegerType {
			op = "//"
		}
	}
	return "(" + generator.genExpression(binary.Left) + " " + op + " " + generator.genExpression(binary.Right) + ")"
}

func (generator *Generator) genCall(call *CallAst) string {
	if _, isBuiltin := builtinHelpers[call.Callee]; isBuiltin {
		generator.usedBuiltins[call.Callee] = true
	}
	args := make([]string, len(call.Args))
	for i, arg := range call.Args {
		args[i] = generator.genExpression(arg)
	}
	return call.Callee + "(" + strings.Join(args, ", ") + ")"
}
