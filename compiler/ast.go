package compiler

// The ast of lusitano programs. Statements and expressions are tagged unions:
// a Kind enum plus a payload pointer, matched by switch in the later phases.

type Type int

const (
	IntegerType Type = iota
	RealType
	TextType
	LogicType
	VoidType
	FunctionType
	// ErrorType marks expressions whose type could not be determined. It
	// silences follow-up checks so one fault reports one diagnostic.
	ErrorType
)

func (t Type) String() string {
	switch t {
	case IntegerType:
		return "inteiro"
	case RealType:
		return "real"
	case TextType:
		return "texto"
	case LogicType:
		return "logico"
	case VoidType:
		return "vazio"
	case FunctionType:
		return "funcao"
	}
	return "erro"
}

type Program struct {
	Statements []*Statement
}

type StatementKind int

const (
	FunctionDeclStatement StatementKind = iota
	VarDeclStatement
	ConstDeclStatement
	BlockStatement
	IfStatement
	WhileStatement
	ForRangeStatement
	PrintStatement
	ReadStatement
	ReturnStatement
	ExpressionStatement
	// ErrorStatement replaces a region the parser could not make sense of.
	// It carries no payload and code generation emits `pass` for it.
	ErrorStatement
)

type Statement struct {
	Kind      StatementKind
	Statement interface{}
	Line      int
	Column    int
}

type FunctionDeclAst struct {
	Name       string
	Params     []*ParamAst
	ReturnType Type
	// HasReturnType is false when the signature omits `: tipo`, which means
	// the function is vazio.
	HasReturnType bool
	Body          *BlockAst
}

type ParamAst struct {
	Name   string
	TP     Type
	Line   int
	Column int
}

// VarDeclAst backs both VarDeclStatement and ConstDeclStatement.
type VarDeclAst struct {
	Name string
	TP   Type
	// HasType is false for `var x = expr`, where the type is inferred from
	// the initializer.
	HasType bool
	Init    *Expression
}

type BlockAst struct {
	Statements []*Statement
}

type IfAst struct {
	Condition *Expression
	Then      *Statement
	// Else is nil when there is no senao branch. A senaose chain nests as
	// an IfStatement in Else.
	Else *Statement
}

type WhileAst struct {
	Condition *Expression
	Body      *Statement
}

type ForRangeAst struct {
	Variable string
	From     *Expression
	To       *Expression
	// Step is nil when the passo clause is omitted.
	Step *Expression
	Body *Statement
}

type PrintAst struct {
	Args []*Expression
}

type ReadAst struct {
	Target string
	// Prompt is nil for the bare leia(x) form.
	Prompt *Expression
}

type ReturnAst struct {
	// Value is nil for a bare retorna.
	Value *Expression
}

type ExprStatementAst struct {
	Expr *Expression
}

type ExpressionKind int

const (
	LiteralExpression ExpressionKind = iota
	IdentifierExpression
	BinaryExpression
	UnaryExpression
	CallExpression
	AssignExpression
)

type Expression struct {
	Kind ExpressionKind
	Expr interface{}
	// TP is filled in by the semantic analyzer.
	TP     Type
	Line   int
	Column int
}

type LiteralAst struct {
	// Value is int64, float64, string or bool depending on TP.
	Value  interface{}
	Lexeme string
	TP     Type
}

type IdentifierAst struct {
	Name string
}

type BinaryAst struct {
	Left     *Expression
	Op       TokenType
	OpLexeme string
	Right    *Expression
}

type UnaryAst struct {
	Op      TokenType
	Operand *Expression
}

type CallAst struct {
	Callee string
	Args   []*Expression
}

type AssignAst struct {
	Name  string
	Value *Expression
}
