package compiler

import "errors"

// A recursive descent parser for lusitano. One parse method per grammar rule,
// precedence encoded by the call chain:
//
//	assignment < ou < e < equality < comparison < term < factor < power < unary
//
// The parser never aborts. When a rule fails it records a syntax diagnostic
// and either continues as if the expected token had been present (missing
// closing delimiters) or unwinds to the nearest statement boundary and leaves
// an ErrorStatement behind. Either way the rest of the file still gets parsed.

// errSync unwinds the current rule up to the statement level, where the
// parser synchronizes. The diagnostic has already been recorded by then.
var errSync = errors.New("syntax error")

type Parser struct {
	tokens  []*Token
	current int
	diags   *Diagnostics
}

func NewParser(tokens []*Token, diags *Diagnostics) *Parser {
	return &Parser{tokens: tokens, diags: diags}
}

func (parser *Parser) Parse() *Program {
	program := &Program{}
	for !parser.atEnd() {
		program.Statements = append(program.Statements, parser.parseDeclarationWithRecovery())
	}
	return program
}

func (parser *Parser) peek() *Token {
	return parser.tokens[parser.current]
}

func (parser *Parser) previous() *Token {
	return parser.tokens[parser.current-1]
}

func (parser *Parser) atEnd() bool {
	return parser.peek().tp == EOFTP
}

func (parser *Parser) advance() *Token {
	if !parser.atEnd() {
		parser.current++
	}
	return parser.previous()
}

func (parser *Parser) check(tp TokenType) bool {
	return parser.peek().tp == tp
}

func (parser *Parser) match(tps ...TokenType) bool {
	for _, tp := range tps {
		if parser.check(tp) {
			parser.advance()
			return true
		}
	}
	return false
}

// consume advances past the expected token or records a diagnostic and
// unwinds. Used where parsing cannot meaningfully continue without the token.
func (parser *Parser) consume(tp TokenType, description string) (*Token, error) {
	if parser.check(tp) {
		return parser.advance(), nil
	}
	tok := parser.peek()
	parser.diags.addSyntax(description, tok.describe(), tok.line, tok.column)
	return nil, errSync
}

// expect is the tolerant variant of consume for closing delimiters. When the
// token is missing it records the diagnostic but leaves the input untouched
// and parsing continues as if the delimiter had been present, so one missing
// ')' does not cascade into errors about the tokens that follow it.
func (parser *Parser) expect(tp TokenType, description string) {
	if parser.check(tp) {
		parser.advance()
		return
	}
	tok := parser.peek()
	parser.diags.addSyntax(description, tok.describe(), tok.line, tok.column)
}

func (parser *Parser) parseDeclarationWithRecovery() *Statement {
	before := parser.current
	stmt, err := parser.parseDeclaration()
	if err != nil {
		tok := parser.tokens[before]
		parser.synchronize(before)
		return &Statement{Kind: ErrorStatement, Line: tok.line, Column: tok.column}
	}
	return stmt
}

// synchronize skips tokens until a plausible statement boundary. It always
// consumes at least one token past the point of failure so the parser cannot
// loop on the same input.
func (parser *Parser) synchronize(before int) {
	if parser.current == before && !parser.atEnd() {
		parser.advance()
	}
	for !parser.atEnd() {
		if parser.previous().tp == SemiColonTP {
			return
		}
		switch parser.peek().tp {
		case FunctionTP, VarTP, ConstTP, IfTP, WhileTP, ForTP,
			PrintTP, ReadTP, ReturnTP, LeftBraceTP, RightBraceTP:
			return
		}
		parser.advance()
	}
}

func (parser *Parser) parseDeclaration() (*Statement, error) {
	switch {
	case parser.match(FunctionTP):
		return parser.parseFunctionDecl()
	case parser.match(VarTP):
		return parser.parseVarDecl(VarDeclStatement)
	case parser.match(ConstTP):
		return parser.parseVarDecl(ConstDeclStatement)
	}
	return parser.parseStatement()
}

func (parser *Parser) parseFunctionDecl() (*Statement, error) {
	keyword := parser.previous()
	name, err := parser.consume(IdentifierTP, "expected function name after 'funcao'")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(LeftParenTP, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []*ParamAst
	if !parser.check(RightParenTP) {
		for {
			paramName, err := parser.consume(IdentifierTP, "expected parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(ColonTP, "expected ':' after parameter name"); err != nil {
				return nil, err
			}
			paramTP, err := parser.parseTypeName()
			if err != nil {
				return nil, err
			}
			params = append(params, &ParamAst{
				Name:   paramName.lexeme,
				TP:     paramTP,
				Line:   paramName.line,
				Column: paramName.column,
			})
			if !parser.match(CommaTP) {
				break
			}
		}
	}
	parser.expect(RightParenTP, "expected ')' after parameter list")
	returnType := VoidType
	hasReturnType := false
	if parser.match(ColonTP) {
		returnType, err = parser.parseTypeName()
		if err != nil {
			return nil, err
		}
		hasReturnType = true
	}
	if _, err := parser.consume(LeftBraceTP, "expected '{' before function body"); err != nil {
		return nil, err
	}
	body := parser.parseBlockAst()
	return &Statement{
		Kind: FunctionDeclStatement,
		Statement: &FunctionDeclAst{
			Name:          name.lexeme,
			Params:        params,
			ReturnType:    returnType,
			HasReturnType: hasReturnType,
			Body:          body,
		},
		Line:   keyword.line,
		Column: keyword.column,
	}, nil
}

func (parser *Parser) parseVarDecl(kind StatementKind) (*Statement, error) {
	keyword := parser.previous()
	name, err := parser.consume(IdentifierTP, "expected name after '"+keyword.lexeme+"'")
	if err != nil {
		return nil, err
	}
	decl := &VarDeclAst{Name: name.lexeme}
	if parser.match(ColonTP) {
		decl.TP, err = parser.parseTypeName()
		if err != nil {
			return nil, err
		}
		decl.HasType = true
	}
	if kind == ConstDeclStatement {
		// Constants must be initialized at the declaration.
		if _, err := parser.consume(AssignTP, "expected '=' after constant name"); err != nil {
			return nil, err
		}
		decl.Init, err = parser.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if parser.match(AssignTP) {
		decl.Init, err = parser.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	parser.match(SemiColonTP)
	return &Statement{Kind: kind, Statement: decl, Line: keyword.line, Column: keyword.column}, nil
}

func (parser *Parser) parseTypeName() (Type, error) {
	switch {
	case parser.match(IntTypeTP):
		return IntegerType, nil
	case parser.match(RealTypeTP):
		return RealType, nil
	case parser.match(TextTypeTP):
		return TextType, nil
	case parser.match(LogicTypeTP):
		return LogicType, nil
	case parser.match(VoidTypeTP):
		return VoidType, nil
	}
	tok := parser.peek()
	parser.diags.addSyntax("expected a type name", tok.describe(), tok.line, tok.column)
	return ErrorType, errSync
}

func (parser *Parser) parseStatement() (*Statement, error) {
	switch {
	case parser.match(LeftBraceTP):
		keyword := parser.previous()
		block := parser.parseBlockAst()
		return &Statement{Kind: BlockStatement, Statement: block, Line: keyword.line, Column: keyword.column}, nil
	case parser.match(IfTP):
		return parser.parseIf()
	case parser.match(WhileTP):
		return parser.parseWhile()
	case parser.match(ForTP):
		return parser.parseFor()
	case parser.match(PrintTP):
		return parser.parsePrint()
	case parser.match(ReadTP):
		return parser.parseRead()
	case parser.match(ReturnTP):
		return parser.parseReturn()
	}
	return parser.parseExpressionStatement()
}

// parseBlockAst parses statements until the matching '}'. The opening brace
// has already been consumed. Statements inside the block recover
// independently, so one bad statement does not take the block down.
func (parser *Parser) parseBlockAst() *BlockAst {
	block := &BlockAst{}
	for !parser.check(RightBraceTP) && !parser.atEnd() {
		block.Statements = append(block.Statements, parser.parseDeclarationWithRecovery())
	}
	parser.expect(RightBraceTP, "expected '}' at end of block")
	return block
}

func (parser *Parser) parseIf() (*Statement, error) {
	keyword := parser.previous()
	if _, err := parser.consume(LeftParenTP, "expected '(' after 'se'"); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	parser.expect(RightParenTP, "expected ')' after condition")
	then, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	ifAst := &IfAst{Condition: condition, Then: then}
	if parser.match(ElseIfTP) {
		// senaose chains as an if statement hanging off the else branch.
		ifAst.Else, err = parser.parseIf()
		if err != nil {
			return nil, err
		}
	} else if parser.match(ElseTP) {
		ifAst.Else, err = parser.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &Statement{Kind: IfStatement, Statement: ifAst, Line: keyword.line, Column: keyword.column}, nil
}

func (parser *Parser) parseWhile() (*Statement, error) {
	keyword := parser.previous()
	if _, err := parser.consume(LeftParenTP, "expected '(' after 'enquanto'"); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	parser.expect(RightParenTP, "expected ')' after condition")
	body, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:      WhileStatement,
		Statement: &WhileAst{Condition: condition, Body: body},
		Line:      keyword.line,
		Column:    keyword.column,
	}, nil
}

func (parser *Parser) parseFor() (*Statement, error) {
	keyword := parser.previous()
	variable, err := parser.consume(IdentifierTP, "expected loop variable after 'para'")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(FromTP, "expected 'de' after loop variable"); err != nil {
		return nil, err
	}
	from, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(ToTP, "expected 'ate' after range start"); err != nil {
		return nil, err
	}
	to, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	var step *Expression
	if parser.match(StepTP) {
		step, err = parser.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	body, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:      ForRangeStatement,
		Statement: &ForRangeAst{Variable: variable.lexeme, From: from, To: to, Step: step, Body: body},
		Line:      keyword.line,
		Column:    keyword.column,
	}, nil
}

func (parser *Parser) parsePrint() (*Statement, error) {
	keyword := parser.previous()
	if _, err := parser.consume(LeftParenTP, "expected '(' after 'escreva'"); err != nil {
		return nil, err
	}
	printAst := &PrintAst{}
	if !parser.check(RightParenTP) {
		for {
			arg, err := parser.parseExpression()
			if err != nil {
				return nil, err
			}
			printAst.Args = append(printAst.Args, arg)
			if !parser.match(CommaTP) {
				break
			}
		}
	}
	parser.expect(RightParenTP, "expected ')' after escreva arguments")
	parser.match(SemiColonTP)
	return &Statement{Kind: PrintStatement, Statement: printAst, Line: keyword.line, Column: keyword.column}, nil
}

// parseRead handles leia(x) and leia("prompt", x).
func (parser *Parser) parseRead() (*Statement, error) {
	keyword := parser.previous()
	if _, err := parser.consume(LeftParenTP, "expected '(' after 'leia'"); err != nil {
		return nil, err
	}
	readAst := &ReadAst{}
	first, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if parser.match(CommaTP) {
		readAst.Prompt = first
		target, err := parser.consume(IdentifierTP, "expected a variable name in leia")
		if err != nil {
			return nil, err
		}
		readAst.Target = target.lexeme
	} else {
		ident, ok := first.Expr.(*IdentifierAst)
		if !ok {
			parser.diags.addSyntax("expected a variable name in leia", parser.previous().describe(), first.Line, first.Column)
			return nil, errSync
		}
		readAst.Target = ident.Name
	}
	parser.expect(RightParenTP, "expected ')' after leia arguments")
	parser.match(SemiColonTP)
	return &Statement{Kind: ReadStatement, Statement: readAst, Line: keyword.line, Column: keyword.column}, nil
}

func (parser *Parser) parseReturn() (*Statement, error) {
	keyword := parser.previous()
	returnAst := &ReturnAst{}
	if !parser.check(SemiColonTP) && !parser.check(RightBraceTP) && !parser.atEnd() {
		value, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		returnAst.Value = value
	}
	parser.match(SemiColonTP)
	return &Statement{Kind: ReturnStatement, Statement: returnAst, Line: keyword.line, Column: keyword.column}, nil
}

func (parser *Parser) parseExpressionStatement() (*Statement, error) {
	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	parser.match(SemiColonTP)
	return &Statement{
		Kind:      ExpressionStatement,
		Statement: &ExprStatementAst{Expr: expr},
		Line:      expr.Line,
		Column:    expr.Column,
	}, nil
}

func (parser *Parser) parseExpression() (*Expression, error) {
	return parser.parseAssignment()
}

func (parser *Parser) parseAssignment() (*Expression, error) {
	expr, err := parser.parseOr()
	if err != nil {
		return nil, err
	}
	if !parser.match(AssignTP, AddAssignTP, MinusAssignTP, MultiplyAssignTP, DivideAssignTP) {
		return expr, nil
	}
	op := parser.previous()
	value, err := parser.parseAssignment()
	if err != nil {
		return nil, err
	}
	ident, ok := expr.Expr.(*IdentifierAst)
	if !ok {
		parser.diags.addSyntax("expected a variable on the left of assignment", op.lexeme, expr.Line, expr.Column)
		return nil, errSync
	}
	if op.tp != AssignTP {
		// x += e desugars to x = x + e, so the later phases only ever see
		// plain assignment.
		binOp, binLexeme := compoundToBinary(op.tp)
		value = &Expression{
			Kind: BinaryExpression,
			Expr: &BinaryAst{
				Left: &Expression{
					Kind:   IdentifierExpression,
					Expr:   &IdentifierAst{Name: ident.Name},
					Line:   expr.Line,
					Column: expr.Column,
				},
				Op:       binOp,
				OpLexeme: binLexeme,
				Right:    value,
			},
			Line:   expr.Line,
			Column: expr.Column,
		}
	}
	return &Expression{
		Kind:   AssignExpression,
		Expr:   &AssignAst{Name: ident.Name, Value: value},
		Line:   expr.Line,
		Column: expr.Column,
	}, nil
}

func compoundToBinary(tp TokenType) (TokenType, string) {
	switch tp {
	case AddAssignTP:
		return AddTP, "+"
	case MinusAssignTP:
		return MinusTP, "-"
	case MultiplyAssignTP:
		return MultiplyTP, "*"
	}
	return DivideTP, "/"
}

func (parser *Parser) parseBinaryLevel(next func() (*Expression, error), tps ...TokenType) (*Expression, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for parser.match(tps...) {
		op := parser.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &Expression{
			Kind:   BinaryExpression,
			Expr:   &BinaryAst{Left: expr, Op: op.tp, OpLexeme: op.lexeme, Right: right},
			Line:   expr.Line,
			Column: expr.Column,
		}
	}
	return expr, nil
}

func (parser *Parser) parseOr() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parseAnd, OrTP)
}

func (parser *Parser) parseAnd() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parseEquality, AndTP)
}

func (parser *Parser) parseEquality() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parseComparison, EqualTP, NotEqualTP)
}

func (parser *Parser) parseComparison() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parseTerm, LessTP, LessEqualTP, GreaterTP, GreaterEqualTP)
}

func (parser *Parser) parseTerm() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parseFactor, AddTP, MinusTP)
}

func (parser *Parser) parseFactor() (*Expression, error) {
	return parser.parseBinaryLevel(parser.parsePower, MultiplyTP, DivideTP, ModuloTP)
}

// parsePower recurses on the right operand, ** is right associative.
func (parser *Parser) parsePower() (*Expression, error) {
	expr, err := parser.parseUnary()
	if err != nil {
		return nil, err
	}
	if !parser.match(PowerTP) {
		return expr, nil
	}
	op := parser.previous()
	right, err := parser.parsePower()
	if err != nil {
		return nil, err
	}
	return &Expression{
		Kind:   BinaryExpression,
		Expr:   &BinaryAst{Left: expr, Op: op.tp, OpLexeme: op.lexeme, Right: right},
		Line:   expr.Line,
		Column: expr.Column,
	}, nil
}

func (parser *Parser) parseUnary() (*Expression, error) {
	if parser.match(MinusTP, NotTP) {
		op := parser.previous()
		operand, err := parser.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expression{
			Kind:   UnaryExpression,
			Expr:   &UnaryAst{Op: op.tp, Operand: operand},
			Line:   op.line,
			Column: op.column,
		}, nil
	}
	return parser.parsePrimary()
}

func (parser *Parser) parsePrimary() (*Expression, error) {
	tok := parser.peek()
	switch tok.tp {
	case IntegerTP:
		parser.advance()
		return literalExpression(tok, IntegerType, tok.value), nil
	case RealTP:
		parser.advance()
		return literalExpression(tok, RealType, tok.value), nil
	case StringTP:
		parser.advance()
		return literalExpression(tok, TextType, tok.value), nil
	case TrueTP:
		parser.advance()
		return literalExpression(tok, LogicType, true), nil
	case FalseTP:
		parser.advance()
		return literalExpression(tok, LogicType, false), nil
	case IdentifierTP:
		parser.advance()
		if parser.match(LeftParenTP) {
			return parser.finishCall(tok)
		}
		return &Expression{
			Kind:   IdentifierExpression,
			Expr:   &IdentifierAst{Name: tok.lexeme},
			Line:   tok.line,
			Column: tok.column,
		}, nil
	case LeftParenTP:
		parser.advance()
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		parser.expect(RightParenTP, "expected ')' after expression")
		return expr, nil
	}
	parser.diags.addSyntax("expected an expression", tok.describe(), tok.line, tok.column)
	return nil, errSync
}

func literalExpression(tok *Token, tp Type, value interface{}) *Expression {
	return &Expression{
		Kind:   LiteralExpression,
		Expr:   &LiteralAst{Value: value, Lexeme: tok.lexeme, TP: tp},
		Line:   tok.line,
		Column: tok.column,
	}
}

func (parser *Parser) finishCall(name *Token) (*Expression, error) {
	call := &CallAst{Callee: name.lexeme}
	if !parser.check(RightParenTP) {
		for {
			arg, err := parser.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !parser.match(CommaTP) {
				break
			}
		}
	}
	parser.expect(RightParenTP, "expected ')' after arguments")
	return &Expression{Kind: CallExpression, Expr: call, Line: name.line, Column: name.column}, nil
}
