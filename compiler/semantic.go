package compiler

// The semantic analyzer walks the ast once, maintains the symbol table and
// annotates every expression with its type. Faults become diagnostics and the
// walk keeps going, a failed expression gets the error sentinel type which
// silences every check it later participates in, so one fault reports once.
//
// The typing policy is strict: a declared type and its initializer must match
// exactly, there is no implicit widening from inteiro to real. Arithmetic on
// two numbers yields the wider of the two, '+' also concatenates texto, and
// '/' on two inteiro values stays inteiro.

type Analyzer struct {
	table *SymbolTable
	diags *Diagnostics
	// currentFunction is the enclosing function symbol, nil at top level.
	currentFunction *Symbol
}

func NewAnalyzer(diags *Diagnostics) *Analyzer {
	analyzer := &Analyzer{table: NewSymbolTable(), diags: diags}
	analyzer.declareBuiltins()
	return analyzer
}

// Builtins available to every program. The code generator emits a matching
// python helper for each of them.
func (analyzer *Analyzer) declareBuiltins() {
	builtins := []struct {
		name       string
		returnType Type
	}{
		{"paraInteiro", IntegerType},
		{"paraReal", RealType},
		{"paraTexto", TextType},
		{"raiz", RealType},
		{"absoluto", RealType},
		{"arredonda", IntegerType},
		{"tamanho", IntegerType},
	}
	for _, builtin := range builtins {
		analyzer.table.Declare(&Symbol{
			Name:       builtin.name,
			TP:         FunctionType,
			Category:   FunctionSymbol,
			Params:     []*ParamAst{{Name: "valor"}},
			ReturnType: builtin.returnType,
			Builtin:    true,
		})
	}
}

func (analyzer *Analyzer) Table() *SymbolTable {
	return analyzer.table
}

func (analyzer *Analyzer) Analyze(program *Program) {
	for _, stmt := range program.Statements {
		analyzer.analyzeStatement(stmt)
	}
}

func (analyzer *Analyzer) analyzeStatement(stmt *Statement) {
	switch stmt.Kind {
	case FunctionDeclStatement:
		analyzer.analyzeFunctionDecl(stmt)
	case VarDeclStatement:
		analyzer.analyzeVarDecl(stmt, VariableSymbol)
	case ConstDeclStatement:
		analyzer.analyzeVarDecl(stmt, ConstantSymbol)
	case BlockStatement:
		analyzer.table.EnterScope()
		for _, inner := range stmt.Statement.(*BlockAst).Statements {
			analyzer.analyzeStatement(inner)
		}
		analyzer.table.ExitScope()
	case IfStatement:
		analyzer.analyzeIf(stmt.Statement.(*IfAst))
	case WhileStatement:
		analyzer.analyzeWhile(stmt.Statement.(*WhileAst))
	case ForRangeStatement:
		analyzer.analyzeForRange(stmt.Statement.(*ForRangeAst))
	case PrintStatement:
		analyzer.analyzePrint(stmt.Statement.(*PrintAst))
	case ReadStatement:
		analyzer.analyzeRead(stmt.Statement.(*ReadAst), stmt.Line, stmt.Column)
	case ReturnStatement:
		analyzer.analyzeReturn(stmt.Statement.(*ReturnAst), stmt.Line, stmt.Column)
	case ExpressionStatement:
		analyzer.analyzeExpression(stmt.Statement.(*ExprStatementAst).Expr)
	case ErrorStatement:
		// Nothing to check, the parser already reported it.
	}
}

func (analyzer *Analyzer) analyzeFunctionDecl(stmt *Statement) {
	fn := stmt.Statement.(*FunctionDeclAst)
	symbol := &Symbol{
		Name:       fn.Name,
		TP:         FunctionType,
		Category:   FunctionSymbol,
		Line:       stmt.Line,
		Column:     stmt.Column,
		Params:     fn.Params,
		ReturnType: fn.ReturnType,
	}
	if !analyzer.table.Declare(symbol) {
		analyzer.diags.addSemantic(DuplicateDeclaration, stmt.Line, stmt.Column,
			"'%s' is already declared in this scope", fn.Name)
	}
	enclosing := analyzer.currentFunction
	analyzer.currentFunction = symbol
	analyzer.table.EnterScope()
	for _, param := range fn.Params {
		declared := analyzer.table.Declare(&Symbol{
			Name:     param.Name,
			TP:       param.TP,
			Category: ParameterSymbol,
			Line:     param.Line,
			Column:   param.Column,
		})
		if !declared {
			analyzer.diags.addSemantic(DuplicateDeclaration, param.Line, param.Column,
				"duplicate parameter '%s'", param.Name)
		}
	}
	// The body opens its own scope below the parameter scope.
	analyzer.table.EnterScope()
	for _, inner := range fn.Body.Statements {
		analyzer.analyzeStatement(inner)
	}
	analyzer.table.ExitScope()
	analyzer.table.ExitScope()
	analyzer.currentFunction = enclosing
}

func (analyzer *Analyzer) analyzeVarDecl(stmt *Statement, category SymbolCategory) {
	decl := stmt.Statement.(*VarDeclAst)
	initType := ErrorType
	if decl.Init != nil {
		initType = analyzer.analyzeExpression(decl.Init)
	}
	declaredType := ErrorType
	switch {
	case decl.HasType && decl.Init != nil:
		declaredType = decl.TP
		if initType != ErrorType && initType != decl.TP {
			analyzer.diags.addSemantic(TypeMismatch, stmt.Line, stmt.Column,
				"cannot initialize %s '%s' with a %s value", decl.TP, decl.Name, initType)
		}
	case decl.HasType:
		declaredType = decl.TP
	case decl.Init != nil:
		// var x = expr infers the type from the initializer.
		declaredType = initType
		decl.TP = initType
	default:
		analyzer.diags.addSemantic(TypeMismatch, stmt.Line, stmt.Column,
			"variable '%s' needs a type or an initializer", decl.Name)
	}
	declared := analyzer.table.Declare(&Symbol{
		Name:     decl.Name,
		TP:       declaredType,
		Category: category,
		Line:     stmt.Line,
		Column:   stmt.Column,
	})
	if !declared {
		analyzer.diags.addSemantic(DuplicateDeclaration, stmt.Line, stmt.Column,
			"'%s' is already declared in this scope", decl.Name)
	}
}

func (analyzer *Analyzer) checkCondition(condition *Expression, construct string) {
	conditionType := analyzer.analyzeExpression(condition)
	if conditionType != LogicType && conditionType != ErrorType {
		analyzer.diags.addSemantic(TypeMismatch, condition.Line, condition.Column,
			"%s condition must be logico, got %s", construct, conditionType)
	}
}

func (analyzer *Analyzer) analyzeIf(ifAst *IfAst) {
	analyzer.checkCondition(ifAst.Condition, "se")
	analyzer.analyzeStatement(ifAst.Then)
	if ifAst.Else != nil {
		analyzer.analyzeStatement(ifAst.Else)
	}
}

func (analyzer *Analyzer) analyzeWhile(whileAst *WhileAst) {
	analyzer.checkCondition(whileAst.Condition, "enquanto")
	analyzer.analyzeStatement(whileAst.Body)
}

func (analyzer *Analyzer) analyzeForRange(forAst *ForRangeAst) {
	analyzer.table.EnterScope()
	analyzer.table.Declare(&Symbol{
		Name:     forAst.Variable,
		TP:       IntegerType,
		Category: VariableSymbol,
	})
	analyzer.checkRangeBound(forAst.From, "start")
	analyzer.checkRangeBound(forAst.To, "end")
	if forAst.Step != nil {
		analyzer.checkRangeBound(forAst.Step, "step")
	}
	analyzer.analyzeStatement(forAst.Body)
	analyzer.table.ExitScope()
}

func (analyzer *Analyzer) checkRangeBound(bound *Expression, position string) {
	boundType := analyzer.analyzeExpression(bound)
	if boundType != IntegerType && boundType != ErrorType {
		analyzer.diags.addSemantic(TypeMismatch, bound.Line, bound.Column,
			"para range %s must be inteiro, got %s", position, boundType)
	}
}

func (analyzer *Analyzer) analyzePrint(printAst *PrintAst) {
	for _, arg := range printAst.Args {
		argType := analyzer.analyzeExpression(arg)
		if argType == VoidType {
			analyzer.diags.addSemantic(TypeMismatch, arg.Line, arg.Column,
				"cannot escreva a vazio value")
		}
	}
}

func (analyzer *Analyzer) analyzeRead(readAst *ReadAst, line, column int) {
	if readAst.Prompt != nil {
		promptType := analyzer.analyzeExpression(readAst.Prompt)
		if promptType != TextType && promptType != ErrorType {
			analyzer.diags.addSemantic(TypeMismatch, readAst.Prompt.Line, readAst.Prompt.Column,
				"leia prompt must be texto, got %s", promptType)
		}
	}
	symbol := analyzer.table.Resolve(readAst.Target)
	switch {
	case symbol == nil:
		analyzer.diags.addSemantic(UndeclaredIdentifier, line, column,
			"undeclared identifier '%s'", readAst.Target)
	case symbol.Category == ConstantSymbol:
		analyzer.diags.addSemantic(ConstantReassignment, line, column,
			"cannot leia into constant '%s'", readAst.Target)
	case symbol.Category == FunctionSymbol:
		analyzer.diags.addSemantic(TypeMismatch, line, column,
			"cannot leia into function '%s'", readAst.Target)
	}
}

func (analyzer *Analyzer) analyzeReturn(returnAst *ReturnAst, line, column int) {
	if analyzer.currentFunction == nil {
		if returnAst.Value != nil {
			analyzer.analyzeExpression(returnAst.Value)
		}
		analyzer.diags.addSemantic(ReturnOutsideFunction, line, column,
			"retorna outside of a function")
		return
	}
	fn := analyzer.currentFunction
	if returnAst.Value == nil {
		if fn.ReturnType != VoidType {
			analyzer.diags.addSemantic(ReturnTypeMismatch, line, column,
				"function '%s' must return a %s value", fn.Name, fn.ReturnType)
		}
		return
	}
	valueType := analyzer.analyzeExpression(returnAst.Value)
	if fn.ReturnType == VoidType {
		analyzer.diags.addSemantic(ReturnTypeMismatch, line, column,
			"vazio function '%s' cannot return a value", fn.Name)
		return
	}
	if valueType != ErrorType && valueType != fn.ReturnType {
		analyzer.diags.addSemantic(ReturnTypeMismatch, line, column,
			"function '%s' returns %s, got %s", fn.Name, fn.ReturnType, valueType)
	}
}

// analyzeExpression computes, records and returns the type of expr.
func (analyzer *Analyzer) analyzeExpression(expr *Expression) Type {
	var tp Type
	switch expr.Kind {
	case LiteralExpression:
		tp = expr.Expr.(*LiteralAst).TP
	case IdentifierExpression:
		tp = analyzer.analyzeIdentifier(expr)
	case BinaryExpression:
		tp = analyzer.analyzeBinary(expr)
	case UnaryExpression:
		tp = analyzer.analyzeUnary(expr)
	case CallExpression:
		tp = analyzer.analyzeCall(expr)
	case AssignExpression:
		tp = analyzer.analyzeAssign(expr)
	}
	expr.TP = tp
	return tp
}

func (analyzer *Analyzer) analyzeIdentifier(expr *Expression) Type {
	name := expr.Expr.(*IdentifierAst).Name
	symbol := analyzer.table.Resolve(name)
	if symbol == nil {
		analyzer.diags.addSemantic(UndeclaredIdentifier, expr.Line, expr.Column,
			"undeclared identifier '%s'", name)
		return ErrorType
	}
	return symbol.TP
}

func isNumeric(tp Type) bool {
	return tp == IntegerType || tp == RealType
}

// wider picks the result of arithmetic on two numeric operands.
func wider(left, right Type) Type {
	if left == RealType || right == RealType {
		return RealType
	}
	return IntegerType
}

func (analyzer *Analyzer) analyzeBinary(expr *Expression) Type {
	binary := expr.Expr.(*BinaryAst)
	leftType := analyzer.analyzeExpression(binary.Left)
	rightType := analyzer.analyzeExpression(binary.Right)
	if leftType == ErrorType || rightType == ErrorType {
		return ErrorType
	}
	switch binary.Op {
	case AddTP:
		if isNumeric(leftType) && isNumeric(rightType) {
			return wider(leftType, rightType)
		}
		if leftType == TextType && rightType == TextType {
			return TextType
		}
	case MinusTP, MultiplyTP, ModuloTP, PowerTP:
		if isNumeric(leftType) && isNumeric(rightType) {
			return wider(leftType, rightType)
		}
	case DivideTP:
		if isNumeric(leftType) && isNumeric(rightType) {
			// Dividing two inteiro values stays inteiro, the generator
			// emits python's floor division for it.
			if leftType == IntegerType && rightType == IntegerType {
				return IntegerType
			}
			return RealType
		}
	case EqualTP, NotEqualTP:
		if leftType == rightType && leftType != VoidType {
			return LogicType
		}
	case LessTP, LessEqualTP, GreaterTP, GreaterEqualTP:
		if leftType == rightType && (isNumeric(leftType) || leftType == TextType) {
			return LogicType
		}
	case AndTP, OrTP:
		if leftType == LogicType && rightType == LogicType {
			return LogicType
		}
	}
	analyzer.diags.addSemantic(TypeMismatch, expr.Line, expr.Column,
		"operator '%s' cannot be applied to %s and %s", binary.OpLexeme, leftType, rightType)
	return ErrorType
}

func (analyzer *Analyzer) analyzeUnary(expr *Expression) Type {
	unary := expr.Expr.(*UnaryAst)
	operandType := analyzer.analyzeExpression(unary.Operand)
	if operandType == ErrorType {
		return ErrorType
	}
	if unary.Op == MinusTP {
		if isNumeric(operandType) {
			return operandType
		}
		analyzer.diags.addSemantic(TypeMismatch, expr.Line, expr.Column,
			"operator '-' needs a number, got %s", operandType)
		return ErrorType
	}
	if operandType != LogicType {
		analyzer.diags.addSemantic(TypeMismatch, expr.Line, expr.Column,
			"operator 'nao' needs a logico value, got %s", operandType)
		return ErrorType
	}
	return LogicType
}

func (analyzer *Analyzer) analyzeCall(expr *Expression) Type {
	call := expr.Expr.(*CallAst)
	argTypes := make([]Type, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = analyzer.analyzeExpression(arg)
	}
	symbol := analyzer.table.Resolve(call.Callee)
	if symbol == nil {
		analyzer.diags.addSemantic(UndeclaredIdentifier, expr.Line, expr.Column,
			"undeclared identifier '%s'", call.Callee)
		return ErrorType
	}
	if symbol.Category != FunctionSymbol {
		analyzer.diags.addSemantic(NotCallable, expr.Line, expr.Column,
			"'%s' is a %s, it cannot be called", call.Callee, symbol.Category)
		return ErrorType
	}
	if len(call.Args) != len(symbol.Params) {
		analyzer.diags.addSemantic(ArgumentCountMismatch, expr.Line, expr.Column,
			"function '%s' expects %d argument(s), got %d",
			call.Callee, len(symbol.Params), len(call.Args))
		return symbol.ReturnType
	}
	if symbol.Builtin {
		analyzer.checkBuiltinArgs(call, argTypes)
		return symbol.ReturnType
	}
	for i, argType := range argTypes {
		if argType == ErrorType || argType == symbol.Params[i].TP {
			continue
		}
		analyzer.diags.addSemantic(TypeMismatch, call.Args[i].Line, call.Args[i].Column,
			"argument %d of '%s' must be %s, got %s",
			i+1, call.Callee, symbol.Params[i].TP, argType)
	}
	return symbol.ReturnType
}

// checkBuiltinArgs applies the looser builtin rules: the conversion helpers
// take any value, the math helpers need a number, tamanho needs texto.
func (analyzer *Analyzer) checkBuiltinArgs(call *CallAst, argTypes []Type) {
	argType := argTypes[0]
	if argType == ErrorType {
		return
	}
	arg := call.Args[0]
	switch call.Callee {
	case "paraInteiro", "paraReal", "paraTexto":
		if argType == VoidType {
			analyzer.diags.addSemantic(TypeMismatch, arg.Line, arg.Column,
				"'%s' cannot convert a vazio value", call.Callee)
		}
	case "raiz", "absoluto", "arredonda":
		if !isNumeric(argType) {
			analyzer.diags.addSemantic(TypeMismatch, arg.Line, arg.Column,
				"'%s' needs a number, got %s", call.Callee, argType)
		}
	case "tamanho":
		if argType != TextType {
			analyzer.diags.addSemantic(TypeMismatch, arg.Line, arg.Column,
				"'tamanho' needs a texto value, got %s", argType)
		}
	}
}

func (analyzer *Analyzer) analyzeAssign(expr *Expression) Type {
	assign := expr.Expr.(*AssignAst)
	valueType := analyzer.analyzeExpression(assign.Value)
	symbol := analyzer.table.Resolve(assign.Name)
	if symbol == nil {
		analyzer.diags.addSemantic(UndeclaredIdentifier, expr.Line, expr.Column,
			"undeclared identifier '%s'", assign.Name)
		return ErrorType
	}
	if symbol.Category == ConstantSymbol {
		analyzer.diags.addSemantic(ConstantReassignment, expr.Line, expr.Column,
			"cannot reassign constant '%s'", assign.Name)
		return symbol.TP
	}
	if symbol.Category == FunctionSymbol {
		analyzer.diags.addSemantic(TypeMismatch, expr.Line, expr.Column,
			"cannot assign to function '%s'", assign.Name)
		return ErrorType
	}
	if valueType != ErrorType && symbol.TP != ErrorType && valueType != symbol.TP {
		analyzer.diags.addSemantic(TypeMismatch, expr.Line, expr.Column,
			"cannot assign a %s value to %s '%s'", valueType, symbol.TP, assign.Name)
	}
	return symbol.TP
}
