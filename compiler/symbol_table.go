package compiler

import "fmt"

// A SymbolTable for lusitano programs. Scopes live in an arena slice and
// point at their parent by index, so the whole tree survives the walk and an
// inner scope can be inspected after it has been exited.

type SymbolCategory int

const (
	VariableSymbol SymbolCategory = iota
	ConstantSymbol
	FunctionSymbol
	ParameterSymbol
)

func (c SymbolCategory) String() string {
	switch c {
	case VariableSymbol:
		return "variable"
	case ConstantSymbol:
		return "constant"
	case FunctionSymbol:
		return "function"
	}
	return "parameter"
}

type Symbol struct {
	Name       string
	TP         Type
	Category   SymbolCategory
	ScopeIndex int
	Line       int
	Column     int
	// Params and ReturnType are only meaningful for FunctionSymbol.
	Params     []*ParamAst
	ReturnType Type
	// Builtin functions accept arguments the checker does not constrain,
	// the conversion helpers take any type.
	Builtin bool
}

type Scope struct {
	symbols map[string]*Symbol
	parent  int
}

const globalScope = 0

type SymbolTable struct {
	scopes  []*Scope
	current int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		scopes: []*Scope{{symbols: map[string]*Symbol{}, parent: -1}},
	}
}

// EnterScope appends a child of the current scope to the arena and moves in.
func (table *SymbolTable) EnterScope() int {
	table.scopes = append(table.scopes, &Scope{
		symbols: map[string]*Symbol{},
		parent:  table.current,
	})
	table.current = len(table.scopes) - 1
	return table.current
}

// ExitScope moves back to the parent scope. Popping the global scope is an
// internal invariant violation, the analyzer must keep enter and exit paired.
func (table *SymbolTable) ExitScope() {
	if table.current == globalScope {
		panic("compiler: exiting the global scope")
	}
	table.current = table.scopes[table.current].parent
}

// Declare binds the symbol in the current scope. It returns false when the
// name is already taken in this scope. Shadowing an outer binding is fine.
func (table *SymbolTable) Declare(symbol *Symbol) bool {
	scope := table.scopes[table.current]
	if _, taken := scope.symbols[symbol.Name]; taken {
		return false
	}
	symbol.ScopeIndex = table.current
	scope.symbols[symbol.Name] = symbol
	return true
}

// Resolve walks from the current scope to the global one and returns the
// innermost binding of name, or nil when the name is undeclared.
func (table *SymbolTable) Resolve(name string) *Symbol {
	for index := table.current; index >= 0; index = table.scopes[index].parent {
		if symbol, ok := table.scopes[index].symbols[name]; ok {
			return symbol
		}
	}
	return nil
}

// ResolveLocal only consults the current scope.
func (table *SymbolTable) ResolveLocal(name string) *Symbol {
	symbol, ok := table.scopes[table.current].symbols[name]
	if !ok {
		return nil
	}
	return symbol
}

// Depth reports how many scopes sit between the current one and the global
// one, global itself is depth 0.
func (table *SymbolTable) Depth() int {
	depth := 0
	for index := table.current; table.scopes[index].parent >= 0; index = table.scopes[index].parent {
		depth++
	}
	return depth
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s", s.Category, s.Name, s.TP)
}
