package compiler

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSymbolTable_DeclareAndResolve(t *testing.T) {
	table := NewSymbolTable()
	assert.True(t, table.Declare(&Symbol{Name: "x", TP: IntegerType, Category: VariableSymbol}))
	symbol := table.Resolve("x")
	assert.NotNil(t, symbol)
	assert.Equal(t, IntegerType, symbol.TP)
	assert.Equal(t, globalScope, symbol.ScopeIndex)
	assert.Nil(t, table.Resolve("y"))
}

func TestSymbolTable_DuplicateInSameScope(t *testing.T) {
	table := NewSymbolTable()
	assert.True(t, table.Declare(&Symbol{Name: "x", TP: IntegerType, Category: VariableSymbol}))
	assert.False(t, table.Declare(&Symbol{Name: "x", TP: TextType, Category: VariableSymbol}))
	// The first declaration wins.
	assert.Equal(t, IntegerType, table.Resolve("x").TP)
}

func TestSymbolTable_ShadowingAndExit(t *testing.T) {
	table := NewSymbolTable()
	table.Declare(&Symbol{Name: "x", TP: IntegerType, Category: VariableSymbol})
	inner := table.EnterScope()
	assert.Equal(t, 1, table.Depth())
	assert.True(t, table.Declare(&Symbol{Name: "x", TP: TextType, Category: VariableSymbol}))
	assert.Equal(t, TextType, table.Resolve("x").TP)
	assert.Equal(t, inner, table.Resolve("x").ScopeIndex)
	table.ExitScope()
	assert.Equal(t, 0, table.Depth())
	assert.Equal(t, IntegerType, table.Resolve("x").TP)
}

func TestSymbolTable_ResolveWalksToGlobal(t *testing.T) {
	table := NewSymbolTable()
	table.Declare(&Symbol{Name: "fundo", TP: RealType, Category: VariableSymbol})
	table.EnterScope()
	table.EnterScope()
	table.EnterScope()
	assert.Equal(t, 3, table.Depth())
	assert.NotNil(t, table.Resolve("fundo"))
	assert.Nil(t, table.ResolveLocal("fundo"))
}

func TestSymbolTable_ArenaSurvivesExit(t *testing.T) {
	table := NewSymbolTable()
	first := table.EnterScope()
	table.Declare(&Symbol{Name: "a", TP: IntegerType, Category: VariableSymbol})
	table.ExitScope()
	second := table.EnterScope()
	// A sibling scope is a fresh arena slot, not a reuse of the first one.
	assert.NotEqual(t, first, second)
	assert.Nil(t, table.ResolveLocal("a"))
	table.ExitScope()
}

func TestSymbolTable_ExitGlobalPanics(t *testing.T) {
	table := NewSymbolTable()
	assert.Panics(t, func() {
		table.ExitScope()
	})
	table.EnterScope()
	table.ExitScope()
	assert.Panics(t, func() {
		table.ExitScope()
	})
}
