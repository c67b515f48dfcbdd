package symtab

import (
	"testing"

	"github.com/j4n1x/jlang/internal/ast"
	"github.com/j4n1x/jlang/internal/token"
)

func TestOrderedMap_PreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)
	want := []string{"c", "a", "b"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOrderedMap_SetOverwritesWithoutReordering(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)
	if got := m.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b]", got)
	}
	v, ok := m.Get("a")
	if !ok || v != 99 {
		t.Errorf("Get(a) = %d, %v, want 99, true", v, ok)
	}
}

func TestTables_ResolvePrecedence(t *testing.T) {
	tabs := NewTables()
	tabs.Globals.Set("x", &ast.VarDef{Name: "x", Kind: ast.IdentGlobal, Typ: token.TypeInteger})
	tabs.Constants.Set("x", &Constant{Name: "x", Typ: token.TypePointer})
	tabs.ScopeVars.Set("x", &ast.VarDef{Name: "x", Kind: ast.IdentLocal, Typ: token.TypePointer})
	tabs.Prototypes.Set("x", &ast.FunProto{Name: "x", ReturnType: token.TypeNone})

	kind, _, ok := tabs.Resolve("x")
	if !ok || kind != ast.IdentFunction {
		t.Fatalf("Resolve(x) = %v, %v, want IdentFunction, true", kind, ok)
	}

	tabs.Prototypes.Clear()
	kind, _, ok = tabs.Resolve("x")
	if !ok || kind != ast.IdentLocal {
		t.Fatalf("Resolve(x) = %v, %v, want IdentLocal, true", kind, ok)
	}

	tabs.ScopeVars.Clear()
	kind, _, ok = tabs.Resolve("x")
	if !ok || kind != ast.IdentGlobal {
		t.Fatalf("Resolve(x) = %v, %v, want IdentGlobal, true", kind, ok)
	}

	tabs.Globals.Clear()
	kind, _, ok = tabs.Resolve("x")
	if !ok || kind != ast.IdentConstant {
		t.Fatalf("Resolve(x) = %v, %v, want IdentConstant, true", kind, ok)
	}
}

func TestTables_EnterFunctionClearsScope(t *testing.T) {
	tabs := NewTables()
	tabs.ScopeVars.Set("i", &ast.VarDef{Name: "i"})
	tabs.AnonymousScopeVars = append(tabs.AnonymousScopeVars, &ast.VarDef{Name: "_anon_arr_0"})
	tabs.EnterFunction()
	if tabs.ScopeVars.Len() != 0 {
		t.Errorf("ScopeVars not cleared: %v", tabs.ScopeVars.Keys())
	}
	if len(tabs.AnonymousScopeVars) != 0 {
		t.Errorf("AnonymousScopeVars not cleared: %v", tabs.AnonymousScopeVars)
	}
}

func TestTables_RegisterStringIsPositional(t *testing.T) {
	tabs := NewTables()
	a := tabs.RegisterString("hello")
	b := tabs.RegisterString("world")
	if a != "_anon_str_0" || b != "_anon_str_1" {
		t.Errorf("got %q, %q, want _anon_str_0, _anon_str_1", a, b)
	}
	if len(tabs.GlobalConstVars) != 2 || tabs.GlobalConstVars[0] != "hello" || tabs.GlobalConstVars[1] != "world" {
		t.Errorf("GlobalConstVars = %v", tabs.GlobalConstVars)
	}
}

func TestConstValue_Emit(t *testing.T) {
	tests := []struct {
		v    ConstValue
		want string
	}{
		{ConstValue{IntPart: 5}, "5"},
		{ConstValue{Symbol: "_anon_str_0"}, "_anon_str_0"},
		{ConstValue{Symbol: "_anon_str_0", IntPart: 3}, "_anon_str_0+3"},
		{ConstValue{Symbol: "_anon_str_0", IntPart: -3}, "_anon_str_0-3"},
	}
	for _, tt := range tests {
		if got := tt.v.Emit(); got != tt.want {
			t.Errorf("Emit() = %q, want %q", got, tt.want)
		}
	}
}
