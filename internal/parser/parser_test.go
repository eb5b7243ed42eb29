package parser

import "testing"

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	p := NewDeclarationParser()
	defer p.Close()
	ast, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if ast == nil {
		t.Fatal("AST is nil")
	}
	return ast
}

func TestParseFunctionSignature(t *testing.T) {
	ast := mustParse(t, `export declare function add(a: number, b: number): number;`)

	if ast.Type != NodeProgram {
		t.Fatalf("expected NodeProgram, got %s", ast.Type)
	}
	if len(ast.Children) == 0 {
		t.Fatal("expected at least one top-level statement")
	}

	export := ast.Children[0]
	if export.Type != NodeExportNamedDeclaration {
		t.Fatalf("expected ExportNamedDeclaration, got %s", export.Type)
	}
	fn := export.Declaration
	if fn == nil || fn.Type != NodeFunctionDeclaration {
		t.Fatalf("expected wrapped FunctionDeclaration, got %+v", fn)
	}
	if fn.Name != "add" {
		t.Errorf("expected function name add, got %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.ReturnType == nil || fn.ReturnType.Type != NodeTypePredefined {
		t.Fatalf("expected predefined return type, got %+v", fn.ReturnType)
	}
}

func TestParseClassWithConstructorAndMethod(t *testing.T) {
	ast := mustParse(t, `export declare class Foo {
		constructor(x: number);
		bar(s: string): void;
	}`)

	export := ast.Children[0]
	class := export.Declaration
	if class == nil || class.Type != NodeClassDeclaration {
		t.Fatalf("expected ClassDeclaration, got %+v", class)
	}
	if class.Name != "Foo" {
		t.Errorf("expected class name Foo, got %q", class.Name)
	}
	if len(class.Body) != 2 {
		t.Fatalf("expected 2 class members, got %d", len(class.Body))
	}
}

func TestParseInterfaceWithFields(t *testing.T) {
	ast := mustParse(t, `export interface I { n: number; s?: string; }`)

	export := ast.Children[0]
	iface := export.Declaration
	if iface == nil || iface.Type != NodeInterfaceDeclaration {
		t.Fatalf("expected InterfaceDeclaration, got %+v", iface)
	}
	if len(iface.Body) != 2 {
		t.Fatalf("expected 2 interface members, got %d", len(iface.Body))
	}
	if !iface.Body[1].Optional {
		t.Error("expected second field to be optional")
	}
}

func TestParseNamedImport(t *testing.T) {
	ast := mustParse(t, `import { A, B as C } from "./mod";`)

	imp := ast.Children[0]
	if imp.Type != NodeImportDeclaration {
		t.Fatalf("expected ImportDeclaration, got %s", imp.Type)
	}
	if imp.Source == nil {
		t.Fatal("expected import source")
	}
	if len(imp.Specifiers) != 2 {
		t.Fatalf("expected 2 specifiers, got %d", len(imp.Specifiers))
	}
	if imp.Specifiers[1].Name != "C" || imp.Specifiers[1].Imported.Name != "B" {
		t.Errorf("expected aliased import B as C, got %+v", imp.Specifiers[1])
	}
}

func TestParseExportFrom(t *testing.T) {
	ast := mustParse(t, `export { X } from "./a";`)

	exp := ast.Children[0]
	if exp.Type != NodeExportNamedDeclaration {
		t.Fatalf("expected ExportNamedDeclaration, got %s", exp.Type)
	}
	if exp.Source == nil {
		t.Fatal("expected export source")
	}
	if len(exp.Specifiers) != 1 || exp.Specifiers[0].Name != "X" {
		t.Fatalf("expected one specifier X, got %+v", exp.Specifiers)
	}
}

func TestParseExportAll(t *testing.T) {
	ast := mustParse(t, `export * from "./a";`)

	exp := ast.Children[0]
	if exp.Type != NodeExportAllDeclaration {
		t.Fatalf("expected ExportAllDeclaration, got %s", exp.Type)
	}
	if exp.Source == nil {
		t.Fatal("expected export source")
	}
}

func TestParseDefaultExportIsTagged(t *testing.T) {
	ast := mustParse(t, `export default function f(): void {}`)

	exp := ast.Children[0]
	if exp.Type != NodeExportDefaultDeclaration {
		t.Fatalf("expected ExportDefaultDeclaration, got %s", exp.Type)
	}
}

func TestParseTypeAlias(t *testing.T) {
	ast := mustParse(t, `export type Pair = [number, string];`)

	exp := ast.Children[0]
	alias := exp.Declaration
	if alias == nil || alias.Type != NodeTypeAliasDeclaration {
		t.Fatalf("expected TypeAliasDeclaration, got %+v", alias)
	}
	if alias.TypeAnnotation == nil || alias.TypeAnnotation.Type != NodeTypeTuple {
		t.Fatalf("expected tuple type annotation, got %+v", alias.TypeAnnotation)
	}
}

func TestParseEnum(t *testing.T) {
	ast := mustParse(t, `export enum Color { Red, Green, Blue }`)

	exp := ast.Children[0]
	enum := exp.Declaration
	if enum == nil || enum.Type != NodeEnumDeclaration {
		t.Fatalf("expected EnumDeclaration, got %+v", enum)
	}
	if len(enum.Body) != 3 {
		t.Fatalf("expected 3 enum members, got %d", len(enum.Body))
	}
}

func TestParseArrayType(t *testing.T) {
	ast := mustParse(t, `export declare const xs: number[];`)

	exp := ast.Children[0]
	v := exp.Declaration
	if v == nil || v.Type != NodeVariableDeclaration {
		t.Fatalf("expected VariableDeclaration, got %+v", v)
	}
	decl := v.Declarations[0]
	if decl.TypeAnnotation == nil || decl.TypeAnnotation.Type != NodeTypeArray {
		t.Fatalf("expected array type annotation, got %+v", decl.TypeAnnotation)
	}
	if decl.TypeAnnotation.Rank != 1 {
		t.Errorf("expected rank 1, got %d", decl.TypeAnnotation.Rank)
	}
}

func TestWalkVisitsNestedTypeArgs(t *testing.T) {
	ast := mustParse(t, `export declare function f(): Array<string>;`)

	found := false
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeTypePredefined && n.Name == "string" {
			found = true
		}
		return true
	})
	if !found {
		t.Error("expected Walk to reach the generic type argument")
	}
}

func TestStringValueStripsQuotes(t *testing.T) {
	ast := mustParse(t, `import "./a";`)
	imp := ast.Children[0]
	if imp.Source == nil {
		t.Fatal("expected import source")
	}
	if got := imp.Source.StringValue(); got != "./a" {
		t.Errorf("expected ./a, got %q", got)
	}
}
