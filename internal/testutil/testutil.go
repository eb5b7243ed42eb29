// Package testutil provides helper functions shared across plank's test
// suites.
package testutil

import (
	"testing"

	"github.com/plank-ts/plank/internal/parser"
)

// CreateTestAST parses source as a TypeScript declaration file, failing
// the test on a parse error.
func CreateTestAST(t *testing.T, source string) *parser.Node {
	t.Helper()
	p := parser.NewDeclarationParser()
	defer p.Close()

	ast, err := p.ParseString(source)
	if err != nil {
		t.Fatalf("failed to parse test source: %v", err)
	}
	return ast
}

// CreateTestASTNoFail parses source, returning an error instead of
// failing the test.
func CreateTestASTNoFail(source string) (*parser.Node, error) {
	p := parser.NewDeclarationParser()
	defer p.Close()
	return p.ParseString(source)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual.
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// AssertNotNil fails the test if value is nil.
func AssertNotNil(t *testing.T, value any) {
	t.Helper()
	if value == nil {
		t.Error("expected non-nil value")
	}
}

// AssertNil fails the test if value is not nil.
func AssertNil(t *testing.T, value any) {
	t.Helper()
	if value != nil {
		t.Errorf("expected nil, got %v", value)
	}
}

// FindDeclarationInAST finds a top-level declaration node by name.
func FindDeclarationInAST(ast *parser.Node, name string) *parser.Node {
	var found *parser.Node
	ast.Walk(func(n *parser.Node) bool {
		if n.IsDeclaration() && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountDeclarationsInAST counts the declaration nodes in an AST.
func CountDeclarationsInAST(ast *parser.Node) int {
	count := 0
	ast.Walk(func(n *parser.Node) bool {
		if n.IsDeclaration() {
			count++
		}
		return true
	})
	return count
}

// CountNodesOfType counts nodes of a specific type in an AST.
func CountNodesOfType(ast *parser.Node, nodeType parser.NodeType) int {
	count := 0
	ast.Walk(func(n *parser.Node) bool {
		if n.Type == nodeType {
			count++
		}
		return true
	})
	return count
}
