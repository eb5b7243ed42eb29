package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps a tree-sitter parser configured for one TypeScript surface
// dialect: plain `.ts`/`.d.ts` declaration syntax, or `.tsx` (which is a
// strict grammar superset, needed only because ambient `.tsx` sources may
// appear among a module's dependencies).
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	isTSX    bool
}

// NewDeclarationParser creates a parser for `.ts`/`.d.ts`/`.mts`/`.cts`
// sources using the plain TypeScript grammar (no JSX productions, so `<T>`
// type assertions and generic call expressions parse unambiguously).
func NewDeclarationParser() *Parser {
	p := sitter.NewParser()
	lang := typescript.GetLanguage()
	p.SetLanguage(lang)
	return &Parser{parser: p, language: lang}
}

// NewTSXParser creates a parser for `.tsx` sources.
func NewTSXParser() *Parser {
	p := sitter.NewParser()
	lang := tsx.GetLanguage()
	p.SetLanguage(lang)
	return &Parser{parser: p, language: lang, isTSX: true}
}

// ParseFile parses source and builds the declaration AST.
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	builder := NewASTBuilder(filename, source)
	return builder.Build(root), nil
}

// Parse parses source under the name "<input>".
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile("<input>", source)
}

// ParseString parses source code given as a string.
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// IsTSX reports whether this parser is configured for the JSX-superset grammar.
func (p *Parser) IsTSX() bool {
	return p.isTSX
}

// Close frees the underlying tree-sitter parser.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForLanguage selects a declaration or TSX parser by file extension
// and parses filename/source with it.
func ParseForLanguage(filename string, source []byte) (*Node, error) {
	var p *Parser
	if strings.HasSuffix(filename, ".tsx") {
		p = NewTSXParser()
	} else {
		p = NewDeclarationParser()
	}
	defer p.Close()

	return p.ParseFile(filename, source)
}
