// Package tsast provides pooled Tree-sitter parsing for TypeScript and TSX
// source, plus the small tree-walking helpers the Pattern Detector and
// Unified Engine both need to extract import edges and dynamic-usage
// evidence from a parsed syntax tree.
//
// Grounded on the teacher's internal/parser/treesitter.go (pooled,
// mutex-serialized tree-sitter parsers; explicit Tree.Close()) and
// internal/analyzer/shared/shared.go (WalkTree, NodeText). Tree-sitter
// parsers are not thread-safe, so all parse calls are serialized; trees
// returned from parsing are safe to use concurrently once parsed.
package tsast

import (
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Parser holds pooled Tree-sitter parsers for TypeScript and TSX.
type Parser struct {
	mu        sync.Mutex
	tsParser  *tree_sitter.Parser
	tsxParser *tree_sitter.Parser
}

// NewParser creates parsers for TypeScript and TSX.
func NewParser() (*Parser, error) {
	tsParser := tree_sitter.NewParser()
	tsLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := tsParser.SetLanguage(tsLang); err != nil {
		tsParser.Close()
		return nil, fmt.Errorf("set typescript language: %w", err)
	}

	tsxParser := tree_sitter.NewParser()
	tsxLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	if err := tsxParser.SetLanguage(tsxLang); err != nil {
		tsParser.Close()
		tsxParser.Close()
		return nil, fmt.Errorf("set tsx language: %w", err)
	}

	return &Parser{tsParser: tsParser, tsxParser: tsxParser}, nil
}

// Close releases all parser resources. Must be called when done.
func (p *Parser) Close() {
	if p.tsParser != nil {
		p.tsParser.Close()
	}
	if p.tsxParser != nil {
		p.tsxParser.Close()
	}
}

// ParseFile parses content, choosing the TSX grammar for ".tsx" and ".jsx"
// (the only grammar here that accepts JSX elements) and the plain
// TypeScript grammar for everything else (".ts" and ".js", whose syntax
// the TypeScript grammar covers as a superset of JS).
// Thread-safe; parsing is serialized internally. Returns a Tree the
// caller must Close().
func (p *Parser) ParseFile(ext string, content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	parser := p.tsParser
	if strings.EqualFold(ext, ".tsx") || strings.EqualFold(ext, ".jsx") {
		parser = p.tsxParser
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}

// WalkTree walks a Tree-sitter tree depth-first, calling fn for each node.
func WalkTree(node *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			WalkTree(child, fn)
		}
	}
}

// NodeText extracts the text content of a Tree-sitter node.
func NodeText(node *tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// StripQuotes removes surrounding quotes (single, double, or backtick)
// from a string literal's raw source text.
func StripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
