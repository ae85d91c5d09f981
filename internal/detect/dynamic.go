// Package detect is the Pattern Detector: it scans resolved source files
// for evidence of dynamic wiring invisible to static import edges
// (service-container registrations, command-bus handlers, dynamic
// import() calls, DI decorators), discovers entry points from packaging
// metadata and conventional layouts, and flags architectural-core files.
// It never mutates the Dependency Graph directly - it only returns data
// for the Unified Engine to integrate.
package detect

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/deadcore/analyzer/internal/tsast"
)

// SymbolIndex is an insertion-ordered (symbol -> files) map: the symbol
// key order and each symbol's file list preserve first-seen order, which
// the spec's output contract requires ("insertion-ordered").
type SymbolIndex struct {
	order []string
	files map[string][]string
	seen  map[string]map[string]bool
}

func newSymbolIndex() *SymbolIndex {
	return &SymbolIndex{files: make(map[string][]string), seen: make(map[string]map[string]bool)}
}

// Add records that symbol was seen in file, case-sensitively, deduplicated.
func (s *SymbolIndex) Add(symbol, file string) {
	if symbol == "" {
		return
	}
	fileSet, ok := s.seen[symbol]
	if !ok {
		fileSet = make(map[string]bool)
		s.seen[symbol] = fileSet
		s.order = append(s.order, symbol)
	}
	if fileSet[file] {
		return
	}
	fileSet[file] = true
	s.files[symbol] = append(s.files[symbol], file)
}

// Keys returns the symbols in first-seen order.
func (s *SymbolIndex) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Files returns the files that mentioned symbol, in first-seen order.
func (s *SymbolIndex) Files(symbol string) []string {
	return append([]string(nil), s.files[symbol]...)
}

// Has reports whether symbol was recorded at all.
func (s *SymbolIndex) Has(symbol string) bool {
	_, ok := s.seen[symbol]
	return ok
}

// ToMap renders the index as symbol -> files, for the result's external
// JSON-shaped form.
func (s *SymbolIndex) ToMap() map[string][]string {
	out := make(map[string][]string, len(s.order))
	for _, k := range s.order {
		out[k] = s.Files(k)
	}
	return out
}

// DynamicUsage aggregates the four symbol->files mappings the spec
// defines: service-container registrations, command-bus handlers, dynamic
// import() targets, and user-configured custom patterns.
type DynamicUsage struct {
	ServiceContainer *SymbolIndex
	CommandBus       *SymbolIndex
	DynamicImports   *SymbolIndex
	CustomPatterns   *SymbolIndex
}

// NewDynamicUsage returns an empty DynamicUsage ready for merging.
func NewDynamicUsage() *DynamicUsage {
	return &DynamicUsage{
		ServiceContainer: newSymbolIndex(),
		CommandBus:       newSymbolIndex(),
		DynamicImports:   newSymbolIndex(),
		CustomPatterns:   newSymbolIndex(),
	}
}

// Merge folds other into u. Set-union is commutative, so callers may merge
// per-file results from parallel workers in any order (spec section 5).
func (u *DynamicUsage) Merge(other *DynamicUsage) {
	for _, idx := range []struct{ dst, src *SymbolIndex }{
		{u.ServiceContainer, other.ServiceContainer},
		{u.CommandBus, other.CommandBus},
		{u.DynamicImports, other.DynamicImports},
		{u.CustomPatterns, other.CustomPatterns},
	} {
		for _, symbol := range idx.src.Keys() {
			for _, file := range idx.src.Files(symbol) {
				idx.dst.Add(symbol, file)
			}
		}
	}
}

// CustomPattern is one user-configured regex pass (spec
// dynamicPatterns.customPatterns).
type CustomPattern struct {
	Name        string
	Regex       *regexp.Regexp
	SymbolGroup int
}

var (
	reServiceRegister = regexp.MustCompile(`container\.register(?:Singleton)?\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	reServiceResolve  = regexp.MustCompile(`container\.resolve\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	reServiceGet      = regexp.MustCompile(`container\.get\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	reServiceBind     = regexp.MustCompile(`\.bind\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)\.to\(`)

	reCommandRegister = regexp.MustCompile(`commandBus\.register(?:Command|Handler)?\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	reCommandHandle   = regexp.MustCompile(`commandBus\.handle\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
	reCommandWhen     = regexp.MustCompile(`\.when\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)`)

	reDynamicImport  = regexp.MustCompile(`import\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)`)
	reDynamicRequire = regexp.MustCompile(`require\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)`)
	reDynamicUnder   = regexp.MustCompile(`__import\(\s*["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]\s*\)`)
)

// ExtractFromText runs the regex pass over raw source text, capturing
// symbols embedded in strings or otherwise invisible to an AST walk.
func ExtractFromText(path string, content []byte, custom []CustomPattern) *DynamicUsage {
	usage := NewDynamicUsage()
	text := string(content)

	for _, m := range reServiceRegister.FindAllStringSubmatch(text, -1) {
		usage.ServiceContainer.Add(m[1], path)
	}
	for _, m := range reServiceResolve.FindAllStringSubmatch(text, -1) {
		usage.ServiceContainer.Add(m[1], path)
	}
	for _, m := range reServiceGet.FindAllStringSubmatch(text, -1) {
		usage.ServiceContainer.Add(m[1], path)
	}
	for _, m := range reServiceBind.FindAllStringSubmatch(text, -1) {
		usage.ServiceContainer.Add(m[1], path)
	}

	for _, m := range reCommandRegister.FindAllStringSubmatch(text, -1) {
		usage.CommandBus.Add(m[1], path)
	}
	for _, m := range reCommandHandle.FindAllStringSubmatch(text, -1) {
		usage.CommandBus.Add(m[1], path)
	}
	for _, m := range reCommandWhen.FindAllStringSubmatch(text, -1) {
		usage.CommandBus.Add(m[1], path)
	}

	for _, m := range reDynamicImport.FindAllStringSubmatch(text, -1) {
		usage.DynamicImports.Add(m[1], path)
	}
	for _, m := range reDynamicRequire.FindAllStringSubmatch(text, -1) {
		usage.DynamicImports.Add(m[1], path)
	}
	for _, m := range reDynamicUnder.FindAllStringSubmatch(text, -1) {
		usage.DynamicImports.Add(m[1], path)
	}

	for _, cp := range custom {
		if cp.Regex == nil {
			continue
		}
		for _, m := range cp.Regex.FindAllStringSubmatch(text, -1) {
			if cp.SymbolGroup < len(m) {
				usage.CustomPatterns.Add(m[cp.SymbolGroup], path)
			}
		}
	}

	return usage
}

var serviceContainerMethods = map[string]bool{"register": true, "resolve": true, "get": true}
var commandBusMethods = map[string]bool{"register": true, "handle": true, "send": true}
var diDecoratorNames = map[string]bool{"Injectable": true, "Service": true, "Component": true, "Repository": true}

// ExtractFromAST runs the AST pass over a parsed tree: call expressions on
// a receiver whose name contains "container" (any case) with method
// register/resolve/get feed ServiceContainer; a receiver containing
// "commandBus" with method register/handle/send feeds CommandBus; a
// dynamic import(...) expression feeds DynamicImports; and a decorator
// named Injectable/Service/Component/Repository with a string argument
// feeds ServiceContainer. A panic recovered per call keeps one malformed
// node from aborting the whole file's extraction (PatternError: local,
// logged, skipped).
func ExtractFromAST(path string, root *tree_sitter.Node, content []byte) (usage *DynamicUsage, errs []error) {
	usage = NewDynamicUsage()

	tsast.WalkTree(root, func(node *tree_sitter.Node) {
		defer func() {
			if r := recover(); r != nil {
				errs = append(errs, patternErrorf(path, r))
			}
		}()

		switch node.Kind() {
		case "call_expression":
			extractCallExpression(node, content, path, usage)
		case "decorator":
			extractDecorator(node, content, path, usage)
		}
	})

	return usage, errs
}

func extractCallExpression(node *tree_sitter.Node, content []byte, path string, usage *DynamicUsage) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	if fn.Kind() == "import" || tsast.NodeText(fn, content) == "import" {
		if sym := firstStringArg(node, content); sym != "" {
			usage.DynamicImports.Add(sym, path)
		}
		return
	}

	if fn.Kind() != "member_expression" {
		return
	}
	obj := fn.ChildByFieldName("object")
	prop := fn.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return
	}

	objName := strings.ToLower(tsast.NodeText(obj, content))
	method := tsast.NodeText(prop, content)
	sym := firstStringArg(node, content)
	if sym == "" {
		return
	}

	if strings.Contains(objName, "container") && serviceContainerMethods[method] {
		usage.ServiceContainer.Add(sym, path)
	}
	if strings.Contains(objName, "commandbus") && commandBusMethods[method] {
		usage.CommandBus.Add(sym, path)
	}
}

func extractDecorator(node *tree_sitter.Node, content []byte, path string, usage *DynamicUsage) {
	var call *tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == "call_expression" {
			call = child
			break
		}
	}
	if call == nil {
		return
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := tsast.NodeText(fn, content)
	if !diDecoratorNames[name] {
		return
	}
	if sym := firstStringArg(call, content); sym != "" {
		usage.ServiceContainer.Add(sym, path)
	}
}

// firstStringArg returns the unquoted text of the first string-literal
// argument in a call_expression's argument list, or "" if none.
func firstStringArg(call *tree_sitter.Node, content []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child != nil && child.Kind() == "string" {
			return tsast.StripQuotes(tsast.NodeText(child, content))
		}
	}
	return ""
}

// ReadAndExtract reads path, runs the regex pass, and (when parser is
// non-nil) the AST pass, merging both into a single DynamicUsage for that
// file. A read or parse failure is reported through errs but never
// aborts the caller's extraction of other files.
func ReadAndExtract(path string, parser *tsast.Parser, custom []CustomPattern) (*DynamicUsage, []error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return NewDynamicUsage(), []error{err}
	}

	usage := ExtractFromText(path, content, custom)
	if parser == nil {
		return usage, nil
	}

	tree, err := parser.ParseFile(strings.ToLower(filepath.Ext(path)), content)
	if err != nil {
		return usage, []error{err}
	}
	defer tree.Close()

	astUsage, errs := ExtractFromAST(path, tree.RootNode(), content)
	usage.Merge(astUsage)
	return usage, errs
}

func patternErrorf(path string, r interface{}) error {
	return &PatternError{Path: path, Detail: r}
}

// PatternError wraps a recovered panic from AST pattern extraction. It is
// local: logged and skipped, never fatal.
type PatternError struct {
	Path   string
	Detail interface{}
}

func (e *PatternError) Error() string {
	return "pattern extraction failed at " + e.Path
}
