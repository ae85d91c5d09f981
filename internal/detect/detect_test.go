package detect

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/deadcore/analyzer/internal/resolve"
	"github.com/deadcore/analyzer/internal/tsast"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func TestIsArchitecturalCore(t *testing.T) {
	cases := map[string]bool{
		"src/ServiceContainer.ts": true,
		"src/bootstrap.ts":        true,
		"src/commandBus.ts":       true,
		"src/utils/sum.ts":        false,
		"src/Widget.tsx":          false,
		"src/AppFactory.ts":       true,
	}
	for path, want := range cases {
		if got := IsArchitecturalCore(path); got != want {
			t.Errorf("IsArchitecturalCore(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDiscoverEntryPointsFromPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"main": "src/index.js", "bin": {"deadcore": "src/cli.js"}}`)
	writeFile(t, root, "src/index.ts", "export {}")
	writeFile(t, root, "src/cli.ts", "export {}")

	prog, err := resolve.CreateProgram(root, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	found := DiscoverEntryPoints(prog, nil)
	if len(found) < 2 {
		t.Fatalf("expected at least 2 entry points from package.json, got %v", found)
	}

	wantIndex, _ := resolve.Canonicalize(filepath.Join(root, "src/index.ts"))
	wantCLI, _ := resolve.Canonicalize(filepath.Join(root, "src/cli.ts"))

	var sawIndex, sawCLI bool
	for _, f := range found {
		if f == wantIndex {
			sawIndex = true
		}
		if f == wantCLI {
			sawCLI = true
		}
	}
	if !sawIndex || !sawCLI {
		t.Errorf("expected both main and bin resolved, got %v", found)
	}
}

func TestDiscoverEntryPointsDeterministicBinOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"bin": {"zeta": "src/zeta.js", "alpha": "src/alpha.js", "mid": "src/mid.js"}}`)
	writeFile(t, root, "src/zeta.ts", "export {}")
	writeFile(t, root, "src/alpha.ts", "export {}")
	writeFile(t, root, "src/mid.ts", "export {}")

	prog, err := resolve.CreateProgram(root, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	for i := 0; i < 5; i++ {
		found := DiscoverEntryPoints(prog, nil)
		wantAlpha, _ := resolve.Canonicalize(filepath.Join(root, "src/alpha.ts"))
		wantMid, _ := resolve.Canonicalize(filepath.Join(root, "src/mid.ts"))
		wantZeta, _ := resolve.Canonicalize(filepath.Join(root, "src/zeta.ts"))

		idxAlpha, idxMid, idxZeta := -1, -1, -1
		for idx, f := range found {
			switch f {
			case wantAlpha:
				idxAlpha = idx
			case wantMid:
				idxMid = idx
			case wantZeta:
				idxZeta = idx
			}
		}
		if !(idxAlpha < idxMid && idxMid < idxZeta) {
			t.Fatalf("run %d: expected sorted bin order alpha<mid<zeta, got indices %d,%d,%d in %v", i, idxAlpha, idxMid, idxZeta, found)
		}
	}
}

func TestDiscoverEntryPointsConventional(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/index.ts", "export {}")

	prog, err := resolve.CreateProgram(root, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	found := DiscoverEntryPoints(prog, nil)
	want, _ := resolve.Canonicalize(filepath.Join(root, "src/index.ts"))

	var saw bool
	for _, f := range found {
		if f == want {
			saw = true
		}
	}
	if !saw {
		t.Errorf("expected src/index.ts discovered by convention, got %v", found)
	}
}

func TestDiscoverEntryPointsExplicitOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/special.ts", "export {}")

	prog, err := resolve.CreateProgram(root, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	explicit := filepath.Join(root, "src/special.ts")
	found := DiscoverEntryPoints(prog, []string{explicit})
	want, _ := resolve.Canonicalize(explicit)

	var saw bool
	for _, f := range found {
		if f == want {
			saw = true
		}
	}
	if !saw {
		t.Errorf("expected explicit override present, got %v", found)
	}
}

func TestDiscoverEntryPointsDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"main": "src/index.js"}`)
	writeFile(t, root, "src/index.ts", "export {}")

	prog, err := resolve.CreateProgram(root, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	explicit := filepath.Join(root, "src/index.ts")
	found := DiscoverEntryPoints(prog, []string{explicit})

	count := 0
	want, _ := resolve.Canonicalize(explicit)
	for _, f := range found {
		if f == want {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected src/index.ts to appear exactly once, appeared %d times in %v", count, found)
	}
}

func TestExtractFromTextServiceContainer(t *testing.T) {
	src := []byte(`
container.registerSingleton("Logger", LoggerImpl);
container.resolve("Logger");
container.get('Database');
di.bind(` + "`UserRepo`" + `).to(UserRepoImpl);
`)
	usage := ExtractFromText("a.ts", src, nil)
	for _, symbol := range []string{"Logger", "Database", "UserRepo"} {
		if !usage.ServiceContainer.Has(symbol) {
			t.Errorf("expected ServiceContainer to contain %q", symbol)
		}
	}
}

func TestExtractFromTextCommandBus(t *testing.T) {
	src := []byte(`
commandBus.registerHandler("CreateUser", handler);
commandBus.handle("DeleteUser");
router.when("ListUsers");
`)
	usage := ExtractFromText("a.ts", src, nil)
	for _, symbol := range []string{"CreateUser", "DeleteUser", "ListUsers"} {
		if !usage.CommandBus.Has(symbol) {
			t.Errorf("expected CommandBus to contain %q", symbol)
		}
	}
}

func TestExtractFromTextDynamicImports(t *testing.T) {
	src := []byte(`
const mod = await import("./plugins/foo");
const legacy = require('./plugins/bar');
`)
	usage := ExtractFromText("a.ts", src, nil)
	for _, symbol := range []string{"./plugins/foo", "./plugins/bar"} {
		if !usage.DynamicImports.Has(symbol) {
			t.Errorf("expected DynamicImports to contain %q", symbol)
		}
	}
}

func TestExtractFromTextCustomPattern(t *testing.T) {
	src := []byte(`registerPlugin("MyPlugin");`)
	custom := []CustomPattern{
		{Name: "plugin", Regex: regexp.MustCompile(`registerPlugin\("([^"]+)"\)`), SymbolGroup: 1},
	}
	usage := ExtractFromText("a.ts", src, custom)
	if !usage.CustomPatterns.Has("MyPlugin") {
		t.Errorf("expected CustomPatterns to contain MyPlugin")
	}
}

func TestExtractFromASTServiceContainerAndDecorator(t *testing.T) {
	parser, err := tsast.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer parser.Close()

	src := []byte(`
container.resolve("Logger");

@Injectable("UserService")
class UserService {}
`)
	tree, err := parser.ParseFile(".ts", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer tree.Close()

	usage, errs := ExtractFromAST("a.ts", tree.RootNode(), src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !usage.ServiceContainer.Has("Logger") {
		t.Errorf("expected ServiceContainer to contain Logger")
	}
	if !usage.ServiceContainer.Has("UserService") {
		t.Errorf("expected decorator capture of UserService")
	}
}

func TestExtractFromASTDynamicImport(t *testing.T) {
	parser, err := tsast.NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	defer parser.Close()

	src := []byte(`const mod = await import("./plugins/dynamic");`)
	tree, err := parser.ParseFile(".ts", src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	defer tree.Close()

	usage, errs := ExtractFromAST("a.ts", tree.RootNode(), src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !usage.DynamicImports.Has("./plugins/dynamic") {
		t.Errorf("expected DynamicImports to contain ./plugins/dynamic")
	}
}

func TestDynamicUsageMergeIsUnion(t *testing.T) {
	a := NewDynamicUsage()
	a.ServiceContainer.Add("Logger", "a.ts")
	b := NewDynamicUsage()
	b.ServiceContainer.Add("Logger", "b.ts")
	b.ServiceContainer.Add("Database", "b.ts")

	a.Merge(b)

	if got := a.ServiceContainer.Files("Logger"); len(got) != 2 {
		t.Errorf("expected Logger to have 2 files after merge, got %v", got)
	}
	if !a.ServiceContainer.Has("Database") {
		t.Errorf("expected Database present after merge")
	}
}

func TestReadAndExtractMissingFile(t *testing.T) {
	_, errs := ReadAndExtract(filepath.Join(t.TempDir(), "missing.ts"), nil, nil)
	if len(errs) == 0 {
		t.Errorf("expected an error for a missing file")
	}
}
