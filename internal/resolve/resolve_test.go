package resolve

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateProgramSynthesizesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "export const x = 1;\n")

	prog, err := CreateProgram(dir, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if prog.Options.ModuleResolution != "node16" {
		t.Errorf("ModuleResolution = %q, want node16", prog.Options.ModuleResolution)
	}
	if !prog.Options.AllowJS {
		t.Error("AllowJS = false, want true (default)")
	}
}

func TestCreateProgramMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tsconfig.json"), "{not valid json")

	_, err := CreateProgram(dir, nil, nil)
	var cfgErr *ConfigError
	if err == nil {
		t.Fatal("expected ConfigError for malformed tsconfig.json")
	}
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigError", err)
	}
}

func asConfigError(err error, target **ConfigError) bool {
	ce, ok := err.(*ConfigError)
	if ok {
		*target = ce
	}
	return ok
}

func TestCreateProgramMissingProjectPath(t *testing.T) {
	_, err := CreateProgram("/does/not/exist/at/all", nil, nil)
	if err == nil {
		t.Fatal("expected error for missing project path")
	}
}

func TestSourceFilesExcludesDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "export {}\n")
	writeFile(t, filepath.Join(dir, "types.d.ts"), "export type X = string;\n")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.ts"), "export {}\n")

	prog, err := CreateProgram(dir, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	for _, f := range prog.SourceFiles() {
		if filepath.Base(f) == "types.d.ts" {
			t.Error("SourceFiles() should exclude declaration files")
		}
		if filepath.Base(filepath.Dir(filepath.Dir(f))) == "node_modules" {
			t.Error("SourceFiles() should exclude node_modules")
		}
	}
}

func TestResolveImportJSToTSFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), `import { x } from "./util.js";`)
	writeFile(t, filepath.Join(dir, "util.ts"), "export const x = 1;\n")

	prog, err := CreateProgram(dir, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	resolved, ok := prog.ResolveImport(from, "./util.js")
	if !ok {
		t.Fatal("expected ./util.js to resolve to sibling util.ts")
	}
	if filepath.Base(resolved) != "util.ts" {
		t.Errorf("resolved = %s, want util.ts", resolved)
	}
}

func TestResolveImportLiteralJSWhenPresent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")
	writeFile(t, filepath.Join(dir, "legacy.js"), "module.exports = {};\n")

	prog, _ := CreateProgram(dir, nil, nil)
	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	resolved, ok := prog.ResolveImport(from, "./legacy.js")
	if !ok || filepath.Base(resolved) != "legacy.js" {
		t.Fatalf("resolved = %q, ok = %v, want legacy.js", resolved, ok)
	}
}

func TestResolveImportIndexFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")
	writeFile(t, filepath.Join(dir, "lib", "index.ts"), "export {}\n")

	prog, _ := CreateProgram(dir, nil, nil)
	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	resolved, ok := prog.ResolveImport(from, "./lib")
	if !ok {
		t.Fatal("expected ./lib to resolve to lib/index.ts")
	}
	if filepath.Base(resolved) != "index.ts" {
		t.Errorf("resolved = %s, want index.ts", resolved)
	}
}

func TestResolveImportBareSpecifierIsExternal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")

	prog, _ := CreateProgram(dir, nil, nil)
	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	if _, ok := prog.ResolveImport(from, "react"); ok {
		t.Fatal("bare specifier should resolve to external (ok=false)")
	}
}

func TestResolveImportUnresolvableIsExternal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")

	prog, _ := CreateProgram(dir, nil, nil)
	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	if _, ok := prog.ResolveImport(from, "./does-not-exist"); ok {
		t.Fatal("unresolvable relative specifier should be treated as external")
	}
}

func TestResolveImportJSFallbackDisabledUnderNodeResolution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), `import { x } from "./util.js";`)
	writeFile(t, filepath.Join(dir, "util.ts"), "export const x = 1;\n")

	prog, err := CreateProgram(dir, &CompilerOptions{ModuleResolution: "node"}, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if prog.Options.ModuleResolution != "node" {
		t.Fatalf("ModuleResolution = %q, want node", prog.Options.ModuleResolution)
	}

	from, _ := Canonicalize(filepath.Join(dir, "index.ts"))
	if _, ok := prog.ResolveImport(from, "./util.js"); ok {
		t.Fatal("expected ./util.js to NOT resolve under classic node resolution (no sibling .ts rewrite)")
	}
}

func TestResolveFromDirRejectsNonSourceLiteralExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")
	writeFile(t, filepath.Join(dir, "config.json"), `{}`)

	prog, err := CreateProgram(dir, nil, nil)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if _, ok := prog.ResolveFromDir(dir, "./config.json"); ok {
		t.Fatal("expected ./config.json to not resolve: .json is not an accepted source extension")
	}
}

func TestDiscoverFilesRespectsExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.ts"), "")
	writeFile(t, filepath.Join(dir, "generated", "schema.ts"), "")

	prog, err := CreateProgram(dir, nil, []string{"generated/**"})
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	for _, f := range prog.SourceFiles() {
		if filepath.Base(filepath.Dir(f)) == "generated" {
			t.Errorf("excluded file %s should not be discovered", f)
		}
	}
}
