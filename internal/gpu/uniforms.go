package gpu

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"
)

// DeclaredUniforms lists the package-level variables of a Kage fragment
// source. Kage programs are Go syntax, so the standard parser reads them.
func DeclaredUniforms(src string) ([]string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), "fragment.kage", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, spec := range gd.Specs {
			for _, n := range spec.(*ast.ValueSpec).Names {
				names = append(names, n.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// CheckContract verifies the fragment declares the uniforms the pipeline
// uploads. The returned string is a link log.
func CheckContract(src string) (bool, string) {
	names, err := DeclaredUniforms(src)
	if err != nil {
		return false, err.Error()
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	var missing []string
	for _, want := range []string{UniformResolution, UniformElapsedTime} {
		if !have[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("fragment program missing uniform(s): %s", strings.Join(missing, ", "))
	}
	return true, ""
}
