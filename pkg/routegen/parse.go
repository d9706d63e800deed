package routegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"
)

type declKind int

const (
	declRoute declKind = iota + 1
	declLayout
)

// findDecl returns the name of the single exported variable of the wanted
// kind declared in src.
func findDecl(filename string, src []byte, facade string, want declKind) (string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return "", fmt.Errorf("parse: %w", err)
	}

	local := facadeName(f, facade)
	if local == "" {
		return "", ErrNoDeclaration
	}

	var found []string
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if !name.IsExported() || i >= len(vs.Values) {
					continue
				}
				if kindOf(vs.Values[i], local) == want {
					found = append(found, name.Name)
				}
			}
		}
	}

	switch len(found) {
	case 0:
		return "", ErrNoDeclaration
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrAmbiguous, found)
	}
}

// facadeName returns the identifier a file uses for the facade import.
func facadeName(f *ast.File, facade string) string {
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != facade {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				return ""
			}
			return imp.Name.Name
		}
		return path.Base(p)
	}
	return ""
}

func kindOf(expr ast.Expr, local string) declKind {
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		if e.Op == token.AND {
			return kindOf(e.X, local)
		}
	case *ast.CompositeLit:
		if isFacadeSel(e.Type, local, "Module") {
			return declRoute
		}
	case *ast.CallExpr:
		if isFacadeSel(e.Fun, local, "Wrap") || isFacadeSel(e.Fun, local, "Guard") {
			return declLayout
		}
	}
	return 0
}

func isFacadeSel(expr ast.Expr, local, name string) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	x, ok := sel.X.(*ast.Ident)
	return ok && x.Name == local && sel.Sel.Name == name
}
