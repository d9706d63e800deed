// Package routegen compiles a directory tree of route files into a static
// route table.
//
// Every directory under the routes root is a Go package. A route file
// declares exactly one exported package-level variable initialized with a
// module literal from the facade package:
//
//	// app/routes/admin/roles/index.$id.go
//	var Detail = mwm.Module{
//		Page: detailPage,
//		POST: mwm.View(updateRole),
//	}
//
// A layout file (default name "layout.go") declares exactly one exported
// variable initialized by a call to the facade's Wrap or Guard constructor:
//
//	// app/routes/admin/layout.go
//	var Layout = mwm.Guard(requireAdmin, views.AdminShell)
//
// The compiler walks the tree, skips names prefixed with "_", "-" or ".",
// and also skips test files. It translates file paths into URL patterns (see
// package routing) and attaches the layout chain of every ancestor
// directory, root-most first. The result is sorted by pattern so generated
// output is stable across runs.
//
// A file that cannot be read or parsed, that lacks a single route
// declaration, or whose name or directory the go command would refuse
// (such as "$id.go"), is logged and skipped. It never aborts compilation.
//
// Usage:
//
//	res, err := routegen.Compile(os.DirFS("app/routes"), routegen.Config{
//		ModulePath: "github.com/dmitrymomot/mwm/app/routes",
//		Logger:     log,
//	})
//	if err != nil {
//		return err
//	}
//	res.Assets, err = routegen.ScanAssets(os.DirFS("app/public"), "")
//	err = res.WriteGo(f, "routetable")
package routegen
