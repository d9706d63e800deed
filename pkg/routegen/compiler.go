package routegen

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/mod/module"

	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/routing"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultFacade     = "github.com/dmitrymomot/mwm"
	DefaultLayoutFile = "layout.go"
	sourceExt         = ".go"
)

// Config controls a compilation run.
type Config struct {
	// Logger receives a warning for every skipped file.
	Logger *slog.Logger

	// ModulePath is the import path of the routes root package.
	ModulePath string

	// Facade is the import path whose Module, Wrap and Guard identifiers mark
	// declarations. Defaults to DefaultFacade.
	Facade string

	// LayoutFile is the reserved per-directory layout file name.
	// Defaults to DefaultLayoutFile.
	LayoutFile string
}

// Symbol references an exported variable in a route package.
type Symbol struct {
	File       string `json:"file"`
	ImportPath string `json:"import"`
	Name       string `json:"symbol"`
	alias      string
}

// Ref returns the qualified Go expression for the symbol.
func (s Symbol) Ref() string { return s.alias + "." + s.Name }

// Route is a compiled route entry.
type Route struct {
	Pattern string   `json:"pattern"`
	Layouts []Symbol `json:"layouts"`
	Symbol
}

// Skipped records a file the compiler could not use.
type Skipped struct {
	Err  error
	File string
}

// Result is the output of Compile.
type Result struct {
	Routes  []Route
	Assets  []Asset
	Skipped []Skipped
	imports []Symbol
}

// Compile scans fsys and builds the route table.
// Only a missing module path or a failure to walk the root is fatal.
func Compile(fsys fs.FS, cfg Config) (*Result, error) {
	if cfg.ModulePath == "" {
		return nil, ErrMissingModulePath
	}
	if cfg.Facade == "" {
		cfg.Facade = DefaultFacade
	}
	if cfg.LayoutFile == "" {
		cfg.LayoutFile = DefaultLayoutFile
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNope()
	}

	c := &compiler{cfg: cfg, fsys: fsys, res: &Result{}, layouts: make(map[string]Symbol)}
	routeFiles, err := c.walk()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for _, file := range routeFiles {
		sym, err := c.symbol(file, declRoute)
		if err != nil {
			c.skip(file, err)
			continue
		}
		pattern := routing.FromFile(file)
		if prev, dup := seen[pattern]; dup {
			c.skip(file, fmt.Errorf("%w: %s (%s)", ErrDuplicatePattern, pattern, prev))
			continue
		}
		seen[pattern] = file
		c.res.Routes = append(c.res.Routes, Route{Pattern: pattern, Symbol: sym, Layouts: c.chain(path.Dir(file))})
	}

	slices.SortFunc(c.res.Routes, func(a, b Route) int { return strings.Compare(a.Pattern, b.Pattern) })
	c.assignAliases()
	return c.res, nil
}

type compiler struct {
	fsys    fs.FS
	res     *Result
	layouts map[string]Symbol
	cfg     Config
}

// walk collects layouts eagerly and returns the candidate route files in
// lexical order.
func (c *compiler) walk() ([]string, error) {
	var routes []string
	err := fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			c.skip(p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == "." {
			return nil
		}
		name := d.Name()
		if routing.IsExcluded(name) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || path.Ext(name) != sourceExt || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		if name == c.cfg.LayoutFile {
			sym, err := c.symbol(p, declLayout)
			if err != nil {
				c.skip(p, err)
				return nil
			}
			c.layouts[path.Dir(p)] = sym
			return nil
		}
		routes = append(routes, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk routes: %w", err)
	}
	return routes, nil
}

func (c *compiler) symbol(file string, kind declKind) (Symbol, error) {
	dir := path.Dir(file)
	if err := module.CheckImportPath(c.importPath(dir)); err != nil {
		return Symbol{}, fmt.Errorf("%w: %w", ErrNotImportable, err)
	}
	if !buildableName(path.Base(file)) {
		return Symbol{}, ErrNotBuildable
	}
	src, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		return Symbol{}, fmt.Errorf("read: %w", err)
	}
	name, err := findDecl(file, src, c.cfg.Facade, kind)
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{File: file, ImportPath: c.importPath(dir), Name: name}, nil
}

// chain returns the layouts applying to dir, root-most first.
func (c *compiler) chain(dir string) []Symbol {
	dirs := []string{"."}
	if dir != "." {
		acc := ""
		for _, part := range strings.Split(dir, "/") {
			acc = path.Join(acc, part)
			dirs = append(dirs, acc)
		}
	}

	var out []Symbol
	for _, d := range dirs {
		if l, ok := c.layouts[d]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (c *compiler) importPath(dir string) string {
	if dir == "." {
		return c.cfg.ModulePath
	}
	return c.cfg.ModulePath + "/" + dir
}

func (c *compiler) skip(file string, err error) {
	c.cfg.Logger.Warn("route file skipped", slog.String("file", file), slog.Any("error", err))
	c.res.Skipped = append(c.res.Skipped, Skipped{File: file, Err: err})
}

// assignAliases gives each imported package a unique, deterministic name.
func (c *compiler) assignAliases() {
	paths := make(map[string]struct{})
	for _, r := range c.res.Routes {
		paths[r.ImportPath] = struct{}{}
		for _, l := range r.Layouts {
			paths[l.ImportPath] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	slices.Sort(sorted)

	used := map[string]bool{path.Base(c.cfg.Facade): true}
	aliases := make(map[string]string, len(sorted))
	for _, p := range sorted {
		base := aliasFor(strings.TrimPrefix(strings.TrimPrefix(p, c.cfg.ModulePath), "/"), path.Base(c.cfg.ModulePath))
		alias := base
		for i := 2; used[alias] || token.Lookup(alias).IsKeyword(); i++ {
			alias = fmt.Sprintf("%s%d", base, i)
		}
		used[alias] = true
		aliases[p] = alias
		c.res.imports = append(c.res.imports, Symbol{ImportPath: p, alias: alias})
	}

	for i := range c.res.Routes {
		r := &c.res.Routes[i]
		r.alias = aliases[r.ImportPath]
		for j := range r.Layouts {
			r.Layouts[j].alias = aliases[r.Layouts[j].ImportPath]
		}
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// buildableName mirrors the go command's rule for source file names: the
// first byte must be an ASCII letter or digit, '.', '_', '/' or non-ASCII.
func buildableName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return '0' <= c && c <= '9' || 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' ||
		c == '.' || c == '_' || c == '/' || c >= utf8.RuneSelf
}

func aliasFor(rel, root string) string {
	if rel == "" {
		rel = root
	}
	a := nonAlnum.ReplaceAllString(strings.ToLower(rel), "")
	if a == "" || (a[0] >= '0' && a[0] <= '9') {
		a = "r" + a
	}
	return a
}

// SkippedErrors joins the errors of all skipped files.
func (r *Result) SkippedErrors() error {
	errs := make([]error, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		errs = append(errs, fmt.Errorf("%s: %w", s.File, s.Err))
	}
	return errors.Join(errs...)
}
