package routegen

import "errors"

var (
	ErrNoDeclaration     = errors.New("routegen: no route declaration found")
	ErrAmbiguous         = errors.New("routegen: more than one route declaration")
	ErrNotImportable     = errors.New("routegen: directory is not an importable package path")
	ErrNotBuildable      = errors.New("routegen: file name is refused by the go command")
	ErrMissingModulePath = errors.New("routegen: module path is required")
	ErrDuplicatePattern  = errors.New("routegen: pattern already declared by another file")
)
