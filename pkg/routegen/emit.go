package routegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"path"
	"text/template"
)

var goTemplate = template.Must(template.New("routes").Parse(`// Code generated by routegen. DO NOT EDIT.

package {{ .Package }}

import (
	{{ .FacadeAlias }} "{{ .Facade }}"
{{- range .Imports }}
	{{ .Alias }} "{{ .Path }}"
{{- end }}
)

// Routes is the compiled page route table, sorted by pattern.
var Routes = []{{ .FacadeAlias }}.PageRoute{
{{- range .Routes }}
	{
		Pattern: {{ printf "%q" .Pattern }},
		File:    {{ printf "%q" .File }},
		Module:  {{ .Ref }},
		{{- if .Layouts }}
		Layouts: []{{ $.FacadeAlias }}.Layout{ {{- range $i, $l := .Layouts }}{{ if $i }}, {{ end }}{{ $l.Ref }}{{ end -}} },
		{{- end }}
	},
{{- end }}
}

// Assets is the static asset table, sorted by URL path.
var Assets = []{{ .FacadeAlias }}.Asset{
{{- range .Assets }}
	{Path: {{ printf "%q" .Path }}, File: {{ printf "%q" .File }}, ContentType: {{ printf "%q" .ContentType }}},
{{- end }}
}
`))

type goImport struct {
	Alias string
	Path  string
}

// WriteGo renders the result as a gofmt-ed Go source file in package pkg.
func (r *Result) WriteGo(w io.Writer, pkg, facade string) error {
	if facade == "" {
		facade = DefaultFacade
	}
	imports := make([]goImport, 0, len(r.imports))
	for _, s := range r.imports {
		imports = append(imports, goImport{Alias: s.alias, Path: s.ImportPath})
	}

	var buf bytes.Buffer
	err := goTemplate.Execute(&buf, map[string]any{
		"Package":     pkg,
		"Facade":      facade,
		"FacadeAlias": path.Base(facade),
		"Imports":     imports,
		"Routes":      r.Routes,
		"Assets":      r.Assets,
	})
	if err != nil {
		return fmt.Errorf("render routes: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format routes: %w", err)
	}
	_, err = w.Write(src)
	return err
}

type manifest struct {
	Routes  []Route          `json:"routes"`
	Assets  []Asset          `json:"assets"`
	Skipped []skippedPayload `json:"skipped,omitempty"`
}

type skippedPayload struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// WriteJSON renders the result as an indented JSON manifest.
func (r *Result) WriteJSON(w io.Writer) error {
	m := manifest{Routes: r.Routes, Assets: r.Assets}
	if m.Routes == nil {
		m.Routes = []Route{}
	}
	if m.Assets == nil {
		m.Assets = []Asset{}
	}
	for _, s := range r.Skipped {
		m.Skipped = append(m.Skipped, skippedPayload{File: s.File, Error: s.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
