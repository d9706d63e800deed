package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Message is a rendered template.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type frontmatter struct {
	Subject string `yaml:"Subject"`
}

type parsedTemplate struct {
	meta frontmatter
	body *texttemplate.Template
}

// Renderer turns templates from an fs.FS into messages. Layouts live under
// layouts/. Parsed templates are cached.
type Renderer struct {
	fsys      fs.FS
	md        goldmark.Markdown
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
	mu        sync.Mutex
}

func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{
		fsys:      fsys,
		md:        goldmark.New(goldmark.WithExtensions(Buttons)),
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
	}
}

// Render executes name with data and wraps the HTML in layout.
func (r *Renderer) Render(layout, name string, data any) (Message, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return Message{}, err
	}
	var md bytes.Buffer
	if err := tmpl.body.Execute(&md, data); err != nil {
		return Message{}, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(md.Bytes(), &content); err != nil {
		return Message{}, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	lt, err := r.layout(layout)
	if err != nil {
		return Message{}, err
	}
	var html bytes.Buffer
	err = lt.Execute(&html, map[string]any{
		"Content": template.HTML(content.String()),
		"Subject": tmpl.meta.Subject,
	})
	if err != nil {
		return Message{}, fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, layout, err)
	}

	return Message{Subject: tmpl.meta.Subject, HTML: html.String(), Text: PlainText(md.String())}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.templates[name]; ok {
		return t, nil
	}
	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	meta, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	bt, err := texttemplate.New(name).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	t := &parsedTemplate{meta: meta, body: bt}
	r.templates[name] = t
	return t, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.layouts[name]; ok {
		return t, nil
	}
	src, err := fs.ReadFile(r.fsys, path.Join("layouts", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	t, err := template.New(name).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, name, err)
	}
	r.layouts[name] = t
	return t, nil
}

var fence = []byte("---")

// splitFrontmatter separates a leading "---" delimited YAML block from the
// markdown body. Files without one are all body.
func splitFrontmatter(src []byte) (frontmatter, []byte, error) {
	var meta frontmatter
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(src, fence) {
		return meta, src, nil
	}
	rest := src[len(fence):]
	end := bytes.Index(rest, append([]byte("\n"), fence...))
	if end < 0 {
		return meta, nil, fmt.Errorf("frontmatter is not closed")
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("frontmatter: %w", err)
	}
	body := rest[end+1+len(fence):]
	body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))
	return meta, body, nil
}
