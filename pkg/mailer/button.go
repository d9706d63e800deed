package mailer

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Buttons is the goldmark extension for "[!button|Label](url)" links.
var Buttons goldmark.Extender = buttons{}

// KindButton is the AST kind of a button link.
var KindButton = ast.NewNodeKind("Button")

type buttonNode struct {
	ast.BaseInline
	label []byte
	url   []byte
}

func (n *buttonNode) Kind() ast.NodeKind { return KindButton }

func (n *buttonNode) Dump(src []byte, level int) {
	ast.DumpHelper(n, src, level, map[string]string{"Label": string(n.label), "URL": string(n.url)}, nil)
}

var buttonSyntax = regexp.MustCompile(`^\[!button\|([^\]]+)\]\(([^)\s]+)\)`)

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := buttonSyntax.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return &buttonNode{label: bytes.Clone(m[1]), url: bytes.Clone(m[2])}
}

type buttonRenderer struct{}

// Inline styles survive email clients that strip <style>.
const buttonStyle = "display:inline-block;padding:12px 20px;border-radius:6px;background:#18181b;color:#ffffff;text-decoration:none;font-weight:600"

func (buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, func(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		n := node.(*buttonNode)
		_, _ = w.WriteString(`<a class="btn" href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.url, true)))
		_, _ = w.WriteString(`" style="` + buttonStyle + `">`)
		_, _ = w.Write(util.EscapeHTML(n.label))
		_, _ = w.WriteString(`</a>`)
		return ast.WalkSkipChildren, nil
	})
}

type buttons struct{}

func (buttons) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(buttonParser{}, 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(buttonRenderer{}, 50)))
}

var buttonText = regexp.MustCompile(`\[!button\|([^\]]+)\]\(([^)\s]+)\)`)

// PlainText rewrites button links in rendered markdown as "Label: url".
func PlainText(md string) string {
	return buttonText.ReplaceAllString(md, "$1: $2")
}
