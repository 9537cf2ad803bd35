package render

import (
	"io"

	"github.com/vango-dev/toastkit/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content
	Body *vdom.VNode

	// Title is the page title
	Title string

	// Styles contains inline CSS styles
	Styles []string

	// ClientScript is the path to the thin client JavaScript.
	// No script tag is written when empty.
	ClientScript string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	styles := make([]*vdom.VNode, len(page.Styles))
	for i, css := range page.Styles {
		styles[i] = vdom.Style(vdom.Raw(css))
	}

	doc := vdom.Html(vdom.Lang(lang),
		vdom.Head(
			vdom.Meta(vdom.Charset("utf-8")),
			vdom.Meta(vdom.Name("viewport"), vdom.Content("width=device-width, initial-scale=1")),
			vdom.If(page.Title != "", vdom.Title(vdom.Text(page.Title))),
			styles,
		),
		vdom.Body(
			vdom.Div(vdom.ID("toast-root"), page.Body),
			vdom.If(page.ClientScript != "", vdom.Script(vdom.Src(page.ClientScript), vdom.Defer_())),
		),
	)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return r.RenderToWriter(w, doc)
}
