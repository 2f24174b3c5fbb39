package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlStyle = `body{font-family:Arial,Helvetica,sans-serif;margin:24px;color:#1a1a1a}
h1{color:#004481}h2{color:#004481;border-bottom:2px solid #004481;padding-bottom:4px}
table{border-collapse:collapse;width:100%;font-size:12px;margin-bottom:8px}
th{background:#004481;color:#fff;padding:6px;text-align:left}
td{border-bottom:1px solid #ddd;padding:5px}`

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts the Markdown report into a standalone HTML page.
func RenderHTML(doc *Document) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert(RenderMarkdown(doc), &body); err != nil {
		return nil, fmt.Errorf("error al generar HTML: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n<title>Reporte de sucursal: %s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n",
		html.EscapeString(doc.Unit), htmlStyle)
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
