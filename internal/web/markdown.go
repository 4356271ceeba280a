package web

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownRenderer общий для всех запросов: настройки не меняются,
// состояние разбора создается на каждый вызов Convert.
// Сырой HTML из текста публикации не выводится.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown переводит текст публикации в HTML.
// При ошибке разбора возвращает экранированный исходный текст.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
