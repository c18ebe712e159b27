package normalisers

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// Elements that never carry page content
const noiseSelector = "script, style, noscript, nav, footer, aside, iframe, svg, form"

// Candidates for the main content region, most specific first
var mainContentSelectors = []string{"main", "article", "[role=main]", "#content", ".content"}

var blankLines = regexp.MustCompile(`\n{3,}`)

// HTMLNormaliser extracts the main content region of an HTML page and
// converts it to Markdown.
type HTMLNormaliser struct {
	PreserveInlineCode bool
}

func (n *HTMLNormaliser) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *HTMLNormaliser) Priority() int {
	return 50
}

func (n *HTMLNormaliser) Normalise(page Page) (*domain.ExtractedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, _ := url.Parse(page.URL)

	title := collapse(doc.Find("title").First().Text())
	if title == "" {
		title = collapse(doc.Find("h1").First().Text())
	}

	doc.Find(noiseSelector).Remove()
	content := mainContent(doc)

	inner, err := content.Html()
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}
	var opts []converter.ConvertOptionFunc
	if base != nil && base.Host != "" {
		opts = append(opts, converter.WithDomain(page.URL))
	}
	markdown, err := htmltomarkdown.ConvertString(inner, opts...)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	return &domain.ExtractedDocument{
		Title:      title,
		Markdown:   strings.TrimSpace(blankLines.ReplaceAllString(markdown, "\n\n")),
		PlainText:  textContent(content),
		Images:     images(content, base),
		Links:      links(content, base),
		CodeBlocks: codeBlocks(content, n.PreserveInlineCode),
	}, nil
}

// mainContent returns the first matching main-content region, else body
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range mainContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// textContent joins text nodes with spaces so words in adjacent elements
// stay apart, then collapses whitespace
func textContent(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				b.WriteString(child.Text())
				b.WriteByte(' ')
				return
			}
			walk(child)
		})
	}
	walk(sel)
	return collapse(b.String())
}

func images(sel *goquery.Selection, base *url.URL) []domain.Image {
	out := []domain.Image{}
	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if strings.TrimSpace(src) == "" {
			return
		}
		alt, _ := img.Attr("alt")
		title, _ := img.Attr("title")
		out = append(out, domain.Image{
			URL:   resolve(base, src),
			Alt:   strings.TrimSpace(alt),
			Title: strings.TrimSpace(title),
		})
	})
	return out
}

func links(sel *goquery.Selection, base *url.URL) []domain.Link {
	out := []domain.Link{}
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		title, _ := a.Attr("title")
		out = append(out, domain.Link{
			URL:   resolve(base, href),
			Text:  collapse(a.Text()),
			Title: strings.TrimSpace(title),
		})
	})
	return out
}

func codeBlocks(sel *goquery.Selection, preserveInline bool) []domain.CodeBlock {
	out := []domain.CodeBlock{}
	sel.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			text := pre.Text()
			out = append(out, domain.CodeBlock{Code: text, Formatted: fence("", text)})
			return
		}
		lang := language(code)
		if lang == "" {
			lang = language(pre)
		}
		text := code.Text()
		out = append(out, domain.CodeBlock{Language: lang, Code: text, Formatted: fence(lang, text)})
	})

	if preserveInline {
		sel.Find("code").Each(func(_ int, code *goquery.Selection) {
			if code.ParentsFiltered("pre").Length() > 0 {
				return
			}
			text := code.Text()
			out = append(out, domain.CodeBlock{Code: text, Formatted: "`" + text + "`", Inline: true})
		})
	}
	return out
}

// language reads a language-* or lang-* class
func language(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	for _, c := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) {
				return strings.TrimPrefix(c, prefix)
			}
		}
	}
	return ""
}

func fence(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
