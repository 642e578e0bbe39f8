// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// lessonParserInstance is initialized once and reused. The parser
// configuration never changes and the goldmark Parser is safe to
// share; parsing creates per-call state via Parse(reader).
var (
	lessonParserInstance goldmark.Markdown
	lessonParserOnce     sync.Once
)

func lessonParser() goldmark.Markdown {
	lessonParserOnce.Do(func() {
		lessonParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return lessonParserInstance
}

// RenderMarkdown renders lesson markdown as styled terminal output at
// the given width. Soft line breaks inside paragraphs become spaces so
// hard-wrapped source reflows at any terminal width; code blocks keep
// their formatting and get chroma syntax highlighting.
func RenderMarkdown(input string, theme Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := lessonParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 profile: this output always targets a
	// terminal, and auto-detection yields uncolored output when no
	// TTY is attached (tests, piped output).
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	r := &lessonRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, r.walk)

	return strings.TrimRight(r.output.String(), "\n")
}

// lessonRenderer walks a goldmark AST and accumulates styled terminal
// text. Inline content collects in a buffer and is word-wrapped as a
// unit when its containing block closes, which goldmark's streaming
// renderer interface does not accommodate.
type lessonRenderer struct {
	source []byte
	theme  Theme
	width  int

	output strings.Builder
	inline strings.Builder

	// Indentation for nested blocks (blockquotes, list items).
	prefix string

	// Pending bullet: replaces the prefix for the next flushed block's
	// first line, then clears.
	bullet string

	boldDepth   int
	italicDepth int

	listDepth   int
	listCounter []int // Per-depth ordered-list counters; 0 for bullet lists.

	lipRenderer *lipgloss.Renderer
}

func (r *lessonRenderer) style() lipgloss.Style {
	return r.lipRenderer.NewStyle()
}

func (r *lessonRenderer) contentWidth() int {
	width := r.width - len(r.prefix)
	if width < 10 {
		width = 10
	}
	return width
}

func (r *lessonRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			r.inline.Reset()
		} else {
			r.flushHeading(n.Level)
		}

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			r.inline.Reset()
		} else {
			r.flushParagraph()
		}

	case *ast.Text:
		if entering {
			r.writeInline(string(n.Segment.Value(r.source)))
			if n.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
			if n.HardLineBreak() {
				r.inline.WriteString("\n")
			}
		}

	case *ast.Emphasis:
		if entering {
			if n.Level >= 2 {
				r.boldDepth++
			} else {
				r.italicDepth++
			}
		} else {
			if n.Level >= 2 {
				r.boldDepth--
			} else {
				r.italicDepth--
			}
		}

	case *extast.Strikethrough:
		// Rendered as faint text; true strikethrough is unreliable
		// across terminals.
		if entering {
			r.italicDepth++
		} else {
			r.italicDepth--
		}

	case *ast.CodeSpan:
		if entering {
			code := string(n.Text(r.source))
			r.inline.WriteString(r.style().Foreground(r.theme.CodeText).Render(code))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Link:
		if !entering {
			destination := string(n.Destination)
			if destination != "" {
				styled := r.style().Foreground(r.theme.LinkText).Render(" (" + destination + ")")
				r.inline.WriteString(styled)
			}
		}

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(r.source))
			r.inline.WriteString(r.style().Foreground(r.theme.LinkText).Render(url))
		}

	case *ast.FencedCodeBlock:
		if entering {
			r.renderCodeBlock(n)
			return ast.WalkSkipChildren, nil
		}

	case *ast.CodeBlock:
		if entering {
			r.renderIndentedCode(n)
			return ast.WalkSkipChildren, nil
		}

	case *ast.Blockquote:
		if entering {
			r.prefix += "│ "
		} else {
			r.prefix = r.prefix[:len(r.prefix)-len("│ ")]
		}

	case *ast.List:
		if entering {
			r.listDepth++
			counter := 0
			if n.IsOrdered() {
				counter = n.Start
				if counter == 0 {
					counter = 1
				}
			}
			r.listCounter = append(r.listCounter, counter)
		} else {
			r.listDepth--
			r.listCounter = r.listCounter[:len(r.listCounter)-1]
			if r.listDepth == 0 {
				r.blankLine()
			}
		}

	case *ast.ListItem:
		if entering {
			depth := len(r.listCounter) - 1
			if r.listCounter[depth] > 0 {
				r.bullet = fmt.Sprintf("%s%d. ", strings.Repeat("  ", depth), r.listCounter[depth])
				r.listCounter[depth]++
			} else {
				marker := r.style().Foreground(r.theme.ListBulletTxt).Render("•")
				r.bullet = strings.Repeat("  ", depth) + marker + " "
			}
		}

	case *ast.ThematicBreak:
		if entering {
			r.blankLine()
			rule := r.style().Foreground(r.theme.BorderColor).Render(strings.Repeat("─", r.contentWidth()))
			r.output.WriteString(r.prefix + rule + "\n")
		}
	}
	return ast.WalkContinue, nil
}

// writeInline appends text with the current emphasis styling.
func (r *lessonRenderer) writeInline(s string) {
	if s == "" {
		return
	}
	style := r.style().Foreground(r.theme.NormalText)
	switch {
	case r.boldDepth > 0:
		style = style.Bold(true)
	case r.italicDepth > 0:
		style = style.Foreground(r.theme.FaintText).Italic(true)
	}
	r.inline.WriteString(style.Render(s))
}

// flushParagraph word-wraps the accumulated inline content and writes
// it as an indented block.
func (r *lessonRenderer) flushParagraph() {
	content := r.inline.String()
	r.inline.Reset()
	if content == "" {
		return
	}

	wrapped := ansi.Wrap(content, r.contentWidth(), "")
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		linePrefix := r.prefix
		if i == 0 && r.bullet != "" {
			linePrefix = r.bullet
			r.bullet = ""
		} else if r.listDepth > 0 {
			linePrefix = r.prefix + strings.Repeat("  ", r.listDepth)
		}
		r.output.WriteString(linePrefix + line + "\n")
	}
	if r.listDepth == 0 {
		r.blankLine()
	}
}

func (r *lessonRenderer) flushHeading(level int) {
	content := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}

	style := r.style().Foreground(r.theme.HeadingText).Bold(true)
	if level == 1 {
		content = strings.ToUpper(content)
	}
	marker := strings.Repeat("#", level) + " "
	r.blankLine()
	r.output.WriteString(r.prefix + style.Render(marker+content) + "\n")
	r.blankLine()
}

// renderCodeBlock highlights a fenced code block with chroma and
// indents it. Unhighlightable content falls back to plain code color.
func (r *lessonRenderer) renderCodeBlock(node *ast.FencedCodeBlock) {
	language := string(node.Language(r.source))
	var code strings.Builder
	for i := 0; i < node.Lines().Len(); i++ {
		segment := node.Lines().At(i)
		code.Write(segment.Value(r.source))
	}

	var highlighted strings.Builder
	err := quick.Highlight(&highlighted, code.String(), language, "terminal256", "monokai")
	rendered := highlighted.String()
	if err != nil || language == "" {
		rendered = r.style().Foreground(r.theme.CodeText).Render(strings.TrimRight(code.String(), "\n")) + "\n"
	}

	r.blankLine()
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		r.output.WriteString(r.prefix + "    " + line + "\n")
	}
	r.blankLine()
}

func (r *lessonRenderer) renderIndentedCode(node *ast.CodeBlock) {
	var code strings.Builder
	for i := 0; i < node.Lines().Len(); i++ {
		segment := node.Lines().At(i)
		code.Write(segment.Value(r.source))
	}
	r.blankLine()
	styled := r.style().Foreground(r.theme.CodeText)
	for _, line := range strings.Split(strings.TrimRight(code.String(), "\n"), "\n") {
		r.output.WriteString(r.prefix + "    " + styled.Render(line) + "\n")
	}
	r.blankLine()
}

// blankLine ensures exactly one blank line separates the previous
// block from the next.
func (r *lessonRenderer) blankLine() {
	out := r.output.String()
	if out == "" || strings.HasSuffix(out, "\n\n") {
		return
	}
	if !strings.HasSuffix(out, "\n") {
		r.output.WriteString("\n")
	}
	r.output.WriteString("\n")
}
