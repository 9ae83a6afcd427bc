package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language of the fence holding a test's program.
type InputType string

const (
	InputTypeAST InputType = "eas-ast"
)

// AssertionType is the language of a fence checking a test's result.
type AssertionType string

const (
	AssertionTypeEmit         AssertionType = "emit"
	AssertionTypeCompileError AssertionType = "compile-error"
	AssertionTypeSymbols      AssertionType = "symbols"
	// AssertionTypeSource is not checked. It holds the source text the AST
	// was parsed from, so diagnostics can quote lines.
	AssertionTypeSource AssertionType = "eas"
)

type Assertion struct {
	Type    AssertionType
	Content string
	// ParsedSexy is set for symbols assertions.
	ParsedSexy *Node
}

// TestCase is one "Test: NAME" section of a Markdown file.
type TestCase struct {
	Name       string
	Input      string
	InputType  InputType
	Source     string
	Line       int // of the heading
	Assertions []Assertion
}

// ExtractTestCases collects the test cases of a Markdown document. Fenced
// blocks without a language are prose and are ignored.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	c := &collector{source: source}
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := node.(type) {
		case *ast.Heading:
			err = c.heading(n)
		case *ast.FencedCodeBlock:
			err = c.fence(n)
		}
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c.cases, nil
}

type collector struct {
	source  []byte
	cases   []TestCase
	current *TestCase
}

func (c *collector) heading(n *ast.Heading) error {
	title := headingText(n, c.source)
	name, ok := strings.CutPrefix(title, "Test: ")
	if !ok {
		return nil
	}
	if err := c.finish(); err != nil {
		return err
	}
	c.current = &TestCase{Name: name, Line: lineOf(n, c.source)}
	return nil
}

func (c *collector) fence(n *ast.FencedCodeBlock) error {
	lang := string(n.Language(c.source))
	if lang == "" {
		return nil
	}
	line := lineOf(n, c.source)
	known := lang == string(InputTypeAST) || isAssertion(lang)
	tc := c.current
	if tc == nil {
		if known {
			return fmt.Errorf("line %d: %s fence found outside of test case", line, lang)
		}
		return fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", line, lang)
	}
	if !known {
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, tc.Name)
	}

	content := fenceContent(n, c.source)
	switch lang {
	case string(InputTypeAST):
		if tc.Input != "" {
			return fmt.Errorf("line %d: multiple input fences found in test '%s'", line, tc.Name)
		}
		tc.Input = strings.TrimRight(content, "\n")
		tc.InputType = InputType(lang)

	case string(AssertionTypeSource):
		if tc.Source != "" {
			return fmt.Errorf("line %d: multiple source fences found in test '%s'", line, tc.Name)
		}
		tc.Source = content

	default:
		a := Assertion{Type: AssertionType(lang), Content: strings.TrimRight(content, "\n")}
		if a.Type == AssertionTypeSymbols {
			parsed, err := Parse(a.Content)
			if err != nil {
				return fmt.Errorf("line %d: failed to parse symbols assertion in test '%s': %w", line, tc.Name, err)
			}
			a.ParsedSexy = parsed
		}
		tc.Assertions = append(tc.Assertions, a)
	}
	return nil
}

// finish checks and stores the test case being collected, if any.
func (c *collector) finish() error {
	tc := c.current
	if tc == nil {
		return nil
	}
	c.current = nil
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	c.cases = append(c.cases, *tc)
	return nil
}

func isAssertion(lang string) bool {
	switch AssertionType(lang) {
	case AssertionTypeEmit, AssertionTypeCompileError, AssertionTypeSymbols, AssertionTypeSource:
		return true
	}
	return false
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := child.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of a block. For fences it is the line of
// the opening fence, not of the first content line.
func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	if _, ok := n.(*ast.FencedCodeBlock); ok {
		start--
		for start > 0 && source[start-1] != '\n' {
			start--
		}
	}
	return 1 + bytes.Count(source[:min(start, len(source))], []byte("\n"))
}
