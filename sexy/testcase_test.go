package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Assignments

## Test: int
` + fence + `eas-ast
(program (assign "x" (int 10)))
` + fence + `
` + fence + `emit
{
    let x =
        Int(10) (1..8)b
}
` + fence + `

## Test: undefined
` + fence + `eas-ast
(program (ident "y"))
` + fence + `
` + fence + `compile-error
undefined identifier: y
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "int")
	be.Equal(t, tc1.Input, `(program (assign "x" (int 10)))`)
	be.Equal(t, tc1.InputType, InputTypeAST)
	be.Equal(t, tc1.Line, 3)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeEmit)
	be.Equal(t, tc1.Assertions[0].Content, "{\n    let x =\n        Int(10) (1..8)b\n}")
	be.True(t, tc1.Assertions[0].ParsedSexy == nil)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "undefined")
	be.Equal(t, tc2.Line, 14)
	be.Equal(t, len(tc2.Assertions), 1)
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeCompileError)
	be.Equal(t, tc2.Assertions[0].Content, "undefined identifier: y")
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: multiple assertions
` + fence + `eas-ast
(program (assign "x" (int 10)))
` + fence + `
` + fence + `symbols
(context (symbols (symbol "x" 0 (int 10))) (types))
` + fence + `
` + fence + `emit
{
    let x =
        Int(10) (1..8)b
}
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 2)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeSymbols)
	be.Equal(t, tc.Assertions[0].ParsedSexy.Head(), "context")
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeEmit)
}

func TestExtractTestCases_SourceFence(t *testing.T) {
	markdown := `## Test: with source
` + fence + `eas
x = 10
print x
` + fence + `
` + fence + `eas-ast
(program (line 1 (assign "x" (int 10))) (line 2 (call "print" (ident "x"))))
` + fence + `
` + fence + `compile-error
main.eas:2: error: undefined function: print
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.Source, "x = 10\nprint x\n")
	be.Equal(t, len(tc.Assertions), 1)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeCompileError)
}

func TestExtractTestCases_MultipleSourceFences(t *testing.T) {
	markdown := `## Test: two sources
` + fence + `eas
x = 1
` + fence + `
` + fence + `eas
x = 2
` + fence + `
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `emit
{
}
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "line 5: multiple source fences found in test 'two sources'")
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Just a regular document

Some prose.

` + fence + `
a code block without a language
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSymbolsAssertion(t *testing.T) {
	markdown := `## Test: bad symbols
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `symbols
(context (symbols
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "failed to parse symbols assertion in test 'bad symbols'")
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	markdown := `# Title
Line 2
Line 3

` + fence + `eas-ast
(program)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "line 5: eas-ast fence found outside of test case")
}

func TestExtractTestCases_UnknownFenceOutsideTest(t *testing.T) {
	markdown := fence + `go
package main
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "unknown fence language 'go' found outside of test case")
}

func TestExtractTestCases_UnknownFenceInTest(t *testing.T) {
	markdown := `## Test: unknown
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `wasm
(module)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "unknown fence language 'wasm' in test 'unknown'")
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := `## Test: no input
` + fence + `emit
{
}
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no input' has no input fence")
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := `## Test: no assertion
` + fence + `eas-ast
(program)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no assertion' has no assertion fences")
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: two inputs
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `emit
{
}
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "multiple input fences found in test 'two inputs'")
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := `## Test: with plain block
Some explanation:

` + fence + `
x = 10
` + fence + `

` + fence + `eas-ast
(program (assign "x" (int 10)))
` + fence + `
` + fence + `emit
{
    let x =
        Int(10) (1..8)b
}
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + fence + `eas-ast
(program)
` + fence + `
` + fence + `emit
{
}
` + fence + `

## Test: second test missing input
` + fence + `emit
{
}
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'second test missing input' has no input fence"))
}
