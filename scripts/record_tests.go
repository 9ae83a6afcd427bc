// record_tests turns AST files into Markdown test cases, recording the
// current expander output as the expectation:
//
//	go run ./scripts/record_tests.go -title Overloads overloads/*.ast > test/overloads_test.md
//
// Review the recorded output before committing it.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/strager/eas/expand"
	"github.com/strager/eas/sexy"
)

type recordedCase struct {
	Name   string
	AST    string
	Source string
	Fence  sexy.AssertionType
	Expect string
}

func record(path string) (recordedCase, error) {
	astBytes, err := os.ReadFile(path)
	if err != nil {
		return recordedCase{}, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tc := recordedCase{Name: name}

	// A sibling .eas file holds the source text, if there is one.
	sourcePath := strings.TrimSuffix(path, filepath.Ext(path)) + ".eas"
	if src, err := os.ReadFile(sourcePath); err == nil {
		tc.Source = string(src)
	}

	prog, err := expand.ReadProgram(expand.FileContext{Filename: "main.eas", Source: tc.Source}, string(astBytes))
	if err != nil {
		return recordedCase{}, errors.Wrap(err, path)
	}
	tc.AST = expand.ToSExpr(prog).Pretty(80)

	var out bytes.Buffer
	if _, err := expand.Compile(prog, &out); err != nil {
		var compileErr *expand.CompileError
		if !errors.As(err, &compileErr) {
			return recordedCase{}, errors.Wrap(err, path)
		}
		tc.Fence = sexy.AssertionTypeCompileError
		tc.Expect = compileErr.Message
		return tc, nil
	}
	tc.Fence = sexy.AssertionTypeEmit
	tc.Expect = strings.TrimRight(out.String(), "\n")
	return tc, nil
}

func writeMarkdown(buf *bytes.Buffer, title string, cases []recordedCase) {
	fence := "```"
	fmt.Fprintf(buf, "# %s\n", title)
	for _, tc := range cases {
		fmt.Fprintf(buf, "\n## Test: %s\n", tc.Name)
		if tc.Source != "" {
			fmt.Fprintf(buf, "%s%s\n%s\n%s\n", fence, sexy.AssertionTypeSource, strings.TrimRight(tc.Source, "\n"), fence)
		}
		fmt.Fprintf(buf, "%s%s\n%s\n%s\n", fence, sexy.InputTypeAST, tc.AST, fence)
		fmt.Fprintf(buf, "%s%s\n%s\n%s\n", fence, tc.Fence, tc.Expect, fence)
	}
}

func main() {
	title := flag.String("title", "Recorded tests", "Heading of the generated document")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: record_tests [-title TITLE] <file.ast>...\n")
		os.Exit(1)
	}
	sort.Strings(paths)

	var cases []recordedCase
	for _, path := range paths {
		tc, err := record(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cases = append(cases, tc)
	}

	var buf bytes.Buffer
	writeMarkdown(&buf, *title, cases)

	// The document must read back as the same number of test cases.
	extracted, err := sexy.ExtractTestCases(buf.String())
	if err != nil || len(extracted) != len(cases) {
		fmt.Fprintf(os.Stderr, "Error: generated Markdown does not round-trip: %v\n", err)
		os.Exit(1)
	}

	os.Stdout.Write(buf.Bytes())
}
