package docs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/statement"
	"github.com/etnz/statement/rules"
	"github.com/etnz/statement/sbroker"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	yamlRules     = "yaml rules"
	textStatement = "text statement"
	jsonlCheck    = "jsonl check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() unexpected error: %v", err)
	}
	if diff := cmp.Diff(all, listed); diff != "" {
		t.Errorf("topics listed in readme.md mismatch (-files +readme):\n%s", diff)
	}

	every, err := GetTopics("*")
	if err != nil {
		t.Fatalf("GetTopics(*) unexpected error: %v", err)
	}
	for _, topic := range all {
		content, _ := GetTopic(topic)
		if !strings.Contains(every, content) {
			t.Errorf("GetTopics(*) is missing topic %q", topic)
		}
	}
	if _, err := GetTopic("missing"); err == nil {
		t.Errorf("GetTopic(missing) got nil error")
	}
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// HELPER

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// parseMarkdown parses a markdown file and returns its checked fenced code blocks.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Info.Segment.Value(content))
		switch lang {
		case yamlRules, textStatement, jsonlCheck:
		default:
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Type:    lang,
			Content: b.String(),
			File:    file,
			Line:    lineNumber(content, fcb.Info.Segment.Start),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber computes the line number of an AST offset. The markdown parser does not support
// that feature.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// blockRunner extracts the statements of a markdown file with the last rules read.
type blockRunner struct {
	extractor      *statement.Extractor
	previousOutput string
}

func (r *blockRunner) runBlock(t *testing.T, block *Block) {
	t.Helper()

	switch block.Type {
	case yamlRules:
		f, err := rules.Parse([]byte(block.Content))
		if err != nil {
			t.Fatalf("%s:%d: invalid rules: %v", block.File, block.Line, err)
		}
		e, err := f.Compile(statement.NewSecurities())
		if err != nil {
			t.Fatalf("%s:%d: rules do not compile: %v", block.File, block.Line, err)
		}
		r.extractor = e

	case textStatement:
		doc := statement.NewRawDocument(block.File, block.Content)
		res, err := r.extractor.Extract(doc)
		if err != nil {
			t.Fatalf("%s:%d: extraction failed: %v", block.File, block.Line, err)
		}
		for _, failure := range res.Failures {
			t.Errorf("%s:%d: block not extracted: %v", block.File, block.Line, failure)
		}
		var out bytes.Buffer
		if err := statement.EncodeItems(&out, res.Items); err != nil {
			t.Fatalf("%s:%d: %v", block.File, block.Line, err)
		}
		r.previousOutput = out.String()

	case jsonlCheck:
		want := decodeLines(t, block, block.Content)
		got := decodeLines(t, block, r.previousOutput)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s:%d: output mismatch (-want +got):\n%s\ngot:\n%s", block.File, block.Line, diff, r.previousOutput)
		}
	}
}

// decodeLines decodes JSON Lines so that the check does not depend on spacing.
func decodeLines(t *testing.T, block *Block, s string) []map[string]any {
	t.Helper()
	var values []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		var v map[string]any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Fatalf("%s:%d: invalid JSON line %q: %v", block.File, block.Line, line, err)
		}
		values = append(values, v)
	}
	return values
}

// runBlocks runs the blocks of a markdown file in order. Statements met before any rules are
// extracted by the built-in S Broker extractor.
func runBlocks(t *testing.T, file string) {
	t.Helper()
	blocks := parseMarkdown(t, file)
	r := blockRunner{extractor: sbroker.New(statement.NewSecurities())}
	for _, block := range blocks {
		r.runBlock(t, block)
	}
}
