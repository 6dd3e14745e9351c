package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// commands are the subcommands of the taxlots executable.
var commands = []string{"buy", "sell", "lots", "gains", "holding", "reconcile", "topic"}

func TestTopics(t *testing.T) {
	// This test ensures that the documentation is in sync with the code.
	// It checks two things:
	// 1. Every topic listed in readme.md can be loaded.
	// 2. Every .md file (excluding readme.md itself) is listed in readme.md.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error = %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(topicsInReadme, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestGetTopic_Star(t *testing.T) {
	all, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) error = %v", err)
	}
	for _, title := range []string{"# Ledger", "# Gains", "# Config"} {
		if !strings.Contains(all, title) {
			t.Errorf("GetTopic(*) does not contain %q", title)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(nope) succeeded, want an error")
	}
}

// TestMarkdown parses every topic: it must start with a level 1 heading, and
// the taxlots commands in its bash blocks must exist.
func TestMarkdown(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("failed to read %s: %v", file, err)
			}
			root := goldmark.DefaultParser().Parse(text.NewReader(content))

			first, ok := root.FirstChild().(*ast.Heading)
			if !ok || first.Level != 1 {
				t.Errorf("%s does not start with a level 1 heading", file)
			}

			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				fcb, ok := n.(*ast.FencedCodeBlock)
				if !entering || !ok || string(fcb.Language(content)) != "bash" {
					return ast.WalkContinue, nil
				}
				for i := 0; i < fcb.Lines().Len(); i++ {
					line := fcb.Lines().At(i)
					fields := strings.Fields(string(line.Value(content)))
					if len(fields) < 2 || fields[0] != "taxlots" {
						continue
					}
					if !slices.Contains(commands, fields[1]) {
						t.Errorf("%s: unknown command %q", file, fields[1])
					}
				}
				return ast.WalkContinue, nil
			})
		})
	}
}
