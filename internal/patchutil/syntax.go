package patchutil

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxIssue describes the first syntax error found in a source file.
type SyntaxIssue struct {
	Line    int
	Message string
}

func (s *SyntaxIssue) Error() string {
	return fmt.Sprintf("SyntaxError: %s (line %d)", s.Message, s.Line)
}

// CheckPython parses src as Python and returns the first syntax issue, or
// nil when the source parses cleanly. Parsers are created per call; the
// tree-sitter grammar is not safe to share across goroutines.
func CheckPython(ctx context.Context, src []byte) *SyntaxIssue {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return &SyntaxIssue{Line: 1, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	if node := firstErrorNode(root); node != nil {
		msg := "invalid syntax"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		}
		return &SyntaxIssue{
			Line:    int(node.StartPoint().Row) + 1,
			Message: msg,
		}
	}
	return &SyntaxIssue{Line: 1, Message: "invalid syntax"}
}

// ValidPython reports whether src parses as syntactically correct Python.
func ValidPython(ctx context.Context, src []byte) bool {
	return CheckPython(ctx, src) == nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
