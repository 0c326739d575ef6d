// Package lsp converts normalized issues into Language Server Protocol
// diagnostics, so an editor integration can render review findings through
// textDocument/publishDiagnostics without reviewforge running its own LSP
// server.
package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/reviewforge/reviewforge/internal/issue"
)

// severity maps an issue's closed severity scale onto the four-level LSP
// DiagnosticSeverity. critical and high both become Error: LSP has no fifth
// level, and a driver-tolerable "critical" finding should still block a
// reviewer's attention the way "high" does.
func severity(s issue.Severity) protocol.DiagnosticSeverity {
	switch s {
	case issue.SeverityCritical, issue.SeverityHigh:
		return protocol.DiagnosticSeverityError
	case issue.SeverityMedium:
		return protocol.DiagnosticSeverityWarning
	case issue.SeverityLow:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

// ToDiagnostic converts one Issue to an LSP Diagnostic. Issue lines/columns
// are 1-based; LSP positions are 0-based, so both are decremented, floored
// at zero.
func ToDiagnostic(iss issue.Issue) protocol.Diagnostic {
	line := zeroFloor(iss.Line - 1)
	col := zeroFloor(iss.Column - 1)

	sev := severity(iss.Severity)
	source := string(iss.Analyzer)
	code := iss.Rule

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: &sev,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  iss.Message,
	}
}

// ByFile groups issues into a textDocument/publishDiagnostics payload per
// file, the shape an editor client applies one notification per open
// document.
func ByFile(issues []issue.Issue) map[string][]protocol.Diagnostic {
	out := make(map[string][]protocol.Diagnostic)

	for _, iss := range issues {
		out[iss.File] = append(out[iss.File], ToDiagnostic(iss))
	}

	return out
}

func zeroFloor(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}

	return protocol.UInteger(n)
}
