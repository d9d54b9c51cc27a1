package parser

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/storyforge/storyforge/internal/domain"
)

// autoFixKeywords mark an issue as auto-fixable. They are checked before
// manualKeywords, so a formatting issue stays auto even when a manual
// keyword co-occurs later in the same text.
var autoFixKeywords = []string{
	"format",
	"formatting",
	"black",
	"isort",
	"import order",
	"unused import",
	"missing import",
	"whitespace",
	"indentation",
	"trailing",
	"lint",
	"style",
	"pep8",
}

// manualKeywords mark issues that need a human: security, logic and
// architecture problems are never auto-fixed.
var manualKeywords = []string{
	"security",
	"vulnerability",
	"injection",
	"logic",
	"architecture",
	"design",
}

const (
	maxContextLen = 500
	dedupPrefix   = 50
)

// patternFamily locates one human-authored severity-marker convention.
// The marker regexp captures the severity in group 1; the span it introduces
// runs to the next marker of the same family, the family's section boundary,
// or end of text, whichever comes first.
type patternFamily struct {
	name     string
	marker   *regexp.Regexp
	boundary *regexp.Regexp
}

var sectionBoundary = regexp.MustCompile(`\n##`)

// headingBoundary ends heading-style spans at any following heading line.
var headingBoundary = regexp.MustCompile(`\n#`)

var patternFamilies = []patternFamily{
	// **SEVERITY**: description
	{name: "bold", marker: regexp.MustCompile(`(?i)\*\*(CRITICAL|HIGH|MEDIUM|LOW)\*\*[:\s]*`)},
	// SEVERITY: description at line start
	{name: "plain", marker: regexp.MustCompile(`(?im)^(CRITICAL|HIGH|MEDIUM|LOW)[:\s]+`)},
	// [SEVERITY] description
	{name: "bracketed", marker: regexp.MustCompile(`(?i)\[(CRITICAL|HIGH|MEDIUM|LOW)\][:\s]*`)},
	// ### SEVERITY: description
	{name: "heading", marker: regexp.MustCompile(`(?im)^#{1,6}\s*(CRITICAL|HIGH|MEDIUM|LOW)[:\s]*`), boundary: headingBoundary},
	// - SEVERITY: description (with or without bold markup)
	{name: "list", marker: regexp.MustCompile(`(?im)^[-*]\s+(?:\*\*)?(CRITICAL|HIGH|MEDIUM|LOW)(?:\*\*)?[:\s]+`)},
	// 1. SEVERITY: description
	{name: "numbered", marker: regexp.MustCompile(`(?im)^\d+[.)]\s+(?:\*\*)?(CRITICAL|HIGH|MEDIUM|LOW)(?:\*\*)?[:\s]+`)},
}

var codeBlockRe = regexp.MustCompile("```[\\s\\S]*?```")

// fileRefPatterns are tried in priority order; the first match wins. Group 1
// is the file path, group 2 the optional line number.
var fileRefPatterns = []*regexp.Regexp{
	// `file.py` line 42 or `file.py`:42
	regexp.MustCompile("(?i)[`'\"]([a-zA-Z0-9_/.-]+\\.[a-zA-Z]+)[`'\"]?[:\\s]*(?:line\\s*)?(\\d+)?"),
	// (file.py, line 42) or (file.py:42)
	regexp.MustCompile(`(?i)\(([a-zA-Z0-9_/.-]+\.[a-zA-Z]+),?\s*(?:line\s*)?(\d+)?\)`),
	// in/at/file file.py line 42
	regexp.MustCompile(`(?i)(?:in|at|file)\s+([a-zA-Z0-9_/.-]+\.[a-zA-Z]+)(?:[:\s]+(?:line\s*)?(\d+))?`),
}

// suggestedFixRe matches a line beginning with a remediation keyword and
// captures the rest of that line.
var suggestedFixRe = regexp.MustCompile(`(?im)^(?:fix|solution|suggest|should|instead|replace|use|change)[:\s]+(.+)$`)

// Extractor parses free-text code review output into structured issues.
// Review text may mix several LLM formatting conventions; each convention is
// handled by an independent pattern family and overlapping matches are
// collapsed by deduplication.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor { return &Extractor{} }

// Parse extracts deduplicated issues from review text. Issues appear in
// first-match order across pattern families. Text whose severity words occur
// only in prose produces no issues; nothing is fabricated when parsing finds
// no structured marker.
func (e *Extractor) Parse(reviewContent string) []domain.Issue {
	issues := []domain.Issue{}
	seen := make(map[string]bool)

	// Fenced code blocks are removed first so severity-looking tokens in
	// example code never produce false positives.
	content := codeBlockRe.ReplaceAllString(reviewContent, "")

	for _, family := range patternFamilies {
		for _, span := range family.spans(content) {
			issue := e.buildIssue(span.severity, span.content)

			key := dedupKey(issue, span.content)
			if seen[key] {
				continue
			}
			seen[key] = true
			issues = append(issues, issue)
		}
	}

	return issues
}

// ParseFile parses a persisted review file.
func (e *Extractor) ParseFile(path string) ([]domain.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading review file: %w", err)
	}
	return e.Parse(string(data)), nil
}

type matchSpan struct {
	severity domain.Severity
	content  string
}

// spans finds every marker of this family and slices out the text it
// introduces, ending at the next marker of the same family, the family's
// section boundary, or end of text.
func (f patternFamily) spans(content string) []matchSpan {
	locs := f.marker.FindAllStringSubmatchIndex(content, -1)
	if locs == nil {
		return nil
	}

	boundary := f.boundary
	if boundary == nil {
		boundary = sectionBoundary
	}

	spans := make([]matchSpan, 0, len(locs))
	for i, m := range locs {
		start := m[1] // end of the marker itself
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if b := boundary.FindStringIndex(content[start:end]); b != nil {
			end = start + b[0]
		}

		sev := domain.Severity(strings.ToUpper(content[m[2]:m[3]]))
		raw := strings.TrimSpace(content[start:end])
		spans = append(spans, matchSpan{severity: sev, content: raw})
	}
	return spans
}

func (e *Extractor) buildIssue(severity domain.Severity, rawContent string) domain.Issue {
	file, line := extractFileReference(rawContent)

	problem := firstNonBlankLine(rawContent)
	if problem == "" {
		problem = truncate(rawContent, 100)
	}

	return domain.Issue{
		Severity:     severity,
		Problem:      problem,
		File:         file,
		Line:         line,
		FixType:      categorizeFixType(problem, rawContent),
		SuggestedFix: extractSuggestedFix(rawContent),
		FullContext:  truncate(rawContent, maxContextLen),
	}
}

func dedupKey(issue domain.Issue, rawContent string) string {
	return fmt.Sprintf("%s:%s:%d:%s", issue.Severity, issue.File, issue.Line, truncate(rawContent, dedupPrefix))
}

func extractFileReference(content string) (string, int) {
	for _, re := range fileRefPatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		file := m[1]
		line := 0
		if len(m) > 2 && m[2] != "" {
			line, _ = strconv.Atoi(m[2])
		}
		return file, line
	}
	return "", 0
}

func extractSuggestedFix(content string) string {
	m := suggestedFixRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// categorizeFixType classifies an issue by keyword matching. Auto keywords
// are checked before manual keywords; anything matching neither list is
// manual.
func categorizeFixType(problem, fullContext string) domain.FixType {
	combined := strings.ToLower(problem + " " + fullContext)

	for _, keyword := range autoFixKeywords {
		if strings.Contains(combined, keyword) {
			return domain.FixTypeAuto
		}
	}
	for _, keyword := range manualKeywords {
		if strings.Contains(combined, keyword) {
			return domain.FixTypeManual
		}
	}
	return domain.FixTypeManual
}

func firstNonBlankLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// truncate limits s to n runes without splitting a multi-byte character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
