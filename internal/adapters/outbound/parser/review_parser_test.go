package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/internal/adapters/outbound/parser"
	"github.com/storyforge/storyforge/internal/domain"
)

func TestParse_MixedReview(t *testing.T) {
	review := `## Code Review

**CRITICAL**: SQL injection vulnerability in ` + "`src/db.py`" + ` line 42
The query concatenates user input directly.
Fix: use parameterized queries

**LOW**: Trailing whitespace in ` + "`src/utils.py`" + `
`

	issues := parser.New().Parse(review)
	require.Len(t, issues, 2)

	crit := issues[0]
	assert.Equal(t, domain.SeverityCritical, crit.Severity)
	assert.Equal(t, "src/db.py", crit.File)
	assert.Equal(t, 42, crit.Line)
	assert.Equal(t, domain.FixTypeManual, crit.FixType)
	assert.Contains(t, crit.Problem, "SQL injection")
	assert.Equal(t, "use parameterized queries", crit.SuggestedFix)

	low := issues[1]
	assert.Equal(t, domain.SeverityLow, low.Severity)
	assert.Equal(t, "src/utils.py", low.File)
	assert.Equal(t, 0, low.Line)
	assert.Equal(t, domain.FixTypeAuto, low.FixType)
}

func TestParse_PlainAndBracketedMarkers(t *testing.T) {
	review := `HIGH: Missing error handling in handlers.py line 10

[MEDIUM] Unused import in models.py
`

	issues := parser.New().Parse(review)
	require.Len(t, issues, 2)

	assert.Equal(t, domain.SeverityHigh, issues[0].Severity)
	assert.Equal(t, "handlers.py", issues[0].File)
	assert.Equal(t, 10, issues[0].Line)

	assert.Equal(t, domain.SeverityMedium, issues[1].Severity)
	assert.Equal(t, domain.FixTypeAuto, issues[1].FixType)
}

func TestParse_HeadingMarkers(t *testing.T) {
	review := `### CRITICAL: Broken auth check
The token is never validated in auth.py.

## Recommendations
Nothing else.
`

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, domain.SeverityCritical, issue.Severity)
	assert.Equal(t, "auth.py", issue.File)
	// The span must stop at the next heading.
	assert.NotContains(t, issue.FullContext, "Recommendations")
}

func TestParse_ListAndNumberedMarkers(t *testing.T) {
	review := `Issues found:

- HIGH: Inconsistent indentation in cli.py
1. LOW: Style nit in config.py
`

	issues := parser.New().Parse(review)
	require.Len(t, issues, 2)
	assert.Equal(t, domain.SeverityHigh, issues[0].Severity)
	assert.Equal(t, domain.SeverityLow, issues[1].Severity)
}

func TestParse_IgnoresCodeBlocks(t *testing.T) {
	review := "Example output:\n\n```\nCRITICAL: this is sample text, not a finding\n```\n\nNo actual problems.\n"

	issues := parser.New().Parse(review)
	assert.Empty(t, issues)
}

func TestParse_ProseMentionProducesNothing(t *testing.T) {
	review := "This change fixes a critical bug and improves the high-level design.\n"

	issues := parser.New().Parse(review)
	assert.Empty(t, issues)
}

func TestParse_DeduplicatesAcrossFamilies(t *testing.T) {
	// A list item with bold markup matches both the bold and the list family.
	review := "- **HIGH**: Unsafe eval in `runner.py` line 7\n"

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityHigh, issues[0].Severity)
	assert.Equal(t, "runner.py", issues[0].File)
	assert.Equal(t, 7, issues[0].Line)
}

func TestParse_AutoKeywordWinsOverManual(t *testing.T) {
	// "formatting" is checked before "security"; the issue stays auto.
	review := "LOW: Formatting inconsistency in security_utils.py, security review follow-up\n"

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.FixTypeAuto, issues[0].FixType)
}

func TestParse_UnmatchedKeywordDefaultsToManual(t *testing.T) {
	review := "MEDIUM: Off-by-one in pagination math in pages.py\n"

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.FixTypeManual, issues[0].FixType)
}

func TestParse_ContextTruncatedToLimit(t *testing.T) {
	long := strings.Repeat("x", 2000)
	review := "HIGH: Problem in big.py\n" + long + "\n"

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)
	assert.LessOrEqual(t, len([]rune(issues[0].FullContext)), 500)
}

func TestParse_SeverityCaseInsensitive(t *testing.T) {
	review := "high: lowercase marker in thing.py\n"

	issues := parser.New().Parse(review)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityHigh, issues[0].Severity)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1-2-login-review.md")
	require.NoError(t, os.WriteFile(path, []byte("HIGH: Broken link check in web.py\n"), 0644))

	issues, err := parser.New().ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := parser.New().ParseFile(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}
