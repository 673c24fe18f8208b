package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontMatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontMatter_SplitsFrontMatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Hello\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\n", string(fm))
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ntitle: Hello\r\n---\r\nBody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\r\n", string(fm))
	require.Equal(t, "Body\r\n", string(body))
}

func TestSplit_BOMIsIgnored(t *testing.T) {
	fm, _, had, err := Split([]byte("\xef\xbb\xbf---\ntitle: x\n---\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: x\n", string(fm))
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nBody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, "Body\n", string(body))
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: x\n", string(fm))
	require.Empty(t, body)
}

func TestSplit_HorizontalRuleInBodyIsKept(t *testing.T) {
	_, body, _, err := Split([]byte("---\ntitle: x\n---\nintro\n\n---\n\nmore\n"))
	require.NoError(t, err)
	require.Equal(t, "intro\n\n---\n\nmore\n", string(body))
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fields, err := ParseYAML([]byte("title: abc\ntags:\n  - one\n"))
	require.NoError(t, err)
	require.Equal(t, "abc", fields["title"])
	require.Equal(t, []any{"one"}, fields["tags"])
}

func TestParseYAML_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestParseYAML_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}

func TestParse_RequiresFrontMatter(t *testing.T) {
	_, body, err := Parse([]byte("just text\n"))
	require.ErrorIs(t, err, ErrNoFrontMatter)
	require.Equal(t, "just text\n", string(body))

	fields, body, err := Parse([]byte("---\ntitle: Hi\n---\ntext\n"))
	require.NoError(t, err)
	require.Equal(t, "Hi", fields["title"])
	require.Equal(t, "text\n", string(body))
}
