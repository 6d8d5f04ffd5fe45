package rendering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(text string) Document {
	return Document{
		Text:        text,
		ProfileName: "jane",
		Version:     "v202403051407",
		CreatedAt:   time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
	}
}

func TestFrontMatterFor(t *testing.T) {
	fm := FrontMatterFor(testDocument(""))
	assert.Equal(t, "jane Resume", fm.Title)
	assert.Equal(t, "v202403051407", fm.Version)
	assert.Equal(t, "2024-03-05T14:07:00Z", fm.CreatedAt)
	assert.Equal(t, "EasyCV", fm.GeneratedBy)
}

func TestPrependFrontMatter_Layout(t *testing.T) {
	out, err := PrependFrontMatter(FrontMatterFor(testDocument("")), "# Jane\n")
	require.NoError(t, err)

	want := "---\n" +
		"title: jane Resume\n" +
		"version: v202403051407\n" +
		"created_at: \"2024-03-05T14:07:00Z\"\n" +
		"generated_by: EasyCV\n" +
		"---\n\n" +
		"# Jane\n"
	assert.Equal(t, want, out)
}

func TestFrontMatter_RoundTrip(t *testing.T) {
	body := "# Jane\n\n## Skills\nGo, SQL\n"
	original, err := PrependFrontMatter(FrontMatterFor(testDocument("")), body)
	require.NoError(t, err)

	fm, ok := ExtractFrontMatter(original)
	require.True(t, ok)
	stripped := StripFrontMatter(original)
	assert.Equal(t, body, stripped)

	again, err := PrependFrontMatter(fm, stripped)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestExtractFrontMatter(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   FrontMatter
		wantOK bool
	}{
		{
			name:   "quoted values",
			input:  "---\ntitle: \"Jane Resume\"\nversion: \"v202401011200\"\n---\nbody",
			want:   FrontMatter{Title: "Jane Resume", Version: "v202401011200"},
			wantOK: true,
		},
		{
			name:   "unknown keys kept",
			input:  "---\ntitle: A\nowner: ops\n---\n",
			want:   FrontMatter{Title: "A", Extra: map[string]string{"owner": "ops"}},
			wantOK: true,
		},
		{
			name:   "invalid yaml falls back to lines",
			input:  "---\ntitle: A: B: [\nversion: v1\n---\n",
			want:   FrontMatter{Title: "A: B: [", Version: "v1"},
			wantOK: true,
		},
		{
			name:  "no block",
			input: "# Jane",
		},
		{
			name:  "unterminated block",
			input: "---\ntitle: A\n# Jane",
		},
		{
			name:  "rule later in document",
			input: "# Jane\n---\ntitle: A\n---\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, ok := ExtractFrontMatter(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want.Title, fm.Title)
			assert.Equal(t, tt.want.Version, fm.Version)
			for k, v := range tt.want.Extra {
				assert.Equal(t, v, fm.Extra[k])
			}
		})
	}
}

func TestStripFrontMatter(t *testing.T) {
	assert.Equal(t, "# Jane", StripFrontMatter("---\ntitle: A\n---\n\n\n# Jane"))
	assert.Equal(t, "# Jane", StripFrontMatter("\ufeff---\r\ntitle: A\r\n---\r\n# Jane"))
	assert.Equal(t, "# Jane\n---\n", StripFrontMatter("# Jane\n---\n"))
	assert.Equal(t, "", StripFrontMatter("---\n---\n"))
}

func TestEnsureFrontMatter_KeepsExistingBlock(t *testing.T) {
	text := "---\ntitle: Custom\n---\n\n# Jane"
	out, err := EnsureFrontMatter(text, FrontMatterFor(testDocument("")))
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestAnalyzeMarkdown(t *testing.T) {
	text := "---\ntitle: A\n---\n# Jane\n\n## Experience\n- Built [site](https://x.dev)\n* Ran ops\n1. First\n## Skills\nGo and SQL"
	stats := AnalyzeMarkdown(text)

	assert.True(t, stats.HasFrontMatter)
	assert.Equal(t, 3, stats.Headings)
	assert.Equal(t, 3, stats.ListItems)
	assert.Equal(t, 1, stats.Links)
	assert.Equal(t, []string{"experience", "skills"}, stats.FoundSections)
	assert.Equal(t, 11, stats.TotalLines)
	assert.Equal(t, 10, stats.NonEmptyLines)

	empty := AnalyzeMarkdown("")
	assert.Zero(t, empty.TotalLines)
	assert.Empty(t, empty.FoundSections)
}
