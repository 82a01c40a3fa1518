package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty body",
			body: "",
			want: []string{},
		},
		{
			name: "plain text without references",
			body: "<p>routine beam check, nothing to report</p>",
			want: []string{},
		},
		{
			name: "single reference",
			body: `<p>see <elog-entry-ref id="abc-1"></elog-entry-ref></p>`,
			want: []string{"abc-1"},
		},
		{
			name: "multiple references keep first-seen order",
			body: `<elog-entry-ref id="b"></elog-entry-ref><elog-entry-ref id="a"></elog-entry-ref>`,
			want: []string{"b", "a"},
		},
		{
			name: "duplicates removed",
			body: `<elog-entry-ref id="x"></elog-entry-ref><p>and</p><elog-entry-ref id="x"></elog-entry-ref>`,
			want: []string{"x"},
		},
		{
			name: "missing id attribute skipped",
			body: `<elog-entry-ref></elog-entry-ref><elog-entry-ref id="y"></elog-entry-ref>`,
			want: []string{"y"},
		},
		{
			name: "empty id skipped",
			body: `<elog-entry-ref id=""></elog-entry-ref>`,
			want: []string{},
		},
		{
			name: "malformed markup does not panic",
			body: `<div><elog-entry-ref id="z"><p>unclosed`,
			want: []string{"z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIDs(tt.body))
		})
	}
}

func TestContainsAny(t *testing.T) {
	assert.False(t, ContainsAny(""))
	assert.False(t, ContainsAny("<p>no refs here</p>"))
	assert.True(t, ContainsAny(`<elog-entry-ref id="1"></elog-entry-ref>`))
	assert.True(t, ContainsAny(`<elog-entry-ref></elog-entry-ref>`))
}

func TestRewriteID(t *testing.T) {
	body := `<p>before</p><elog-entry-ref id="old-id"></elog-entry-ref><p>after</p>`

	got := RewriteID(body, "old-id", "new-id")
	assert.Contains(t, got, `id="new-id"`)
	assert.NotContains(t, got, "old-id")
	assert.Contains(t, got, "<p>before</p>")
	assert.Contains(t, got, "<p>after</p>")

	// extraction round-trip sees the new id only
	assert.Equal(t, []string{"new-id"}, ExtractIDs(got))
}

func TestRewriteIDCaseInsensitive(t *testing.T) {
	body := `<elog-entry-ref id="ABC-DEF"></elog-entry-ref>`
	got := RewriteID(body, "abc-def", "n1")
	assert.Equal(t, []string{"n1"}, ExtractIDs(got))
}

func TestRewriteIDLeavesOtherReferencesAlone(t *testing.T) {
	body := `<elog-entry-ref id="keep"></elog-entry-ref><elog-entry-ref id="swap"></elog-entry-ref>`
	got := RewriteID(body, "swap", "swapped")
	assert.Equal(t, []string{"keep", "swapped"}, ExtractIDs(got))
}

func TestRewriteIDNoMatchIsByteIdentical(t *testing.T) {
	body := `<p>weird   spacing <ELOG-ENTRY-REF id="a"></ELOG-ENTRY-REF></p>`
	assert.Equal(t, body, RewriteID(body, "missing", "n"))
	assert.Equal(t, "", RewriteID("", "a", "b"))
}
