package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBookmarkInput(t *testing.T) {
	tests := []struct {
		name       string
		in         BookmarkInput
		wantFields []string
	}{
		{"valid", BookmarkInput{URL: "https://a.com", Title: "A"}, nil},
		{"missing both", BookmarkInput{}, []string{"url", "title"}},
		{"title too long", BookmarkInput{URL: "u", Title: strings.Repeat("x", 501)}, []string{"title"}},
		{"title at limit", BookmarkInput{URL: "u", Title: strings.Repeat("x", 500)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tt.wantFields))
		})
	}
}

func TestValidateBookmarkPatch(t *testing.T) {
	empty := ""
	ok := "fine"

	assert.NoError(t, Validate(BookmarkPatch{}))
	assert.NoError(t, Validate(BookmarkPatch{Title: &ok}))
	assert.ErrorIs(t, Validate(BookmarkPatch{Title: &empty}), ErrValidation)
}

func TestValidateCategoryInput(t *testing.T) {
	assert.NoError(t, Validate(CategoryInput{UID: 1, Name: "Tech"}))

	err := Validate(CategoryInput{Name: "Tech"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "uid")
}

func TestNotFoundWraps(t *testing.T) {
	err := NotFound("bookmark", "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "bookmark abc")
}

func TestPreview(t *testing.T) {
	short := "short"
	assert.Equal(t, short, Preview(short))

	long := strings.Repeat("é", PreviewLength+5)
	p := Preview(long)
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Equal(t, PreviewLength+3, len([]rune(p)))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, SplitTags(" go, ,web,"))
	assert.Empty(t, SplitTags(""))
}

func TestDocumentPatchMerge(t *testing.T) {
	doc := Document{UID: 1, Title: "t", Content: "c", Evaluate: 2}
	title := "new"
	eval := 5

	merged := DocumentPatch{Title: &title, Evaluate: &eval}.Merge(doc.ToInput())

	assert.Equal(t, "new", merged.Title)
	assert.Equal(t, "c", merged.Content)
	assert.Equal(t, 5, merged.Evaluate)
	assert.Equal(t, int64(1), merged.UID)
}
