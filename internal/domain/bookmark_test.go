package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewBookmarkValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      NewBookmark
		wantErr bool
	}{
		{
			name: "all required fields",
			in:   NewBookmark{ArticleID: "42", ArticleTitle: "Intro to X", ArticleURL: "https://x.dev/42"},
		},
		{
			name:    "title only",
			in:      NewBookmark{ArticleTitle: ""},
			wantErr: true,
		},
		{
			name:    "missing article id",
			in:      NewBookmark{ArticleTitle: "t", ArticleURL: "u"},
			wantErr: true,
		},
		{
			name:    "blank url",
			in:      NewBookmark{ArticleID: "1", ArticleTitle: "t", ArticleURL: "   "},
			wantErr: true,
		},
		{
			name: "image is optional",
			in:   NewBookmark{ArticleID: "1", ArticleTitle: "t", ArticleURL: "u", ArticleImageURL: strPtr("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPayload))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewBookmarkNormalize(t *testing.T) {
	got := NewBookmark{
		ArticleID:       " 42 ",
		ArticleTitle:    "Intro to X\n",
		ArticleURL:      " https://x.dev/42",
		ArticleImageURL: strPtr("  "),
	}.Normalize()

	assert.Equal(t, "42", got.ArticleID)
	assert.Equal(t, "Intro to X", got.ArticleTitle)
	assert.Equal(t, "https://x.dev/42", got.ArticleURL)
	assert.Nil(t, got.ArticleImageURL)

	withImage := NewBookmark{ArticleImageURL: strPtr(" https://x.dev/42.png ")}.Normalize()
	require.NotNil(t, withImage.ArticleImageURL)
	assert.Equal(t, "https://x.dev/42.png", *withImage.ArticleImageURL)
}

func TestStorageErrorPassesMessageThrough(t *testing.T) {
	backend := errors.New(`relation "bookmarks" does not exist`)
	err := NewStorageError("bookmarks.List", backend)

	assert.Equal(t, backend.Error(), err.Error())
	assert.True(t, IsStorageError(err))
	assert.True(t, errors.Is(err, backend))

	// wrapping twice keeps the first op
	again := NewStorageError("outer", err)
	var se *StorageError
	require.True(t, errors.As(again, &se))
	assert.Equal(t, "bookmarks.List", se.Op)

	assert.Nil(t, NewStorageError("noop", nil))
}
