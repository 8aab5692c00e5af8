package localfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch/localfile"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("reads whole file as one unit", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "faq.md")
		require.NoError(t, os.WriteFile(path, []byte("# FAQ\n\nWe are open weekdays.\n"), 0o644))

		f := localfile.NewFetcher()
		units, err := f.Fetch(context.Background(), domain.Source{Kind: domain.KindLocalFile, Target: path})

		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "# FAQ\n\nWe are open weekdays.", units[0].Text)
		assert.Equal(t, path, units[0].SourceTarget)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		f := localfile.NewFetcher()
		_, err := f.Fetch(context.Background(), domain.Source{Kind: domain.KindLocalFile, Target: "/does/not/exist"})

		require.Error(t, err)
	})

	t.Run("empty file maps to ErrEmptyResult", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

		f := localfile.NewFetcher()
		_, err := f.Fetch(context.Background(), domain.Source{Kind: domain.KindLocalFile, Target: path})

		assert.ErrorIs(t, err, domain.ErrEmptyResult)
	})
}
