package dictionary

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dic")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSkipsHeaderAndFlags(t *testing.T) {
	path := writeDict(t, "3\npes/XYZ\nKočka\nslon\n\n")
	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	assert.True(t, d.Contains("pes"))
	assert.True(t, d.Contains("kočka"))
	assert.True(t, d.Contains("SLON"))
	assert.False(t, d.Contains("3"))
	assert.False(t, d.Contains("žirafa"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/words.dic")
	assert.Error(t, err)
}

func TestNilDictionaryIsPermissive(t *testing.T) {
	var d *Dictionary
	assert.True(t, d.Contains("cokoliv"))
	assert.Equal(t, 0, d.Len())
}

func TestFoldRune(t *testing.T) {
	assert.Equal(t, 'a', FoldRune('á'))
	assert.Equal(t, 'e', FoldRune('ě'))
	assert.Equal(t, 'u', FoldRune('u'))
	// ů folds to ú, not u
	assert.Equal(t, 'ú', FoldRune('ů'))
	// č keeps its háček: only the listed diacritics fold
	assert.Equal(t, 'č', FoldRune('č'))
	assert.Equal(t, 'a', FoldRune('Á'))
}

func TestFoldWord(t *testing.T) {
	assert.Equal(t, "motyl", FoldWord("Motýl"))
	assert.Equal(t, "domú", FoldWord("domů"))
}

func TestNextLetter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	assert.Equal(t, "l", NextLetter("motýl", rng))
	assert.Equal(t, "a", NextLetter("kočka", rng))
	// folded last letter
	assert.Equal(t, "ú", NextLetter("domů", rng))

	// a word ending in an unusable letter draws a random valid one
	next := NextLetter("tramvay", rng)
	require.Len(t, []rune(next), 1)
	assert.False(t, IsInvalidLetter([]rune(next)[0]))
}

func TestRandomLetterNeverInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		letter := RandomLetter(rng)
		require.Len(t, []rune(letter), 1)
		assert.False(t, IsInvalidLetter([]rune(letter)[0]), letter)
	}
}

func TestStartsWithLetter(t *testing.T) {
	assert.True(t, StartsWithLetter("pes", "p"))
	assert.True(t, StartsWithLetter("Pes", "p"))
	// diacritic on either side matches through the fold
	assert.True(t, StartsWithLetter("ústa", "ú"))
	assert.True(t, StartsWithLetter("usta", "u"))
	assert.False(t, StartsWithLetter("pes", "s"))
	assert.False(t, StartsWithLetter("", "p"))
}
