// Package dictionary loads the Czech word list used to validate word-chain
// submissions and implements the letter rules of the chain.
package dictionary

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"
)

// foldMap strips the diacritics the chain rules care about. This is a
// linguistic table, not Unicode decomposition: ů folds to ú.
var foldMap = map[rune]rune{
	'á': 'a', 'é': 'e', 'ě': 'e', 'í': 'i', 'ó': 'o',
	'ý': 'y', 'ň': 'n', 'ť': 't', 'ď': 'd', 'ů': 'ú',
}

// invalidLetters never start a chain turn.
var invalidLetters = map[rune]bool{'q': true, 'w': true, 'x': true, 'y': true, 'ů': true}

// Dictionary is a read-only word set. A nil Dictionary is permissive: every
// word looks valid, which is the intended degradation when the asset fails
// to load at startup.
type Dictionary struct {
	words map[string]struct{}
}

// Load reads a newline-separated word list, one word per line with an
// optional hunspell "/flags" suffix. A leading word-count line is skipped.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	d := &Dictionary{words: make(map[string]struct{})}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if isNumeric(line) {
				continue // hunspell word count header
			}
		}
		if idx := strings.IndexByte(line, '/'); idx >= 0 {
			line = line[:idx]
		}
		if line == "" {
			continue
		}
		d.words[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return d, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// Contains reports whether the word is in the dictionary. Lookup is pure
// and case-insensitive; a nil dictionary accepts everything.
func (d *Dictionary) Contains(word string) bool {
	if d == nil || d.words == nil {
		return true
	}
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Len reports the number of loaded words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// FoldRune removes Czech diacritics from a single letter.
func FoldRune(r rune) rune {
	r = unicode.ToLower(r)
	if folded, ok := foldMap[r]; ok {
		return folded
	}
	return r
}

// FoldWord folds every letter of the word and lowercases it.
func FoldWord(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		b.WriteRune(FoldRune(r))
	}
	return b.String()
}

// IsInvalidLetter reports whether no Czech word may be required to start
// with the letter.
func IsInvalidLetter(r rune) bool {
	return invalidLetters[unicode.ToLower(r)]
}

// NextLetter derives the chain letter that follows the submitted word: the
// word's last letter with diacritics folded, or a random valid letter when
// the fold lands on an unusable one.
func NextLetter(word string, rng *rand.Rand) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	last := FoldRune(runes[len(runes)-1])
	if !invalidLetters[last] {
		return string(last)
	}
	return RandomLetter(rng)
}

// RandomLetter picks a uniformly random letter from a-z minus the invalid
// set.
func RandomLetter(rng *rand.Rand) string {
	valid := make([]rune, 0, 26)
	for r := 'a'; r <= 'z'; r++ {
		if !invalidLetters[r] {
			valid = append(valid, r)
		}
	}
	return string(valid[rng.Intn(len(valid))])
}

// StartsWithLetter checks the chain rule: the word must begin with the
// current letter, matched either with diacritics or folded.
func StartsWithLetter(word, letter string) bool {
	wr := []rune(strings.ToLower(word))
	lr := []rune(strings.ToLower(letter))
	if len(wr) == 0 || len(lr) == 0 {
		return false
	}
	return wr[0] == lr[0] || FoldRune(wr[0]) == FoldRune(lr[0])
}
