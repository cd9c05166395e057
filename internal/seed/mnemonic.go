package seed

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"
)

const (
	entropyBits = 256

	// maxTypoDistance bounds how far a word may be from its suggestion
	maxTypoDistance = 2
)

var (
	ErrInvalidMnemonic = errors.New("invalid seed words")

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Typo is a mnemonic word missing from the BIP39 list.
type Typo struct {
	Index      int
	Word       string
	Suggestion string
}

// NormalizeMnemonic trims raw and collapses every whitespace run to one space.
func NormalizeMnemonic(raw string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(raw, " "))
}

// GenerateMnemonicAndSeed returns a fresh 24-word mnemonic and its seed.
func GenerateMnemonicAndSeed() (string, []byte, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create mnemonic: %w", err)
	}
	return mnemonic, bip39.NewSeed(mnemonic, ""), nil
}

// MnemonicToSeed validates the wordlist and checksum, then derives the seed.
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	normalized := NormalizeMnemonic(mnemonic)
	if normalized == "" {
		return nil, ErrInvalidMnemonic
	}
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		if hint := formatTypos(DetectTypos(normalized)); hint != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMnemonic, hint)
		}
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeed(normalized, ""), nil
}

// DetectTypos lists words not in the BIP39 wordlist with the closest match.
func DetectTypos(mnemonic string) []Typo {
	var typos []Typo
	for i, word := range strings.Fields(strings.ToLower(mnemonic)) {
		if _, ok := bip39.GetWordIndex(word); ok {
			continue
		}
		typos = append(typos, Typo{Index: i, Word: word, Suggestion: suggestWord(word)})
	}
	return typos
}

func suggestWord(word string) string {
	best, bestDist := "", math.MaxInt
	for _, w := range bip39.GetWordList() {
		if d := levenshtein.ComputeDistance(word, w); d < bestDist {
			best, bestDist = w, d
		}
	}
	if bestDist > maxTypoDistance {
		return ""
	}
	return best
}

func formatTypos(typos []Typo) string {
	parts := make([]string, 0, len(typos))
	for _, t := range typos {
		if t.Suggestion != "" {
			parts = append(parts, fmt.Sprintf("word %d %q, did you mean %q?", t.Index+1, t.Word, t.Suggestion))
		} else {
			parts = append(parts, fmt.Sprintf("word %d %q is not a valid word", t.Index+1, t.Word))
		}
	}
	return strings.Join(parts, "; ")
}
