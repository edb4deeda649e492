// Package stringutils turns story titles into branch name slugs and back.
package stringutils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	dashedCharactersConstant    = " _,./:;+&"
	removedCharactersConstant   = "'\"%!@#$(){}[]*\\?"
	dashConstant                = "-"
	spaceConstant               = " "
	newlineConstant             = "\n"
	repeatedDashPatternConstant = dashConstant + dashConstant
)

var (
	dashReplacer   = buildReplacer(dashedCharactersConstant, dashConstant)
	removeReplacer = buildReplacer(removedCharactersConstant, "")
)

// Dashed replaces word separators and punctuation with hyphens.
func Dashed(value string) string {
	return dashReplacer.Replace(value)
}

// StripNewlines replaces newlines with hyphens.
func StripNewlines(value string) string {
	return strings.ReplaceAll(value, newlineConstant, dashConstant)
}

// SimpleSanitize removes quoting and shell-special characters, then strips newlines.
func SimpleSanitize(value string) string {
	return StripNewlines(removeReplacer.Replace(value))
}

// NormalizedBranchName converts a story title into a lowercase hyphenated slug
// without punctuation and without repeated hyphens.
func NormalizedBranchName(title string) string {
	return squeezeDashes(SimpleSanitize(strings.ToLower(Dashed(title))))
}

// Undashed turns a slug back into a sentence: hyphens become spaces, the first
// letter is capitalised and the rest lowercased.
func Undashed(value string) string {
	spaced := strings.ToLower(strings.ReplaceAll(value, dashConstant, spaceConstant))
	firstRune, firstRuneSize := utf8.DecodeRuneInString(spaced)
	if firstRuneSize == 0 {
		return spaced
	}
	return string(unicode.ToUpper(firstRune)) + spaced[firstRuneSize:]
}

func squeezeDashes(value string) string {
	for strings.Contains(value, repeatedDashPatternConstant) {
		value = strings.ReplaceAll(value, repeatedDashPatternConstant, dashConstant)
	}
	return value
}

func buildReplacer(characters string, replacement string) *strings.Replacer {
	replacementPairs := make([]string, 0, len(characters)*2)
	for _, character := range characters {
		replacementPairs = append(replacementPairs, string(character), replacement)
	}
	return strings.NewReplacer(replacementPairs...)
}
