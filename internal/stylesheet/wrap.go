package stylesheet

import (
	"strings"
	"unicode/utf8"
)

const breakableSpaceRune = ' '

// UnfixableLine identifies an output line still longer than the limit because it has no
// space to break at.
type UnfixableLine struct {
	LineNumber int
	Length     int
}

// WrapLongLines breaks every line longer than limit runes at the last space at or before
// index limit, consuming that space, and repeats on the remainder. A space at index 0 never
// counts as a break point. Lines that cannot be shortened are kept and reported with their
// 1-based line number in the result. Applying the function to its own output is a no-op.
func WrapLongLines(content string, limit int) (string, []UnfixableLine) {
	if limit <= 0 {
		return content, nil
	}

	inputLines := strings.Split(content, lineSeparatorConstant)
	outputLines := make([]string, 0, len(inputLines))
	var unfixableLines []UnfixableLine

	for _, line := range inputLines {
		remaining := line
		for utf8.RuneCountInString(remaining) > limit {
			runes := []rune(remaining)
			breakIndex := lastBreakableSpace(runes, limit)
			if breakIndex < 0 {
				unfixableLines = append(unfixableLines, UnfixableLine{LineNumber: len(outputLines) + 1, Length: len(runes)})
				break
			}
			outputLines = append(outputLines, string(runes[:breakIndex]))
			remaining = string(runes[breakIndex+1:])
		}
		outputLines = append(outputLines, remaining)
	}

	return strings.Join(outputLines, lineSeparatorConstant), unfixableLines
}

func lastBreakableSpace(runes []rune, limit int) int {
	for runeIndex := limit; runeIndex > 0; runeIndex-- {
		if runes[runeIndex] == breakableSpaceRune {
			return runeIndex
		}
	}
	return -1
}
