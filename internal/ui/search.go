package ui

import (
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var initAlgo sync.Once

// matchPositions returns the rune positions of every case-insensitive
// occurrence of query in text, for highlighting search hits
func matchPositions(text, query string) []int {
	if query == "" || text == "" {
		return nil
	}
	initAlgo.Do(func() { algo.Init("default") })

	textRunes := lowerRunes(text)
	pattern := lowerRunes(query)
	slab := util.MakeSlab(1024, 64)

	var positions []int
	offset := 0
	for offset < len(textRunes) {
		chars := util.RunesToChars(textRunes[offset:])
		result, _ := algo.ExactMatchNaive(false, false, true, &chars, pattern, false, slab)
		if result.Start < 0 || result.End <= result.Start {
			break
		}
		for i := result.Start; i < result.End; i++ {
			positions = append(positions, offset+int(i))
		}
		offset += int(result.End)
	}
	return positions
}

// lowerRunes lower-cases rune by rune so positions stay aligned with the
// original text
func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
