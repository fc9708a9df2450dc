package text

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SplicesBetween derives a splice list that turns old into new, for hosts
// that only observe whole values (an input element, a file on disk) rather
// than individual edits. Adjacent delete/insert pairs collapse into one
// replacing splice. Applying the result to old yields new.
func SplicesBetween(old, new string) []Splice {
	if old == new {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes([]rune(old), []rune(new), false)

	var out []Splice
	index := 0 // rune offset in the evolving value
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			index += utf8.RuneCountInString(d.Text)

		case diffmatchpatch.DiffDelete:
			remove := utf8.RuneCountInString(d.Text)
			insert := ""
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				insert = diffs[i+1].Text
				i++
			}
			out = append(out, Splice{Index: index, Remove: remove, Text: insert})
			index += utf8.RuneCountInString(insert)

		case diffmatchpatch.DiffInsert:
			out = append(out, Splice{Index: index, Text: d.Text})
			index += utf8.RuneCountInString(d.Text)
		}
	}
	return out
}
