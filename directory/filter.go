package directory

import "golang.org/x/text/cases"

// Filter returns the persons whose name equals text under Unicode case folding.
// An empty text returns all persons. Matching is whole-name equality, not substring.
func Filter(persons []Person, text string) []Person {
	if text == "" {
		return persons
	}
	fold := cases.Fold()
	want := fold.String(text)
	var shown []Person
	for _, p := range persons {
		if fold.String(p.Name) == want {
			shown = append(shown, p)
		}
	}
	return shown
}
