package words

import "testing"

func TestCatalogueShape(t *testing.T) {
	catalogue := Catalogue()
	if len(catalogue) == 0 {
		t.Fatalf("catalogue is empty")
	}

	slugs := map[string]bool{}
	for _, category := range catalogue {
		if category.Slug == "" || category.Name == "" {
			t.Fatalf("category missing slug or name: %+v", category)
		}
		if slugs[category.Slug] {
			t.Fatalf("duplicate category slug %s", category.Slug)
		}
		slugs[category.Slug] = true

		if len(category.Words) < 10 {
			t.Fatalf("category %s has only %d words", category.Slug, len(category.Words))
		}
		seen := map[string]bool{}
		for _, word := range category.Words {
			if word == "" {
				t.Fatalf("category %s contains an empty word", category.Slug)
			}
			if seen[word] {
				t.Fatalf("category %s repeats %q", category.Slug, word)
			}
			seen[word] = true
		}
	}

	if !slugs["countries"] {
		t.Fatalf("default category countries missing from catalogue")
	}
}
