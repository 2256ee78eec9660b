package gutendex

// SearchResponse is the body of GET /books/.
type SearchResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Book  `json:"results"`
}

// Book is a single search candidate.
type Book struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Authors       []Person `json:"authors"`
	Languages     []string `json:"languages"`
	DownloadCount float64  `json:"download_count"`
}

// Person is an author entry; Gutendex reports unknown years as null.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// FirstAuthor returns the first listed author.
func (b Book) FirstAuthor() (Person, bool) {
	if len(b.Authors) == 0 {
		return Person{}, false
	}
	return b.Authors[0], true
}

// FirstLanguage returns the first listed language code, or "" when none is listed.
func (b Book) FirstLanguage() string {
	if len(b.Languages) == 0 {
		return ""
	}
	return b.Languages[0]
}

// AuthorName returns the first author's name, or "Unknown".
func (b Book) AuthorName() string {
	if p, ok := b.FirstAuthor(); ok {
		return p.Name
	}
	return "Unknown"
}

// DistinctLanguages collects the language codes of all candidates in first-seen order.
func DistinctLanguages(books []Book) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, b := range books {
		for _, lang := range b.Languages {
			if lang == "" || seen[lang] {
				continue
			}
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
