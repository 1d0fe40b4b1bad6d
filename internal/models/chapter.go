package models

// Chapter mirrors the shape returned by the bhagavad-gita3 API and stored in
// the chapters collection.
type Chapter struct {
	ID             string `json:"id,omitempty"`
	ChapterNumber  int    `json:"chapter_number"`
	Name           string `json:"name"`
	NameTranslated string `json:"name_translated"`
	NameMeaning    string `json:"name_meaning"`
	ChapterSummary string `json:"chapter_summary"`
	VersesCount    int    `json:"verses_count"`
}
