package models

// Verse is a single verse from the verses collection. SearchableText is a
// lowercased copy of the translation kept for prefix queries.
type Verse struct {
	ID             string `json:"id"`
	Chapter        int    `json:"chapter"`
	Verse          int    `json:"verse"`
	Sanskrit       string `json:"sanskrit"`
	Transliteration string `json:"transliteration"`
	Translation    string `json:"translation"`
	SearchableText string `json:"-"`
}

// DailyVerse pairs a verse with the date it was selected for.
type DailyVerse struct {
	Date  string `json:"date"`
	Verse Verse  `json:"verse"`
}
