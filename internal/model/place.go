package model

// Place is a saved location belonging to a single Telegram user.
// Image holds a Telegram file id and is empty when no photo was attached.
type Place struct {
	ID        int64   `db:"id"`
	User      int64   `db:"user"`
	Address   string  `db:"address"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
	Image     string  `db:"image"`
}

// DraftPlace accumulates the fields of a place while the add dialogue
// is still in progress.
type DraftPlace struct {
	Address   string
	Latitude  float64
	Longitude float64
	Image     string
}
