package model

// Place is a business record copied from the search provider.
// ID is the provider's identifier.
type Place struct {
	ID       string  `db:"id" json:"id"`
	Category string  `db:"category" json:"category"`
	Name     string  `db:"name" json:"name"`
	URL      string  `db:"url" json:"url"`
	ImageURL string  `db:"image_url" json:"image_url"`
	Address0 string  `db:"address_0" json:"address_0"`
	Address1 string  `db:"address_1" json:"address_1"`
	Price    string  `db:"price" json:"price"`
	Phone    string  `db:"phone" json:"phone"`
	Rating   float64 `db:"rating" json:"rating"`
}

const (
	PlaceAdded        = "added"
	PlaceAlreadySaved = "already saved"
	PlaceNotAdded     = "not added"
)
