package catalog

import "releaseradar/models"

// Genre is an upstream genre tag attached to a title detail.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited performer.
type CastMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Character  string `json:"character,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// Trailer is a YouTube trailer or teaser. Other sites and video types are
// filtered out at the adapter.
type Trailer struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Official bool   `json:"official,omitempty"`
}

// TitleDetail is the full normalized record for one title.
type TitleDetail struct {
	Item                models.CatalogItem `json:"item"`
	Genres              []Genre            `json:"genres,omitempty"`
	Runtime             int                `json:"runtime,omitempty"`
	Episodes            int                `json:"episodes,omitempty"`
	Status              string             `json:"status,omitempty"`
	OriginCountry       []string           `json:"originCountry,omitempty"`
	ProductionCompanies []string           `json:"productionCompanies,omitempty"`
	Studios             []string           `json:"studios,omitempty"`
	TrailerURL          string             `json:"trailerUrl,omitempty"`
}

// HasGenre reports whether the detail carries the given upstream genre id.
func (d *TitleDetail) HasGenre(id int) bool {
	for _, g := range d.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

// FromCountry reports whether the title originates from the given country code.
func (d *TitleDetail) FromCountry(code string) bool {
	for _, c := range d.OriginCountry {
		if c == code {
			return true
		}
	}
	return false
}
