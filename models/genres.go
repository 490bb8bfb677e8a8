package models

// GenreDef describes a browsable genre. TMDBID and JikanID are the upstream
// genre identifiers; KDrama marks the pseudo-genre resolved through an
// origin-country filter instead of a genre id.
type GenreDef struct {
	Slug    string `json:"slug"`
	Label   string `json:"label"`
	TMDBID  int    `json:"-"`
	JikanID int    `json:"-"`
	KDrama  bool   `json:"-"`
}

var movieGenres = []GenreDef{
	{Slug: "kdrama", Label: "K-Drama", KDrama: true},
	{Slug: "action", Label: "Action", TMDBID: 28},
	{Slug: "adventure", Label: "Adventure", TMDBID: 12},
	{Slug: "animation", Label: "Animation", TMDBID: 16},
	{Slug: "comedy", Label: "Comedy", TMDBID: 35},
	{Slug: "crime", Label: "Crime", TMDBID: 80},
	{Slug: "drama", Label: "Drama", TMDBID: 18},
	{Slug: "fantasy", Label: "Fantasy", TMDBID: 14},
	{Slug: "horror", Label: "Horror", TMDBID: 27},
	{Slug: "mystery", Label: "Mystery", TMDBID: 9648},
	{Slug: "romance", Label: "Romance", TMDBID: 10749},
	{Slug: "sci-fi", Label: "Sci-Fi", TMDBID: 878},
	{Slug: "thriller", Label: "Thriller", TMDBID: 53},
}

var seriesGenres = []GenreDef{
	{Slug: "kdrama", Label: "K-Drama", KDrama: true},
	{Slug: "action-adventure", Label: "Action & Adventure", TMDBID: 10759},
	{Slug: "animation", Label: "Animation", TMDBID: 16},
	{Slug: "comedy", Label: "Comedy", TMDBID: 35},
	{Slug: "crime", Label: "Crime", TMDBID: 80},
	{Slug: "documentary", Label: "Documentary", TMDBID: 99},
	{Slug: "drama", Label: "Drama", TMDBID: 18},
	{Slug: "family", Label: "Family", TMDBID: 10751},
	{Slug: "mystery", Label: "Mystery", TMDBID: 9648},
	{Slug: "reality", Label: "Reality", TMDBID: 10764},
	{Slug: "sci-fi-fantasy", Label: "Sci-Fi & Fantasy", TMDBID: 10765},
	{Slug: "war-politics", Label: "War & Politics", TMDBID: 10768},
}

var animeGenres = []GenreDef{
	{Slug: "action", Label: "Action", JikanID: 1},
	{Slug: "adventure", Label: "Adventure", JikanID: 2},
	{Slug: "comedy", Label: "Comedy", JikanID: 4},
	{Slug: "mystery", Label: "Mystery", JikanID: 7},
	{Slug: "drama", Label: "Drama", JikanID: 8},
	{Slug: "fantasy", Label: "Fantasy", JikanID: 10},
	{Slug: "horror", Label: "Horror", JikanID: 14},
	{Slug: "romance", Label: "Romance", JikanID: 22},
	{Slug: "sci-fi", Label: "Sci-Fi", JikanID: 24},
	{Slug: "slice-of-life", Label: "Slice of Life", JikanID: 36},
	{Slug: "thriller", Label: "Thriller", JikanID: 41},
}

// GenresForCategory returns the browsable genres for a category.
func GenresForCategory(category Category) []GenreDef {
	switch category {
	case CategoryMovies:
		return movieGenres
	case CategorySeries:
		return seriesGenres
	case CategoryAnime:
		return animeGenres
	}
	return nil
}

// GenreBySlug looks up a genre definition, returning false when the slug is
// not defined for the category.
func GenreBySlug(category Category, slug string) (GenreDef, bool) {
	for _, g := range GenresForCategory(category) {
		if g.Slug == slug {
			return g, true
		}
	}
	return GenreDef{}, false
}
