package Handlers

import "fmt"

const tmdbImageBaseUrl = "https://image.tmdb.org/t/p/w500"

// fallbackPosterUrl is shown when TMDB has no poster for a movie.
const fallbackPosterUrl = "https://images.unsplash.com/photo-1440404653325-ab127d49abc1?auto=format&fit=crop&w=800"

// MovieResponse is a catalog movie as served to clients. Metadata is copied
// into logged records at creation time and never re-synced.
type MovieResponse struct {
	TmdbID      int     `json:"tmdb_id" bson:"tmdbId"`
	Title       string  `json:"title" bson:"title"`
	Overview    string  `json:"overview" bson:"overview"`
	PosterPath  string  `json:"poster_path" bson:"posterPath"`
	PosterURL   string  `json:"poster_url" bson:"posterUrl"`
	ReleaseDate string  `json:"release_date" bson:"releaseDate"`
	VoteAverage float64 `json:"vote_average" bson:"voteAverage"`
}

func PosterUrl(path string) string {
	if path == "" {
		return fallbackPosterUrl
	}
	return fmt.Sprintf("%s%s", tmdbImageBaseUrl, path)
}
