package recommend

import (
	"context"
	"sort"
)

const (
	genreMatchScore  = 2
	artistMatchScore = 3
)

// contentBased scores catalog tracks by attribute similarity to the taste
// profile: +2 for a top-genre match, +3 for a top-artist match, additive.
// With an empty profile there is nothing to score, so the strategy skips.
// Query failures are logged and yield an empty contribution.
func (e *Engine) contentBased(ctx context.Context, topGenres, topArtists []string, excludeIDs []int64, limit int) []*ScoredTrack {
	if len(topGenres) == 0 && len(topArtists) == 0 {
		return nil
	}

	tracks, err := e.tracks.ByGenresOrArtists(ctx, topGenres, topArtists, excludeIDs, limit*2)
	if err != nil {
		logStrategyFailure("content-based", err)
		return nil
	}

	genreSet := toSet(topGenres)
	artistSet := toSet(topArtists)

	results := make([]*ScoredTrack, 0, len(tracks))
	for _, track := range tracks {
		score := 0
		if genreSet[track.Genre] {
			score += genreMatchScore
		}
		if artistSet[track.Artist] {
			score += artistMatchScore
		}

		reason := "Based on your taste in " + track.Genre
		if artistSet[track.Artist] {
			reason = "Because you like " + track.Artist
		}

		results = append(results, &ScoredTrack{
			Track:              *track,
			Score:              score,
			RecommendationType: TypeContentBased,
			Reason:             reason,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
