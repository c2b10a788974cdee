package recommend

import (
	"context"
	"sort"
)

const popularReason = "Trending now"

// popular is the fallback for users without favorites: sample favorites
// system-wide, count them per track and return the most favorited. Failures
// degrade to an empty result rather than an error.
func (e *Engine) popular(ctx context.Context, limit int) []*ScoredTrack {
	sample, err := e.favorites.Sample(ctx, popularSampleSize)
	if err != nil {
		logStrategyFailure("popular", err)
		return nil
	}

	counts := make(map[int64]*ScoredTrack)
	var order []int64
	for _, fav := range sample {
		if rec, ok := counts[fav.TrackID]; ok {
			rec.Score++
			continue
		}
		counts[fav.TrackID] = &ScoredTrack{
			Track:              fav.Track,
			Score:              1,
			RecommendationType: TypePopular,
			Reason:             popularReason,
		}
		order = append(order, fav.TrackID)
	}

	results := make([]*ScoredTrack, 0, len(order))
	for _, id := range order {
		results = append(results, counts[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
