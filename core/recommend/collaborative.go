package recommend

import (
	"context"
	"sort"
)

const collaborativeReason = "Users with similar taste enjoyed this"

// collaborative scores tracks favorited by taste-neighbors: users who share
// at least one favorite with the requester. A track's score is the number of
// neighbor favorites referencing it. Query failures are logged and yield an
// empty contribution; they never fail the overall recommendation.
func (e *Engine) collaborative(ctx context.Context, likedTrackIDs []int64, userID int64, limit int) []*ScoredTrack {
	if len(likedTrackIDs) == 0 {
		return nil
	}

	// Bound query fan-out to the first few liked tracks.
	seed := likedTrackIDs
	if len(seed) > maxSeedTracks {
		seed = seed[:maxSeedTracks]
	}

	neighborIDs, err := e.favorites.NeighborUserIDs(ctx, seed, userID, maxNeighborUsers)
	if err != nil {
		logStrategyFailure("collaborative", err)
		return nil
	}
	if len(neighborIDs) == 0 {
		return nil
	}

	candidates, err := e.favorites.ByUsersExcludingTracks(ctx, neighborIDs, likedTrackIDs, limit*2)
	if err != nil {
		logStrategyFailure("collaborative", err)
		return nil
	}

	scored := make(map[int64]*ScoredTrack)
	var order []int64
	for _, fav := range candidates {
		if rec, ok := scored[fav.TrackID]; ok {
			rec.Score++
			continue
		}
		scored[fav.TrackID] = &ScoredTrack{
			Track:              fav.Track,
			Score:              1,
			RecommendationType: TypeCollaborative,
			Reason:             collaborativeReason,
		}
		order = append(order, fav.TrackID)
	}

	results := make([]*ScoredTrack, 0, len(order))
	for _, id := range order {
		results = append(results, scored[id])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
