package core

import "github.com/evamaxfield/repo-statistics/schema"

// DetectEpisodes run-length-encodes a binary activity sequence into maximal
// runs of consecutive buckets sharing one state. An empty sequence yields no
// episodes.
func DetectEpisodes(flags []int) []schema.Episode {
	if len(flags) == 0 {
		return nil
	}

	var episodes []schema.Episode
	state := episodeState(flags[0])
	length := 1
	for _, f := range flags[1:] {
		next := episodeState(f)
		if next == state {
			length++
			continue
		}
		episodes = append(episodes, schema.Episode{State: state, Length: length})
		state = next
		length = 1
	}
	return append(episodes, schema.Episode{State: state, Length: length})
}

func episodeState(flag int) schema.EpisodeState {
	if flag > 0 {
		return schema.ActiveEpisode
	}
	return schema.InactiveEpisode
}

// SplitRuns separates episodes into active and inactive run lengths. A
// continuously active series has no inactive runs and vice versa; callers
// resolve the empty side to null metrics.
func SplitRuns(episodes []schema.Episode) (active, inactive []float64) {
	for _, e := range episodes {
		if e.State == schema.ActiveEpisode {
			active = append(active, float64(e.Length))
		} else {
			inactive = append(inactive, float64(e.Length))
		}
	}
	return active, inactive
}
