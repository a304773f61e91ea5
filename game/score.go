// game/score.go
package game

import (
	"math"
	"sort"

	"github.com/wfunc/geoguess/models"
)

const (
	earthRadiusKm = 6371.0
	maxScore      = 5000
	scoreFalloff  = 1500.0 // km until the score decays by a factor of e
)

// DistanceKm 计算两点间的大圆距离（haversine）
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Score 按距离计算得分：0km = 5000 分，随距离指数衰减
func Score(distanceKm float64) int {
	score := maxScore * math.Exp(-distanceKm/scoreFalloff)
	return int(math.Round(math.Max(0, math.Min(maxScore, score))))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// TeamRank 队伍排名条目：该队距离最近的有效推测
type TeamRank struct {
	Team       string
	PlayerID   string
	PlayerName string
	DistanceKm float64
	Score      int
}

// RankTeams selects, per team, the minimum-distance guess among members that
// guessed; teams with no guessing member are omitted. Sorted ascending by
// distance.
func RankTeams(results []models.PlayerResult, spawnLat, spawnLng float64) []TeamRank {
	best := make(map[string]*TeamRank)

	for _, r := range results {
		if r.LastGuess == nil {
			continue
		}
		d := DistanceKm(r.LastGuess.Lat, r.LastGuess.Lng, spawnLat, spawnLng)
		if cur, ok := best[r.Team]; ok && cur.DistanceKm <= d {
			continue
		}
		best[r.Team] = &TeamRank{
			Team:       r.Team,
			PlayerID:   r.ID,
			PlayerName: r.Name,
			DistanceKm: d,
			Score:      Score(d),
		}
	}

	ranking := make([]TeamRank, 0, len(best))
	for _, rank := range best {
		ranking = append(ranking, *rank)
	}
	sort.Slice(ranking, func(i, j int) bool {
		return ranking[i].DistanceKm < ranking[j].DistanceKm
	})
	return ranking
}
