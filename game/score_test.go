package game

import (
	"math"
	"testing"

	"github.com/wfunc/geoguess/models"
)

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	d := DistanceKm(35.68, 139.76, 35.68, 139.76)
	if d != 0 {
		t.Errorf("Expected zero distance for identical points, got %f", d)
	}
}

func TestDistanceKm_KnownPairs(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"Tokyo-Osaka", 35.6762, 139.6503, 34.6937, 135.5023, 400, 15},
		{"London-Paris", 51.5074, -0.1278, 48.8566, 2.3522, 344, 10},
		{"Equator quarter", 0, 0, 0, 90, 10007.5, 20},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := DistanceKm(c.lat1, c.lng1, c.lat2, c.lng2)
			if math.Abs(d-c.wantKm) > c.tolerance {
				t.Errorf("Expected ~%.1fkm, got %.1fkm", c.wantKm, d)
			}
		})
	}
}

func TestScore_Curve(t *testing.T) {
	if got := Score(0); got != 5000 {
		t.Errorf("Expected a perfect guess to score 5000, got %d", got)
	}

	// 1500km is the e-folding distance: 5000/e ≈ 1839.
	if got := Score(1500); got != 1839 {
		t.Errorf("Expected Score(1500) == 1839, got %d", got)
	}

	if got := Score(20000); got > 1 {
		t.Errorf("Expected an antipodal guess to score ~0, got %d", got)
	}

	// Monotone non-increasing.
	prev := Score(0)
	for km := 100.0; km <= 5000; km += 100 {
		cur := Score(km)
		if cur > prev {
			t.Fatalf("Score increased from %d to %d at %.0fkm", prev, cur, km)
		}
		prev = cur
	}
}

func TestRankTeams(t *testing.T) {
	spawnLat, spawnLng := 35.0, 135.0
	results := []models.PlayerResult{
		{ID: "a", Name: "A", Team: "red", LastGuess: &models.Guess{Lat: 35.0, Lng: 136.0}},
		{ID: "b", Name: "B", Team: "red", LastGuess: &models.Guess{Lat: 35.0, Lng: 135.1}},
		{ID: "c", Name: "C", Team: "blue", LastGuess: &models.Guess{Lat: 36.0, Lng: 135.0}},
		{ID: "d", Name: "D", Team: "blue", LastGuess: nil, Excluded: true},
	}

	ranking := RankTeams(results, spawnLat, spawnLng)
	if len(ranking) != 2 {
		t.Fatalf("Expected 2 ranked teams, got %d", len(ranking))
	}

	// Red's best (B, ~9km) beats blue's best (C, ~111km).
	if ranking[0].Team != "red" || ranking[0].PlayerID != "b" {
		t.Errorf("Expected red/B to rank first, got %s/%s", ranking[0].Team, ranking[0].PlayerID)
	}
	if ranking[1].Team != "blue" || ranking[1].PlayerID != "c" {
		t.Errorf("Expected blue/C to rank second, got %s/%s", ranking[1].Team, ranking[1].PlayerID)
	}
	if ranking[0].DistanceKm >= ranking[1].DistanceKm {
		t.Error("Expected ranking in ascending distance order")
	}
}

func TestRankTeams_OmitsTeamsWithoutGuesses(t *testing.T) {
	results := []models.PlayerResult{
		{ID: "a", Name: "A", Team: "red", LastGuess: &models.Guess{Lat: 1, Lng: 1}},
		{ID: "b", Name: "B", Team: "blue", LastGuess: nil, Excluded: true},
	}

	ranking := RankTeams(results, 0, 0)
	if len(ranking) != 1 {
		t.Fatalf("Expected 1 ranked team, got %d", len(ranking))
	}
	if ranking[0].Team != "red" {
		t.Errorf("Expected only red to be ranked, got %s", ranking[0].Team)
	}
}
