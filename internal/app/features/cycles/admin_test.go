package cycles

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinevote/cinevote/internal/domain/models"
)

func ballot(n int) []models.Suggestion {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Suggestion, n)
	for i := range out {
		out[i] = models.Suggestion{
			ID:          primitive.NewObjectID(),
			MovieTitle:  "Movie " + string(rune('A'+i)),
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestPickWinner_MostVotes(t *testing.T) {
	sgs := ballot(3)
	counts := map[primitive.ObjectID]int64{
		sgs[0].ID: 1,
		sgs[1].ID: 4,
		sgs[2].ID: 2,
	}

	winner, votes := pickWinner(sgs, counts)
	if winner.ID != sgs[1].ID {
		t.Errorf("winner = %s, want %s", winner.MovieTitle, sgs[1].MovieTitle)
	}
	if votes != 4 {
		t.Errorf("votes = %d, want 4", votes)
	}
}

func TestPickWinner_TieBreaksToEarliestSubmission(t *testing.T) {
	sgs := ballot(3)
	counts := map[primitive.ObjectID]int64{
		sgs[0].ID: 2,
		sgs[1].ID: 3,
		sgs[2].ID: 3,
	}

	// sgs[1] and sgs[2] tie; sgs[1] was submitted first.
	winner, _ := pickWinner(sgs, counts)
	if winner.ID != sgs[1].ID {
		t.Errorf("winner = %s, want earliest-submitted %s", winner.MovieTitle, sgs[1].MovieTitle)
	}
}

func TestPickWinner_NoVotesFallsBackToFirstSuggestion(t *testing.T) {
	sgs := ballot(2)

	winner, votes := pickWinner(sgs, map[primitive.ObjectID]int64{})
	if winner.ID != sgs[0].ID {
		t.Errorf("winner = %s, want first suggestion %s", winner.MovieTitle, sgs[0].MovieTitle)
	}
	if votes != 0 {
		t.Errorf("votes = %d, want 0", votes)
	}
}

func TestParseCycleForm(t *testing.T) {
	h := &Handler{}

	mk := func(name, s, v, e string) url.Values {
		return url.Values{
			"name":             {name},
			"suggestion_start": {s},
			"voting_start":     {v},
			"voting_end":       {e},
		}
	}

	cases := []struct {
		label   string
		form    url.Values
		wantErr bool
	}{
		{"valid", mk("March", "2026-03-01T00:00", "2026-03-03T00:00", "2026-03-05T00:00"), false},
		{"missing name", mk("", "2026-03-01T00:00", "2026-03-03T00:00", "2026-03-05T00:00"), true},
		{"bad time", mk("March", "yesterday", "2026-03-03T00:00", "2026-03-05T00:00"), true},
		{"out of order", mk("March", "2026-03-05T00:00", "2026-03-03T00:00", "2026-03-01T00:00"), true},
		{"equal boundaries", mk("March", "2026-03-01T00:00", "2026-03-01T00:00", "2026-03-05T00:00"), true},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("POST", "/cycles", strings.NewReader(tc.form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		c, msg := h.parseCycleForm(r)
		if tc.wantErr && msg == "" {
			t.Errorf("%s: expected a validation message", tc.label)
		}
		if !tc.wantErr {
			if msg != "" {
				t.Errorf("%s: unexpected validation message %q", tc.label, msg)
			}
			if !c.SuggestionStart.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("%s: suggestion start parsed as %v, expected UTC midnight", tc.label, c.SuggestionStart)
			}
		}
	}
}
