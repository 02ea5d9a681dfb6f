package navigator

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/m3rciful/navmenu/core/message"
)

// Suggestion is an action the user may have meant.
type Suggestion struct {
	Action string
	Label  string
}

type candidate struct {
	Suggestion
	key string
}

// Suggest returns up to limit actions reachable from the user's current menu that
// resemble query: visible buttons first, then aliases of any menu.
func (m *Manager) Suggest(ctx context.Context, userID int64, query string, payload message.Payload, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	msg, err := m.Message(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	var cands []candidate
	seen := make(map[string]struct{})
	add := func(act, label, key string) {
		if act == "" || key == "" {
			return
		}
		id := act + "\x00" + key
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		cands = append(cands, candidate{Suggestion: Suggestion{Action: act, Label: label}, key: key})
	}
	for _, b := range msg.Keyboard.Buttons() {
		add(b.Payload, b.Text, b.Text)
		add(b.Payload, b.Text, b.Payload)
	}
	for _, name := range m.menus.Names() {
		mn, _ := m.menus.Lookup(name)
		for _, alias := range mn.Aliases() {
			add(alias, alias, alias)
		}
	}

	return rankSuggestions(query, cands, limit), nil
}

func rankSuggestions(query string, cands []candidate, limit int) []Suggestion {
	keys := make([]string, len(cands))
	for i, c := range cands {
		keys[i] = c.key
	}

	type scored struct {
		idx  int
		dist int
	}
	var hits []scored
	for _, r := range fuzzy.RankFindNormalizedFold(query, keys) {
		hits = append(hits, scored{idx: r.OriginalIndex, dist: r.Distance})
	}
	if len(hits) == 0 {
		// typos: fall back to edit distance
		lower := strings.ToLower(query)
		maxDist := max(1, len([]rune(lower))/3)
		for i, k := range keys {
			if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(k)); d <= maxDist {
				hits = append(hits, scored{idx: i, dist: d})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].idx < hits[j].idx
	})

	var out []Suggestion
	picked := make(map[string]struct{})
	for _, h := range hits {
		s := cands[h.idx].Suggestion
		if _, ok := picked[s.Action]; ok {
			continue
		}
		picked[s.Action] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
