package ledger

import "github.com/markusmuilu/Predicting-Nba/internal/models"

// Active holds at most one pending record per key, in insertion order.
type Active struct {
	records []models.Pending
	index   map[models.Key]int
}

func NewActive() *Active {
	return &Active{index: make(map[models.Key]int)}
}

// Upsert inserts p or replaces the record with the same key.
func (a *Active) Upsert(p models.Pending) {
	k := p.Key()
	if i, ok := a.index[k]; ok {
		a.records[i] = p
		return
	}
	a.index[k] = len(a.records)
	a.records = append(a.records, p)
}

// Remove deletes the record with key k and reports whether it was present.
func (a *Active) Remove(k models.Key) bool {
	i, ok := a.index[k]
	if !ok {
		return false
	}
	a.records = append(a.records[:i], a.records[i+1:]...)
	delete(a.index, k)
	for j := i; j < len(a.records); j++ {
		a.index[a.records[j].Key()] = j
	}
	return true
}

func (a *Active) Get(k models.Key) (models.Pending, bool) {
	i, ok := a.index[k]
	if !ok {
		return models.Pending{}, false
	}
	return a.records[i], true
}

func (a *Active) Len() int { return len(a.records) }

// Records returns a copy of the records in order.
func (a *Active) Records() []models.Pending {
	out := make([]models.Pending, len(a.records))
	copy(out, a.records)
	return out
}

// History is the append-only sequence of resolved records.
type History struct {
	records []models.Resolved
	keys    map[models.Key]struct{}
}

func NewHistory() *History {
	return &History{keys: make(map[models.Key]struct{})}
}

// Append adds r unless its key is already present.
func (h *History) Append(r models.Resolved) bool {
	k := r.Key()
	if _, ok := h.keys[k]; ok {
		return false
	}
	h.keys[k] = struct{}{}
	h.records = append(h.records, r)
	return true
}

func (h *History) Contains(k models.Key) bool {
	_, ok := h.keys[k]
	return ok
}

func (h *History) Len() int { return len(h.records) }

// Records returns a copy of the records in order.
func (h *History) Records() []models.Resolved {
	out := make([]models.Resolved, len(h.records))
	copy(out, h.records)
	return out
}

// Accuracy summarises correctness over the whole history.
type Accuracy struct {
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Rate    float64 `json:"rate"`
}

func (h *History) Accuracy() Accuracy {
	acc := Accuracy{Total: len(h.records)}
	for _, r := range h.records {
		if r.Correct {
			acc.Correct++
		}
	}
	if acc.Total > 0 {
		acc.Rate = float64(acc.Correct) / float64(acc.Total)
	}
	return acc
}
