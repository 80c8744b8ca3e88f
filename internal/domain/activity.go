package domain

// Activity is one extracurricular activity as returned by the activities API.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft is capacity minus current participants. Over-subscribed
// activities yield a negative number.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Catalog is the full set of activities from one fetch, in the order the
// API listed them.
type Catalog struct {
	activities []Activity
	index      map[string]int
}

// NewCatalog builds a catalog. A repeated name replaces the earlier entry
// in place.
func NewCatalog(activities ...Activity) Catalog {
	c := Catalog{index: make(map[string]int, len(activities))}
	for _, a := range activities {
		if i, ok := c.index[a.Name]; ok {
			c.activities[i] = a
			continue
		}
		c.index[a.Name] = len(c.activities)
		c.activities = append(c.activities, a)
	}
	return c
}

// Len returns the number of activities.
func (c Catalog) Len() int {
	return len(c.activities)
}

// All returns the activities in listing order.
func (c Catalog) All() []Activity {
	out := make([]Activity, len(c.activities))
	copy(out, c.activities)
	return out
}

// Names returns activity names in listing order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.activities))
	for i, a := range c.activities {
		names[i] = a.Name
	}
	return names
}
