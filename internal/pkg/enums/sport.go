package enums

// Sport identifies a sport by its stable integer ID.
// IDs are shared vocabulary between adapters, persistence and notification
// formatting; never renumber.
type Sport int

const (
	SportUnknown     Sport = 0
	SportFootball    Sport = 1
	SportBasketball  Sport = 2
	SportTennis      Sport = 3
	SportHockey      Sport = 4
	SportTableTennis Sport = 5
	SportVolleyball  Sport = 6
	SportEsports     Sport = 7
)

var sportLabels = map[Sport]string{
	SportFootball:    "Football",
	SportBasketball:  "Basketball",
	SportTennis:      "Tennis",
	SportHockey:      "Hockey",
	SportTableTennis: "Table Tennis",
	SportVolleyball:  "Volleyball",
	SportEsports:     "Esports",
}

// Label returns a human-readable sport name for notifications.
func (s Sport) Label() string {
	if l, ok := sportLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// IsValid checks if sport is supported.
func (s Sport) IsValid() bool {
	_, ok := sportLabels[s]
	return ok
}

// AllSports returns all supported sports in ID order.
func AllSports() []Sport {
	return []Sport{
		SportFootball,
		SportBasketball,
		SportTennis,
		SportHockey,
		SportTableTennis,
		SportVolleyball,
		SportEsports,
	}
}
