package ephemeris

import (
	"fmt"
	"strings"
)

// bodyIDs maps body names to Horizons command identifiers.
var bodyIDs = map[string]int{
	"sun":     10,
	"mercury": 199,
	"venus":   299,
	"earth":   399,
	"mars":    499,
	"jupiter": 599,
	"saturn":  699,
	"uranus":  799,
	"neptune": 899,
	"pluto":   134340,
	"eros":    2000433,
}

// BodyID returns the Horizons identifier of the named body (case insensitive).
func BodyID(name string) (int, error) {
	id, ok := bodyIDs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("no Horizons identifier for '%s'", name)
	}
	return id, nil
}
