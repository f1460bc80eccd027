package plan

import "strings"

// Category is one of the fixed account categories the planner allocates to.
type Category string

const (
	// RESP is the matched-savings category. Its ceiling scales with the
	// number of dependents rather than a room balance.
	RESP Category = "resp"
	// TFSA is room-limited and has no ongoing tax drag.
	TFSA Category = "tfsa"
	// RRSP is room-limited and tax-deferred.
	RRSP Category = "rrsp"
	// Taxable absorbs whatever the limited categories do not.
	Taxable Category = "taxable"
)

// Categories lists every category in allocation order under the default policy.
var Categories = []Category{RESP, TFSA, RRSP, Taxable}

// RoomLimited lists the categories constrained by annual room.
var RoomLimited = []Category{TFSA, RRSP}

var categoryLabels = map[Category]string{
	RESP:    "RESP",
	TFSA:    "TFSA",
	RRSP:    "RRSP",
	Taxable: "Non-registered",
}

// ParseCategory resolves a user-supplied name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", invalid("category", "%q is not one of resp, tfsa, rrsp, taxable", s)
	}
	return c, nil
}

// Valid reports whether c belongs to the closed set of categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display name.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// IsRoomLimited reports whether c is paced by an annual room balance.
func (c Category) IsRoomLimited() bool {
	for _, r := range RoomLimited {
		if r == c {
			return true
		}
	}
	return false
}
