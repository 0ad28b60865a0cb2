// internal/app/scheduling/directory.go
package scheduling

import (
	"sort"

	"github.com/dalemusser/guardduty/internal/domain/models"
)

// directory is the user id -> user mapping, remembering join order.
// It is not safe for concurrent use; Service guards it.
type directory struct {
	order []string
	byID  map[string]models.User
}

func newDirectory(users []models.User) *directory {
	d := &directory{byID: make(map[string]models.User, len(users))}
	for _, u := range users {
		d.put(u)
	}
	return d
}

func (d *directory) get(id string) (models.User, bool) {
	u, ok := d.byID[id]
	return u, ok
}

// put inserts or replaces u. A new id joins at the end of the order; an
// existing id keeps its place.
func (d *directory) put(u models.User) {
	if _, ok := d.byID[u.ID]; !ok {
		d.order = append(d.order, u.ID)
	}
	d.byID[u.ID] = u
}

func (d *directory) list() []models.User {
	out := make([]models.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id])
	}
	return out
}

func (d *directory) len() int { return len(d.order) }

// findByCode returns the user holding code, skipping excludeID.
func (d *directory) findByCode(code, excludeID string) (models.User, bool) {
	for _, id := range d.order {
		u := d.byID[id]
		if u.ID != excludeID && u.SecretCode == code {
			return u, true
		}
	}
	return models.User{}, false
}

func (d *directory) codeInUse(code string) bool {
	for _, u := range d.byID {
		if u.SecretCode == code {
			return true
		}
	}
	return false
}

// sortedKeys returns the ledger's date keys in chronological order, which is
// the ledger's iteration order everywhere in the package.
func sortedKeys(ledger map[string]models.Reservation) []string {
	keys := make([]string, 0, len(ledger))
	for k := range ledger {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// snapshotOf is the denormalized copy stored inside a reservation. The secret
// code is left out so stale codes are never written next to reservations.
func snapshotOf(u models.User) models.User {
	u.SecretCode = ""
	return u
}
