package orders

import (
	"strings"
	"time"

	"gastino/internal/models"
)

// Department resolution for orders. A department is picked per item bucket:
// an explicit hint from the guest wins, then the food/beverage naming
// convention, then the tenant's first active department by position.

var kitchenNames = []string{"kitchen", "küche", "kueche", "cucina", "restaurant", "food"}

var barNames = []string{"bar", "beverage", "drinks", "getränke", "getraenke", "bevande"}

var drinkKeywords = []string{
	"beer", "bier", "birra",
	"wine", "wein", "vino", "prosecco", "spumante",
	"spritz", "aperol", "negroni", "cocktail", "gin", "rum", "vodka",
	"cola", "coke", "fanta", "soda", "limonade", "lemonade",
	"water", "wasser", "acqua",
	"juice", "saft", "succo",
	"coffee", "kaffee", "caffè", "caffe", "cappuccino", "espresso", "latte",
	"tea", "tee", "tè",
}

func nameMatches(d *models.Department, names []string) bool {
	label := strings.ToLower(d.Name + " " + d.DisplayName)
	for _, n := range names {
		if strings.Contains(label, n) {
			return true
		}
	}
	return false
}

// isDrink classifies an item name for the food/beverage split.
func isDrink(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range drinkKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// orderable lists active non-escalation departments, preserving the tenant's
// position order.
func orderable(snap *models.TenantSnapshot) []*models.Department {
	var out []*models.Department
	for i := range snap.Departments {
		d := &snap.Departments[i]
		if d.Active && !d.IsEscalation {
			out = append(out, d)
		}
	}
	return out
}

// matchHint resolves a classifier department hint against the tenant's
// departments by id or name. When several departments match the name, the
// first in the tenant's position order wins.
func matchHint(snap *models.TenantSnapshot, hint string) *models.Department {
	if hint == "" {
		return nil
	}
	lower := strings.ToLower(hint)

	var match *models.Department
	for _, d := range orderable(snap) {
		if d.ID == hint {
			return d
		}
		if match == nil &&
			(strings.Contains(strings.ToLower(d.Name), lower) || strings.Contains(strings.ToLower(d.DisplayName), lower)) {
			match = d
		}
	}
	return match
}

func findByNames(snap *models.TenantSnapshot, names []string) *models.Department {
	for _, d := range orderable(snap) {
		if nameMatches(d, names) {
			return d
		}
	}
	return nil
}

// firstByPosition is the deterministic default when nothing else selects a
// department. Departments share snapshot order (position, then name), so ties
// resolve the same way on every call.
func firstByPosition(snap *models.TenantSnapshot) *models.Department {
	depts := orderable(snap)
	if len(depts) == 0 {
		return nil
	}
	return depts[0]
}

// resolveOpen walks a department's fallback chain looking for one that is
// inside service hours. When the whole chain is closed the original
// department keeps the order, marked queued.
func resolveOpen(snap *models.TenantSnapshot, dept *models.Department, now time.Time, loc *time.Location) (*models.Department, bool) {
	local := now.In(loc)
	seen := map[string]bool{}
	for cur := dept; cur != nil && !seen[cur.ID]; {
		if cur.IsOpenAt(local) {
			return cur, false
		}
		seen[cur.ID] = true
		next := snap.DepartmentByID(cur.FallbackDeptID)
		if next == nil || !next.Active || next.IsEscalation {
			break
		}
		cur = next
	}
	return dept, true
}
