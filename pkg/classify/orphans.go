package classify

import (
	"github.com/relayops/fleetbridge/pkg/document"
	"github.com/relayops/fleetbridge/pkg/inventory"
)

// Orphan is a target equipment record with no counterpart in the source
// snapshot. Orphans are surfaced for operator review; the sync never deletes
// target records on its own.
type Orphan struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Identifier           string `json:"identifier"`
	CategoryID           int    `json:"categoryId"`
	AssociatedCustomerID int    `json:"associatedCustomerId"`
}

// Orphans compares the target equipment snapshot against the source device
// snapshot by normalized serial and returns the records only the target
// knows about, plus the number of comparable records checked. Equipment
// without an identifier cannot be compared and is skipped.
func Orphans(equipment []inventory.TargetEquipment, devices []inventory.Device) (orphans []Orphan, checked int) {
	serials := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		if sn := document.NormalizeSerial(d.SerialNumber); sn != "" {
			serials[sn] = struct{}{}
		}
	}

	for _, e := range equipment {
		checked++
		sn := document.NormalizeSerial(e.Identifier)
		if sn == "" {
			continue
		}
		if _, ok := serials[sn]; ok {
			continue
		}
		orphans = append(orphans, Orphan{
			ID:                   e.ID,
			Name:                 e.Name,
			Identifier:           sn,
			CategoryID:           e.CategoryID,
			AssociatedCustomerID: e.AssociatedCustomerID,
		})
	}
	return orphans, checked
}
