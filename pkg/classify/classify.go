// Package classify partitions the device population into the automatic view
// (clean direct matches) and the manual view (flagged, overridden or
// unresolved documents, grouped with every department observed for them).
package classify

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/relayops/fleetbridge/pkg/document"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/overrides"
	"github.com/relayops/fleetbridge/pkg/resolve"
)

// Reason explains why a document group was promoted to the manual view.
// A group can accumulate more than one.
type Reason string

// Promotion reasons.
const (
	// ReasonFlagged: the operator forced the document into manual mode.
	ReasonFlagged Reason = "flagged"
	// ReasonUnresolved: some (document, department) pair resolved to nothing.
	ReasonUnresolved Reason = "unresolved"
	// ReasonException: some (document, department) pair is served by an
	// override rule, so the document needs ongoing curation.
	ReasonException Reason = "exception"
)

// AutomaticEntry is one row of the automatic view: a document whose devices
// all resolve directly against the registry.
type AutomaticEntry struct {
	Document            string `json:"document"`
	DocumentNormalized  string `json:"documentNormalized"`
	CustomerName        string `json:"customerName"`
	CustomerID          int    `json:"customerId"`
	CustomerDescription string `json:"customerDescription"`
}

// DepartmentStatus tags a department row in a manual group.
type DepartmentStatus string

// Department statuses.
const (
	// StatusMapped: the department already resolves to a customer id.
	StatusMapped DepartmentStatus = "mapped"
	// StatusPending: the department still needs an operator decision.
	StatusPending DepartmentStatus = "pending"
)

// DepartmentEntry is one department observed under a manual document.
type DepartmentEntry struct {
	Department          string           `json:"department"`
	CustomerID          int              `json:"customerId,omitempty"`
	CustomerDescription string           `json:"customerDescription,omitempty"`
	Source              resolve.Source   `json:"source"`
	Status              DepartmentStatus `json:"status"`
}

// ManualGroup is one document promoted to the manual view, with every
// department observed for it and the reasons for the promotion.
type ManualGroup struct {
	Document           string            `json:"document"`
	DocumentNormalized string            `json:"documentNormalized"`
	CustomerName       string            `json:"customerName"`
	Reasons            []Reason          `json:"reasons"`
	Departments        []DepartmentEntry `json:"departments"`
}

// missingDepartment labels devices whose location carries no department.
const missingDepartment = "(sem departamento)"

// collator orders operator-facing names case-insensitively.
var collator = collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

// Partition runs the resolver over the full device population and splits the
// outcome into the automatic and manual views.
//
// Automatic view: one entry per document whose resolution is direct and which
// is not manually flagged; the first device seen for a document supplies the
// display name. Manual view: one group per promoted document carrying every
// department observed for it, each resolved independently and tagged
// mapped/pending. Devices without a parseable document appear in neither
// view; the caller reports them as data-quality issues.
func Partition(
	devices []inventory.Device,
	customers []inventory.TargetCustomer,
	exceptions []resolve.ExceptionRule,
	manualFlags overrides.ManualFlags,
) (automatic []AutomaticEntry, manual []ManualGroup) {
	automatic = buildAutomatic(devices, customers, exceptions, manualFlags)
	manual = buildManual(devices, customers, exceptions, manualFlags)
	return automatic, manual
}

func buildAutomatic(
	devices []inventory.Device,
	customers []inventory.TargetCustomer,
	exceptions []resolve.ExceptionRule,
	manualFlags overrides.ManualFlags,
) []AutomaticEntry {
	byDoc := make(map[string]AutomaticEntry)

	for _, dev := range devices {
		raw := dev.RawDocument()
		norm := document.Normalize(raw)
		if norm == "" {
			continue
		}
		if manualFlags.Contains(norm) {
			continue
		}
		if _, seen := byDoc[norm]; seen {
			continue
		}

		res := resolve.Resolve(raw, dev.Location.Department, customers, exceptions)
		if res.Source != resolve.SourceDirect {
			continue
		}

		byDoc[norm] = AutomaticEntry{
			Document:            raw,
			DocumentNormalized:  norm,
			CustomerName:        dev.Customer.Name,
			CustomerID:          res.CustomerID,
			CustomerDescription: res.CustomerDescription,
		}
	}

	list := make([]AutomaticEntry, 0, len(byDoc))
	for _, e := range byDoc {
		list = append(list, e)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return collator.CompareString(list[i].CustomerName, list[j].CustomerName) < 0
	})
	return list
}

// manualAccum is the per-document working state during manual grouping.
type manualAccum struct {
	document     string
	customerName string
	reasons      map[Reason]struct{}
	departments  map[string]DepartmentEntry
	order        []string
}

func buildManual(
	devices []inventory.Device,
	customers []inventory.TargetCustomer,
	exceptions []resolve.ExceptionRule,
	manualFlags overrides.ManualFlags,
) []ManualGroup {
	byDoc := make(map[string]*manualAccum)
	var docOrder []string

	for _, dev := range devices {
		raw := dev.RawDocument()
		norm := document.Normalize(raw)
		if norm == "" {
			continue
		}

		// Resolve with the department as reported; the placeholder is
		// display-only so an empty-department exception rule commits
		// here exactly as it does when building payloads.
		res := resolve.Resolve(raw, dev.Location.Department, customers, exceptions)

		deptLabel := dev.Location.Department
		if deptLabel == "" {
			deptLabel = missingDepartment
		}
		deptKey := document.NormalizeDepartment(deptLabel)

		acc, ok := byDoc[norm]
		if !ok {
			acc = &manualAccum{
				document:     raw,
				customerName: dev.Customer.Name,
				reasons:      make(map[Reason]struct{}),
				departments:  make(map[string]DepartmentEntry),
			}
			byDoc[norm] = acc
			docOrder = append(docOrder, norm)
		}

		if _, seen := acc.departments[deptKey]; !seen {
			status := StatusPending
			if res.CustomerID != 0 {
				status = StatusMapped
			}
			acc.departments[deptKey] = DepartmentEntry{
				Department:          deptLabel,
				CustomerID:          res.CustomerID,
				CustomerDescription: res.CustomerDescription,
				Source:              res.Source,
				Status:              status,
			}
			acc.order = append(acc.order, deptKey)
		}

		if manualFlags.Contains(norm) {
			acc.reasons[ReasonFlagged] = struct{}{}
		}
		switch res.Source {
		case resolve.SourceNone:
			acc.reasons[ReasonUnresolved] = struct{}{}
		case resolve.SourceException:
			acc.reasons[ReasonException] = struct{}{}
		}
		// A direct resolution alone never promotes a document; once promoted
		// for another reason, its direct departments are still listed.
	}

	var groups []ManualGroup
	for _, norm := range docOrder {
		acc := byDoc[norm]
		if len(acc.reasons) == 0 {
			continue
		}

		deps := make([]DepartmentEntry, 0, len(acc.departments))
		for _, key := range acc.order {
			deps = append(deps, acc.departments[key])
		}
		sort.SliceStable(deps, func(i, j int) bool {
			return collator.CompareString(deps[i].Department, deps[j].Department) < 0
		})

		groups = append(groups, ManualGroup{
			Document:           acc.document,
			DocumentNormalized: norm,
			CustomerName:       acc.customerName,
			Reasons:            sortedReasons(acc.reasons),
			Departments:        deps,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return collator.CompareString(groups[i].CustomerName, groups[j].CustomerName) < 0
	})
	return groups
}

// sortedReasons returns the reason set in a fixed display order.
func sortedReasons(set map[Reason]struct{}) []Reason {
	var out []Reason
	for _, r := range []Reason{ReasonFlagged, ReasonUnresolved, ReasonException} {
		if _, ok := set[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
