// Package resolve implements identity resolution: deciding which target
// platform customer owns a device, given the device's tax id and department.
//
// Resolution is a pure function of its inputs and runs in three tiers,
// short-circuiting: manually curated exception rules first, then a direct
// tax-id match against the customer registry, then unresolved.
package resolve

import (
	"github.com/relayops/fleetbridge/pkg/document"
	"github.com/relayops/fleetbridge/pkg/inventory"
)

// Source identifies which tier produced a resolution.
type Source string

// Resolution sources.
const (
	// SourceException means a curated override rule committed.
	SourceException Source = "exception"
	// SourceDirect means the tax id matched a registry customer exactly.
	SourceDirect Source = "direct"
	// SourceNone means no tier produced an owner.
	SourceNone Source = "none"
)

// ExceptionRule is a manually authored override associating a specific
// (document, department) pair with a fixed target customer. Rules exist
// because tax ids are sometimes ambiguous, duplicated across branches, or
// absent from the registry.
type ExceptionRule struct {
	Document            string `json:"document" yaml:"document"`
	DepartmentMatch     string `json:"departmentMatch" yaml:"departmentMatch"`
	CustomerID          int    `json:"customerId" yaml:"customerId"`
	CustomerDescription string `json:"customerDescription" yaml:"customerDescription"`
}

// Result is the outcome of resolving one (document, department) pair.
// CustomerID is zero when Source is SourceNone.
type Result struct {
	CustomerID          int
	CustomerDescription string
	Source              Source
}

// none is the unresolved result.
var none = Result{Source: SourceNone}

// Resolve maps a device's raw tax id and department to the owning target
// customer.
//
// Exception rules are scanned in stored order and the FIRST rule whose
// normalized document equals the input decides the exception tier: it commits
// when its department also matches (case-insensitive, trimmed), and otherwise
// resolution falls through to direct matching without consulting later rules
// for the same document. Keeping that first-match-wins contract is
// deliberate; see the package tests pinning the fallthrough.
//
// An input whose normalized document is empty resolves to none without
// scanning anything, so two records that both lack a document never match
// each other.
func Resolve(rawDocument, department string, customers []inventory.TargetCustomer, exceptions []ExceptionRule) Result {
	doc := document.Normalize(rawDocument)
	if doc == "" {
		return none
	}
	dept := document.NormalizeDepartment(department)

	for _, rule := range exceptions {
		if document.Normalize(rule.Document) != doc {
			continue
		}
		if document.NormalizeDepartment(rule.DepartmentMatch) == dept {
			return Result{
				CustomerID:          rule.CustomerID,
				CustomerDescription: rule.CustomerDescription,
				Source:              SourceException,
			}
		}
		// First document match wins even when its department does not;
		// later rules for the same document are never consulted.
		break
	}

	for _, c := range customers {
		if c.ID == 0 {
			continue
		}
		if document.Normalize(c.TaxID) == doc {
			return Result{
				CustomerID:          c.ID,
				CustomerDescription: c.Description,
				Source:              SourceDirect,
			}
		}
	}

	return none
}
