// Package overrides persists the operator-curated state that survives
// collection cycles: exception rules and manual-mode flags. Both live as
// hand-editable YAML files under the data directory.
package overrides

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/document"
	"github.com/relayops/fleetbridge/pkg/errors"
	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/resolve"
)

// LoadExceptions reads the exception rules file. A missing file is an empty
// rule set, not an error.
func LoadExceptions(path string) ([]resolve.ExceptionRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var rules []resolve.ExceptionRule
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return rules, nil
}

// SaveExceptions writes the full rule list back, creating the parent
// directory as needed.
func SaveExceptions(path string, rules []resolve.ExceptionRule) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// UpsertException adds a rule or overwrites the existing rule with the same
// (normalized document, department) key. The customer description is filled
// in from the registry snapshot when the customer is known there.
func UpsertException(path string, rule resolve.ExceptionRule, customers []inventory.TargetCustomer) error {
	if document.Normalize(rule.Document) == "" || rule.DepartmentMatch == "" || rule.CustomerID == 0 {
		return &errors.ConfigError{Component: "exceptions", Message: "document, department and customer id are all required"}
	}

	if rule.CustomerDescription == "" {
		for _, c := range customers {
			if c.ID == rule.CustomerID {
				rule.CustomerDescription = c.Description
				break
			}
		}
	}

	rules, err := LoadExceptions(path)
	if err != nil {
		return err
	}

	doc := document.Normalize(rule.Document)
	dept := document.NormalizeDepartment(rule.DepartmentMatch)

	replaced := false
	for i := range rules {
		if document.Normalize(rules[i].Document) == doc &&
			document.NormalizeDepartment(rules[i].DepartmentMatch) == dept {
			rules[i].CustomerID = rule.CustomerID
			rules[i].CustomerDescription = rule.CustomerDescription
			replaced = true
			break
		}
	}
	if !replaced {
		rules = append(rules, rule)
	}

	return SaveExceptions(path, rules)
}

// ManualFlags is the set of normalized documents forced into manual review.
type ManualFlags map[string]struct{}

// Contains reports whether the normalized document is flagged.
func (m ManualFlags) Contains(normalizedDoc string) bool {
	_, ok := m[normalizedDoc]
	return ok
}

// List returns the flagged documents in sorted order.
func (m ManualFlags) List() []string {
	out := make([]string, 0, len(m))
	for doc := range m {
		out = append(out, doc)
	}
	sort.Strings(out)
	return out
}

// LoadManualFlags reads the manual-flag file, normalizing and deduplicating
// entries. A missing file is an empty set.
func LoadManualFlags(path string) (ManualFlags, error) {
	flags := make(ManualFlags)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return flags, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var docs []string
	if err := yaml.Unmarshal(raw, &docs); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	for _, d := range docs {
		if norm := document.Normalize(d); norm != "" {
			flags[norm] = struct{}{}
		}
	}
	return flags, nil
}

// SaveManualFlags writes the flag set back as a sorted list.
func SaveManualFlags(path string, flags ManualFlags) error {
	data, err := yaml.Marshal(flags.List())
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// SetManualFlag adds or removes a document from the manual set. The raw
// document is normalized first; an unparseable document is rejected.
func SetManualFlag(path, rawDocument string, manual bool) error {
	norm := document.Normalize(rawDocument)
	if norm == "" {
		return &errors.ConfigError{Component: "manual-flags", Message: "document has no digits"}
	}

	flags, err := LoadManualFlags(path)
	if err != nil {
		return err
	}

	if manual {
		flags[norm] = struct{}{}
	} else {
		delete(flags, norm)
	}

	return SaveManualFlags(path, flags)
}
