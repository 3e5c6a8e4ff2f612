// Package envelope reads and writes the JSON files the system exchanges with
// its collectors and operators: collection snapshots, generated payload files
// and audit reports. Each collaborator wraps its list slightly differently;
// the accepted shapes are unwrapped here, once, at the boundary, so the core
// packages never sniff payload structure themselves.
package envelope

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
)

// Meta describes a written file: where the data came from and how much of it
// there is. FetchedAt is set on collection snapshots, GeneratedAt on
// produced payload files and reports.
type Meta struct {
	Source      string `json:"source,omitempty"`
	FetchedAt   string `json:"fetchedAt,omitempty"`
	GeneratedAt string `json:"generatedAt,omitempty"`
	Count       int    `json:"count"`
	Checked     int    `json:"checked,omitempty"`
}

// Snapshot is the on-disk shape of a collection snapshot:
// {meta, data:{count, data:[...]}}.
type Snapshot[T any] struct {
	Meta Meta    `json:"meta"`
	Data List[T] `json:"data"`
}

// List is the inner count+data pair of a snapshot.
type List[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}

// Generated is the on-disk shape of a produced file: {meta, data:[...]}.
type Generated[T any] struct {
	Meta Meta `json:"meta"`
	Data []T  `json:"data"`
}

// stamp renders the current instant in the display zone.
func stamp() string {
	return utc.Now().Time.In(constants.Location()).Format(constants.MetaTimeLayout)
}

// WriteSnapshot writes a collection snapshot for the named collaborator.
func WriteSnapshot[T any](path, source string, items []T) error {
	snap := Snapshot[T]{
		Meta: Meta{Source: source, FetchedAt: stamp(), Count: len(items)},
		Data: List[T]{Count: len(items), Data: items},
	}
	return writeJSON(path, snap)
}

// WriteGenerated writes a produced payload file.
func WriteGenerated[T any](path string, items []T) error {
	gen := Generated[T]{
		Meta: Meta{GeneratedAt: stamp(), Count: len(items)},
		Data: items,
	}
	return writeJSON(path, gen)
}

// Document is the on-disk shape of a single-object report.
type Document[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// WriteDocument writes a single-object report.
func WriteDocument[T any](path, source string, count int, data T) error {
	doc := Document[T]{
		Meta: Meta{Source: source, GeneratedAt: stamp(), Count: count},
		Data: data,
	}
	return writeJSON(path, doc)
}

// ReadDocument reads a single-object report back.
func ReadDocument[T any](path string) (Document[T], error) {
	var doc Document[T]
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, &errors.IOError{Operation: "read", Path: path, Message: "snapshot missing", Err: errors.ErrSnapshotMissing}
		}
		return doc, errors.WrapIO("read", path, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, errors.WrapParse("json", path, err)
	}
	return doc, nil
}

// WriteReport writes an audit report, recording how many records were
// examined alongside the findings.
func WriteReport[T any](path, source string, checked int, items []T) error {
	gen := Generated[T]{
		Meta: Meta{Source: source, GeneratedAt: stamp(), Count: len(items), Checked: checked},
		Data: items,
	}
	return writeJSON(path, gen)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// ReadList reads a file and unwraps its inner list. A missing file yields
// ErrSnapshotMissing so callers can distinguish "not collected yet" from a
// malformed file.
func ReadList[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.IOError{Operation: "read", Path: path, Message: "snapshot missing", Err: errors.ErrSnapshotMissing}
		}
		return nil, errors.WrapIO("read", path, err)
	}

	items, err := Unwrap[T](raw)
	if err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return items, nil
}

// Unwrap decodes the inner list of a wrapped payload. The accepted shapes,
// in precedence order, cover every collaborator format:
//
//	{"data": {"data": [...]}}        collection snapshots
//	{"data": {"entityList": [...]}}  target platform pages saved verbatim
//	{"data": [...]}                  generated payload files
//	[...]                            bare lists
func Unwrap[T any](raw []byte) ([]T, error) {
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &outer); err == nil && len(outer.Data) > 0 {
		var inner struct {
			Data       json.RawMessage `json:"data"`
			EntityList json.RawMessage `json:"entityList"`
		}
		if err := json.Unmarshal(outer.Data, &inner); err == nil {
			if len(inner.Data) > 0 {
				return decodeList[T](inner.Data)
			}
			if len(inner.EntityList) > 0 {
				return decodeList[T](inner.EntityList)
			}
		}
		return decodeList[T](outer.Data)
	}

	return decodeList[T](raw)
}

func decodeList[T any](raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
