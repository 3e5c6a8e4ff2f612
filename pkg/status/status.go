// Package status records the outcome of each job so operators and the
// health check can see when a collection or dispatch last ran and whether
// it succeeded. Outcomes live in a single JSON file keyed by job name.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentstation/utc"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
)

// Outcome is the recorded result of one job run.
type Outcome struct {
	RanAt   string `json:"ranAt"`
	OK      bool   `json:"ok"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// Store persists job outcomes in a JSON file.
type Store struct {
	path string
}

// NewStore creates a status store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Record writes the outcome for a job, preserving outcomes of other jobs.
// The run timestamp is stamped here.
func (s *Store) Record(job string, ok bool, count int, message string) error {
	outcomes, err := s.All()
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	if outcomes == nil {
		outcomes = map[string]Outcome{}
	}

	outcomes[job] = Outcome{
		RanAt:   utc.Now().Time.In(constants.Location()).Format(constants.MetaTimeLayout),
		OK:      ok,
		Count:   count,
		Message: message,
	}
	return s.write(outcomes)
}

// Get returns the recorded outcome for a job.
func (s *Store) Get(job string) (Outcome, error) {
	outcomes, err := s.All()
	if err != nil {
		return Outcome{}, err
	}
	outcome, ok := outcomes[job]
	if !ok {
		return Outcome{}, errors.ErrNotFound
	}
	return outcome, nil
}

// All returns every recorded outcome. A missing file maps to ErrNotFound.
func (s *Store) All() (map[string]Outcome, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.path, err)
	}

	var outcomes map[string]Outcome
	if err := json.Unmarshal(data, &outcomes); err != nil {
		return nil, errors.WrapParse("json", s.path, err)
	}
	return outcomes, nil
}

// Jobs returns the recorded job names in sorted order.
func (s *Store) Jobs() ([]string, error) {
	outcomes, err := s.All()
	if err != nil {
		return nil, err
	}
	jobs := make([]string, 0, len(outcomes))
	for job := range outcomes {
		jobs = append(jobs, job)
	}
	sort.Strings(jobs)
	return jobs, nil
}

func (s *Store) write(outcomes map[string]Outcome) error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(s.path), err)
	}
	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	if err := os.WriteFile(s.path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}
