//Package stub caches intermediate results of an analysis run on disk, so a rerun over the same video can skip recomputing them
package stub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/hoopevents/pkg/utils"
	"github.com/cyclopcam/logs"
)

//Store reads and writes named stubs as JSON files inside a single directory
type Store struct {
	log logs.Log
	dir string
}

func NewStore(log logs.Log, dir string) *Store {
	return &Store{log: log, dir: filepath.Clean(dir)}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

//Save writes v under given name, creating the store directory if needed
func (s *Store) Save(name string, v interface{}) error {
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("stub.Save: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stub.Save: Could not encode '%s', got '%w'", name, err)
	}

	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("stub.Save: Could not write '%s', got '%w'", s.path(name), err)
	}

	return nil
}

//Read loads the stub saved under given name into v. It returns false if there is no such stub.
//A stub that cannot be decoded is removed and reported as missing, it will be regenerated by the caller.
func (s *Store) Read(name string, v interface{}) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stub.Read: Could not read '%s', got '%w'", s.path(name), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warnf("stub.Read: Could not decode stub '%s', got '%v'. Removing it", s.path(name), err)
		if err := os.Remove(s.path(name)); err != nil {
			s.log.Warnf("stub.Read: Could not remove '%s', got '%v'", s.path(name), err)
		}
		return false, nil
	}

	return true, nil
}

//Remove deletes the stub saved under given name, a missing stub is not an error
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stub.Remove: Could not remove '%s', got '%w'", s.path(name), err)
	}
	return nil
}
