package session

import (
	"fmt"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/pricing"
)

// State is the serializable persisted form of a session: the selected
// instances, committed parameters and the override overlay. Reference data is
// not part of it, a restore re-resolves against the current catalog.
type State struct {
	Location  string
	Global    model.Env
	Instances []model.PackageInstance
	Overrides map[string]pricing.Override
	Wages     map[model.Role]float64
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Location:  s.location,
		Global:    s.global.Clone(),
		Instances: make([]model.PackageInstance, len(s.insts)),
		Overrides: make(map[string]pricing.Override, len(s.overlay)),
		Wages:     make(map[model.Role]float64, len(s.wages)),
	}
	for i, inst := range s.insts {
		st.Instances[i] = model.PackageInstance{
			ID:          inst.ID,
			PackageID:   inst.PackageID,
			LocalParams: inst.LocalParams.Clone(),
		}
	}
	for id, ov := range s.overlay {
		st.Overrides[id] = ov.Clone()
	}
	for r, w := range s.wages {
		st.Wages[r] = w
	}
	return st
}

// Restore replaces the session state and recalculates. Instances referencing
// packages missing from the current catalog are rejected wholesale, the
// previous state stays committed.
func (s *Session) Restore(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range st.Instances {
		if _, ok := s.catalog.Packages[inst.PackageID]; !ok {
			return fmt.Errorf("state references unknown package %q", inst.PackageID)
		}
	}
	s.global = s.catalog.GlobalDefaults().Merge(st.Global)
	s.insts = make([]model.PackageInstance, len(st.Instances))
	for i, inst := range st.Instances {
		s.insts[i] = model.PackageInstance{
			ID:          inst.ID,
			PackageID:   inst.PackageID,
			LocalParams: inst.LocalParams.Clone(),
		}
	}
	s.overlay = make(map[string]pricing.Override, len(st.Overrides))
	for id, ov := range st.Overrides {
		if !ov.Empty() {
			s.overlay[id] = ov.Clone()
		}
	}
	s.wages = make(map[model.Role]float64, len(st.Wages))
	for r, w := range st.Wages {
		s.wages[r] = w
	}
	s.recalcLocked()
	return nil
}
