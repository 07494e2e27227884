// Package memory provides an in-process implementation of the storage gateway,
// used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/storage"
)

// Gateway keeps the catalog in maps guarded by a mutex
type Gateway struct {
	mu       sync.RWMutex
	modules  map[int]catalog.Module
	units    map[int]catalog.Unit
	machines map[int]catalog.Machine
	exams    map[int]catalog.Exam
	vulns    map[int]catalog.Vulnerability
	links    map[catalog.LinkKind]map[int]map[int]struct{}
	labels   map[catalog.LabelKind]map[int][]string
	changes  int
}

var _ storage.Gateway = (*Gateway)(nil)

// NewGateway creates an empty in-memory gateway
func NewGateway() *Gateway {
	g := &Gateway{
		modules:  map[int]catalog.Module{},
		units:    map[int]catalog.Unit{},
		machines: map[int]catalog.Machine{},
		exams:    map[int]catalog.Exam{},
		vulns:    map[int]catalog.Vulnerability{},
		links:    map[catalog.LinkKind]map[int]map[int]struct{}{},
		labels:   map[catalog.LabelKind]map[int][]string{},
	}
	for _, kind := range catalog.LinkKinds {
		g.links[kind] = map[int]map[int]struct{}{}
	}
	return g
}

func upsert[T any](g *Gateway, m map[int]T, id int, v T) {
	if cur, ok := m[id]; ok && reflect.DeepEqual(cur, v) {
		return
	}
	m[id] = v
	g.changes++
}

// UpsertModule creates or refreshes a module
func (g *Gateway) UpsertModule(_ context.Context, m catalog.Module) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	upsert(g, g.modules, m.ID, m)
	return nil
}

// UpsertMachine creates or refreshes a machine
func (g *Gateway) UpsertMachine(_ context.Context, m catalog.Machine) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	upsert(g, g.machines, m.ID, m)
	return nil
}

// UpsertExam creates or refreshes an exam
func (g *Gateway) UpsertExam(_ context.Context, e catalog.Exam) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	upsert(g, g.exams, e.ID, e)
	return nil
}

// UpsertVulnerability creates or refreshes a vulnerability
func (g *Gateway) UpsertVulnerability(_ context.Context, v catalog.Vulnerability) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	upsert(g, g.vulns, v.ID, v)
	return nil
}

// ReplaceUnits makes units the complete unit set of the module
func (g *Gateway) ReplaceUnits(_ context.Context, moduleID int, units []catalog.Unit) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.modules[moduleID]; !ok {
		return fmt.Errorf("module %d: %w", moduleID, storage.ErrParentNotFound)
	}

	keep := make(map[int]struct{}, len(units))
	sequences := make(map[int]struct{}, len(units))
	for _, u := range units {
		if _, dup := sequences[u.Sequence]; dup {
			return fmt.Errorf("module %d: duplicate unit sequence %d", moduleID, u.Sequence)
		}
		sequences[u.Sequence] = struct{}{}
		keep[u.ID] = struct{}{}
	}

	for id, u := range g.units {
		if _, ok := keep[id]; u.ModuleID == moduleID && !ok {
			delete(g.units, id)
			g.changes++
		}
	}
	for _, u := range units {
		u.ModuleID = moduleID
		upsert(g, g.units, u.ID, u)
	}
	return nil
}

// ReplaceLinks makes childIDs the complete link set of the parent, skipping unknown children
func (g *Gateway) ReplaceLinks(_ context.Context, kind catalog.LinkKind, parentID int, childIDs []int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parents, ok := g.links[kind]
	if !ok {
		return 0, fmt.Errorf("unknown link kind %q", kind)
	}
	if !g.exists(kind.Parent(), parentID) {
		return 0, fmt.Errorf("%s %d: %w", kind.Parent(), parentID, storage.ErrParentNotFound)
	}

	next := map[int]struct{}{}
	for _, id := range childIDs {
		if g.exists(kind.Child(), id) {
			next[id] = struct{}{}
		}
	}

	if !sameSet(parents[parentID], next) {
		g.changes++
	}
	if len(next) == 0 {
		delete(parents, parentID)
	} else {
		parents[parentID] = next
	}
	return len(next), nil
}

// ReplaceLabels makes labels the complete label set of the given kind for a machine
func (g *Gateway) ReplaceLabels(_ context.Context, machineID int, kind catalog.LabelKind, labels []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.machines[machineID]; !ok {
		return fmt.Errorf("machine %d: %w", machineID, storage.ErrParentNotFound)
	}

	next := slices.Clone(labels)
	sort.Strings(next)
	next = slices.Compact(next)

	byMachine, ok := g.labels[kind]
	if !ok {
		byMachine = map[int][]string{}
		g.labels[kind] = byMachine
	}
	if slices.Equal(byMachine[machineID], next) {
		return nil
	}
	g.changes++
	if len(next) == 0 {
		delete(byMachine, machineID)
	} else {
		byMachine[machineID] = next
	}
	return nil
}

func (g *Gateway) exists(kind catalog.EntityKind, id int) bool {
	var ok bool
	switch kind {
	case catalog.EntityModule:
		_, ok = g.modules[id]
	case catalog.EntityMachine:
		_, ok = g.machines[id]
	case catalog.EntityExam:
		_, ok = g.exams[id]
	case catalog.EntityVulnerability:
		_, ok = g.vulns[id]
	}
	return ok
}

func sameSet(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
