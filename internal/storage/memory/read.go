package memory

import (
	"sort"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Module returns a stored module
func (g *Gateway) Module(id int) (catalog.Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.modules[id]
	return m, ok
}

// Machine returns a stored machine
func (g *Gateway) Machine(id int) (catalog.Machine, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.machines[id]
	return m, ok
}

// Exam returns a stored exam
func (g *Gateway) Exam(id int) (catalog.Exam, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.exams[id]
	return e, ok
}

// Vulnerability returns a stored vulnerability
func (g *Gateway) Vulnerability(id int) (catalog.Vulnerability, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vulns[id]
	return v, ok
}

// Units returns the units of a module ordered by sequence
func (g *Gateway) Units(moduleID int) []catalog.Unit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	units := []catalog.Unit{}
	for _, u := range g.units {
		if u.ModuleID == moduleID {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Sequence < units[j].Sequence })
	return units
}

// Links returns the sorted child ids linked to a parent
func (g *Gateway) Links(kind catalog.LinkKind, parentID int) []int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := []int{}
	for id := range g.links[kind][parentID] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Labels returns the sorted labels of the given kind for a machine
func (g *Gateway) Labels(machineID int, kind catalog.LabelKind) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string{}, g.labels[kind][machineID]...)
}

// Changes returns how many writes modified the store. Writes of identical data are not counted.
func (g *Gateway) Changes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.changes
}

// Counts returns the number of stored entities per kind
func (g *Gateway) Counts() map[catalog.EntityKind]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	links := 0
	for _, parents := range g.links {
		for _, children := range parents {
			links += len(children)
		}
	}
	return map[catalog.EntityKind]int{
		catalog.EntityModule:        len(g.modules),
		catalog.EntityUnit:          len(g.units),
		catalog.EntityMachine:       len(g.machines),
		catalog.EntityExam:          len(g.exams),
		catalog.EntityVulnerability: len(g.vulns),
		catalog.EntityLink:          links,
	}
}
