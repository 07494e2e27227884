package sync

import (
	"context"
	"log/slog"
	"slices"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// backfill propagates vulnerability tags along module↔machine relations: a module
// gains the tags of its related machines and a machine gains the tags of the
// modules relating to it. Both unions are computed from the tags the payloads
// carried, so the result does not depend on iteration order. Every parent whose
// own tags were recorded this run gets its link set written exactly once, as
// own ∪ related. It runs after both lanes joined.
func (r *run) backfill(ctx context.Context) {
	modulesOf := map[int][]int{}
	machinesOf := map[int][]int{}
	for _, moduleID := range sortedKeys(r.moduleMachines) {
		machineIDs := r.machineIDs(r.moduleMachines[moduleID])
		machinesOf[moduleID] = machineIDs
		for _, machineID := range machineIDs {
			modulesOf[machineID] = append(modulesOf[machineID], moduleID)
		}
	}

	grown := 0
	for _, moduleID := range sortedKeys(r.moduleTags) {
		if ctx.Err() != nil {
			return
		}
		if r.writeUnion(ctx, catalog.LinkModuleVulnerability, moduleID, r.moduleTags[moduleID], machinesOf[moduleID], r.machineTags) {
			grown++
		}
	}
	for _, machineID := range sortedKeys(r.machineTags) {
		if ctx.Err() != nil {
			return
		}
		if r.writeUnion(ctx, catalog.LinkMachineVulnerability, machineID, r.machineTags[machineID], modulesOf[machineID], r.moduleTags) {
			grown++
		}
	}

	slog.InfoContext(ctx, "Vulnerability back-fill completed", "grown_link_sets", grown)
}

// writeUnion unions own with the tags of every related parent and writes the
// result as the link set of parentID. It reports whether the union is larger than own.
func (r *run) writeUnion(
	ctx context.Context, kind catalog.LinkKind, parentID int, own, related []int, tagsOf map[int][]int,
) bool {
	set := make(map[int]struct{}, len(own))
	for _, id := range own {
		set[id] = struct{}{}
	}
	base := len(set)
	for _, relatedID := range related {
		for _, id := range tagsOf[relatedID] {
			set[id] = struct{}{}
		}
	}

	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	r.replaceLinks(ctx, kind, parentID, ids)
	return len(set) > base
}
