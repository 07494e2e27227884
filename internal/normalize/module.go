package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// ModuleRecord is a normalized module together with everything its payload carries
type ModuleRecord struct {
	Module          catalog.Module
	Units           []catalog.Unit
	Vulnerabilities []catalog.Vulnerability
	RelatedMachines []catalog.MachineRef
}

// Module normalizes an academy module payload. webBase is the public academy
// site root used when the payload carries no canonical URL.
func Module(payload []byte, webBase string) (*ModuleRecord, error) {
	obj := unwrap(payload)
	if !obj.IsObject() {
		return nil, malformed(catalog.EntityModule, 0, "expected an object")
	}

	id, ok := intValue(obj.Get("id"))
	if !ok {
		return nil, malformed(catalog.EntityModule, 0, "missing or invalid id")
	}
	name := stringValue(firstOf(obj, "name", "title"))
	if name == "" {
		return nil, malformed(catalog.EntityModule, id, "missing name")
	}

	text := label(obj.Get("difficulty"))
	difficulty, ok := matchLabel(text, catalog.ModuleDifficulties)
	if !ok {
		return nil, reject(catalog.EntityModule, id, fmt.Errorf("%w %q", ErrUnknownDifficulty, text))
	}

	units, err := moduleUnits(obj, id)
	if err != nil {
		return nil, err
	}

	url := stringValue(obj.Get("url"))
	if url == "" {
		url = fmt.Sprintf("%s/module/%d", strings.TrimSuffix(webBase, "/"), id)
	}

	return &ModuleRecord{
		Module: catalog.Module{
			ID:          id,
			Name:        name,
			Description: optionalString(firstOf(obj, "description", "summary")),
			Difficulty:  difficulty,
			URL:         url,
			Image:       optionalString(firstOf(obj, "image", "logo", "avatar")),
		},
		Units:           units,
		Vulnerabilities: vulnerabilities(obj.Get("tags")),
		RelatedMachines: machineRefs(firstOf(obj, "related_machines", "machines")),
	}, nil
}

type rawUnit struct {
	unit    catalog.Unit
	page    int
	hasPage bool
}

// moduleUnits reads the unit list and assigns dense sequences: units are stably
// sorted by integer page, units without a usable page go last, then numbered 1..n
func moduleUnits(obj gjson.Result, moduleID int) ([]catalog.Unit, error) {
	list := firstOf(obj, "sections", "units")
	if !list.Exists() {
		return []catalog.Unit{}, nil
	}
	if !list.IsArray() {
		return nil, malformed(catalog.EntityModule, moduleID, "units must be a list")
	}

	var raws []rawUnit
	var bad error
	list.ForEach(func(_, item gjson.Result) bool {
		id, ok := intValue(item.Get("id"))
		if !ok {
			bad = malformed(catalog.EntityModule, moduleID, "unit without id")
			return false
		}
		unitType := catalog.UnitArticle
		if item.Get("type").String() == "interactive" {
			unitType = catalog.UnitInteractive
		}
		page, hasPage := pageValue(item.Get("page"))
		raws = append(raws, rawUnit{
			unit: catalog.Unit{
				ID:       id,
				ModuleID: moduleID,
				Name:     stringValue(firstOf(item, "title", "name")),
				Type:     unitType,
			},
			page:    page,
			hasPage: hasPage,
		})
		return true
	})
	if bad != nil {
		return nil, bad
	}

	sort.SliceStable(raws, func(i, j int) bool {
		a, b := raws[i], raws[j]
		if a.hasPage != b.hasPage {
			return a.hasPage
		}
		return a.hasPage && a.page < b.page
	})

	units := make([]catalog.Unit, 0, len(raws))
	seen := make(map[int]struct{}, len(raws))
	for _, r := range raws {
		if _, dup := seen[r.unit.ID]; dup {
			continue
		}
		seen[r.unit.ID] = struct{}{}
		r.unit.Sequence = len(units) + 1
		units = append(units, r.unit)
	}
	return units, nil
}

// pageValue accepts any integer page, including zero and negatives
func pageValue(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num != float64(int(r.Num)) {
			return 0, false
		}
		return int(r.Num), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// vulnerabilities reads a tag list of {id, name} objects, skipping entries without
// an id or a name
func vulnerabilities(list gjson.Result) []catalog.Vulnerability {
	out := []catalog.Vulnerability{}
	seen := map[int]struct{}{}
	list.ForEach(func(_, item gjson.Result) bool {
		id, ok := intValue(item.Get("id"))
		if !ok {
			return true
		}
		out = appendVulnerability(out, seen, id, stringValue(item.Get("name")))
		return true
	})
	return out
}

// appendVulnerability adds a tag once per id. A nameless tag would blank the stored
// name of the vulnerability, so it is dropped.
func appendVulnerability(vulns []catalog.Vulnerability, seen map[int]struct{}, id int, name string) []catalog.Vulnerability {
	if name == "" {
		return vulns
	}
	if _, dup := seen[id]; dup {
		return vulns
	}
	seen[id] = struct{}{}
	return append(vulns, catalog.Vulnerability{ID: id, Name: name})
}

// machineRefs reads related machines given as bare ids, names, or {id, name} objects
func machineRefs(list gjson.Result) []catalog.MachineRef {
	out := []catalog.MachineRef{}
	seen := map[string]struct{}{}
	list.ForEach(func(_, item gjson.Result) bool {
		var ref catalog.MachineRef
		switch {
		case item.IsObject():
			ref.ID, _ = intValue(item.Get("id"))
			ref.Name = stringValue(item.Get("name"))
		case item.Type == gjson.Number:
			ref.ID, _ = intValue(item)
		default:
			ref.Name = stringValue(item)
		}
		if ref.ID == 0 && ref.Name == "" {
			return true
		}
		if _, dup := seen[ref.Key()]; dup {
			return true
		}
		seen[ref.Key()] = struct{}{}
		out = append(out, ref)
		return true
	})
	return out
}
