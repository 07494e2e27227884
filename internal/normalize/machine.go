package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Machine normalizes a labs machine profile payload. webBase is the public labs site root.
func Machine(payload []byte, webBase string) (*catalog.Machine, error) {
	obj := unwrap(payload)
	if !obj.IsObject() {
		return nil, malformed(catalog.EntityMachine, 0, "expected an object")
	}

	id, ok := intValue(obj.Get("id"))
	if !ok {
		return nil, malformed(catalog.EntityMachine, 0, "missing or invalid id")
	}
	name := stringValue(obj.Get("name"))
	if name == "" {
		return nil, malformed(catalog.EntityMachine, id, "missing name")
	}

	text := label(firstOf(obj, "difficultyText", "difficulty"))
	difficulty, ok := matchLabel(text, catalog.MachineDifficulties)
	if !ok {
		return nil, reject(catalog.EntityMachine, id, fmt.Errorf("%w %q", ErrUnknownDifficulty, text))
	}

	return &catalog.Machine{
		ID:         id,
		Name:       name,
		Synopsis:   optionalString(firstOf(obj, "synopsis", "description")),
		Difficulty: difficulty,
		OS:         operatingSystem(label(obj.Get("os"))),
		URL:        fmt.Sprintf("%s/machines/%s", strings.TrimSuffix(webBase, "/"), url.PathEscape(name)),
		Image:      optionalString(firstOf(obj, "avatar", "image")),
	}, nil
}

func operatingSystem(text string) catalog.OS {
	if os, ok := matchLabel(text, catalog.KnownOS); ok {
		return os
	}
	return catalog.OSOther
}

// MachineTags partitions a machine tag list by category. Tags in unknown
// categories are ignored, and vulnerability tags without an id or a name are dropped.
func MachineTags(payload []byte) (catalog.TagSet, error) {
	list := unwrap(payload)
	if list.IsObject() {
		list = firstOf(list, "tags", "items")
	}
	if !list.IsArray() {
		return catalog.TagSet{}, malformed(catalog.EntityVulnerability, 0, "machine tags must be a list")
	}

	tags := catalog.TagSet{
		Vulnerabilities: []catalog.Vulnerability{},
		Languages:       []string{},
		Areas:           []string{},
	}
	seenVuln := map[int]struct{}{}
	seenLang := map[string]struct{}{}
	seenArea := map[string]struct{}{}

	list.ForEach(func(_, item gjson.Result) bool {
		name := stringValue(item.Get("name"))
		switch strings.ToLower(label(firstOf(item, "category", "type"))) {
		case "vulnerability":
			id, ok := intValue(item.Get("id"))
			if !ok {
				return true
			}
			tags.Vulnerabilities = appendVulnerability(tags.Vulnerabilities, seenVuln, id, name)
		case "language":
			tags.Languages = appendLabel(tags.Languages, seenLang, name)
		case "area of interest":
			tags.Areas = appendLabel(tags.Areas, seenArea, name)
		}
		return true
	})

	return tags, nil
}

func appendLabel(labels []string, seen map[string]struct{}, name string) []string {
	if name == "" {
		return labels
	}
	if _, dup := seen[name]; dup {
		return labels
	}
	seen[name] = struct{}{}
	return append(labels, name)
}
