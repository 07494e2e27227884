package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Exams normalizes the exam list. Each item yields either an exam or a rejection;
// a payload that is not a list is rejected as a whole.
func Exams(payload []byte) ([]catalog.Exam, []error, error) {
	list := unwrap(payload)
	if list.IsObject() {
		list = firstOf(list, "exams", "items")
	}
	if !list.IsArray() {
		return nil, nil, malformed(catalog.EntityExam, 0, "exam list must be a list")
	}

	exams := []catalog.Exam{}
	var rejected []error
	list.ForEach(func(_, item gjson.Result) bool {
		e, err := parseExam(item)
		if err != nil {
			rejected = append(rejected, err)
			return true
		}
		exams = append(exams, *e)
		return true
	})
	return exams, rejected, nil
}

func parseExam(item gjson.Result) (*catalog.Exam, error) {
	if !item.IsObject() {
		return nil, malformed(catalog.EntityExam, 0, "expected an object")
	}
	id, ok := intValue(item.Get("id"))
	if !ok {
		return nil, malformed(catalog.EntityExam, 0, "missing or invalid id")
	}
	name := stringValue(firstOf(item, "name", "title"))
	if name == "" {
		return nil, malformed(catalog.EntityExam, id, "missing name")
	}
	return &catalog.Exam{
		ID:   id,
		Name: name,
		Logo: optionalString(firstOf(item, "logo", "image")),
	}, nil
}

// ExamModules reads the ids of the modules related to an exam. Items are bare ids
// or objects with an id; an item with no usable id rejects the whole list.
func ExamModules(payload []byte) ([]int, error) {
	list := unwrap(payload)
	if list.IsObject() {
		list = firstOf(list, "modules", "items")
	}
	if !list.IsArray() {
		return nil, malformed(catalog.EntityLink, 0, "exam modules must be a list")
	}

	ids := []int{}
	seen := map[int]struct{}{}
	var bad error
	list.ForEach(func(_, item gjson.Result) bool {
		ref := item
		if item.IsObject() {
			ref = item.Get("id")
		}
		id, ok := intValue(ref)
		if !ok {
			bad = malformed(catalog.EntityLink, 0, "exam module without id")
			return false
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return ids, nil
}
