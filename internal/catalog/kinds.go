package catalog

import "strconv"

// Service identifies one of the remote catalog services
type Service string

const (
	// ServiceAcademy is the training module catalog service
	ServiceAcademy Service = "academy"
	// ServiceLabs is the machine catalog service
	ServiceLabs Service = "labs"
)

// EntityKind names an entity type for statistics and logging
type EntityKind string

// Entity kinds tracked by run statistics
const (
	EntityModule        EntityKind = "module"
	EntityUnit          EntityKind = "unit"
	EntityMachine       EntityKind = "machine"
	EntityExam          EntityKind = "exam"
	EntityVulnerability EntityKind = "vulnerability"
	EntityLink          EntityKind = "link"
)

// EntityKinds lists every entity kind in reporting order
var EntityKinds = []EntityKind{
	EntityModule, EntityUnit, EntityMachine, EntityExam, EntityVulnerability, EntityLink,
}

// LinkKind names a many-to-many association between two entity types
type LinkKind string

// Link kinds maintained by the sync engine
const (
	LinkModuleVulnerability  LinkKind = "module_vulnerability"
	LinkMachineVulnerability LinkKind = "machine_vulnerability"
	LinkExamModule           LinkKind = "exam_module"
	LinkModuleMachine        LinkKind = "module_machine"
)

// LinkKinds lists every link kind
var LinkKinds = []LinkKind{
	LinkModuleVulnerability, LinkMachineVulnerability, LinkExamModule, LinkModuleMachine,
}

// Parent returns the entity kind owning the link set
func (k LinkKind) Parent() EntityKind {
	switch k {
	case LinkModuleVulnerability, LinkModuleMachine:
		return EntityModule
	case LinkMachineVulnerability:
		return EntityMachine
	case LinkExamModule:
		return EntityExam
	}
	return ""
}

// Child returns the entity kind referenced by the link set
func (k LinkKind) Child() EntityKind {
	switch k {
	case LinkModuleVulnerability, LinkMachineVulnerability:
		return EntityVulnerability
	case LinkExamModule:
		return EntityModule
	case LinkModuleMachine:
		return EntityMachine
	}
	return ""
}

// LabelKind names a plain label set attached to a machine
type LabelKind string

const (
	// LabelLanguage holds the languages a machine exercises
	LabelLanguage LabelKind = "language"
	// LabelAreaOfInterest holds a machine's areas of interest
	LabelAreaOfInterest LabelKind = "area_of_interest"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}
