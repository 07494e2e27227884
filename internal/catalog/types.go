// Package catalog defines the canonical records the sync engine persists:
// modules and their units, machines, exams and vulnerabilities, plus the
// link and label kinds that relate them.
package catalog

// ModuleDifficulty is the difficulty of an academy module
type ModuleDifficulty string

const (
	// ModuleEasy is an easy module
	ModuleEasy ModuleDifficulty = "Easy"
	// ModuleMedium is a medium module
	ModuleMedium ModuleDifficulty = "Medium"
	// ModuleHard is a hard module
	ModuleHard ModuleDifficulty = "Hard"
)

// ModuleDifficulties lists every accepted module difficulty
var ModuleDifficulties = []ModuleDifficulty{ModuleEasy, ModuleMedium, ModuleHard}

// MachineDifficulty is the difficulty of a labs machine
type MachineDifficulty string

const (
	// MachineEasy is an easy machine
	MachineEasy MachineDifficulty = "Easy"
	// MachineMedium is a medium machine
	MachineMedium MachineDifficulty = "Medium"
	// MachineHard is a hard machine
	MachineHard MachineDifficulty = "Hard"
	// MachineInsane is an insane machine
	MachineInsane MachineDifficulty = "Insane"
)

// MachineDifficulties lists every accepted machine difficulty
var MachineDifficulties = []MachineDifficulty{MachineEasy, MachineMedium, MachineHard, MachineInsane}

// OS is the operating system of a labs machine
type OS string

// Known operating systems. Anything else is stored as OSOther.
const (
	OSWindows OS = "Windows"
	OSLinux   OS = "Linux"
	OSAndroid OS = "Android"
	OSSolaris OS = "Solaris"
	OSOpenBSD OS = "OpenBSD"
	OSFreeBSD OS = "FreeBSD"
	OSOther   OS = "Other"
)

// KnownOS lists the operating systems with a dedicated value
var KnownOS = []OS{OSWindows, OSLinux, OSAndroid, OSSolaris, OSOpenBSD, OSFreeBSD}

// UnitType is the kind of content a module unit holds
type UnitType string

const (
	// UnitArticle is a reading unit
	UnitArticle UnitType = "Article"
	// UnitInteractive is a unit with a hands-on exercise
	UnitInteractive UnitType = "Interactive"
)

// Module is an academy training module
type Module struct {
	ID          int
	Name        string
	Description *string
	Difficulty  ModuleDifficulty
	URL         string
	Image       *string
}

// Unit is one ordered section of a module
type Unit struct {
	ID       int
	ModuleID int
	// Sequence is the dense 1-based position of the unit inside its module
	Sequence int
	Name     string
	Type     UnitType
}

// Machine is a labs machine
type Machine struct {
	ID         int
	Name       string
	Synopsis   *string
	Difficulty MachineDifficulty
	OS         OS
	URL        string
	Image      *string
}

// Exam is a certification exam
type Exam struct {
	ID   int
	Name string
	Logo *string
}

// Vulnerability is a vulnerability tag shared by modules and machines
type Vulnerability struct {
	ID   int
	Name string
}

// MachineRef identifies a machine discovered through a module's related-machines list.
// ID is preferred; Name is used to look the machine up when the ID is unknown.
type MachineRef struct {
	ID   int
	Name string
}

// Key returns the deduplication key of the reference
func (r MachineRef) Key() string {
	if r.ID > 0 {
		return "id:" + itoa(r.ID)
	}
	return "name:" + r.Name
}

// TagSet is a machine's tag list partitioned by category
type TagSet struct {
	Vulnerabilities []Vulnerability
	Languages       []string
	Areas           []string
}

// VulnerabilityIDs returns the ids of the vulnerabilities in the set
func (t TagSet) VulnerabilityIDs() []int {
	return VulnerabilityIDs(t.Vulnerabilities)
}

// VulnerabilityIDs returns the ids of the given vulnerabilities, in order
func VulnerabilityIDs(vulns []Vulnerability) []int {
	ids := make([]int, 0, len(vulns))
	for _, v := range vulns {
		ids = append(ids, v.ID)
	}
	return ids
}
