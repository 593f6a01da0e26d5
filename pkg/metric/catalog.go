// Package metric holds the metric catalog, metric values and the
// per-construct write-once store.
package metric

import "sort"

// Level is the construct level a metric is computed at.
type Level uint8

const (
	LevelMethod Level = iota
	LevelClass
	LevelPackage
	LevelProject
)

func (l Level) String() string {
	switch l {
	case LevelMethod:
		return "method"
	case LevelClass:
		return "class"
	case LevelPackage:
		return "package"
	case LevelProject:
		return "project"
	}
	return "unknown"
}

// ParseLevel parses a level name as printed by String.
func ParseLevel(s string) (Level, bool) {
	for l := LevelMethod; l <= LevelProject; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Domain is the kind of number a metric produces.
type Domain uint8

const (
	DomainCount Domain = iota
	DomainRatio
)

func (d Domain) String() string {
	if d == DomainRatio {
		return "ratio"
	}
	return "count"
}

// Set groups metrics by the suite that defines them.
type Set string

const (
	SetNone             Set = ""
	SetChidamberKemerer Set = "Chidamber-Kemerer"
	SetLorenzKidd       Set = "Lorenz-Kidd"
	SetLiHenry          Set = "Li-Henry"
	SetLanzaMarinescu   Set = "Lanza-Marinescu"
	SetBiemanKang       Set = "Bieman-Kang"
	SetClemensLee       Set = "Clemens Lee"
	SetRobertMartin     Set = "Robert C. Martin"
	SetMOOD             Set = "MOOD"
	SetHalsteadMethod   Set = "Halstead (method)"
	SetHalsteadClass    Set = "Halstead (class)"
	SetStatistic        Set = "Statistic"
)

// Type is the symbolic name of a metric, e.g. "WMC".
type Type string

// Method metrics.
const (
	CC    Type = "CC"
	CCM   Type = "CCM"
	MND   Type = "MND"
	CND   Type = "CND"
	LND   Type = "LND"
	NOL   Type = "NOL"
	LOC   Type = "LOC"
	NOPM  Type = "NOPM"
	LAA   Type = "LAA"
	FDP   Type = "FDP"
	NOAV  Type = "NOAV"
	CINT  Type = "CINT"
	CDISP Type = "CDISP"
	HVL   Type = "HVL"
	HD    Type = "HD"
	HL    Type = "HL"
	HEF   Type = "HEF"
	HVC   Type = "HVC"
	HER   Type = "HER"
)

// Class metrics.
const (
	WMC   Type = "WMC"
	DIT   Type = "DIT"
	CBO   Type = "CBO"
	RFC   Type = "RFC"
	LCOM  Type = "LCOM"
	NOC   Type = "NOC"
	NOA   Type = "NOA"
	NOO   Type = "NOO"
	NOOM  Type = "NOOM"
	NOAM  Type = "NOAM"
	SIZE2 Type = "SIZE2"
	NOM   Type = "NOM"
	MPC   Type = "MPC"
	DAC   Type = "DAC"
	ATFD  Type = "ATFD"
	NOPA  Type = "NOPA"
	NOAC  Type = "NOAC"
	WOC   Type = "WOC"
	TCC   Type = "TCC"
	NCSS  Type = "NCSS"
	CHVL  Type = "CHVL"
	CHD   Type = "CHD"
	CHL   Type = "CHL"
	CHEF  Type = "CHEF"
	CHVC  Type = "CHVC"
	CHER  Type = "CHER"
)

// Package metrics.
const (
	Ce    Type = "Ce"
	Ca    Type = "Ca"
	I     Type = "I"
	A     Type = "A"
	D     Type = "D"
	PNOCC Type = "PNOCC"
	PNOAC Type = "PNOAC"
	PNOSC Type = "PNOSC"
	PNOI  Type = "PNOI"
	PNCSS Type = "PNCSS"
	PLOC  Type = "PLOC"
)

// Project metrics.
const (
	MHF  Type = "MHF"
	AHF  Type = "AHF"
	MIF  Type = "MIF"
	AIF  Type = "AIF"
	CF   Type = "CF"
	PF   Type = "PF"
	TNOP Type = "TNOP"
	TNOC Type = "TNOC"
	TNOM Type = "TNOM"
	TLOC Type = "TLOC"
)

// Info describes a metric type.
type Info struct {
	Type        Type   `json:"name"`
	Description string `json:"description"`
	Level       Level  `json:"-"`
	Domain      Domain `json:"-"`
	Set         Set    `json:"set,omitempty"`
}

// URL is the documentation reference of the metric.
func (i Info) URL() string { return "/html/" + string(i.Type) + ".html" }

func def(t Type, desc string, set Set, level Level, domain Domain) Info {
	return Info{Type: t, Description: desc, Level: level, Domain: domain, Set: set}
}

var catalog = []Info{
	def(CND, "Condition Nesting Depth", SetNone, LevelMethod, DomainCount),
	def(LND, "Loop Nesting Depth", SetNone, LevelMethod, DomainCount),
	def(CC, "McCabe Cyclomatic Complexity", SetNone, LevelMethod, DomainCount),
	def(CCM, "Cognitive Complexity", SetNone, LevelMethod, DomainCount),
	def(NOL, "Number Of Loops", SetNone, LevelMethod, DomainCount),
	def(LOC, "Lines Of Code", SetNone, LevelMethod, DomainCount),
	def(NOPM, "Number Of Parameters", SetNone, LevelMethod, DomainCount),
	def(LAA, "Locality Of Attribute Accesses", SetLanzaMarinescu, LevelMethod, DomainRatio),
	def(FDP, "Foreign Data Providers", SetLanzaMarinescu, LevelMethod, DomainCount),
	def(NOAV, "Number Of Accessed Variables", SetLanzaMarinescu, LevelMethod, DomainCount),
	def(MND, "Maximum Nesting Depth", SetLanzaMarinescu, LevelMethod, DomainCount),
	def(CINT, "Coupling Intensity", SetLanzaMarinescu, LevelMethod, DomainCount),
	def(CDISP, "Coupling Dispersion", SetLanzaMarinescu, LevelMethod, DomainRatio),
	def(HVL, "Halstead Volume", SetHalsteadMethod, LevelMethod, DomainRatio),
	def(HD, "Halstead Difficulty", SetHalsteadMethod, LevelMethod, DomainRatio),
	def(HL, "Halstead Length", SetHalsteadMethod, LevelMethod, DomainCount),
	def(HEF, "Halstead Effort", SetHalsteadMethod, LevelMethod, DomainRatio),
	def(HVC, "Halstead Vocabulary", SetHalsteadMethod, LevelMethod, DomainCount),
	def(HER, "Halstead Errors", SetHalsteadMethod, LevelMethod, DomainRatio),

	def(CHVL, "Halstead Volume", SetHalsteadClass, LevelClass, DomainRatio),
	def(CHD, "Halstead Difficulty", SetHalsteadClass, LevelClass, DomainRatio),
	def(CHL, "Halstead Length", SetHalsteadClass, LevelClass, DomainCount),
	def(CHEF, "Halstead Effort", SetHalsteadClass, LevelClass, DomainRatio),
	def(CHVC, "Halstead Vocabulary", SetHalsteadClass, LevelClass, DomainCount),
	def(CHER, "Halstead Errors", SetHalsteadClass, LevelClass, DomainRatio),
	def(WMC, "Weighted Methods Per Class", SetChidamberKemerer, LevelClass, DomainCount),
	def(DIT, "Depth Of Inheritance Tree", SetChidamberKemerer, LevelClass, DomainCount),
	def(CBO, "Coupling Between Objects", SetChidamberKemerer, LevelClass, DomainCount),
	def(RFC, "Response For A Class", SetChidamberKemerer, LevelClass, DomainCount),
	def(LCOM, "Lack Of Cohesion Of Methods", SetChidamberKemerer, LevelClass, DomainCount),
	def(NOC, "Number Of Children", SetChidamberKemerer, LevelClass, DomainCount),
	def(NOA, "Number Of Attributes", SetLorenzKidd, LevelClass, DomainCount),
	def(NOO, "Number Of Operations", SetLorenzKidd, LevelClass, DomainCount),
	def(NOOM, "Number Of Overridden Methods", SetLorenzKidd, LevelClass, DomainCount),
	def(NOAM, "Number Of Added Methods", SetLorenzKidd, LevelClass, DomainCount),
	def(SIZE2, "Number Of Attributes And Methods", SetLiHenry, LevelClass, DomainCount),
	def(NOM, "Number Of Methods", SetLiHenry, LevelClass, DomainCount),
	def(MPC, "Message Passing Coupling", SetLiHenry, LevelClass, DomainCount),
	def(DAC, "Data Abstraction Coupling", SetLiHenry, LevelClass, DomainCount),
	def(ATFD, "Access To Foreign Data", SetLanzaMarinescu, LevelClass, DomainCount),
	def(NOPA, "Number Of Public Attributes", SetLanzaMarinescu, LevelClass, DomainCount),
	def(NOAC, "Number Of Accessor Methods", SetLanzaMarinescu, LevelClass, DomainCount),
	def(WOC, "Weight Of A Class", SetLanzaMarinescu, LevelClass, DomainRatio),
	def(TCC, "Tight Class Cohesion", SetBiemanKang, LevelClass, DomainRatio),
	def(NCSS, "Non-Commenting Source Statements", SetClemensLee, LevelClass, DomainCount),

	def(Ce, "Efferent Coupling", SetRobertMartin, LevelPackage, DomainCount),
	def(Ca, "Afferent Coupling", SetRobertMartin, LevelPackage, DomainCount),
	def(I, "Instability", SetRobertMartin, LevelPackage, DomainRatio),
	def(A, "Abstractness", SetRobertMartin, LevelPackage, DomainRatio),
	def(D, "Normalized Distance From Main Sequence", SetRobertMartin, LevelPackage, DomainRatio),
	def(PNOCC, "Number Of Concrete Classes", SetStatistic, LevelPackage, DomainCount),
	def(PNOAC, "Number Of Abstract Classes", SetStatistic, LevelPackage, DomainCount),
	def(PNOSC, "Number Of Static Classes", SetStatistic, LevelPackage, DomainCount),
	def(PNOI, "Number Of Interfaces", SetStatistic, LevelPackage, DomainCount),
	def(PNCSS, "Non-Commenting Source Statements", SetStatistic, LevelPackage, DomainCount),
	def(PLOC, "Lines Of Code", SetStatistic, LevelPackage, DomainCount),

	def(MHF, "Method Hiding Factor", SetMOOD, LevelProject, DomainRatio),
	def(AHF, "Attribute Hiding Factor", SetMOOD, LevelProject, DomainRatio),
	def(MIF, "Method Inheritance Factor", SetMOOD, LevelProject, DomainRatio),
	def(AIF, "Attribute Inheritance Factor", SetMOOD, LevelProject, DomainRatio),
	def(CF, "Coupling Factor", SetMOOD, LevelProject, DomainRatio),
	def(PF, "Polymorphism Factor", SetMOOD, LevelProject, DomainRatio),
	def(TNOP, "Number Of Packages", SetStatistic, LevelProject, DomainCount),
	def(TNOC, "Number Of Classes", SetStatistic, LevelProject, DomainCount),
	def(TNOM, "Number Of Methods", SetStatistic, LevelProject, DomainCount),
	def(TLOC, "Lines Of Code", SetStatistic, LevelProject, DomainCount),
}

var byType = func() map[Type]Info {
	m := make(map[Type]Info, len(catalog))
	for _, info := range catalog {
		m[info.Type] = info
	}
	return m
}()

// Lookup returns the catalog entry for t.
func Lookup(t Type) (Info, bool) {
	info, ok := byType[t]
	return info, ok
}

// Catalog returns every registered metric in declaration order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// AtLevel returns the registered metrics computed at level l.
func AtLevel(l Level) []Info {
	var out []Info
	for _, info := range catalog {
		if info.Level == l {
			out = append(out, info)
		}
	}
	return out
}

// BySet groups the catalog by metric set, entries sorted by name.
func BySet() map[Set][]Info {
	m := make(map[Set][]Info)
	for _, info := range catalog {
		m[info.Set] = append(m[info.Set], info)
	}
	for _, infos := range m {
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].Type < infos[j].Type })
	}
	return m
}

// Info returns the catalog entry; unknown types get a bare entry.
func (t Type) Info() Info {
	if info, ok := byType[t]; ok {
		return info
	}
	return Info{Type: t, Description: string(t)}
}

// Description is the human readable name of the metric.
func (t Type) Description() string { return t.Info().Description }

// Level is the construct level of the metric.
func (t Type) Level() Level { return t.Info().Level }

// Domain is the value domain of the metric.
func (t Type) Domain() Domain { return t.Info().Domain }
