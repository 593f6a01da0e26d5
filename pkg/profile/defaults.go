package profile

import "github.com/panbanda/oometrics/pkg/metric"

const godClassDescription = "A class that single-handedly implements large blocks of functionality and performs several non-cohesive tasks"

// Defaults returns the built-in class and package profiles.
func Defaults() []Profile {
	class := func(name, desc string, bounds ...Bound) Profile {
		return Profile{Name: name, Description: desc, Level: metric.LevelClass, Bounds: bounds}
	}
	pkg := func(name, desc string, bounds ...Bound) Profile {
		return Profile{Name: name, Description: desc, Level: metric.LevelPackage, Bounds: bounds}
	}

	return []Profile{
		class("God Class (type 1)", godClassDescription,
			AtLeast(metric.WMC, 47), AtLeast(metric.ATFD, 6), Between(metric.TCC, 0, 0.33)),
		class("God Class (type 2)", godClassDescription,
			AtLeast(metric.WMC, 44), Between(metric.ATFD, 0, 4), AtLeast(metric.NOA, 30)),
		class("God Class (type 3)", godClassDescription,
			AtLeast(metric.WMC, 44), AtLeast(metric.ATFD, 4), AtLeast(metric.CBO, 11)),
		class("God Class (type 4)", godClassDescription,
			AtLeast(metric.WMC, 46), Between(metric.TCC, 0, 0.37), AtLeast(metric.CBO, 1), AtLeast(metric.RFC, 144)),
		class("High Coupling", "A class whose change affects many others, making the system rigid and fragile",
			AtLeast(metric.CBO, 20)),
		class("Long Parameters List", "A method taking so many parameters that several algorithms were likely merged into it",
			AtLeast(metric.NOPM, 4)),
		class("Long Method", "A method long enough to be hard to understand, modify or extend",
			AtLeast(metric.LOC, 16)),
		class("Complex Method", "A method with enough decision paths to be hard to understand and maintain",
			AtLeast(metric.CC, 8)),
		class("Feature Envy", "A method more interested in the data of other classes than in its own",
			AtLeast(metric.ATFD, 5), AtLeast(metric.FDP, 5), Between(metric.LAA, 0, 0.33)),
		class("Brain Method", "A method that centralizes the functionality of its class",
			AtLeast(metric.LOC, 30), AtLeast(metric.CC, 3), AtLeast(metric.MND, 3), AtLeast(metric.NOAV, 3)),
		class("Brain Class", "A complex class that holds too much of the system's intelligence",
			AtLeast(metric.LOC, 30), AtLeast(metric.CC, 3), AtLeast(metric.MND, 3), AtLeast(metric.NOAV, 3),
			AtLeast(metric.WMC, 34), Between(metric.TCC, 0, 0.5)),
		class("Intensive Coupling", "A method calling many members of few classes",
			AtLeast(metric.CINT, 8), Between(metric.CDISP, 0, 0.5), AtLeast(metric.MND, 2)),
		class("Dispersed Coupling", "A method calling members spread over many classes",
			AtLeast(metric.CINT, 8), AtLeast(metric.CDISP, 0.66), AtLeast(metric.MND, 2)),
		class("Deeply Nested Conditions", "Conditions nested deep enough to obscure the control flow",
			AtLeast(metric.CND, 3)),
		class("Too Many Fields", "A class with more fields than a reader can keep track of",
			AtLeast(metric.NOA, 15)),
		class("Too Many Methods", "A class with more methods than a reader can keep track of",
			AtLeast(metric.NOM, 10)),
		class("Data Class", "A class that holds data but implements too little behaviour to justify itself",
			Between(metric.WMC, 0, 15), Between(metric.WOC, 0, 0.34), AtLeast(metric.NOAM, 4), AtLeast(metric.NOPA, 3)),

		pkg("Reduced Coupling and Improved Cohesion", "A package depending on and depended on by many others",
			AtLeast(metric.Ce, 20), AtLeast(metric.Ca, 20), AtLeast(metric.I, 0.5)),
		pkg("Balance of Abstraction and Stability", "A concrete package that is also unstable and far from the main sequence",
			Between(metric.A, 0, 0.3), AtLeast(metric.D, 0.5), AtLeast(metric.I, 0.5)),
		pkg("Package Size Control", "A package holding more code than can be managed as one unit",
			AtLeast(metric.PNOCC, 10), AtLeast(metric.PNOAC, 5), AtLeast(metric.PNOSC, 3), AtLeast(metric.PNOI, 5),
			AtLeast(metric.PLOC, 2000)),
		pkg("Change Resistance", "A package whose changes ripple into the rest of the system",
			AtLeast(metric.Ce, 15), AtLeast(metric.I, 0.3), AtLeast(metric.D, 0.4)),
	}
}
