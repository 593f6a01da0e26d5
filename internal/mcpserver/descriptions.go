package mcpserver

// Tool descriptions with interpretation guidance for LLMs. Each one says
// what the tool does, when to use it and how to read the result.

func describeAnalyzeMetrics() string {
	return `Computes object-oriented metrics for Java sources and classifies every value against its threshold range.

USE WHEN:
- Reviewing the design quality of a Java code base or module
- Finding god classes, deep hierarchies and highly coupled packages
- Picking refactoring candidates before a change
- Comparing metric levels before and after a refactoring

INTERPRETING RESULTS:
- Severity bands: REGULAR < HIGH < VERY_HIGH < EXTREME; UNDEFINED means no range or no value
- Anything above REGULAR is listed under violations, worst first
- WMC, RFC, CBO and LCOM high together: class does too much, split responsibilities
- DIT > 5: deep inheritance, prefer composition
- TCC or LAA below range: low cohesion, the method or class uses foreign data
- D (distance from main sequence) high: package is either rigid and concrete or abstract and unused
- MOOD factors (MHF, AHF, MIF, AIF, CF, PF) describe the whole project
- truncated > 0 means max_tokens dropped the mildest entries

METRICS RETURNED:
- metadata: project, level, file/class/method counts, skipped files
- project: project-level readings
- entries: per construct at the requested level, every metric with value and severity
- summary: per metric count, mean, max and where the max occurs
- violations: values above REGULAR at any level with their range and location`
}

func describeMetricCatalog() string {
	return `Lists the metrics the engine computes with their level, suite and configured threshold range.

USE WHEN:
- Looking up what a metric abbreviation means
- Checking which thresholds apply before reading an analysis
- Choosing metrics to focus a review on

INTERPRETING RESULTS:
- Basic ranges read [0..regular) [regular..high) [high..very high) [very high..) for REGULAR, HIGH, VERY_HIGH, EXTREME
- Derivative ranges read [from..to): inside is REGULAR, outside is a violation
- Metrics without a range are informational and never violate

METRICS RETURNED:
- metrics: name, description, level, domain (count or ratio), set and range`
}

func describeClassifyMetric() string {
	return `Classifies a single metric value against the configured threshold range.

USE WHEN:
- Checking whether a value reported elsewhere is a problem
- Explaining a severity to a user
- Exploring where the band boundaries of a metric lie

INTERPRETING RESULTS:
- violation is true for HIGH and above
- UNDEFINED means the metric has no range or the value is negative

METRICS RETURNED:
- metric, description, level, value, severity, range, violation`
}

func describeMetricProfiles() string {
	return `Lists the metric profiles: named combinations of metric ranges that describe a design problem such as a God Class, Feature Envy or an unstable package.

USE WHEN:
- Explaining why analyze_metrics reported a construct under profiles
- Checking which conditions a design problem is detected with
- Reviewing profile overrides from the project configuration

INTERPRETING RESULTS:
- A construct fits a profile when every condition holds
- Conditions read "WMC >= 47" or "TCC in [0, 0.33)"; the upper end is exclusive
- In class profiles a method metric condition holds when any method of the class satisfies it
- Undefined values never satisfy a condition
- Package profiles never match a package without classes

METRICS RETURNED:
- profiles: name, level (class or package), description, conditions`
}
