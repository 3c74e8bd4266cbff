// Package catalog defines the fixed selection surface of the service:
// the recognized variables, climate models, SSP scenarios, ensemble members
// and seasons. The catalog is immutable for the lifetime of the process.
package catalog

import (
	"sort"
	"time"
)

// Season maps a named season onto its calendar months. WrapMonths lists the
// months that belong to the previous calendar year's group; for DJF the
// December of year Y anchors the group and the following January and February
// count toward year Y.
type Season struct {
	Name        string
	Months      []time.Month
	WrapMonths  []time.Month
	Description string
}

// Contains reports whether m is one of the season's months.
func (s Season) Contains(m time.Month) bool {
	for _, sm := range s.Months {
		if sm == m {
			return true
		}
	}
	return false
}

// AssignmentYear returns the year a timestamp is grouped under. Timestamps in
// a wrap month are assigned to the preceding calendar year.
func (s Season) AssignmentYear(t time.Time) int {
	y := t.Year()
	for _, wm := range s.WrapMonths {
		if t.Month() == wm {
			return y - 1
		}
	}
	return y
}

var seasons = []Season{
	{
		Name:        "DJF",
		Months:      []time.Month{time.December, time.January, time.February},
		WrapMonths:  []time.Month{time.January, time.February},
		Description: "DJF: December, January, February",
	},
	{
		Name:        "MAM",
		Months:      []time.Month{time.March, time.April, time.May},
		Description: "MAM: March, April, May",
	},
	{
		Name:        "JJA",
		Months:      []time.Month{time.June, time.July, time.August},
		Description: "JJA: June, July, August",
	},
	{
		Name:        "SON",
		Months:      []time.Month{time.September, time.October, time.November},
		Description: "SON: September, October, November",
	},
}

// SeasonByName looks up a season by its canonical name (DJF, MAM, JJA, SON).
func SeasonByName(name string) (Season, bool) {
	for _, s := range seasons {
		if s.Name == name {
			return s, true
		}
	}
	return Season{}, false
}

// Seasons returns all recognized seasons in canonical order.
func Seasons() []Season {
	out := make([]Season, len(seasons))
	copy(out, seasons)
	return out
}

// Variable is a selectable dataset variable: the display name the UI uses and
// the code under which the variable is stored in the remote datasets.
type Variable struct {
	Name        string
	Code        string
	Description string
}

var variables = []Variable{
	{
		Name:        "SeaIceArea",
		Code:        "siarean",
		Description: "Sea Ice Area: total area covered by sea ice.",
	},
	{
		Name:        "SeaIceExtent",
		Code:        "siextentn",
		Description: "Sea Ice Extent: total area of any region with at least 15% areal fraction of sea ice.",
	},
}

// VariableByName looks up a variable by display name.
func VariableByName(name string) (Variable, bool) {
	for _, v := range variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Variables returns all recognized variables.
func Variables() []Variable {
	out := make([]Variable, len(variables))
	copy(out, variables)
	return out
}

// modelSuffix is carried by every dataset directory name; the file name inside
// the dataset uses the bare model name.
const modelSuffix = "_sea_ice"

var models = map[string]string{
	"NorESM2-LM" + modelSuffix:    "NorESM2-LM: Norwegian Earth System Model, focuses on climate interactions and ocean circulation.",
	"MRI-ESM2-0" + modelSuffix:    "MRI-ESM2-0: Meteorological Research Institute Earth System Model, emphasizes atmospheric processes and variability.",
	"MIROC6" + modelSuffix:        "MIROC6: Model for Interdisciplinary Research on Climate, known for detailed atmospheric and oceanic simulations.",
	"EC-Earth3-Veg" + modelSuffix: "EC-Earth3-Veg: Integrates dynamic vegetation processes to study climate feedbacks.",
	"CanESM5" + modelSuffix:       "CanESM5: Canadian Earth System Model, includes advanced carbon cycle and land surface interactions.",
	"ACCESS-CM2" + modelSuffix:    "ACCESS-CM2: Australian Community Climate and Earth System Simulator, highlights regional climate dynamics and extremes.",
}

var scenarios = map[string]string{
	"ssp126": "ssp126: Low emissions scenario, focusing on sustainability and reduced reliance on fossil fuels.",
	"ssp245": "ssp245: Intermediate emissions scenario, balancing economic growth with moderate climate policies.",
	"ssp370": "ssp370: High emissions scenario, characterized by regional rivalry and limited climate action.",
	"ssp460": "ssp460: Intermediate emissions scenario with delayed, but eventual, emissions reductions.",
	"ssp585": "ssp585: Very high emissions scenario, driven by fossil fuel development and minimal climate policies.",
}

var ensembleMembers = []string{
	"r1i1p1f1", "r2i1p1f1", "r3i1p1f1", "r4i1p1f1", "r5i1p1f1",
	"r6i1p1f1", "r7i1p1f1", "r8i1p1f1", "r9i1p1f1", "r10i1p1f1",
}

// ValidModel reports whether name is a recognized climate model.
func ValidModel(name string) bool {
	_, ok := models[name]
	return ok
}

// ValidScenario reports whether name is a recognized SSP scenario.
func ValidScenario(name string) bool {
	_, ok := scenarios[name]
	return ok
}

// ValidEnsembleMember reports whether name is a recognized run-index code.
func ValidEnsembleMember(name string) bool {
	for _, m := range ensembleMembers {
		if m == name {
			return true
		}
	}
	return false
}

// Models returns the recognized model names in sorted order.
func Models() []string {
	out := make([]string, 0, len(models))
	for name := range models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Scenarios returns the recognized scenario names in sorted order.
func Scenarios() []string {
	out := make([]string, 0, len(scenarios))
	for name := range scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// EnsembleMembers returns the recognized run-index codes in run order.
func EnsembleMembers() []string {
	out := make([]string, len(ensembleMembers))
	copy(out, ensembleMembers)
	return out
}

// ModelDescription returns the info text for a model, or "" if unknown.
func ModelDescription(name string) string { return models[name] }

// ScenarioDescription returns the info text for a scenario, or "" if unknown.
func ScenarioDescription(name string) string { return scenarios[name] }

// ModelBase strips the dataset directory suffix from a model name, yielding
// the bare model name used inside dataset file names.
func ModelBase(name string) string {
	if len(name) > len(modelSuffix) && name[len(name)-len(modelSuffix):] == modelSuffix {
		return name[:len(name)-len(modelSuffix)]
	}
	return name
}
