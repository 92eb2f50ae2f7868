package dataset

import "github.com/simuci/simuci/sim"

// covariateAliases maps each clustering covariate to the header names it is
// found under: the canonical name first, then the clinical-record labels.
var covariateAliases = map[string][]string{
	"age":                {"age", "Edad"},
	"diag_admission1":    {"diag_admission1", "Diag.Ing1"},
	"diag_admission2":    {"diag_admission2", "Diag.Ing2"},
	"diag_admission3":    {"diag_admission3", "Diag.Ing3"},
	"diag_admission4":    {"diag_admission4", "Diag.Ing4"},
	"apache":             {"apache", "APACHE"},
	"resp_insufficiency": {"resp_insufficiency", "InsufResp"},
	"vent_type":          {"vent_type", "VA"},
	"icu_stay":           {"icu_stay", "Est. UCI", "Estadia UCI"},
	"vam_time":           {"vam_time", "TiempoVAM", "Tiempo VAM"},
	"pre_icu_stay":       {"pre_icu_stay", "Est. PreUCI"},
}

// Optional patient columns.
var (
	dischargeAliases = []string{"diag_discharge2", "Diag.Egr2"}
	percentAliases   = []string{"percent", "Porciento"}
)

// variableAliases maps each replication variable to its header names.
var variableAliases = map[sim.Variable][]string{
	sim.VarPreVentilation:  {"pre_vam", "Tiempo Pre VAM"},
	sim.VarVentilation:     {"vam", "Tiempo VAM", "TiempoVAM"},
	sim.VarPostVentilation: {"post_vam", "Tiempo Post VAM"},
	sim.VarICUStay:         {"icu_stay", "Estadia UCI", "Est. UCI"},
	sim.VarPostICUStay:     {"post_icu_stay", "Estadia Post UCI"},
}

// VariableColumn resolves a variable name or one of its aliases against t.
func VariableColumn(t *Table, name string) int {
	if v, err := sim.ParseVariable(name); err == nil {
		if idx := t.Index(variableAliases[v]...); idx >= 0 {
			return idx
		}
	}
	for _, aliases := range variableAliases {
		for _, a := range aliases {
			if normalize(a) == normalize(name) {
				return t.Index(aliases...)
			}
		}
	}
	return t.Index(name)
}
