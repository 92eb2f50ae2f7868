package sim

import "fmt"

// Variable names one output column of a replication.
type Variable string

const (
	VarPreVentilation  Variable = "pre_vam"
	VarVentilation     Variable = "vam"
	VarPostVentilation Variable = "post_vam"
	VarICUStay         Variable = "icu_stay"
	VarPostICUStay     Variable = "post_icu_stay"
)

// Variables lists the output columns in table order.
var Variables = []Variable{
	VarPreVentilation,
	VarVentilation,
	VarPostVentilation,
	VarICUStay,
	VarPostICUStay,
}

// VariableNames returns Variables as strings.
func VariableNames() []string {
	names := make([]string, len(Variables))
	for i, v := range Variables {
		names[i] = string(v)
	}
	return names
}

// ParseVariable resolves a column name to a Variable.
func ParseVariable(name string) (Variable, error) {
	for _, v := range Variables {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variable %q; valid: pre_vam, vam, post_vam, icu_stay, post_icu_stay: %w", name, ErrInvalidInput)
}
