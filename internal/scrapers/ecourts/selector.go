package ecourts

import "strings"

// ComplexSelector is a court complex option value of the form
// `code@estCodes@flag`. A flag of N or 0 means the complex has no
// establishment dropdown and its embedded establishment codes are used as is.
type ComplexSelector struct {
	Raw                string `json:"raw"`
	Code               string `json:"code"`
	EstablishmentCodes string `json:"establishment_codes"`
	Bypass             bool   `json:"bypass_establishment"`
}

func ParseComplexSelector(raw string) ComplexSelector {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, "@")
	sel := ComplexSelector{Raw: raw, Code: parts[0]}
	if len(parts) > 1 {
		sel.EstablishmentCodes = parts[1]
	}
	flag := "Y"
	if len(parts) > 2 {
		flag = parts[2]
	}
	sel.Bypass = flag == "N" || flag == "0"
	return sel
}

// Selection is the hierarchy picked so far. Which fields matter depends on the
// portal: High Court flows only use State, Court and Bench.
type Selection struct {
	State         string          `json:"state_code"`
	District      string          `json:"dist_code"`
	Complex       ComplexSelector `json:"court_complex"`
	Establishment string          `json:"est_code"`
	Court         string          `json:"court_code"`
	Bench         string          `json:"bench_code"`
}

// EstablishmentCode is the est_code sent to the judge and verify steps: the
// chosen establishment, or the codes embedded in the complex when the
// establishment step is bypassed or skipped.
func (s Selection) EstablishmentCode() string {
	if s.Establishment != "" && !s.Complex.Bypass {
		return s.Establishment
	}
	return s.Complex.EstablishmentCodes
}
