package ecourts

import (
	"fmt"
	"slices"
)

// Variant names one of the portal flows.
type Variant string

const (
	HighCourtCase      Variant = "hc-case"
	DistrictCase       Variant = "district-case"
	DistrictCauseList  Variant = "district-causelist"
	HighCourtCauseList Variant = "hc-causelist"
)

func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	switch v {
	case HighCourtCase, DistrictCase, DistrictCauseList, HighCourtCauseList:
		return v, nil
	}
	return "", fmt.Errorf("unknown portal variant %q", s)
}

// Level is one step of a hierarchy chain.
type Level string

const (
	LevelDistricts      Level = "districts"
	LevelComplexes      Level = "complexes"
	LevelEstablishments Level = "establishments"
	LevelJudges         Level = "judges"
	LevelCaseTypes      Level = "case-types"
	LevelBenches        Level = "benches"
)

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	switch l {
	case LevelDistricts, LevelComplexes, LevelEstablishments, LevelJudges, LevelCaseTypes, LevelBenches:
		return l, nil
	}
	return "", fmt.Errorf("unknown lookup level %q", s)
}

// Lookup is the endpoint serving a level and, for JSON portals, the response
// keys holding the <option> fragment (the first one present wins).
type Lookup struct {
	Endpoint string
	Keys     []string
}

// CaptchaSuffix is the cache-busting query appended to direct image URLs.
type CaptchaSuffix int

const (
	SuffixMillis CaptchaSuffix = iota
	SuffixRandom
)

// Descriptor is everything that distinguishes one portal variant from another.
// The client is shared, the descriptor picks the endpoints, field names and
// hierarchy steps.
type Descriptor struct {
	Variant Variant
	// BaseURL must end in a slash, every endpoint is resolved against it.
	BaseURL  string
	OpenPath string
	// UsesToken marks portals that embed an app_token in the opening page and
	// expect it, refreshed, on every POST.
	UsesToken bool
	// Referer is resolved against BaseURL.
	Referer string
	Headers map[string]string

	Levels  []Level
	Lookups map[Level]Lookup
	// SetData is called before the judges lookup to select the complex.
	SetData string

	// CaptchaEndpoint returns an HTML fragment holding the image when
	// CaptchaEmbedded, otherwise it is the image itself.
	CaptchaEndpoint string
	CaptchaEmbedded bool
	CaptchaSuffix   CaptchaSuffix
	CaptchaField    string

	Verify  string
	History string
}

func (d Descriptor) Supports(level Level) bool {
	return slices.Contains(d.Levels, level)
}

const (
	highCourtBase = "https://hcservices.ecourts.gov.in/hcservices/"
	districtBase  = "https://services.ecourts.gov.in/ecourtindia_v6/"
)

var highCourtHeaders = map[string]string{
	"Accept":           "application/json, text/javascript, */*; q=0.01",
	"Accept-Language":  "en-US,en;q=0.9",
	"X-Requested-With": "XMLHttpRequest",
	"User-Agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
}

var districtHeaders = map[string]string{
	"Accept":           "application/json, text/javascript, */*; q=0.01",
	"Accept-Language":  "en-US,en;q=0.5",
	"X-Requested-With": "XMLHttpRequest",
	"User-Agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:143.0) Gecko/20100101 Firefox/143.0",
}

var districtLookups = map[Level]Lookup{
	LevelDistricts: {Endpoint: "?p=casestatus/fillDistrict", Keys: []string{"dist_list"}},
	LevelComplexes: {Endpoint: "?p=casestatus/fillcomplex", Keys: []string{"complex_list"}},
	LevelCaseTypes: {
		Endpoint: "?p=casestatus/fillCaseType",
		Keys:     []string{"case_type", "casetype_list"},
	},
	LevelEstablishments: {
		Endpoint: "?p=casestatus/fillCourtEstablishment",
		Keys:     []string{"establishment_list"},
	},
	LevelJudges: {Endpoint: "?p=cause_list/fillCauseList", Keys: []string{"cause_list"}},
}

// Descriptors returns the production descriptor of every variant.
func Descriptors() map[Variant]Descriptor {
	return map[Variant]Descriptor{
		HighCourtCase: {
			Variant:  HighCourtCase,
			BaseURL:  highCourtBase,
			OpenPath: "main.php",
			Referer:  "/",
			Headers:  highCourtHeaders,
			Levels:   []Level{LevelCaseTypes},
			Lookups: map[Level]Lookup{
				LevelCaseTypes: {Endpoint: "cases_qry/index_qry.php?action_code=fillCaseType"},
			},
			CaptchaEndpoint: "securimage/securimage_show.php",
			CaptchaSuffix:   SuffixRandom,
			CaptchaField:    "captcha",
			Verify:          "cases_qry/index_qry.php?action_code=showRecords",
			History:         "cases_qry/o_civil_case_history.php",
		},
		DistrictCase: {
			Variant:   DistrictCase,
			BaseURL:   districtBase,
			OpenPath:  "./",
			UsesToken: true,
			Referer:   "?p=casestatus/index",
			Headers:   districtHeaders,
			Levels:    []Level{LevelDistricts, LevelComplexes, LevelCaseTypes},
			Lookups:   districtLookups,

			CaptchaEndpoint: "?p=casestatus/getCaptcha",
			CaptchaEmbedded: true,
			CaptchaField:    "case_captcha_code",
			Verify:          "?p=casestatus/submitCaseNo",
			History:         "?p=home/viewHistory",
		},
		DistrictCauseList: {
			Variant:   DistrictCauseList,
			BaseURL:   districtBase,
			OpenPath:  "./",
			UsesToken: true,
			Referer:   "/",
			Headers:   districtHeaders,
			Levels:    []Level{LevelDistricts, LevelComplexes, LevelEstablishments, LevelJudges},
			Lookups:   districtLookups,
			SetData:   "?p=casestatus/set_data",

			CaptchaEndpoint: "vendor/securimage/securimage_show.php",
			CaptchaSuffix:   SuffixMillis,
			CaptchaField:    "cause_list_captcha_code",
			Verify:          "?p=cause_list/submitCauseList",
		},
		HighCourtCauseList: {
			Variant:  HighCourtCauseList,
			BaseURL:  highCourtBase,
			OpenPath: "main.php",
			Referer:  "/",
			Headers:  highCourtHeaders,
			Levels:   []Level{LevelBenches},
			Lookups: map[Level]Lookup{
				LevelBenches: {Endpoint: "cases_qry/index_qry.php"},
			},
			CaptchaEndpoint: "securimage/securimage_show.php",
			CaptchaSuffix:   SuffixMillis,
			CaptchaField:    "captcha",
			Verify:          "cases_qry/index_qry.php",
		},
	}
}

// WithBaseURL points a descriptor at a mirror or a test server.
func (d Descriptor) WithBaseURL(base string) Descriptor {
	if base != "" && base[len(base)-1] != '/' {
		base += "/"
	}
	d.BaseURL = base
	return d
}
