// Package records holds the normalized shapes that portal responses are parsed into.
package records

import (
	"bytes"
	"encoding/json"
)

// Option is a single dropdown entry offered by a hierarchy lookup.
type Option struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (o Option) Label() string {
	return o.Name
}

// Field is one label/value pair of a details table.
type Field struct {
	Label string
	Value string
}

// Fields keeps label/value pairs in the order the portal renders them.
// Setting an existing label replaces its value in place.
type Fields []Field

func (f *Fields) Set(label, value string) {
	for i := range *f {
		if (*f)[i].Label == label {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Label: label, Value: value})
}

func (f Fields) Get(label string) (string, bool) {
	for _, field := range f {
		if field.Label == label {
			return field.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the pairs as a JSON object with keys in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Party struct {
	Name     string `json:"name"`
	Advocate string `json:"advocate,omitempty"`
}

type Parties struct {
	Petitioners []Party `json:"petitioners"`
	Respondents []Party `json:"respondents"`
}

type Act struct {
	Act      string `json:"act"`
	Sections string `json:"sections"`
}

type Hearing struct {
	Judge          string `json:"judge"`
	BusinessOnDate string `json:"business_on_date"`
	BusinessLink   string `json:"business_on_date_link,omitempty"`
	HearingDate    string `json:"hearing_date"`
	Purpose        string `json:"purpose"`
}

// Order is an interim or final order listed on a case. Reference is whatever
// the portal uses to locate the document (a URL or an onclick directive),
// AttachmentKey is filled once the document has been cached.
type Order struct {
	Number        string `json:"order_number"`
	Date          string `json:"order_date"`
	OrderOn       string `json:"order_on,omitempty"`
	Judge         string `json:"judge,omitempty"`
	Details       string `json:"details,omitempty"`
	Reference     string `json:"pdf_link,omitempty"`
	AttachmentKey string `json:"pdf_id,omitempty"`
	AttachmentURL string `json:"pdf_url,omitempty"`
}

// CaseRecord is the normalized view of a case history page. Only the
// attachment fields of its orders change after it is produced.
type CaseRecord struct {
	CourtInfo        Fields    `json:"court_info,omitempty"`
	CaseDetails      Fields    `json:"case_details"`
	CaseStatus       Fields    `json:"case_status"`
	Parties          Parties   `json:"parties"`
	Acts             []Act     `json:"acts"`
	SubordinateCourt Fields    `json:"subordinate_court"`
	Hearings         []Hearing `json:"hearings"`
	Orders           []Order   `json:"orders"`
}

// NewCaseRecord returns a record with every collection non-nil so it
// serializes to empty lists instead of null.
func NewCaseRecord() CaseRecord {
	return CaseRecord{
		CaseDetails:      Fields{},
		CaseStatus:       Fields{},
		Parties:          Parties{Petitioners: []Party{}, Respondents: []Party{}},
		Acts:             []Act{},
		SubordinateCourt: Fields{},
		Hearings:         []Hearing{},
		Orders:           []Order{},
	}
}

// CauseListEntry is one published cause-list document of a High Court.
type CauseListEntry struct {
	SerialNo string `json:"sr_no"`
	Bench    string `json:"bench"`
	Type     string `json:"type"`
	Link     string `json:"pdf_link,omitempty"`
}

// CauseListRow is one case row of a district court's HTML cause list.
type CauseListRow struct {
	SerialNo    string `json:"serial_no"`
	CaseDetails string `json:"case_details"`
	FullText    string `json:"full_text"`
}

type RowMatch struct {
	Index       int    `json:"index"`
	SerialNo    string `json:"serial_no"`
	CaseDetails string `json:"case_details"`
	FullText    string `json:"full_text"`
	MatchedTerm string `json:"matched_term"`
}

// TextMatch locates a hit inside extracted document text. Line numbers are
// 1-based, EndLine is inclusive.
type TextMatch struct {
	LineNumber    int    `json:"line_number"`
	MatchedLine   string `json:"matched_line"`
	FullCaseEntry string `json:"full_case_entry"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
}

type SearchType string

const (
	SearchPartyName  SearchType = "party_name"
	SearchCaseNumber SearchType = "case_number"
)
