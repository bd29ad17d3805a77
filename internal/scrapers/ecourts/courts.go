package ecourts

import "ecourts-backend/internal/records"

// Court is a High Court as the hcservices portal identifies it.
type Court struct {
	CourtCode string `json:"court_code"`
	StateCode string `json:"state_code"`
	Name      string `json:"name"`
}

func (c Court) Label() string {
	return c.Name
}

// States are the states and union territories of the district portal. The
// portal renders them client side, so there is no endpoint to fetch them from.
var States = []records.Option{
	{Code: "2", Name: "Andhra Pradesh"},
	{Code: "36", Name: "Arunachal Pradesh"},
	{Code: "28", Name: "Andaman and Nicobar"},
	{Code: "6", Name: "Assam"},
	{Code: "8", Name: "Bihar"},
	{Code: "27", Name: "Chandigarh"},
	{Code: "18", Name: "Chhattisgarh"},
	{Code: "26", Name: "Delhi"},
	{Code: "30", Name: "Goa"},
	{Code: "17", Name: "Gujarat"},
	{Code: "14", Name: "Haryana"},
	{Code: "5", Name: "Himachal Pradesh"},
	{Code: "12", Name: "Jammu and Kashmir"},
	{Code: "7", Name: "Jharkhand"},
	{Code: "9", Name: "Karnataka"},
	{Code: "4", Name: "Kerala"},
	{Code: "33", Name: "Ladakh"},
	{Code: "37", Name: "Lakshadweep"},
	{Code: "23", Name: "Madhya Pradesh"},
	{Code: "1", Name: "Maharashtra"},
	{Code: "25", Name: "Manipur"},
	{Code: "21", Name: "Meghalaya"},
	{Code: "19", Name: "Mizoram"},
	{Code: "34", Name: "Nagaland"},
	{Code: "15", Name: "Uttarakhand"},
	{Code: "11", Name: "Odisha"},
	{Code: "35", Name: "Puducherry"},
	{Code: "22", Name: "Punjab"},
	{Code: "3", Name: "Rajasthan"},
	{Code: "24", Name: "Sikkim"},
	{Code: "10", Name: "Tamil Nadu"},
	{Code: "29", Name: "Telangana"},
	{Code: "38", Name: "The Dadra And Nagar Haveli And Daman And Diu"},
	{Code: "20", Name: "Tripura"},
	{Code: "13", Name: "Uttar Pradesh"},
	{Code: "16", Name: "West Bengal"},
}

// CaseCourts are the High Courts offered by the case status search.
var CaseCourts = []Court{
	{CourtCode: "1", StateCode: "26", Name: "Delhi High Court"},
	{CourtCode: "2", StateCode: "1", Name: "Allahabad High Court"},
	{CourtCode: "3", StateCode: "2", Name: "Andhra Pradesh High Court"},
	{CourtCode: "4", StateCode: "3", Name: "Bombay High Court"},
	{CourtCode: "5", StateCode: "4", Name: "Calcutta High Court"},
	{CourtCode: "6", StateCode: "5", Name: "Chhattisgarh High Court"},
	{CourtCode: "7", StateCode: "7", Name: "Gujarat High Court"},
	{CourtCode: "8", StateCode: "8", Name: "Guwahati High Court"},
	{CourtCode: "9", StateCode: "9", Name: "Himachal Pradesh High Court"},
	{CourtCode: "10", StateCode: "10", Name: "Jammu & Kashmir High Court"},
	{CourtCode: "11", StateCode: "11", Name: "Jharkhand High Court"},
	{CourtCode: "12", StateCode: "12", Name: "Karnataka High Court"},
	{CourtCode: "13", StateCode: "13", Name: "Kerala High Court"},
	{CourtCode: "14", StateCode: "14", Name: "Madhya Pradesh High Court"},
	{CourtCode: "15", StateCode: "15", Name: "Madras High Court"},
	{CourtCode: "16", StateCode: "17", Name: "Orissa High Court"},
	{CourtCode: "17", StateCode: "18", Name: "Patna High Court"},
	{CourtCode: "18", StateCode: "19", Name: "Punjab & Haryana High Court"},
	{CourtCode: "19", StateCode: "20", Name: "Rajasthan High Court"},
	{CourtCode: "20", StateCode: "21", Name: "Sikkim High Court"},
	{CourtCode: "21", StateCode: "22", Name: "Telangana High Court"},
	{CourtCode: "22", StateCode: "24", Name: "Tripura High Court"},
	{CourtCode: "23", StateCode: "25", Name: "Uttarakhand High Court"},
	{CourtCode: "24", StateCode: "27", Name: "Manipur High Court"},
	{CourtCode: "25", StateCode: "28", Name: "Meghalaya High Court"},
}

// CauseListCourts are the High Courts offered by the cause list search. The
// portal's leading "Select Highcourt" row is left out.
var CauseListCourts = []Court{
	{StateCode: "13", CourtCode: "13", Name: "Allahabad High Court"},
	{StateCode: "1", CourtCode: "1", Name: "Bombay High Court"},
	{StateCode: "16", CourtCode: "16", Name: "Calcutta High Court"},
	{StateCode: "6", CourtCode: "6", Name: "Gauhati High Court"},
	{StateCode: "19", CourtCode: "19", Name: "High Court for State of Telangana"},
	{StateCode: "2", CourtCode: "2", Name: "High Court of Andhra Pradesh"},
	{StateCode: "18", CourtCode: "18", Name: "High Court of Chhattisgarh"},
	{StateCode: "26", CourtCode: "26", Name: "High Court of Delhi"},
	{StateCode: "17", CourtCode: "17", Name: "High Court of Gujarat"},
	{StateCode: "5", CourtCode: "5", Name: "High Court of Himachal Pradesh"},
	{StateCode: "7", CourtCode: "7", Name: "High Court of Jharkhand"},
	{StateCode: "12", CourtCode: "12", Name: "High Court of Jammu and Kashmir"},
	{StateCode: "4", CourtCode: "4", Name: "High Court of Kerala"},
	{StateCode: "23", CourtCode: "23", Name: "High Court of Madhya Pradesh"},
	{StateCode: "25", CourtCode: "25", Name: "High Court of Manipur"},
	{StateCode: "21", CourtCode: "21", Name: "High Court of Meghalaya"},
	{StateCode: "11", CourtCode: "11", Name: "High Court of Orissa"},
	{StateCode: "22", CourtCode: "22", Name: "High Court of Punjab and Haryana"},
	{StateCode: "9", CourtCode: "9", Name: "High Court of Rajasthan"},
	{StateCode: "24", CourtCode: "24", Name: "High Court of Sikkim"},
	{StateCode: "20", CourtCode: "20", Name: "High Court of Tripura"},
	{StateCode: "15", CourtCode: "15", Name: "High Court of Uttarakhand"},
	{StateCode: "3", CourtCode: "3", Name: "High Court of Karnataka"},
	{StateCode: "10", CourtCode: "10", Name: "Madras High Court"},
	{StateCode: "8", CourtCode: "8", Name: "Patna High Court"},
}

// DefaultHighCourtCaseTypes is used when fillCaseType answers with nothing usable.
var DefaultHighCourtCaseTypes = []records.Option{
	{Code: "1", Name: "Civil Appeal"},
	{Code: "2", Name: "Civil Revision"},
	{Code: "3", Name: "Civil Writ Petition"},
	{Code: "4", Name: "Criminal Appeal"},
	{Code: "5", Name: "Criminal Revision"},
	{Code: "6", Name: "Criminal Writ Petition"},
	{Code: "7", Name: "Company Petition"},
	{Code: "8", Name: "Arbitration Petition"},
	{Code: "9", Name: "Contempt Petition"},
	{Code: "10", Name: "Matrimonial Appeal"},
	{Code: "50", Name: "Special Leave Petition (Civil)"},
	{Code: "51", Name: "Special Leave Petition (Criminal)"},
	{Code: "83", Name: "ARB.A. (Arbitration Appeal)"},
	{Code: "100", Name: "PIL (Public Interest Litigation)"},
	{Code: "102", Name: "ARB. A. (COMM.)"},
	{Code: "134", Name: "W.P.(C) - Writ Petition (Civil)"},
	{Code: "135", Name: "W.P.(CRL) - Writ Petition (Criminal)"},
	{Code: "136", Name: "Crl.A. - Criminal Appeal"},
	{Code: "137", Name: "C.R.P. - Civil Revision Petition"},
	{Code: "138", Name: "FAO - First Appeal from Order"},
	{Code: "139", Name: "RFA - Regular First Appeal"},
	{Code: "140", Name: "CS - Civil Suit"},
	{Code: "141", Name: "Execution Petition"},
	{Code: "142", Name: "Bail Application"},
}

// FindCourt looks a court up by its court code.
func FindCourt(courts []Court, courtCode string) (Court, bool) {
	for _, c := range courts {
		if c.CourtCode == courtCode {
			return c, true
		}
	}
	return Court{}, false
}
