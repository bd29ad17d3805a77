package parser

import (
	"ecourts-backend/internal/records"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectOptions(t *testing.T) {
	p, _ := newTestParser()
	opts := p.SelectOptions(`<option value="0">Select District</option>
		<option value="25">Pune</option>
		<option value="26"> Mumbai   City </option>
		<option>Blank</option>
		<option value="Select case type">Select case type</option>`, "Select case type")
	require.Equal(t, []records.Option{
		{Code: "25", Name: "Pune"},
		{Code: "26", Name: "Mumbai City"},
	}, opts)

	require.Empty(t, p.SelectOptions(""))
}

func TestCourtNumbers(t *testing.T) {
	p, _ := newTestParser()
	opts := p.CourtNumbers(`<option value="">Select Court</option>
		<option value="D" disabled>Civil Courts</option>
		<option value="1^5">1-Civil Judge</option>
		<option value="D" disabled>Criminal Courts</option>
		<option value="1^7">2-JMFC</option>
		<option value="d">Others</option>
		<option value="1^9">Lok Adalat</option>`)
	require.Equal(t, []records.Option{
		{Code: "1^5", Name: "1-Civil Judge (Civil)"},
		{Code: "1^7", Name: "2-JMFC (Criminal)"},
		{Code: "1^9", Name: "Lok Adalat"},
	}, opts)
}

func TestHighCourtDelimited(t *testing.T) {
	types := HighCourtCaseTypes("\n0~Select Case Type#1~Civil Appeal-1#134~W.P.(C) - Writ Petition (Civil)#7~Company Petition-CP#")
	require.Equal(t, []records.Option{
		{Code: "1", Name: "Civil Appeal"},
		{Code: "134", Name: "W.P.(C) - Writ Petition (Civil)"},
		{Code: "7", Name: "Company Petition-CP"},
	}, types)
	require.Nil(t, HighCourtCaseTypes("<html>maintenance</html>"))

	benches := HighCourtBenches("0~Select Bench#1~Principal Seat at Mumbai#2~Bench at Nagpur#3~")
	require.Equal(t, []records.Option{
		{Code: "1", Name: "Principal Seat at Mumbai"},
		{Code: "2", Name: "Bench at Nagpur"},
	}, benches)
}

func TestViewHistoryArgs(t *testing.T) {
	p, _ := newTestParser()
	loc, ok := p.ViewHistoryArgs(districtSearchResult)
	require.True(t, ok)
	require.Equal(t, HistoryLocator{
		CaseNo:      "567",
		Cino:        "MHPU010012342023",
		CourtCode:   "3",
		HideParty:   "",
		SearchFlag:  "CScaseNumber",
		StateCode:   "1",
		DistCode:    "25",
		ComplexCode: "1010001",
		SearchBy:    "CScaseNumber",
	}, loc)

	_, ok = p.ViewHistoryArgs(`<a onclick="viewHistory(1,'x')">View</a>`)
	require.False(t, ok)
	_, ok = p.ViewHistoryArgs(`<td>no link</td>`)
	require.False(t, ok)
}

func TestParseDisplayPdf(t *testing.T) {
	d, ok := ParseDisplayPdf(`displayPdf('home/display_pdf&filename=/orders/2023/2017 0001_1.pdf&caseno=RCS/567/2023&court_code=3&appFlag=&normal_v=1')`)
	require.True(t, ok)
	require.Equal(t, "home/display_pdf", d.Endpoint)
	require.Equal(t, "RCS/567/2023", d.Params.Get("caseno"))
	require.Equal(t, "", d.Params.Get("appFlag"))
	require.True(t, d.Params.Has("appFlag"))

	name, ok := d.Filename()
	require.True(t, ok)
	require.Equal(t, "2017_0001_1.pdf", name)

	_, ok = ParseDisplayPdf("https://example.com/a.pdf")
	require.False(t, ok)
}

func TestTokenAndCaptchaSrc(t *testing.T) {
	p, _ := newTestParser()
	require.Equal(t, "tok123", p.AppToken(`<form><input type="hidden" id="app_token" value=" tok123 "></form>`))
	require.Equal(t, "", p.AppToken(`<p>none</p>`))

	src, ok := p.CaptchaImageSrc(`<div><img id="captcha_image" src="/ecourtindia_v6/vendor/securimage/securimage_show.php?abc"></div>`)
	require.True(t, ok)
	require.Equal(t, "/ecourtindia_v6/vendor/securimage/securimage_show.php?abc", src)
}
