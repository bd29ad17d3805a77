package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldsKeepOrder(t *testing.T) {
	f := Fields{}
	f.Set("Filing Number", "123")
	f.Set("CNR Number", "MHPU010001232024")
	f.Set("Filing Number", "124")

	value, ok := f.Get("Filing Number")
	require.True(t, ok)
	require.Equal(t, "124", value)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t, `{"Filing Number":"124","CNR Number":"MHPU010001232024"}`, string(out))
}

func TestNewCaseRecordSerializesEmptyLists(t *testing.T) {
	out, err := json.Marshal(NewCaseRecord())
	require.NoError(t, err)
	require.JSONEq(t, `{
		"case_details": {},
		"case_status": {},
		"parties": {"petitioners": [], "respondents": []},
		"acts": [],
		"subordinate_court": {},
		"hearings": [],
		"orders": []
	}`, string(out))
}
