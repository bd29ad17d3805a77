package ecourts

import (
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/scrapers/ecourts/ecourtstest"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testDescriptor(variant Variant, server *httptest.Server) Descriptor {
	desc := Descriptors()[variant]
	switch variant {
	case HighCourtCase, HighCourtCauseList:
		return desc.WithBaseURL(ecourtstest.HighCourtBase(server))
	}
	return desc.WithBaseURL(ecourtstest.DistrictBase(server))
}

func newTestClient(t *testing.T, variant Variant, server *httptest.Server) *Client {
	t.Helper()
	return newTestClientWith(t, variant, server, Options{}, &telemetry.RecordingAPI{})
}

func newTestClientWith(t *testing.T, variant Variant, server *httptest.Server, opts Options, tel telemetry.API) *Client {
	t.Helper()
	opts.Session.RatePerSecond = rate.Inf
	client, err := NewClient(testDescriptor(variant, server), opts, tel)
	require.NoError(t, err)
	return client
}
