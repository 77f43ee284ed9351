package quotes

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
	infracat "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/internal/eventbus"
)

func testHandler() *Handler {
	static := &infracat.Static{
		Snapshot: &catalogue.Snapshot{
			Packages: map[string]model.Package{
				"pkg-room": {ID: "pkg-room", Name: "Raum", QualityLevel: model.QualityStandard},
			},
			Rules: []model.ItemRule{
				{
					PackageID:    "pkg-room",
					GroupID:      "GRP-SOCKET-1",
					QuantityBase: 2,
					Material: []model.FormulaEntry{
						model.ProductTermEntry{Params: []string{"raumgroesse"}, Coeff: 0.3},
					},
				},
			},
			Products: []model.Product{
				{ID: "SOCK-STD", Name: "Steckdose", Unit: "Stk", UnitPrice: 10, GroupID: "GRP-SOCKET-1", Quality: model.QualityStandard, HoursPerUnit: model.RoleHours{Geselle: 0.25}},
				{ID: "MCB-B16", Name: "LS B16", Unit: "Stk", UnitPrice: 12, GroupID: "GRP-MCB-B16", Quality: model.QualityStandard},
				{ID: "RCD-40", Name: "FI 40A", Unit: "Stk", UnitPrice: 45, GroupID: "GRP-RCD-40", Quality: model.QualityStandard},
				{ID: "MAIN-SW", Name: "Hauptschalter", Unit: "Stk", UnitPrice: 25, GroupID: "GRP-MAIN-SWITCH", Quality: model.QualityStandard},
			},
			Params: map[string]model.ParameterDef{
				"raumgroesse": {Key: "raumgroesse", Type: model.ParamNumber, Default: model.Number(15)},
			},
			Links: []model.ParameterLink{{PackageID: "pkg-room", ParamKey: "raumgroesse"}},
		},
		RateTable: map[string]catalogue.Rates{
			"nord": {
				Wages:         map[model.Role]float64{model.RoleGeselle: 60},
				MarkupPercent: 15,
			},
		},
		Locs: []string{"nord"},
	}
	return &Handler{
		Providers: session.Providers{Catalog: static, Rates: static, Prices: static, Locations: static},
	}
}

func doRequest(h *Handler, method, path string, body []byte) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	h.Handle(&ctx)
	return &ctx
}

func TestHandler_Healthz(t *testing.T) {
	ctx := doRequest(testHandler(), fasthttp.MethodGet, "/healthz", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, "ok", string(ctx.Response.Body()))
}

func TestHandler_NotFound(t *testing.T) {
	ctx := doRequest(testHandler(), fasthttp.MethodGet, "/nope", nil)
	require.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestHandler_Quote(t *testing.T) {
	h := testHandler()
	bus := eventbus.New()
	defer bus.Close()
	h.Bus = bus
	events := bus.Subscribe()

	body, err := json.Marshal(QuoteRequest{
		Location: "nord",
		Packages: []PackageSelection{
			{PackageID: "pkg-room", Params: map[string]any{"raumgroesse": 20.0}},
		},
	})
	require.NoError(t, err)

	ctx := doRequest(h, fasthttp.MethodPost, "/quote", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.NotEmpty(t, resp.QuoteID)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 8.0, resp.Items[0].Quantity)
	require.Equal(t, "SOCK-STD", resp.Items[0].ProductID)
	require.Len(t, resp.Protection, 3) // B16, RCD, main switch
	require.Greater(t, resp.Totals.Grand, 0.0)

	// The session publishes one event per recalculation; the last one
	// carries the final figures.
	var last *session.RecalculatedEvent
	for done := false; !done; {
		select {
		case e := <-events:
			if ev, ok := e.(session.RecalculatedEvent); ok {
				last = &ev
			}
		default:
			done = true
		}
	}
	require.NotNil(t, last)
	require.Equal(t, resp.QuoteID, last.SessionID)
	require.Equal(t, resp.Totals.Grand, last.GrandTotal)
	require.Equal(t, len(resp.Items), last.LineItems)
	require.Equal(t, len(resp.Protection), last.ProtectionItems)
}

func TestHandler_QuoteCountExpandsInstances(t *testing.T) {
	body, _ := json.Marshal(QuoteRequest{
		Location: "nord",
		Packages: []PackageSelection{{PackageID: "pkg-room", Count: 2}},
	})
	ctx := doRequest(testHandler(), fasthttp.MethodPost, "/quote", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.Len(t, resp.Items, 2)
	require.NotEqual(t, resp.Items[0].InstanceID, resp.Items[1].InstanceID)
}

func TestHandler_BadBody(t *testing.T) {
	ctx := doRequest(testHandler(), fasthttp.MethodPost, "/quote", []byte("{not json"))
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestHandler_UnknownPackage(t *testing.T) {
	body, _ := json.Marshal(QuoteRequest{
		Location: "nord",
		Packages: []PackageSelection{{PackageID: "pkg-missing"}},
	})
	ctx := doRequest(testHandler(), fasthttp.MethodPost, "/quote", body)
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestHandler_UnknownLocation(t *testing.T) {
	body, _ := json.Marshal(QuoteRequest{Location: "west"})
	ctx := doRequest(testHandler(), fasthttp.MethodPost, "/quote", body)
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestHandler_CatalogUnavailable(t *testing.T) {
	h := testHandler()
	static := &infracat.Static{Snapshot: &catalogue.Snapshot{}, Locs: []string{"nord"}}
	h.Providers = session.Providers{Catalog: static, Locations: static}

	body, _ := json.Marshal(QuoteRequest{Location: "nord"})
	ctx := doRequest(h, fasthttp.MethodPost, "/quote", body)
	require.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}
