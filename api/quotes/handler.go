// Package quotes exposes the quoting engine over HTTP. Each request runs a
// one-shot configurator session: select packages, apply parameters, price,
// respond. No state is retained between requests.
package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/logger"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/internal/eventbus"
)

// QuoteRequest selects packages and parameters for a one-shot quote.
type QuoteRequest struct {
	Location     string             `json:"location"`
	GlobalParams map[string]any     `json:"global_params"`
	Packages     []PackageSelection `json:"packages"`
}

// PackageSelection adds Count instances of a package, each with the given
// local parameters. Count defaults to 1.
type PackageSelection struct {
	PackageID string         `json:"package_id"`
	Count     int            `json:"count"`
	Params    map[string]any `json:"params"`
}

// LineItemView is the response form of one line item with its money
// breakdown.
type LineItemView struct {
	ID                string  `json:"id"`
	InstanceID        string  `json:"instance_id"`
	PackageID         string  `json:"package_id"`
	ProductID         string  `json:"product_id"`
	Name              string  `json:"name"`
	Unit              string  `json:"unit"`
	GroupID           string  `json:"group_id"`
	Category          string  `json:"category"`
	Quantity          float64 `json:"quantity"`
	PurchasePrice     float64 `json:"purchase_price"`
	SalesPricePerUnit float64 `json:"sales_price_per_unit"`
	MaterialTotal     float64 `json:"material_total"`
	LaborCost         float64 `json:"labor_cost"`
	Total             float64 `json:"total"`
	MissingPrice      bool    `json:"missing_price,omitempty"`
	MissingColumn     bool    `json:"missing_column,omitempty"`
}

// DiagnosticView is the response form of one resolution diagnostic.
type DiagnosticView struct {
	Kind    string `json:"kind"`
	GroupID string `json:"group_id"`
	Detail  string `json:"detail,omitempty"`
}

// TotalsView is the response form of the aggregated figures.
type TotalsView struct {
	Material   float64            `json:"material"`
	Labor      float64            `json:"labor"`
	Protection float64            `json:"protection"`
	Grand      float64            `json:"grand"`
	ByPackage  map[string]float64 `json:"by_package"`
	ByInstance map[string]float64 `json:"by_instance"`
}

// QuoteResponse is the full quote result.
type QuoteResponse struct {
	QuoteID     string           `json:"quote_id"`
	Location    string           `json:"location"`
	Items       []LineItemView   `json:"items"`
	Protection  []LineItemView   `json:"protection"`
	Diagnostics []DiagnosticView `json:"diagnostics"`
	Totals      TotalsView       `json:"totals"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the quote API.
type Handler struct {
	Providers session.Providers
	Log       logger.Logger
	Sink      quotemetrics.Sink
	// Bus receives the session's recalculation and diagnostic events,
	// e.g. for the MQTT quote publisher. May be nil.
	Bus eventbus.EventBus
}

// Handle is the fasthttp request handler.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	switch {
	case string(ctx.Path()) == "/healthz" && ctx.IsGet():
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case string(ctx.Path()) == "/quote" && ctx.IsPost():
		h.handleQuote(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (h *Handler) handleQuote(ctx *fasthttp.RequestCtx) {
	var req QuoteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	resp, err := h.Quote(ctx, req)
	if err != nil {
		status := fasthttp.StatusBadRequest
		if errors.Is(err, catalogue.ErrCatalogUnavailable) {
			status = fasthttp.StatusServiceUnavailable
		}
		h.writeError(ctx, status, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

// Quote runs the one-shot session for a request.
func (h *Handler) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	opts := []session.Option{}
	if h.Log != nil {
		opts = append(opts, session.WithLogger(h.Log))
	}
	if h.Sink != nil {
		opts = append(opts, session.WithMetrics(h.Sink))
	}
	if h.Bus != nil {
		opts = append(opts, session.WithBus(h.Bus))
	}
	sess, err := session.New(ctx, h.Providers, req.Location, opts...)
	if err != nil {
		return nil, err
	}
	for key, raw := range req.GlobalParams {
		if err := sess.SetGlobalParam(key, raw); err != nil {
			return nil, err
		}
	}
	for _, sel := range req.Packages {
		count := sel.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			instID, err := sess.SelectPackage(sel.PackageID)
			if err != nil {
				return nil, err
			}
			for key, raw := range sel.Params {
				if err := sess.SetInstanceParam(instID, key, raw); err != nil {
					return nil, err
				}
			}
		}
	}
	return h.buildResponse(sess), nil
}

func (h *Handler) buildResponse(sess *session.Session) *QuoteResponse {
	resp := &QuoteResponse{
		QuoteID:  sess.ID(),
		Location: sess.Location(),
	}
	for _, it := range sess.LineItems() {
		resp.Items = append(resp.Items, itemView(sess, it))
	}
	for _, it := range sess.ProtectionDeviceItems() {
		resp.Protection = append(resp.Protection, itemView(sess, it))
	}
	for _, d := range sess.Diagnostics() {
		resp.Diagnostics = append(resp.Diagnostics, DiagnosticView{
			Kind:    string(d.Kind),
			GroupID: d.GroupID,
			Detail:  d.Detail,
		})
	}
	t := sess.Totals()
	resp.Totals = TotalsView{
		Material:   t.Material,
		Labor:      t.Labor,
		Protection: t.Protection,
		Grand:      t.Grand,
		ByPackage:  t.ByPackage,
		ByInstance: t.ByInstance,
	}
	return resp
}

func itemView(sess *session.Session, it model.LineItem) LineItemView {
	view := LineItemView{
		ID:         it.ID,
		InstanceID: it.InstanceID,
		PackageID:  it.PackageID,
		ProductID:  it.ProductID,
		Name:       it.Name,
		Unit:       it.Unit,
		GroupID:    it.GroupID,
		Category:   it.Category,
		Quantity:   it.Quantity,
	}
	if cost, ok := sess.ItemCost(it.ID); ok {
		view.PurchasePrice = cost.PurchasePrice
		view.SalesPricePerUnit = cost.SalesPricePerUnit
		view.MaterialTotal = cost.MaterialTotal
		view.LaborCost = cost.LaborCost
		view.Total = cost.Total
		view.MissingPrice = cost.Flags.MissingPrice
		view.MissingColumn = cost.Flags.MissingColumn
	}
	return view
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, status int, err error) {
	if h.Log != nil {
		h.Log.Warnf("quote request failed: %v", err)
	}
	h.writeJSON(ctx, status, errorResponse{Error: err.Error()})
}
