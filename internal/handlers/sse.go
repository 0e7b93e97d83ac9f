package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"ecom-dashboard/internal/models"
	"ecom-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

var summaryTemplate = template.Must(template.New("summaryTable").Funcs(template.FuncMap{
	"money": func(v float64) string {
		if math.IsNaN(v) {
			return "no data"
		}
		return fmt.Sprintf("$%.2f", v)
	},
	"pct": func(v float64) string {
		if math.IsNaN(v) {
			return "no data"
		}
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"float": func(m models.Metric) float64 { return float64(m) },
}).Parse(`
<div id="summary-content">
<table class="modern-table">
<thead><tr><th>Metric</th><th>Current</th><th>Previous</th><th>Growth</th></tr></thead>
<tbody>
<tr><td>Revenue</td><td><strong>{{money .CurrentRevenue}}</strong></td><td>{{money .PreviousRevenue}}</td><td>{{pct .RevenueGrowth}}</td></tr>
<tr><td>Average Order Value</td><td><strong>{{money (float .CurrentAOV)}}</strong></td><td>{{money (float .PreviousAOV)}}</td><td>{{pct (float .AOVGrowth)}}</td></tr>
<tr><td>Orders</td><td><strong>{{.CurrentOrders}}</strong></td><td>{{.PreviousOrders}}</td><td>{{pct .OrderGrowth}}</td></tr>
<tr><td>Avg Monthly Growth</td><td colspan="3">{{pct (float .AvgMonthlyGrowth)}}</td></tr>
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics   *services.Analytics
	logger      *slog.Logger
	defaultYear int
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, defaultYear int) *SSEHandlers {
	return &SSEHandlers{
		analytics:   analytics,
		logger:      logger,
		defaultYear: defaultYear,
	}
}

// period reads year/month from the query, falling back to the configured
// default year so the dashboard can load before the user picks a period.
func (h *SSEHandlers) period(r *http.Request) (int, int) {
	year := h.defaultYear
	if parsed, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && parsed > 0 {
		year = parsed
	}
	month := 0
	if parsed, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && parsed >= 1 && parsed <= 12 {
		month = parsed
	}
	return year, month
}

func (h *SSEHandlers) renderSummaryTable(summary models.RevenueSummary) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, summary)
	return buf.String(), err
}

func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	year, month := h.period(r)

	summary, err := h.analytics.RevenueSummary(r.Context(), year, month)
	if err != nil {
		h.logger.Error("build revenue summary", "error", err)
		return
	}

	html, err := h.renderSummaryTable(summary)
	if err != nil {
		h.logger.Error("render summary table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	year, month := h.period(r)

	signals, err := h.chartSignals(year, month)
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	sse.PatchElements(`<div id="charts-content">✅ Chart data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) chartSignals(year, month int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"monthlyRevenue": h.analytics.MonthlyRevenue(year),
		"categorySales":  h.analytics.CategorySales(year, month),
		"stateSales":     h.analytics.SalesByState(year, month),
		"reviewScores":   h.analytics.ReviewScoreDistribution(year, month),
		"reviewDelivery": h.analytics.ReviewByDeliveryTime(year, month),
		"statusShares":   h.analytics.StatusDistribution(year),
	})
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	year, month := h.period(r)

	summary, err := h.analytics.RevenueSummary(r.Context(), year, month)
	if err != nil {
		h.logger.Error("build revenue summary", "error", err)
		return
	}

	html, err := h.renderSummaryTable(summary)
	if err != nil {
		h.logger.Error("render summary table", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := h.chartSignals(year, month)
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
