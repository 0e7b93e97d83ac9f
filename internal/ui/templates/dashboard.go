// Package templates holds the dashboard page components. The page is a thin
// shell: all figures arrive through the datastar SSE endpoints after load.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>E-commerce Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #f7f7f9; color: #1f2430; }
h1 { font-size: 1.4rem; }
.controls { margin-bottom: 1.5rem; }
.panel { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; margin-bottom: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.modern-table { width: 100%%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: 0.5rem 0.75rem; border-bottom: 1px solid #e3e6ec; }
.modern-table th { color: #5b6472; font-weight: 600; }
</style>
</head>
<body data-signals="{year: %d, month: 0}" data-on-load="@get('/sse/refresh-all?year=%d')">
<h1>E-commerce Business Metrics</h1>
<div class="controls panel">
<label>Year <input type="number" data-bind-year></label>
<label>Month <input type="number" min="0" max="12" data-bind-month></label>
<button data-on-click="@get('/sse/refresh-all?year='+$year+'&month='+$month)">Refresh</button>
</div>
<div class="panel">
<h2>Revenue Summary</h2>
<div id="summary-content">Loading…</div>
</div>
<div class="panel">
<h2>Charts</h2>
<div id="charts-content">Loading…</div>
</div>
</body>
</html>`

// Dashboard renders the dashboard shell preconfigured with the default
// reporting year.
func Dashboard(defaultYear int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, dashboardPage, defaultYear, defaultYear)
		return err
	})
}
