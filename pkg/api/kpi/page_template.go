package kpi

// Page copy.
const (
	PageTitle       = "Financial KPI Extractor"
	PageIcon        = "💹"
	Subtitle        = "Extract Revenue & EPS (Actual vs Expected) from any financial article"
	CardHeading     = "Enter financial news or earnings report text"
	Placeholder     = "Enter earnings report or financial article here..."
	BusyText        = "Analyzing financial data..."
	TableHeading    = "Extracted Financial KPIs"
	ChartsHeading   = "Performance Visualization"
	RevenueTitle    = "Revenue (Billions)"
	EPSTitle        = "EPS (Cents/Dollars)"
	DownloadCSV     = "Download CSV"
	DownloadXLSX    = "Download Excel"
	SampleButton    = "Use Sample Text"
	ExtractButton   = "Extract KPIs"
	noticeIcon      = "⚠"
)

const introMarkdown = `Paste an earnings story or press release and press **Extract KPIs**.
Figures are shown exactly as the article states them, next to the analyst consensus.`

const pageHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="icon" type="image/svg+xml" href="/favicon.svg">
{{if .ShowResult}}<script src="{{.ChartScript}}"></script>{{end}}
<style>
body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #ffffff;
    color: #1f1f1f;
    margin: 0;
}
.page {
    max-width: 736px;
    margin: 0 auto;
    padding: 3rem 1rem 4rem;
}
.title-heading {
    text-align: center;
    font-size: 32px;
    font-weight: 600;
    margin-bottom: 0.3rem;
    color: #1f1f1f;
}
.subtitle {
    text-align: center;
    font-size: 16px;
    color: #5a5a5a;
    margin-bottom: 2rem;
}
.card {
    border: 1px solid #e6e6e6;
    border-radius: 8px;
    padding: 1rem 1.25rem 1.5rem;
}
.card h3 { margin-top: 0.5rem; }
.intro { color: #5a5a5a; font-size: 14px; }
textarea {
    width: 100%;
    box-sizing: border-box;
    height: 200px;
    padding: 0.75rem;
    font: inherit;
    border: 1px solid #d0d0d0;
    border-radius: 5px;
    resize: vertical;
}
.buttons {
    display: flex;
    gap: 1rem;
    margin-top: 0.75rem;
}
.buttons button, .downloads a {
    flex: 1;
    padding: 0.5rem 0.75rem;
    font: inherit;
    border-radius: 5px;
    border: 1px solid #d0d0d0;
    background: #ffffff;
    color: #1f1f1f;
    cursor: pointer;
    text-align: center;
    text-decoration: none;
}
.buttons button.primary {
    background: #ff4b4b;
    border-color: #ff4b4b;
    color: #ffffff;
}
.buttons button:disabled { opacity: 0.6; cursor: wait; }
.busy { display: none; margin-top: 0.75rem; color: #5a5a5a; }
.busy.active { display: block; }
.notice {
    padding: 10px;
    border-radius: 5px;
    margin-top: 10px;
}
.notice.warning { background: #fffce7; color: #926c05; }
.notice.error { background: #ffecec; color: #7d353b; }
.centered-success {
    text-align: center;
    color: #007026;
    padding: 10px;
    background-color: #dff0d8;
    border-radius: 5px;
    margin-top: 10px;
    margin-bottom: 10px;
    font-weight: 600;
}
.section-header {
    text-align: center;
    font-size: 18px;
    font-weight: 600;
    margin-top: 25px;
    margin-bottom: 10px;
    color: #333;
}
table.kpis {
    width: 100%;
    border-collapse: collapse;
}
table.kpis th, table.kpis td {
    border: 1px solid #e6e6e6;
    padding: 0.4rem 0.6rem;
    text-align: left;
}
table.kpis th { background: #fafafa; font-weight: 500; }
.charts {
    display: flex;
    gap: 1rem;
}
.charts > div { flex: 1; min-width: 0; }
.charts .container, .charts .item { margin: 0 auto; }
.chart-title {
    text-align: center;
    font-size: 14px;
    font-weight: 500;
    color: #666;
    margin-bottom: 5px;
}
.downloads {
    display: flex;
    gap: 1rem;
    margin-top: 1.5rem;
}
</style>
</head>
<body>
<div class="page">
<div class="title-heading">{{.Title}}</div>
<div class="subtitle">{{.Subtitle}}</div>

<div class="card">
<h3>{{.CardHeading}}</h3>
<div class="intro">{{.Intro}}</div>
<form id="kpi-form" method="post" action="/extract">
<textarea name="paragraph" placeholder="{{.Placeholder}}" aria-label="Paste article text below:">{{.Input}}</textarea>
<div class="buttons">
<button type="submit" formaction="/sample" name="action" value="sample">{{.SampleButton}}</button>
<button type="submit" class="primary" name="action" value="extract">{{.ExtractButton}}</button>
</div>
<div class="busy{{if .Busy}} active{{end}}" id="busy">{{.BusyText}}</div>
</form>

{{with .Notice}}<div class="notice {{.Level}}">{{$.NoticeIcon}} {{.Message}}</div>{{end}}

{{if .ShowResult}}
<div class="centered-success">✔ {{.SuccessMessage}}</div>

<div class="section-header">{{.TableHeading}}</div>
<table class="kpis">
<thead><tr><th>Measure</th><th>Estimated</th><th>Actual</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Measure}}</td><td>{{.Estimated}}</td><td>{{.Actual}}</td></tr>
{{end}}</tbody>
</table>

<div class="section-header">{{.ChartsHeading}}</div>
<div class="charts">
<div>
<div class="chart-title">{{.RevenueTitle}}</div>
{{.RevenueChart}}
</div>
<div>
<div class="chart-title">{{.EPSTitle}}</div>
{{.EPSChart}}
</div>
</div>

<div class="downloads">
<a href="/export/financial_kpis.csv" download>{{.DownloadCSV}}</a>
<a href="/export/financial_kpis.xlsx" download>{{.DownloadXLSX}}</a>
</div>
{{end}}
</div>
</div>
<script>
(function () {
    var form = document.getElementById("kpi-form");
    form.addEventListener("submit", function (e) {
        var buttons = form.querySelectorAll("button");
        if (e.submitter && e.submitter.value === "extract") {
            document.getElementById("busy").classList.add("active");
        }
        setTimeout(function () {
            buttons.forEach(function (b) { b.disabled = true; });
        }, 0);
    });
})();
</script>
</body>
</html>
`
