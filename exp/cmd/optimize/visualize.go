package main

import (
	"exp/internal/db"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func visualizeMain(outputDir string) {
	results, err := database.ListDetailed()
	if err != nil {
		log.Fatalf("Failed to load results: %v", err)
	}
	if len(results) == 0 {
		log.Println("No results to visualize")
		return
	}
	log.Printf("Loaded %d test results\n", len(results))

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	pages := []struct {
		file  string
		chart interface{ Render(io.Writer) error }
	}{
		{"heatmap_levels_strength.html", heatmapChart(results)},
		{"quality_psnr_vs_success.html", qualityChart(results)},
		{"scatter_embedcount_vs_success.html", scatterChart(results)},
	}
	for _, p := range pages {
		path := filepath.Join(outputDir, p.file)
		if err := writeChart(path, p.chart); err != nil {
			log.Printf("write %s: %v", path, err)
			continue
		}
		log.Printf("generated %s", path)
	}
	log.Printf("\nAll visualizations saved to: %s\n", outputDir)
}

func writeChart(path string, chart interface{ Render(io.Writer) error }) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type rate struct {
	total, success int
	psnr, ssim     float64
}

func (r *rate) add(res *db.DetailedResult) {
	r.total++
	if res.Success {
		r.success++
	}
	r.psnr += res.PSNR
	r.ssim += res.SSIM
}

func (r rate) successRate() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.success) / float64(r.total) * 100
}

func (r rate) avgPSNR() float64 {
	if r.total == 0 {
		return 0
	}
	return r.psnr / float64(r.total)
}

func (r rate) avgSSIM() float64 {
	if r.total == 0 {
		return 0
	}
	return r.ssim / float64(r.total)
}

// heatmapChart creates a heatmap of levels vs strength with success rate
// as intensity.
func heatmapChart(results []*db.DetailedResult) *charts.HeatMap {
	type key struct {
		levels   int
		strength float64
	}
	stats := make(map[key]*rate)
	levelSet := make(map[int]bool)
	strengthSet := make(map[float64]bool)
	for _, r := range results {
		k := key{r.Levels, r.Strength}
		if stats[k] == nil {
			stats[k] = &rate{}
		}
		stats[k].add(r)
		levelSet[r.Levels] = true
		strengthSet[r.Strength] = true
	}

	var levels []int
	for l := range levelSet {
		levels = append(levels, l)
	}
	var strengths []float64
	for s := range strengthSet {
		strengths = append(strengths, s)
	}
	sort.Ints(levels)
	sort.Float64s(strengths)

	var xLabels, yLabels []string
	for _, s := range strengths {
		xLabels = append(xLabels, fmt.Sprintf("S=%.2f", s))
	}
	for _, l := range levels {
		yLabels = append(yLabels, fmt.Sprintf("L=%d", l))
	}

	var heatmapData []opts.HeatMapData
	for i, l := range levels {
		for j, s := range strengths {
			successRate := 0.0
			if st := stats[key{l, s}]; st != nil {
				successRate = st.successRate()
			}
			heatmapData = append(heatmapData, opts.HeatMapData{
				Value: [3]any{j, i, successRate},
			})
		}
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Levels vs Strength Success Rate Heatmap",
			Subtitle: "Success rate (%) over all sizes and JPEG qualities",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Strength",
			Type:      "category",
			Data:      xLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Levels",
			Type:      "category",
			Data:      yLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			Range:      []float32{0, 100},
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#fee090", "#f46d43", "#a50026"}},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	heatmap.AddSeries("Success Rate", heatmapData)

	return heatmap
}

// qualityChart creates a dual-axis line chart with PSNR and success
// rate per strength.
func qualityChart(results []*db.DetailedResult) *charts.Line {
	stats := make(map[float64]*rate)
	for _, r := range results {
		if stats[r.Strength] == nil {
			stats[r.Strength] = &rate{}
		}
		stats[r.Strength].add(r)
	}
	var strengths []float64
	for s := range stats {
		strengths = append(strengths, s)
	}
	sort.Float64s(strengths)

	var xAxisData []string
	var psnrData, successData []opts.LineData
	minPSNR := math.Inf(1)
	for _, s := range strengths {
		st := stats[s]
		xAxisData = append(xAxisData, fmt.Sprintf("%.2f", s))
		psnrData = append(psnrData, opts.LineData{
			Value: st.avgPSNR(),
			Name:  fmt.Sprintf("S=%.2f: PSNR=%.2fdB SSIM=%.4f (n=%d)", s, st.avgPSNR(), st.avgSSIM(), st.total),
		})
		successData = append(successData, opts.LineData{
			Value: st.successRate(),
			Name:  fmt.Sprintf("S=%.2f: Success=%.1f%% (n=%d)", s, st.successRate(), st.total),
		})
		minPSNR = min(minPSNR, st.avgPSNR())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Image Quality (PSNR) vs Success Rate by Strength",
			Subtitle: "Trade-off between distortion and extraction after JPEG",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Strength",
			Type: "category",
			Data: xAxisData,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "PSNR (dB)",
			Type: "value",
			Min:  math.Floor(minPSNR),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)
	line.SetXAxis(xAxisData)

	line.AddSeries("PSNR (dB)", psnrData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	// Extend Y-axis for dual axis (must be done before adding the second series)
	line.ExtendYAxis(opts.YAxis{
		Name: "Success Rate (%)",
		Type: "value",
		Min:  0,
		Max:  100,
		AxisLabel: &opts.AxisLabel{
			Formatter: "{value}%",
		},
	})
	line.AddSeries("Success Rate (%)", successData,
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			YAxisIndex: 1,
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
	)

	printQualityTable(strengths, stats)
	return line
}

// scatterChart plots embed count against success rate, one series
// per JPEG quality.
func scatterChart(results []*db.DetailedResult) *charts.Scatter {
	type key struct {
		quality int
		count   float64
	}
	stats := make(map[key]*rate)
	for _, r := range results {
		// bucket embed counts on a log2 scale
		k := key{r.Quality, math.Exp2(math.Floor(math.Log2(r.EmbedCount)))}
		if stats[k] == nil {
			stats[k] = &rate{}
		}
		stats[k].add(r)
	}

	series := make(map[int][]opts.ScatterData)
	for k, st := range stats {
		series[k.quality] = append(series[k.quality], opts.ScatterData{
			Value:      []any{k.count, st.successRate()},
			Symbol:     "circle",
			SymbolSize: 10,
			Name:       fmt.Sprintf("Q=%d,EC>=%.0f,Sample=%d", k.quality, k.count, st.total),
		})
	}
	var qualities []int
	for q := range series {
		qualities = append(qualities, q)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(qualities)))

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Embed Count vs Success Rate"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "EmbedCount",
			Type: "log",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Success Rate (%)",
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
	)
	for _, q := range qualities {
		name := fmt.Sprintf("JPEG q%d", q)
		if q == 0 {
			name = "lossless"
		}
		scatter.AddSeries(name, series[q])
	}

	return scatter
}

// printQualityTable prints a summary table of PSNR and success rate
func printQualityTable(strengths []float64, stats map[float64]*rate) {
	log.Printf("\n=== Image Quality Analysis ===\n")
	log.Printf("%-10s | %9s | %8s | %10s | %8s\n", "Strength", "PSNR", "SSIM", "Success%%", "Samples")
	log.Printf("%s\n", "-----------+-----------+----------+------------+----------")

	var optimal float64 = -1
	for _, s := range strengths {
		st := stats[s]
		log.Printf("%-10.2f | %7.2fdB | %8.6f | %9.1f%% | %8d\n",
			s, st.avgPSNR(), st.avgSSIM(), st.successRate(), st.total)
		if st.avgPSNR() >= 40 && (optimal < 0 || st.successRate() > stats[optimal].successRate()) {
			optimal = s
		}
	}

	if optimal >= 0 {
		st := stats[optimal]
		log.Printf("\n=== Optimal Strength (PSNR >= 40dB) ===\n")
		log.Printf("Strength=%.2f: PSNR=%.2fdB, Success Rate=%.1f%% (n=%d)\n",
			optimal, st.avgPSNR(), st.successRate(), st.total)
	}
	log.Printf("\n")
}
