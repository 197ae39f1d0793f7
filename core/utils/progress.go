package utils

import (
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"
	"sync"

	log "github.com/golang/glog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/neil-justice/lda-sub000/core/gibbs"
)

// Cycles records the statistics of finished sampling cycles.  It
// implements expvar.Var, and Record can be passed to
// gibbs.Engine.OnCycle.
type Cycles struct {
	mu    sync.Mutex
	stats []gibbs.CycleStats
}

func (cs *Cycles) Record(s gibbs.CycleStats) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.stats = append(cs.stats, s)
}

// Snapshot returns a copy of the recorded statistics.
func (cs *Cycles) Snapshot() []gibbs.CycleStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	r := make([]gibbs.CycleStats, len(cs.stats))
	copy(r, cs.stats)
	return r
}

func (cs *Cycles) String() string { // Implements expvar.Var
	b, e := json.Marshal(cs.Snapshot())
	if e != nil {
		return "null"
	}
	return string(b)
}

// Register adds the progress figures to mux.
func (cs *Cycles) Register(mux *http.ServeMux) {
	mux.Handle("/progress/perplexity", newPerplexityFigureHandler(cs))
	mux.Handle("/progress/duration", newDurationFigureHandler(cs))
}

// EnableExpvar publishes a new Cycles as expvar "Cycles", registers
// the progress figures on http.DefaultServeMux, which also serves
// /debug/vars and /debug/pprof, and serves it on addr.
func EnableExpvar(addr string) *Cycles {
	cs := new(Cycles)
	expvar.Publish("Cycles", cs)
	cs.Register(http.DefaultServeMux)

	go func() {
		if e := http.ListenAndServe(addr, nil); e != nil {
			log.Fatalf("ListenAndServe on %s failed: %v", addr, e)
		}
	}()
	log.Infof("Serving progress on %s", addr)
	return cs
}

func newPerplexityFigureHandler(cs *Cycles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := cs.Snapshot()
		ps := make(plotter.XYs, 0, len(stats))
		for _, s := range stats {
			if s.Perplexity > 0.0 {
				ps = append(ps, plotter.XY{X: float64(s.Cycle), Y: s.Perplexity})
			}
		}
		serveFigure(w, ps, "Cycle", "Perplexity")
	}
}

func newDurationFigureHandler(cs *Cycles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := cs.Snapshot()
		ps := make(plotter.XYs, 0, len(stats))
		for _, s := range stats {
			ps = append(ps, plotter.XY{X: float64(s.Cycle), Y: s.Duration.Seconds()})
		}
		serveFigure(w, ps, "Cycle", "Duration (s)")
	}
}

func serveFigure(w http.ResponseWriter, ps plotter.XYs, xLabel, yLabel string) {
	if len(ps) == 0 {
		http.Error(w, "no cycle recorded yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if e := plotFigure(w, ps, xLabel, yLabel); e != nil {
		http.Error(w, e.Error(), http.StatusInternalServerError)
	}
}

func plotFigure(w io.Writer, ps plotter.XYs, xLabel, yLabel string) error {
	p := plot.New()
	p.Title.Text = strings.Join(os.Args, " ")
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	p.Add(plotter.NewGrid())
	if e := plotutil.AddLinePoints(p, "", ps); e != nil {
		return fmt.Errorf("plotutil.AddLinePoints failed: %v", e)
	}

	wt, e := p.WriterTo(vg.Length(640), vg.Length(480), "png")
	if e != nil {
		return fmt.Errorf("plot.WriterTo failed: %v", e)
	}
	_, e = wt.WriteTo(w)
	return e
}
