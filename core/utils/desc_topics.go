package utils

import (
	"fmt"
	"html/template"
	"io"
	"net/http"

	log "github.com/golang/glog"

	"github.com/neil-justice/lda-sub000/core/gibbs"
)

type TopicDesc struct {
	Id     int
	Nt     int64
	Alpha  float64
	Tokens []TokenDesc
}

type TokenDesc struct {
	Word  string
	Score float64
}

// DescribeTopics lists, for every topic of e, its size, its prior and
// at most maxWordsPerTopic words ranked by term score.  Words are
// translated by tr, which may be nil.
func DescribeTopics(e *gibbs.Engine, maxWordsPerTopic int, tr Trans) []*TopicDesc {
	log.Infof("Generating topic descriptions ... ")
	terms := e.TermScore(maxWordsPerTopic)
	sizes := e.TopicSizes()
	alpha := e.Alpha()

	descs := make([]*TopicDesc, len(terms))
	for topic, ts := range terms {
		descs[topic] = &TopicDesc{
			Id:     topic,
			Nt:     sizes[topic],
			Alpha:  alpha[topic],
			Tokens: make([]TokenDesc, 0, len(ts)),
		}
		for _, t := range ts {
			descs[topic].Tokens = append(descs[topic].Tokens,
				TokenDesc{tr.Translate(t.Word), t.Score})
		}
	}
	return descs
}

// PrintTopics writes one line per topic.
func PrintTopics(w io.Writer, descs []*TopicDesc) {
	for _, d := range descs {
		fmt.Fprintf(w, "Topic %05d Nt %05d Alpha %.4f:", d.Id, d.Nt, d.Alpha)
		for _, t := range d.Tokens {
			fmt.Fprintf(w, " %s (%.4f)", t.Word, t.Score)
		}
		fmt.Fprintln(w)
	}
}

var topicsPage = template.Must(template.New("topics").Parse(`<html>
<head><title>Topics</title></head>
<body>
<table>
<tr><th>Topic</th><th>Nt</th><th>Alpha</th><th>Words</th></tr>
{{range .}}<tr><td>{{.Id}}</td><td>{{.Nt}}</td><td>{{printf "%.4f" .Alpha}}</td><td>{{range .Tokens}}{{.Word}} {{end}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// NewTopicsHandler serves the current topics of e as an HTML table.
func NewTopicsHandler(e *gibbs.Engine, maxWordsPerTopic int, tr Trans) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		descs := DescribeTopics(e, maxWordsPerTopic, tr)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := topicsPage.Execute(w, descs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
