// multithread is a multi-threading command line trainer.
// Usage:
/*
  multithread \
    -corpus=./testdata/corpus.gz \
    -config='{"topics": 20, "workers": 8}' \
    -addr=:6060
*/
// Options may also be given in a YAML or JSON file by -config_file,
// and defaults are read from .env: LDA_CONFIG_FILE, LDA_CORPUS and
// LDA_ADDR.  Without -corpus, a synthetic corpus is trained.
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/neil-justice/lda-sub000/core/gibbs"
	"github.com/neil-justice/lda-sub000/core/utils"
)

func main() {
	_ = godotenv.Load(".env")

	var overrides []string
	flag.Func("config", "JSON encoded configuration, applied over -config_file",
		func(v string) error {
			overrides = append(overrides, v)
			return nil
		})
	flagConfigFile := flag.String("config_file", os.Getenv("LDA_CONFIG_FILE"),
		"YAML or JSON configuration file, overridden by -config")
	flagCorpus := flag.String("corpus", os.Getenv("LDA_CORPUS"), "Corpus file")
	flagMinDocLen := flag.Int("minlen", 1, "minimum document length")
	flagMaxDocLen := flag.Int("maxlen", -1, "maximum document length")
	flagSynthetic := flag.Int("synthetic", 1000,
		"Number of synthetic documents if no corpus is given")
	flagTrans := flag.String("translation", "", "Token translation file")
	flagAddr := flag.String("addr", envOr("LDA_ADDR", ":6060"),
		"HTTP status page address")
	flagTop := flag.Int("top", 10, "Words printed per topic")
	flag.Parse()

	cfg := gibbs.DefaultConfig()
	if *flagConfigFile != "" {
		c, e := gibbs.LoadConfig(*flagConfigFile)
		if e != nil {
			log.Fatal(e)
		}
		cfg = *c
	}
	for _, v := range overrides {
		if e := cfg.Set(v); e != nil {
			log.Fatal(e)
		}
	}
	if e := cfg.Validate(); e != nil {
		log.Fatalf("Invalid configuration: %v", e)
	}
	log.Infof("Configuration: %s", cfg.String())

	var corpus [][]string
	if *flagCorpus != "" {
		corpus = utils.LoadCorpusOrDie(*flagCorpus, *flagMinDocLen, *flagMaxDocLen)
	} else {
		log.Infof("No corpus given, synthesizing %d documents", *flagSynthetic)
		corpus = gibbs.SynthesizeCorpus(rand.New(rand.NewSource(cfg.Seed)),
			[][]string{
				{"apple", "orange", "banana", "cherry"},
				{"cat", "tiger", "lion", "puma"},
				{"go", "rust", "python", "java"},
			}, *flagSynthetic, 50)
	}

	var tr utils.Trans
	if *flagTrans != "" {
		var e error
		if tr, e = utils.LoadTranslation(*flagTrans); e != nil {
			log.Fatal(e)
		}
	}

	e, err := gibbs.NewEngine(corpus, cfg)
	if err != nil {
		log.Fatalf("Cannot create engine: %v", err)
	}
	defer e.Close()

	if *flagAddr != "" {
		cs := utils.EnableExpvar(*flagAddr)
		e.OnCycle(cs.Record)
		http.Handle("/topics", utils.NewTopicsHandler(e, *flagTop, tr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := e.Run(ctx, cfg.Cycles); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Errorf("Training failed: %v", err)
			log.Flush()
			os.Exit(1)
		}
		log.Infof("Early terminated by signal after %d cycles.", e.Cycle())
	}

	if pp, err := e.Perplexity(); err == nil {
		log.Infof("Final perplexity %f, optimizer %+v", pp, e.OptimizerStats())
	}
	utils.PrintTopics(os.Stdout, utils.DescribeTopics(e, *flagTop, tr))
	log.Flush()
}

func envOr(key, value string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return value
}
