package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	log "github.com/golang/glog"
	cmprs "github.com/wangkuiyi/compress_io"
)

// open returns a reader of filename, which is decompressed according
// to its extension, e.g. .gz.
func open(filename string) (io.ReadCloser, error) {
	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		if e == nil {
			e = fmt.Errorf("cannot decompress %s", filename)
		}
		return nil, e
	}
	return r, nil
}

// LoadCorpus reads one document per line, with tokens separated by
// white space.  Documents shorter than minLen or longer than maxLen
// tokens are skipped; a non-positive bound is ignored.
func LoadCorpus(filename string, minLen, maxLen int) ([][]string, error) {
	r, e := open(filename)
	if e != nil {
		return nil, fmt.Errorf("Cannot open corpus file %s: %w", filename, e)
	}
	defer r.Close()

	corpus := make([][]string, 0)
	scanned := 0
	s := bufio.NewReader(r)
	for {
		line, e := s.ReadString('\n')
		if e != nil && e != io.EOF {
			return nil, fmt.Errorf("Error reading %s: %w", filename, e)
		}
		if len(line) > 0 {
			scanned++
			d := strings.Fields(line)
			if (minLen <= 0 || len(d) >= minLen) && (maxLen <= 0 || len(d) <= maxLen) {
				corpus = append(corpus, d)
			}
		}
		if e == io.EOF {
			break
		}
	}

	log.Infof("Loaded corpus %s: %d out of %d documents.", filename,
		len(corpus), scanned)
	return corpus, nil
}

func LoadCorpusOrDie(filename string, minLen, maxLen int) [][]string {
	corpus, e := LoadCorpus(filename, minLen, maxLen)
	if e != nil {
		log.Fatal(e)
	}
	if len(corpus) == 0 {
		log.Fatalf("Corpus %s contains no valid document!", filename)
	}
	return corpus
}

// Trans maps tokens to human readable names.
type Trans map[string]string

// LoadTranslation reads lines of a token followed by its name.
func LoadTranslation(filename string) (Trans, error) {
	r, e := open(filename)
	if e != nil {
		return nil, fmt.Errorf("Cannot open translation file %s: %w", filename, e)
	}
	defer r.Close()

	trans := make(Trans)
	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 2 {
			return nil, fmt.Errorf("%s: %v has less than 2 fields", filename, fs)
		}
		if _, exist := trans[fs[0]]; exist {
			return nil, fmt.Errorf("%s: duplicated token %s", filename, fs[0])
		}
		trans[fs[0]] = strings.Join(fs[1:], " ")
	}
	if e := s.Err(); e != nil {
		return nil, fmt.Errorf("Reading %s error: %w", filename, e)
	}

	log.Infof("Loaded translation %s, %d entries.", filename, len(trans))
	return trans, nil
}

// Translate returns the name of token, or token itself.
func (tr Trans) Translate(token string) string {
	if t, ok := tr[token]; ok {
		return t
	}
	return token
}
