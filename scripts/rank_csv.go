// rank_csv.go: standalone script that submits a destination CSV to the Destinasi API
// and prints the resulting ranking.
//
// Usage:
//
//	go run scripts/rank_csv.go -csv data/destinasi.csv -api http://localhost:8700 -method TOPSIS
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type rankedRow struct {
	Rank  int     `json:"rank"`
	ID    string  `json:"destinasi"`
	Score float64 `json:"skor_total"`
	Top   bool    `json:"top"`
}

type snapshot struct {
	ID      string             `json:"id"`
	Method  string             `json:"method"`
	Weights map[string]float64 `json:"weights"`
	Ranking struct {
		Rows []rankedRow `json:"rows"`
	} `json:"ranking"`
	Frontier []string `json:"frontier"`
}

// parseWeights reads "Criterion=0.2,Other=0.8".
func parseWeights(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: expected name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", pair, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func main() {
	csvPath := flag.String("csv", "data/destinasi.csv", "path to destination CSV")
	apiURL := flag.String("api", "http://localhost:8700", "Destinasi API base URL")
	method := flag.String("method", "AHP", "AHP, SAW or TOPSIS")
	mode := flag.String("mode", "", "weight mode: manual, normalize or random")
	weights := flag.String("weights", "", "comma separated name=value weights")
	clientID := flag.String("client", "rank-csv", "X-Client-ID header value")
	flag.Parse()

	data, err := os.ReadFile(*csvPath)
	if err != nil {
		log.Fatalf("read csv: %v", err)
	}

	q := url.Values{}
	q.Set("method", *method)
	if *mode != "" {
		q.Set("weight_mode", *mode)
	}
	if *weights != "" {
		w, err := parseWeights(*weights)
		if err != nil {
			log.Fatalf("parse weights: %v", err)
		}
		encoded, _ := json.Marshal(w)
		q.Set("weights", string(encoded))
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/rankings/csv?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-Client-ID", *clientID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post csv: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var snap snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		log.Fatalf("decode response: %v", err)
	}

	fmt.Printf("ranking %s (%s)\n", snap.ID, snap.Method)
	for _, r := range snap.Ranking.Rows {
		marker := ""
		if r.Top {
			marker = " 🏆"
		}
		fmt.Printf("%2d. %-20s %.4f%s\n", r.Rank, r.ID, r.Score, marker)
	}
	if len(snap.Frontier) > 0 {
		fmt.Printf("pareto frontier: %s\n", strings.Join(snap.Frontier, ", "))
	}
}
