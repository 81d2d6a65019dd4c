package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fixturecast/predictor-api/internal/models"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/predictions", "prediction endpoint")
	teamA := flag.Int64("a", 1, "competitor A id")
	teamB := flag.Int64("b", 2, "competitor B id")
	nameA := flag.String("name-a", "", "competitor A display name")
	nameB := flag.String("name-b", "", "competitor B display name")
	asOf := flag.String("date", "", "as-of date, YYYY-MM-DD")
	flag.Parse()

	payload, err := json.Marshal(models.PredictionRequest{
		CompetitorAID:   *teamA,
		CompetitorBID:   *teamB,
		CompetitorAName: *nameA,
		CompetitorBName: *nameB,
		AsOfDate:        *asOf,
	})
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL, bytes.NewBuffer(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Response: %s\n", string(body))
		log.Fatal("Prediction failed")
	}

	var pred models.PredictionResponse
	if err := json.Unmarshal(body, &pred); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}
	sum := pred.ProbA + pred.ProbDraw + pred.ProbB
	fmt.Printf("%s (%.0f%%) via %s\n", pred.PredictedOutcome, pred.ConfidenceScore*100, pred.ModelVersion)
	fmt.Printf("Goals: %.1f - %.1f\n", pred.GoalsA, pred.GoalsB)
	fmt.Printf("Probabilities: %.2f / %.2f / %.2f (sum %.2f)\n", pred.ProbA, pred.ProbDraw, pred.ProbB, sum)
	for _, in := range pred.Insights {
		fmt.Println(" -", in)
	}
	if sum < 0.97 || sum > 1.03 {
		log.Fatal("Probabilities do not sum to one")
	}
}
