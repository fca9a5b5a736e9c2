package experiment

import (
	"github.com/gcbaptista/searchlab/model"
)

// Effectiveness holds the set and rank measures of one ranked result list.
type Effectiveness struct {
	Retrieved         int     `json:"retrieved"`
	Relevant          int     `json:"relevant"`
	RelevantRetrieved int     `json:"relevant_retrieved"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	AveragePrecision  float64 `json:"average_precision"`
}

// Evaluate measures hits, in rank order, against the number of relevant documents
// in the collection. Hits without a relevance flag count as not relevant.
func Evaluate(hits []model.ResultRecord, relevant int) Effectiveness {
	e := Effectiveness{Retrieved: len(hits), Relevant: relevant}

	var precisionSum float64
	for rank, hit := range hits {
		if hit.Relevant == nil || !*hit.Relevant {
			continue
		}
		e.RelevantRetrieved++
		precisionSum += float64(e.RelevantRetrieved) / float64(rank+1)
	}

	if e.Retrieved > 0 {
		e.Precision = float64(e.RelevantRetrieved) / float64(e.Retrieved)
	}
	if relevant > 0 {
		e.Recall = float64(e.RelevantRetrieved) / float64(relevant)
		e.AveragePrecision = precisionSum / float64(relevant)
	}
	return e
}
