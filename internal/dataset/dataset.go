// Package dataset holds the fixed demo data: mock support tickets, their
// expert labels, the knowledge base and the routing keyword tables. All
// accessors hand out copies so callers can treat the tables as immutable.
package dataset

import "fmt"

type Category string

const (
	CategoryUploadErrors  Category = "upload_errors"
	CategoryAccountAccess Category = "account_access"
	CategoryDataExport    Category = "data_export"
	CategoryOther         Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryUploadErrors, CategoryAccountAccess, CategoryDataExport, CategoryOther:
		return true
	}
	return false
}

// Ticket is a single simulated customer support request.
type Ticket struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Issue    string `json:"issue"`
}

// GroundTruth is the expert label for one ticket. Used only for scoring,
// never for routing.
type GroundTruth struct {
	Category   Category `json:"expected_category"`
	Keywords   []string `json:"expected_keywords"`
	WantsSteps bool     `json:"has_action_steps"`
}

// Datapoint pairs a ticket with its ground truth.
type Datapoint struct {
	Ticket
	Truth GroundTruth `json:"ground_truth"`
}

// KeywordRule maps a category to the terms that route into it. Rules are
// checked in slice order, first hit wins.
type KeywordRule struct {
	Category Category
	Terms    []string
}

// Load returns the named dataset in a fixed order. Only "mock" exists.
func Load(name string) ([]Datapoint, error) {
	if name != "mock" {
		return nil, fmt.Errorf("unknown dataset %q", name)
	}

	points := make([]Datapoint, 0, len(mockTickets))
	for _, t := range mockTickets {
		truth, ok := groundTruth[t.ID]
		if !ok {
			return nil, fmt.Errorf("ticket %s has no ground truth", t.ID)
		}
		points = append(points, Datapoint{Ticket: t, Truth: truth})
	}
	return points, nil
}
