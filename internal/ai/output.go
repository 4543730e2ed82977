package ai

import "github.com/modfin/bellman/models"

// RouteVerdict is the structured output requested from the routing step.
type RouteVerdict struct {
	Category   string          `json:"category" json-description:"one of: upload_errors, account_access, data_export, other"`
	Confidence float64         `json:"confidence" json-minimum:"0.0" json-maximum:"1.0" json-description:"confidence in the chosen category, between [0.0, 1.0]"`
	Reasoning  string          `json:"reasoning" json-description:"brief explanation of why the category was chosen"`
	Metadata   models.Metadata `json:"-"`
}

// Draft is the structured output requested from the response step.
type Draft struct {
	Answer   string          `json:"answer" json-description:"the support reply, structured as 2-4 numbered action steps grounded in the provided docs"`
	Metadata models.Metadata `json:"-"`
}
