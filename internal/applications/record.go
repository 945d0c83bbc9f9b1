// Package applications maps the reconstructed grid of a register page to
// development application records.
package applications

// Record is one development application as stored and published
type Record struct {
	ApplicationNumber string `json:"council_reference"`
	Address           string `json:"address"`
	Description       string `json:"description"`
	InformationURL    string `json:"info_url"`
	CommentURL        string `json:"comment_url"`
	ScrapeDate        string `json:"date_scraped"`
	ReceivedDate      string `json:"date_received,omitempty"`
	LegalDescription  string `json:"legal_description,omitempty"`
}
