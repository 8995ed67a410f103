package entity

// Citation is a grounding chunk as returned by the provider.
// Either field may be empty.
type Citation struct {
	Title string
	URI   string
}

// Completion is the raw model reply: free-form text plus grounding citations.
type Completion struct {
	Text      string
	Citations []Citation
}
