package request_models

type SearchRequest struct {
	Module string `json:"module"`
	Query  string `json:"query"`
	// Type is the legacy name of Module on /api/search.
	Type string `json:"type"`
}

func (r SearchRequest) ModuleName() string {
	if r.Module != "" {
		return r.Module
	}
	return r.Type
}
