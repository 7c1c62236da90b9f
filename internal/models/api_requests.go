package models

// PredictRequest is the query of GET /predict after alias resolution.
type PredictRequest struct {
	Home string `json:"home" validate:"required,alpha,min=2,max=4"`
	Away string `json:"away" validate:"required,alpha,min=2,max=4,nefield=Home"`
}

// PredictResponse is the body of a successful GET /predict.
type PredictResponse struct {
	Home        string  `json:"home"`
	Away        string  `json:"away"`
	ProbHomeWin float64 `json:"prob_home_win"`
}

// UpdateResponse is the body of a successful POST /update.
type UpdateResponse struct {
	ResolvedCount  int `json:"resolved_count"`
	GeneratedCount int `json:"generated_count"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryResponse is the body of GET /predictions/history.
type HistoryResponse struct {
	Total    int        `json:"total"`
	Correct  int        `json:"correct"`
	Accuracy float64    `json:"accuracy"`
	Records  []Resolved `json:"records"`
}
