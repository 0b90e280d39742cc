package documents

import "docqa-backend/internal/docstore"

type uploadResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type listResponse struct {
	Documents []docstore.Entry `json:"documents"`
}
