package models

// BasicResponse is the envelope for simple status endpoints
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
