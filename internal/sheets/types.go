package sheets

import "encoding/json"

// valueRange is the request and response body of the values endpoints.
type valueRange struct {
	Range          string              `json:"range,omitempty"`
	MajorDimension string              `json:"majorDimension,omitempty"`
	Values         [][]json.RawMessage `json:"values,omitempty"`
}

// writeRange is the body sent on update and append.
type writeRange struct {
	Range          string     `json:"range,omitempty"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// apiError is the error envelope returned by the service.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
