package httpapi

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respond encodes v as JSON, or as a google.protobuf.Struct when the client
// asked for protobuf.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !wantsProtobuf(r) {
		writeJSON(w, status, v)
		return
	}
	msg, err := toStruct(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "response encoding failed")
		return
	}
	writeProto(w, status, msg)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respond(w, r, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
