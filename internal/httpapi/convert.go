package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Kinsa/parking-attendant/internal/parking/types"
	"github.com/Kinsa/parking-attendant/internal/wire"
)

var errBadBody = errors.New("invalid request body")

// decodeEntryRequest reads an entry from a JSON body or, when the
// Content-Type says so, a protobuf-encoded google.protobuf.Struct.
func decodeEntryRequest(r *http.Request) (types.EntryRequest, error) {
	var req types.EntryRequest

	if isProtobuf(r) {
		var msg structpb.Struct
		if err := readProto(r, &msg); err != nil {
			return req, fmt.Errorf("%w: %v", errBadBody, err)
		}
		req.VRM = wire.String(&msg, "vrm")
		req.EnteredAt = wire.String(&msg, "entered_at")
		return req, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return req, nil
}

func lookupRequestFromQuery(r *http.Request) types.LookupRequest {
	q := r.URL.Query()
	return types.LookupRequest{
		VRM:       q.Get("vrm"),
		Window:    q.Get("window"),
		QueryFrom: q.Get("query_from"),
		QueryTo:   q.Get("query_to"),
	}
}

func plateSearchRequestFromQuery(r *http.Request) types.PlateSearchRequest {
	q := r.URL.Query()
	return types.PlateSearchRequest{
		Plate:    q.Get("plate"),
		Datetime: q.Get("datetime"),
		Window:   q.Get("window"),
	}
}

// writeResponse encodes v as JSON, or as a protobuf Struct with the same
// field names when the client sent Accept: application/x-protobuf.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsProtobuf(r) {
		msg, err := wire.ToStruct(v)
		if err != nil {
			http.Error(w, "proto encode error", http.StatusInternalServerError)
			return
		}
		writeProto(w, status, msg)
		return
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeResponse(w, r, status, errorBody{Error: code, Message: message})
}
