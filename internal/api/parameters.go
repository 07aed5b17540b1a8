package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/i2pi/osc-firmware/internal/osc"
	"github.com/i2pi/osc-firmware/internal/router"
)

// originPrefix names HTTP writers in change notifications and the audit log.
const originPrefix = "http:"

// Parameter is the JSON form of an OSC message: the address, its type
// tags, and one JSON value per payload-carrying tag.
type Parameter struct {
	Address string `json:"address"`
	Tags    string `json:"tags"`
	Args    []any  `json:"args"`
}

// ParameterList is the response of GET /parameters.
type ParameterList struct {
	Parameters []Parameter `json:"parameters"`
	Count      int         `json:"count"`
}

// SetRequest is the body of PUT /parameters/*.
type SetRequest struct {
	Tags string `json:"tags"`
	Args []any  `json:"args"`
}

// ReplyList carries the replies a request produced.
type ReplyList struct {
	Replies []Parameter `json:"replies"`
}

func parameterOf(m osc.Message) Parameter {
	args := m.Payload()
	if args == nil {
		args = []any{}
	}
	return Parameter{Address: m.Address, Tags: m.Tags, Args: args}
}

func parametersOf(msgs []osc.Message) []Parameter {
	out := make([]Parameter, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, parameterOf(m))
	}
	return out
}

// addressParam rebuilds the OSC address from the wildcard path segment.
func addressParam(r *http.Request) string {
	return "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}

// handleListParameters returns the sync expansion: every parameter's
// current value, in route order.
func (s *Server) handleListParameters(w http.ResponseWriter, _ *http.Request) {
	params := parametersOf(s.endpoint.Dump())
	writeJSON(w, http.StatusOK, ParameterList{Parameters: params, Count: len(params)})
}

// handleGetParameter performs an OSC GET on the path address and returns
// every reply. Diagnostics map to 404 for unknown addresses and 422 otherwise.
func (s *Server) handleGetParameter(w http.ResponseWriter, r *http.Request) {
	replies := s.endpoint.Get(addressParam(r))
	if writeDiagnostics(w, replies) {
		return
	}
	writeJSON(w, http.StatusOK, ReplyList{Replies: parametersOf(replies)})
}

// handleSetParameter performs an OSC SET with the body's tags and args,
// then reads the parameter back.
func (s *Server) handleSetParameter(w http.ResponseWriter, r *http.Request) {
	address := addressParam(r)

	var req SetRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Tags == "" {
		writeBadRequest(w, "tags is required")
		return
	}

	payload, err := osc.PayloadFromJSON(req.Tags, req.Args)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	msg, err := osc.NewMessage(address, req.Tags, payload...)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rec := &router.Recorder{Name: originPrefix + r.RemoteAddr}
	s.endpoint.Handle(msg, rec)
	if writeDiagnostics(w, rec.Messages) {
		return
	}

	s.logger.Debug("parameter set over HTTP", "address", address, "tags", req.Tags)

	replies := s.endpoint.Get(address)
	if writeDiagnostics(w, replies) {
		return
	}
	writeJSON(w, http.StatusOK, ReplyList{Replies: parametersOf(replies)})
}

// writeDiagnostics writes an error response when msgs contain /error
// replies, reporting whether it did.
func writeDiagnostics(w http.ResponseWriter, msgs []osc.Message) bool {
	var texts []string
	for _, m := range msgs {
		if m.Address != router.ErrorAddress {
			continue
		}
		if len(m.Args) > 0 {
			if text, ok := m.Args[0].(string); ok {
				texts = append(texts, text)
				continue
			}
		}
		texts = append(texts, "error")
	}
	if len(texts) == 0 {
		return false
	}

	msg := strings.Join(texts, "; ")
	if isInvalidAddress(texts) {
		writeNotFound(w, msg)
		return true
	}
	writeUnprocessable(w, msg)
	return true
}

func isInvalidAddress(texts []string) bool {
	for _, t := range texts {
		if !strings.HasPrefix(t, router.ErrInvalidAddress.Text) {
			return false
		}
	}
	return true
}
