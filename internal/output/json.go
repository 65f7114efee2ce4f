package output

import (
	"encoding/json"

	"tablesmith/internal/dberr"
)

type jsonFormatter struct{}

type statementPayload struct {
	Format Format `json:"format"`
	*Statement
}

type failurePayload struct {
	Format    Format     `json:"format"`
	ErrorKind dberr.Kind `json:"errorKind"`
	Message   string     `json:"message"`
}

func (jsonFormatter) FormatStatement(s *Statement) (string, error) {
	return marshalJSON(statementPayload{Format: FormatJSON, Statement: s})
}

func (jsonFormatter) FormatFailure(e *dberr.Error) (string, error) {
	payload := failurePayload{Format: FormatJSON, ErrorKind: dberr.KindDatabase}
	if e != nil {
		payload.ErrorKind = e.Kind
		payload.Message = e.Message
	}
	return marshalJSON(payload)
}

func marshalJSON(payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
