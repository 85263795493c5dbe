package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"compliance/internal/risk"
)

// ErrMissingClientID is returned by DecodeClients for a client without an id.
var ErrMissingClientID = errors.New("client has no id")

// DecodeClients reads clients from JSON, either a bare array or an object
// with a "clients" array.
func DecodeClients(r io.Reader) ([]risk.Client, error) {
	const op = "DecodeClients"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read clients: %w", op, err)
	}

	data = bytes.TrimSpace(data)
	var clients []risk.Client
	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Clients []risk.Client `json:"clients"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%s: failed to decode clients: %w", op, err)
		}
		clients = wrapper.Clients
	} else if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("%s: failed to decode clients: %w", op, err)
	}

	for i, c := range clients {
		if c.ID == "" {
			return nil, fmt.Errorf("%s: client %d: %w", op, i+1, ErrMissingClientID)
		}
	}

	return clients, nil
}

// DecodeSignals reads a single client's signals from JSON.
func DecodeSignals(r io.Reader) (risk.Signals, error) {
	var signals risk.Signals
	if err := json.NewDecoder(r).Decode(&signals); err != nil {
		return risk.Signals{}, fmt.Errorf("DecodeSignals: failed to decode signals: %w", err)
	}
	return signals, nil
}
