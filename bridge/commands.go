package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"sigillo/card"
)

// Request is one JSON command from a connected client.
type Request struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the reply to a Request, or an unsolicited status push.
type Response struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type pinPayload struct {
	PIN string `json:"pin"`
}

type signPayload struct {
	Content string `json:"content"`
}

// Handle dispatches one command against the actor. Unknown commands get a
// typed error response; the connection is never dropped over a bad command.
func Handle(actor *CardActor, req Request) Response {
	switch req.Type {
	case "ping":
		return Response{Type: "pong", Success: true, Data: actor.Status()}

	case "getStatus":
		return Response{Type: "status", Success: true, Data: actor.Status()}

	case "enableDemo":
		return Response{Type: "status", Success: true, Data: actor.SetDemoMode(true)}

	case "disableDemo":
		return Response{Type: "status", Success: true, Data: actor.SetDemoMode(false)}

	case "verifyPin":
		var payload pinPayload
		if err := json.Unmarshal(req.Data, &payload); err != nil {
			return errorResponse("verifyPinResult", fmt.Errorf("malformed verifyPin payload: %w", err))
		}
		if err := actor.VerifyPIN(payload.PIN); err != nil {
			return errorResponse("verifyPinResult", err)
		}
		return Response{Type: "verifyPinResult", Success: true}

	case "computeSigillo":
		var data TicketData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return errorResponse("sigilloResult", fmt.Errorf("malformed computeSigillo payload: %w", err))
		}
		seal, err := actor.ComputeSigillo(data)
		if err != nil {
			return errorResponse("sigilloResult", err)
		}
		return Response{Type: "sigilloResult", Success: true, Data: seal}

	case "sign":
		var payload signPayload
		if err := json.Unmarshal(req.Data, &payload); err != nil {
			return errorResponse("signResult", fmt.Errorf("malformed sign payload: %w", err))
		}
		content, err := base64.StdEncoding.DecodeString(payload.Content)
		if err != nil {
			return errorResponse("signResult", fmt.Errorf("content is not valid base64: %w", err))
		}
		signature, err := actor.Sign(content)
		if err != nil {
			return errorResponse("signResult", err)
		}
		return Response{Type: "signResult", Success: true, Data: map[string]string{"signature": signature}}

	case "getCertificate":
		cert, err := actor.Certificate()
		if err != nil {
			return errorResponse("certificate", err)
		}
		return Response{Type: "certificate", Success: true, Data: map[string]string{"certificate": cert}}

	case "getSerial":
		serial, err := actor.Serial()
		if err != nil {
			return errorResponse("serial", err)
		}
		return Response{Type: "serial", Success: true, Data: map[string]string{"serial": serial}}

	default:
		return Response{Type: "error", Success: false, Error: fmt.Sprintf("unknown command type %q", req.Type)}
	}
}

func errorResponse(responseType string, err error) Response {
	return Response{Type: responseType, Success: false, Error: card.Message(err)}
}
