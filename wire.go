package portal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/seatrans/portal-go/credential"
)

// The backend wraps every JSON response in the same envelope. data is left
// raw so each call decodes only the shape it expects.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// authPayload is the data shape of login and register responses.
type authPayload struct {
	Token string             `json:"token"`
	User  credential.Profile `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
}

type profileUpdateRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
	Nation   *string `json:"nation,omitempty"`
}

// decodeEnvelope reads and closes the response body and unmarshals the
// envelope. A body that is not envelope-shaped is reported as an error
// carrying the HTTP status.
func decodeEnvelope(resp *http.Response) (envelope, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return envelope{}, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	return env, nil
}

func decodeData(env envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response envelope has no data")
	}
	return json.Unmarshal(env.Data, v)
}
