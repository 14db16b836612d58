// Package outcome classifies responses of the training service into a closed
// set of outcome kinds. Classification is a pure function of the endpoint
// policy, the HTTP status and the body, so it is testable without a network.
package outcome

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the closed enumeration of request outcomes.
type Kind int

const (
	Success Kind = iota
	ConnectionFailed
	InvalidBody
	ApplicationError
	BadRequest
	Conflict
	ValidationError
	UnexpectedStatus
)

var kindNames = map[Kind]string{
	Success:          "success",
	ConnectionFailed: "connection_failed",
	InvalidBody:      "invalid_body",
	ApplicationError: "application_error",
	BadRequest:       "bad_request",
	Conflict:         "conflict",
	ValidationError:  "validation_error",
	UnexpectedStatus: "unexpected_status",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Canned reasons for statuses operators see most during a run.
const (
	ReasonConnectionFailed = "connection failed"
	ReasonInvalidBody      = "invalid response body"
	ReasonBadRequest       = "Bad Request - Possibly duplicate email or invalid data"
	ReasonConflict         = "Conflict - User already registered for this training"
	ReasonValidation       = "Validation Error - Check request data"
	defaultAppError        = "Registration failed"
)

// Outcome is the classification of one completed request cycle.
type Outcome struct {
	Kind       Kind
	Reason     string
	StatusCode int
	// Body is the parsed response, valid when the policy parses bodies and
	// the body was structurally valid.
	Body gjson.Result
}

// OK reports whether the outcome counts as a success.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Policy captures how one endpoint defines success. The three endpoints of
// the training service disagree on this and each keeps its own policy.
type Policy struct {
	Name         string
	SuccessCodes []int
	// ParseBody requires a JSON body on success codes.
	ParseBody bool
	// EmbeddedStatus compares the body's statusCode field with the HTTP status.
	EmbeddedStatus bool
	// CannedErrors maps 400/409/422 to fixed reasons.
	CannedErrors bool
	// SnippetLen includes up to this many body bytes in generic failure reasons.
	SnippetLen int
}

var (
	// PostCreatePolicy accepts 200 or 201 without inspecting the body.
	PostCreatePolicy = Policy{
		Name:         "post-create",
		SuccessCodes: []int{200, 201},
		SnippetLen:   100,
	}
	// RegistrationPolicy requires HTTP 201 and an embedded statusCode of 201.
	RegistrationPolicy = Policy{
		Name:           "registration",
		SuccessCodes:   []int{201},
		ParseBody:      true,
		EmbeddedStatus: true,
		CannedErrors:   true,
	}
	// TrainingListPolicy requires HTTP 200 and a JSON body.
	TrainingListPolicy = Policy{
		Name:         "training-list",
		SuccessCodes: []int{200},
		ParseBody:    true,
	}
)

// Classify maps a status code and body to an Outcome. A status of 0 means the
// transport produced no response.
func Classify(p Policy, status int, body []byte) Outcome {
	out := Outcome{StatusCode: status}

	if status == 0 {
		out.Kind = ConnectionFailed
		out.Reason = ReasonConnectionFailed
		return out
	}

	if slices.Contains(p.SuccessCodes, status) {
		return classifySuccessCode(p, out, body)
	}

	if p.CannedErrors {
		switch status {
		case 400:
			out.Kind, out.Reason = BadRequest, ReasonBadRequest
			return out
		case 409:
			out.Kind, out.Reason = Conflict, ReasonConflict
			return out
		case 422:
			out.Kind, out.Reason = ValidationError, ReasonValidation
			return out
		}
	}

	out.Kind = UnexpectedStatus
	out.Reason = fmt.Sprintf("HTTP %d", status)
	if snippet := snippet(body, p.SnippetLen); snippet != "" {
		out.Reason += ": " + snippet
	}
	return out
}

func classifySuccessCode(p Policy, out Outcome, body []byte) Outcome {
	if !p.ParseBody {
		out.Kind = Success
		return out
	}

	if !gjson.ValidBytes(body) {
		out.Kind = InvalidBody
		out.Reason = ReasonInvalidBody
		return out
	}
	out.Body = gjson.ParseBytes(body)

	if p.EmbeddedStatus {
		// The envelope must be an object carrying a numeric statusCode equal
		// to the HTTP status.
		if !out.Body.IsObject() {
			out.Kind = InvalidBody
			out.Reason = ReasonInvalidBody
			return out
		}
		embedded := out.Body.Get("statusCode")
		if embedded.Type != gjson.Number || embedded.Int() != int64(out.StatusCode) {
			msg := out.Body.Get("message").String()
			if msg == "" {
				msg = defaultAppError
			}
			out.Kind = ApplicationError
			out.Reason = fmt.Sprintf("API Error: %s", msg)
			return out
		}
	}

	out.Kind = Success
	return out
}

func snippet(body []byte, n int) string {
	if n <= 0 || len(body) == 0 {
		return ""
	}
	if len(body) > n {
		body = body[:n]
	}
	return strings.TrimSpace(string(body))
}
