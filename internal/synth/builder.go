// Package synth builds the HTTP requests the workload sends.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint paths of the training service.
const (
	PostCreatePath   = "/api/v1/post/create"
	RegistrationPath = "/api/v1/training-registration"
	TrainingListPath = "/api/v1/training/list-for-user"
)

// Builder turns payloads into requests against one host.
type Builder struct {
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Headers are added to every request.
	Headers map[string]string
}

// PostForm is the multipart body of a post-create request.
type PostForm struct {
	Content     string
	FileName    string
	ContentType string
	File        []byte
}

// ListQuery holds the query parameters of the training list endpoint.
type ListQuery struct {
	Page      int
	Limit     int
	FromDate  string
	ToDate    string
	DateField string
	Select    string
}

// Values encodes the query in the parameter names the endpoint expects.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("fromDate", q.FromDate)
	v.Set("toDate", q.ToDate)
	v.Set("dateField", q.DateField)
	v.Set("select", q.Select)
	return v
}

// PostCreate builds a multipart request with a `content` field and a
// `files` attachment.
func (b *Builder) PostCreate(ctx context.Context, form PostForm) (*http.Request, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("content", form.Content); err != nil {
		return nil, fmt.Errorf("writing content field: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, form.FileName))
	h.Set("Content-Type", form.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating files part: %w", err)
	}
	if _, err := part.Write(form.File); err != nil {
		return nil, fmt.Errorf("writing files part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := b.newRequest(ctx, http.MethodPost, PostCreatePath, nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

// Registration builds a JSON registration request.
func (b *Builder) Registration(ctx context.Context, reg RegistrationBody) (*http.Request, error) {
	payload, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("encoding registration: %w", err)
	}
	req, err := b.newRequest(ctx, http.MethodPost, RegistrationPath, nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// TrainingList builds the list GET request.
func (b *Builder) TrainingList(ctx context.Context, q ListQuery) (*http.Request, error) {
	return b.newRequest(ctx, http.MethodGet, TrainingListPath, q.Values(), nil)
}

func (b *Builder) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := strings.TrimRight(b.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}

	for k, v := range b.Headers {
		req.Header.Set(k, v)
	}
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
	return req, nil
}
