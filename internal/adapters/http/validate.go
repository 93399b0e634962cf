package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

const validateEndpoint = "/validar_celular"

// Validate posts the presentation to the validation endpoint and decodes the
// server verdict. It never retries.
func (c *Client) Validate(ctx context.Context, p domain.Presentation) (domain.Outcome, error) {
	station := c.Station()

	body, contentType, err := c.buildValidateBody(station, p)
	if err != nil {
		return domain.Outcome{}, &domain.ValidationError{Kind: domain.FailureTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, station.BaseURL+validateEndpoint, body)
	if err != nil {
		return domain.Outcome{}, &domain.ValidationError{Kind: domain.FailureTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Outcome{}, &domain.ValidationError{Kind: domain.FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Outcome{}, &domain.ValidationError{
			Kind:       domain.FailureStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(respBody))),
		}
	}

	var decoded validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Outcome{}, &domain.ValidationError{Kind: domain.FailureMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if decoded.Result == nil {
		return domain.Outcome{}, &domain.ValidationError{Kind: domain.FailureMalformed, Err: errors.New("response has no result")}
	}

	outcome := decoded.Result.toOutcome()
	c.logger.Debug("validation resolved",
		ports.Any("channel", p.Channel),
		ports.Bool("granted", outcome.Success),
		ports.String("message", outcome.Message),
	)
	return outcome, nil
}

// buildValidateBody encodes the multipart form the server expects.
func (c *Client) buildValidateBody(station ports.Station, p domain.Presentation) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := [][2]string{
		{"pin_number", station.PIN},
		{"qrcode_value", p.Value},
		{"canal", strconv.Itoa(p.Channel.Code())},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f[0], err)
		}
	}

	if c.deviceInfo != nil {
		info, err := json.Marshal(c.deviceInfo())
		if err != nil {
			return nil, "", fmt.Errorf("marshal device info: %w", err)
		}
		if err := writer.WriteField("device_info", string(info)); err != nil {
			return nil, "", fmt.Errorf("write device_info: %w", err)
		}
	}

	for _, k := range p.Enrollment.Keys() {
		if err := writer.WriteField(k, p.Enrollment[k]); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", k, err)
		}
	}

	if p.Capture != nil {
		part, err := writer.CreateFormFile("imagem", p.Capture.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create imagem field: %w", err)
		}
		if _, err := part.Write(p.Capture.Data); err != nil {
			return nil, "", fmt.Errorf("write imagem: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

type validateResponse struct {
	Result *outcomePayload `json:"result"`
}

// outcomePayload mirrors the server's result object. Only success must
// decode; every other field is read on a best-effort basis.
type outcomePayload struct {
	Success      flexBool        `json:"success"`
	Message      json.RawMessage `json:"message"`
	UserName     json.RawMessage `json:"user_name"`
	URLUserImage json.RawMessage `json:"url_user_image"`
	UserImage    json.RawMessage `json:"user_image"`
	UserID       json.RawMessage `json:"user_id"`
	PortalID     json.RawMessage `json:"portal_id"`
	Event        json.RawMessage `json:"event"`
	Actions      json.RawMessage `json:"actions"`
}

func (p outcomePayload) toOutcome() domain.Outcome {
	return domain.Outcome{
		Success:         bool(p.Success),
		Message:         looseString(p.Message),
		SubjectName:     looseString(p.UserName),
		SubjectPhotoRef: looseString(p.URLUserImage),
		SubjectID:       looseInt(p.UserID),
		PortalID:        looseInt(p.PortalID),
		Event:           looseInt(p.Event),
		HasPhoto:        looseBool(p.UserImage),
		Actions:         looseActions(p.Actions),
	}
}

// looseString returns a JSON string, or the literal text of a number or
// boolean. Anything else reads as "".
func looseString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var scalar interface{}
	if json.Unmarshal(raw, &scalar) != nil {
		return ""
	}
	switch scalar.(type) {
	case float64, bool:
		return strings.TrimSpace(string(raw))
	default:
		return ""
	}
}

// looseInt accepts a JSON integer or a numeric string. Anything else reads as 0.
func looseInt(raw json.RawMessage) int64 {
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// looseBool reads flexBool forms. A non-empty string that is not a boolean,
// such as an image name, counts as true.
func looseBool(raw json.RawMessage) bool {
	var b flexBool
	if json.Unmarshal(raw, &b) == nil {
		return bool(b)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s) != ""
	}
	return false
}

// looseActions keeps an actions array as is and wraps a lone object.
func looseActions(raw json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil && len(obj) > 0 {
		return []json.RawMessage{raw}
	}
	return nil
}

// flexBool accepts 1/0, true/false and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "s":
		*b = true
	case "0", "false", "n", "", "null":
		*b = false
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid boolean %s", string(data))
		}
		*b = n != 0
	}
	return nil
}
