package utils

import (
	"bytes"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

var (
	ErrPayloadTooLarge = errors.New("request body too large")
	ErrInvalidPayload  = errors.New("Invalid request")
)

const multipartMemory = 32 << 20

// Payload is a request body read either as a JSON object or as form fields.
// Accessors report whether the key was present so updates can merge.
type Payload struct {
	fields map[string]interface{}
	form   map[string][]string
	files  map[string][]*multipart.FileHeader
}

// ReadPayload parses the body according to its content type. maxBytes caps the
// whole body; zero means unlimited.
func ReadPayload(ctx *gin.Context, maxBytes int64) (*Payload, error) {
	req := ctx.Request

	if maxBytes > 0 {
		req.Body = http.MaxBytesReader(ctx.Writer, req.Body, maxBytes)
	}

	p := &Payload{}

	switch contentType := ctx.ContentType(); {
	case contentType == gin.MIMEMultipartPOSTForm:
		if err := req.ParseMultipartForm(multipartMemory); err != nil {
			return nil, bodyError(err)
		}
		p.form = req.MultipartForm.Value
		p.files = req.MultipartForm.File
	case contentType == gin.MIMEPOSTForm:
		if err := req.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		p.form = req.PostForm
	default:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, bodyError(err)
		}

		p.fields = map[string]interface{}{}

		if len(bytes.TrimSpace(body)) == 0 {
			return p, nil
		}

		if err := json.Unmarshal(body, &p.fields); err != nil {
			return nil, ErrInvalidPayload
		}
	}

	return p, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return ErrPayloadTooLarge
	}
	return ErrInvalidPayload
}

// NewJSONPayload wraps an already decoded JSON object.
func NewJSONPayload(fields map[string]interface{}) *Payload {
	return &Payload{fields: fields}
}

// NewFormPayload wraps form values and optional uploaded files.
func NewFormPayload(form map[string][]string, files map[string][]*multipart.FileHeader) *Payload {
	return &Payload{form: form, files: files}
}

func (p *Payload) formValues(key string) ([]string, bool) {
	if values, ok := p.form[key]; ok {
		return values, true
	}
	values, ok := p.form[key+"[]"]
	return values, ok
}

func (p *Payload) Has(key string) bool {
	if _, ok := p.fields[key]; ok {
		return true
	}
	if _, ok := p.formValues(key); ok {
		return true
	}
	_, ok := p.files[key]
	return ok
}

func (p *Payload) String(key string) (string, bool) {
	if p.fields != nil {
		raw, ok := p.fields[key]
		if !ok {
			return "", false
		}
		return stringify(raw), true
	}

	values, ok := p.formValues(key)
	if !ok || len(values) == 0 {
		return "", ok
	}
	return values[0], true
}

// Strings reads an array field. Form values are normalized: a JSON array
// string is decoded, a plain string becomes one element, repeated keys are
// kept as sent, and an empty value yields an empty slice.
func (p *Payload) Strings(key string) ([]string, bool) {
	if p.fields != nil {
		raw, ok := p.fields[key]
		if !ok {
			return nil, false
		}

		switch v := raw.(type) {
		case nil:
			return []string{}, true
		case []interface{}:
			return stringifyAll(v), true
		case string:
			return NormalizeStrings(v), true
		default:
			return []string{stringify(v)}, true
		}
	}

	values, ok := p.formValues(key)
	if !ok {
		return nil, false
	}

	switch len(values) {
	case 0:
		return []string{}, true
	case 1:
		return NormalizeStrings(values[0]), true
	default:
		out := make([]string, len(values))
		copy(out, values)
		return out, true
	}
}

// Int reads a 32-bit integer field. A blank value counts as absent; fractions
// and out of range values are errors.
func (p *Payload) Int(key string) (int, bool, error) {
	if p.fields != nil {
		if raw, ok := p.fields[key].(float64); ok {
			if raw != math.Trunc(raw) || raw < math.MinInt32 || raw > math.MaxInt32 {
				return 0, true, errors.New(key + " must be a number")
			}
			return int(raw), true, nil
		}
	}

	value, ok := p.String(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return 0, false, nil
	}

	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, true, errors.New(key + " must be a number")
	}
	return int(n), true, nil
}

// Bool reads a boolean field; "true", "1" and "on" are true.
func (p *Payload) Bool(key string) (bool, bool) {
	if p.fields != nil {
		if raw, ok := p.fields[key].(bool); ok {
			return raw, true
		}
	}

	value, ok := p.String(key)
	if !ok {
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true, true
	default:
		return false, true
	}
}

// Object reads a flat object field. Forms may send it as a JSON string or as
// bracketed keys such as socialLinks[linkedin].
func (p *Payload) Object(key string) (map[string]string, bool) {
	if p.fields != nil {
		raw, ok := p.fields[key]
		if !ok {
			return nil, false
		}

		switch v := raw.(type) {
		case map[string]interface{}:
			return stringifyMap(v), true
		case string:
			return decodeObject(v), true
		default:
			return map[string]string{}, true
		}
	}

	if values, ok := p.form[key]; ok && len(values) > 0 {
		return decodeObject(values[0]), true
	}

	prefix := key + "["
	out := map[string]string{}
	found := false

	for name, values := range p.form {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, "]") || len(values) == 0 {
			continue
		}
		out[name[len(prefix):len(name)-1]] = values[0]
		found = true
	}

	return out, found
}

func (p *Payload) File(key string) *multipart.FileHeader {
	files := p.files[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func NormalizeStrings(raw string) []string {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []interface{}
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return stringifyAll(items)
		}
	}

	return []string{raw}
}

func decodeObject(raw string) map[string]string {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return map[string]string{}
	}
	return stringifyMap(obj)
}

func stringifyMap(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = stringify(v)
	}
	return out
}

func stringifyAll(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
