package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNormalizeStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"plain", "Grid tie-in", []string{"Grid tie-in"}},
		{"json array", `["a","b"]`, []string{"a", "b"}},
		{"json mixed", `["a",2,true,null]`, []string{"a", "2", "true"}},
		{"broken json", `[not json`, []string{"[not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStrings(tt.in))
		})
	}
}

func TestPayload_FormStrings(t *testing.T) {
	p := NewFormPayload(map[string][]string{
		"single":    {"only"},
		"encoded":   {`["x","y"]`},
		"repeated":  {"one", "two"},
		"empty":     {""},
		"bracket[]": {"b1", "b2"},
	}, nil)

	got, ok := p.Strings("single")
	assert.True(t, ok)
	assert.Equal(t, []string{"only"}, got)

	got, _ = p.Strings("encoded")
	assert.Equal(t, []string{"x", "y"}, got)

	got, _ = p.Strings("repeated")
	assert.Equal(t, []string{"one", "two"}, got)

	got, ok = p.Strings("empty")
	assert.True(t, ok)
	assert.Equal(t, []string{}, got)

	got, _ = p.Strings("bracket")
	assert.Equal(t, []string{"b1", "b2"}, got)

	_, ok = p.Strings("missing")
	assert.False(t, ok)
}

func TestPayload_JSONAccessors(t *testing.T) {
	p := NewJSONPayload(map[string]interface{}{
		"name":         "Solar farm",
		"year":         float64(2023),
		"gallery":      []interface{}{"a.jpg", "b.jpg"},
		"results":      `["r1"]`,
		"displayOrder": float64(4),
		"isActive":     true,
		"socialLinks":  map[string]interface{}{"linkedin": "https://linkedin.example/x", "twitter": nil},
	})

	name, ok := p.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Solar farm", name)

	year, _ := p.String("year")
	assert.Equal(t, "2023", year)

	gallery, _ := p.Strings("gallery")
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, gallery)

	results, _ := p.Strings("results")
	assert.Equal(t, []string{"r1"}, results)

	order, ok, err := p.Int("displayOrder")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, order)

	active, ok := p.Bool("isActive")
	assert.True(t, ok)
	assert.True(t, active)

	links, ok := p.Object("socialLinks")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"linkedin": "https://linkedin.example/x"}, links)

	assert.False(t, p.Has("video"))
}

func TestPayload_JSONIntRejectsNonIntegers(t *testing.T) {
	p := NewJSONPayload(map[string]interface{}{
		"fraction": 1.5,
		"huge":     1e20,
		"negative": float64(-3),
	})

	for _, key := range []string{"fraction", "huge"} {
		_, ok, err := p.Int(key)
		assert.True(t, ok, key)
		assert.EqualError(t, err, key+" must be a number")
	}

	n, ok, err := p.Int("negative")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -3, n)

	form := NewFormPayload(map[string][]string{"huge": {"99999999999999999999"}}, nil)
	_, _, err = form.Int("huge")
	assert.EqualError(t, err, "huge must be a number")
}

func TestPayload_FormScalars(t *testing.T) {
	p := NewFormPayload(map[string][]string{
		"displayOrder":         {"7"},
		"bad":                  {"seven"},
		"blank":                {" "},
		"isActive":             {"on"},
		"removeVideo":          {"false"},
		"socialLinks[website]": {"https://solar.example"},
	}, nil)

	n, ok, err := p.Int("displayOrder")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok, err = p.Int("bad")
	assert.True(t, ok)
	assert.EqualError(t, err, "bad must be a number")

	_, ok, err = p.Int("blank")
	assert.NoError(t, err)
	assert.False(t, ok)

	active, _ := p.Bool("isActive")
	assert.True(t, active)

	remove, ok := p.Bool("removeVideo")
	assert.True(t, ok)
	assert.False(t, remove)

	links, ok := p.Object("socialLinks")
	assert.True(t, ok)
	assert.Equal(t, "https://solar.example", links["website"])
}

func TestReadPayload_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hello"}`))
	ctx.Request.Header.Set("Content-Type", "application/json")

	p, err := ReadPayload(ctx, 0)
	require.NoError(t, err)

	title, ok := p.String("title")
	assert.True(t, ok)
	assert.Equal(t, "Hello", title)
}

func TestReadPayload_InvalidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	ctx.Request.Header.Set("Content-Type", "application/json")

	_, err := ReadPayload(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestReadPayload_Multipart(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("name", "Rooftop array"))
	require.NoError(t, mw.WriteField("challenges", "Shade"))
	part, err := mw.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", body)
	ctx.Request.Header.Set("Content-Type", mw.FormDataContentType())

	p, err := ReadPayload(ctx, 0)
	require.NoError(t, err)

	name, _ := p.String("name")
	assert.Equal(t, "Rooftop array", name)

	challenges, _ := p.Strings("challenges")
	assert.Equal(t, []string{"Shade"}, challenges)

	fh := p.File("video")
	require.NotNil(t, fh)
	assert.Equal(t, "clip.mp4", fh.Filename)
	assert.True(t, p.Has("video"))
}

func TestReadPayload_TooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 256)+`"}`))
	ctx.Request.Header.Set("Content-Type", "application/json")

	_, err := ReadPayload(ctx, 64)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
