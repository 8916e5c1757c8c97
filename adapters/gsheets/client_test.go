package gsheets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSheetsServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v4/spreadsheets/abc":
			assert.Equal(t, "sheets.properties.title", r.URL.Query().Get("fields"))
			io.WriteString(w, `{"sheets":[{"properties":{"title":"Céréales"}},{"properties":{"title":"L'eau"}},{"properties":{"title":"Vide"}}]}`)
		case "/v4/spreadsheets/abc/values:batchGet":
			assert.Equal(t, []string{"'Céréales'", "'L''eau'", "'Vide'"}, r.URL.Query()["ranges"])
			assert.Equal(t, "ROWS", r.URL.Query().Get("majorDimension"))
			io.WriteString(w, `{"spreadsheetId":"abc","valueRanges":[
				{"range":"'Céréales'!A1:C3","values":[["Titre"],["Commune","Blé"],["Bab Taza","1 200", 3]]},
				{"range":"'L''eau'!A1:B2","values":[["Commune","Débit"]]},
				{"range":"'Vide'!A1:Z1000"}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`)
		}
	}))
}

func TestWorksheets(t *testing.T) {
	srv := newSheetsServer(t)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/v4/", APIKey: "k-123"})
	worksheets, err := client.Worksheets(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, worksheets, 3)

	assert.Equal(t, "Céréales", worksheets[0].Title)
	assert.Equal(t, sheet.Grid{{"Titre"}, {"Commune", "Blé"}, {"Bab Taza", "1 200", "3"}}, worksheets[0].Grid)
	assert.Equal(t, "L'eau", worksheets[1].Title)
	assert.Len(t, worksheets[1].Grid, 1)
	assert.Equal(t, "Vide", worksheets[2].Title)
	assert.Empty(t, worksheets[2].Grid)
}

func TestWorksheetsNotFound(t *testing.T) {
	srv := newSheetsServer(t)
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL + "/v4", APIKey: "k-123"}).Worksheets(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Requested entity was not found.")
}

func TestWorksheetsStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, errors.CodeUnauthorized},
		{"forbidden", http.StatusForbidden, errors.CodeUnauthorized},
		{"server error", http.StatusInternalServerError, errors.CodeExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).Worksheets(context.Background(), "abc")
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestWorksheetsAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("key"))
		io.WriteString(w, `{"sheets":[]}`)
	}))
	defer srv.Close()

	worksheets, err := NewClient(Config{BaseURL: srv.URL, AccessToken: "tok"}).Worksheets(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, worksheets)
}

func TestWorksheetsEmptyID(t *testing.T) {
	_, err := NewClient(Config{}).Worksheets(context.Background(), " ")
	assert.True(t, errors.Is(err, errors.CodeInvalidInput))
}
