package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"activity-board/pkg/errors"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
	"Tennis Club": {
		"description": "Tennis lessons and friendly matches",
		"schedule": "Saturdays, 10:00 AM - 12:00 PM",
		"max_participants": 10,
		"participants": ["lucas@mergington.edu", "grace@mergington.edu"]
	},
	"Chess Club": {
		"description": "Learn strategies and compete in chess tournaments",
		"schedule": "Fridays, 3:30 PM - 5:00 PM",
		"max_participants": 1,
		"participants": ["michael@mergington.edu", "daniel@mergington.edu"]
	},
	"Art Studio": {
		"description": "Painting, drawing, and mixed media creation",
		"schedule": "Tuesdays, 3:30 PM - 5:00 PM",
		"max_participants": 18,
		"participants": []
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *ActivitiesClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewActivitiesClient(server.URL, 0, logger.NewNop(), metrics.New("test"))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestActivitiesClient_ListActivities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	})

	catalog, err := client.ListActivities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, []string{"Tennis Club", "Chess Club", "Art Studio"}, catalog.Names())

	chess := catalog.All()[1]
	assert.Equal(t, "Fridays, 3:30 PM - 5:00 PM", chess.Schedule)
	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)
	assert.Equal(t, -1, chess.SpotsLeft())

	art := catalog.All()[2]
	assert.Empty(t, art.Participants)
}

func TestActivitiesClient_ListActivitiesFailures(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedType errors.ErrorType
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, expectedType: errors.ErrorTypeUpstream},
		{name: "invalid json", status: http.StatusOK, body: `not json`, expectedType: errors.ErrorTypeParse},
		{name: "array instead of object", status: http.StatusOK, body: `[1,2]`, expectedType: errors.ErrorTypeParse},
		{name: "activity with wrong shape", status: http.StatusOK, body: `{"Chess Club": {"max_participants": "twelve"}}`, expectedType: errors.ErrorTypeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			catalog, err := client.ListActivities(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.expectedType), "got %v", err)
			assert.Equal(t, 0, catalog.Len())
		})
	}
}

func TestActivitiesClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewActivitiesClient(url, 0, logger.NewNop(), nil)

	_, err := client.ListActivities(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))

	_, err = client.Signup(context.Background(), "Chess Club", "a@x.com")
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}

func TestActivitiesClient_SignupEncodesReservedCharacters(t *testing.T) {
	tests := []struct {
		name        string
		activity    string
		email       string
		escapedPath string
		rawQuery    string
	}{
		{
			name:        "plain",
			activity:    "Chess Club",
			email:       "newstudent@mergington.edu",
			escapedPath: "/activities/Chess%20Club/signup",
			rawQuery:    "email=newstudent%40mergington.edu",
		},
		{
			name:        "ampersand and plus",
			activity:    "Chess Club & Co.",
			email:       "a+b@x.com",
			escapedPath: "/activities/Chess%20Club%20%26%20Co./signup",
			rawQuery:    "email=a%2Bb%40x.com",
		},
		{
			name:        "space in email",
			activity:    "Drama Club",
			email:       "first last@x.com",
			escapedPath: "/activities/Drama%20Club/signup",
			rawQuery:    "email=first%20last%40x.com",
		},
		{
			name:        "slash and question mark",
			activity:    "Art/Design?",
			email:       "student.name+1@mergington.edu",
			escapedPath: "/activities/Art%2FDesign%3F/signup",
			rawQuery:    "email=student.name%2B1%40mergington.edu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tt.escapedPath, r.URL.EscapedPath())
				assert.Equal(t, tt.rawQuery, r.URL.RawQuery)
				assert.Equal(t, "/activities/"+tt.activity+"/signup", r.URL.Path)
				assert.Equal(t, tt.email, r.URL.Query().Get("email"))
				writeJSON(t, w, http.StatusOK, map[string]string{"message": "Signed up " + tt.email + " for " + tt.activity})
			})

			message, err := client.Signup(context.Background(), tt.activity, tt.email)
			require.NoError(t, err)
			assert.Equal(t, "Signed up "+tt.email+" for "+tt.activity, message)
		})
	}
}

func TestActivitiesClient_SignupRejected(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		expectedDetail string
	}{
		{name: "duplicate", status: http.StatusBadRequest, body: `{"detail":"Student is already signed up"}`, expectedDetail: "Student is already signed up"},
		{name: "unknown activity", status: http.StatusNotFound, body: `{"detail":"Activity not found"}`, expectedDetail: "Activity not found"},
		{name: "no detail", status: http.StatusInternalServerError, body: ``, expectedDetail: ""},
		{name: "html error page", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, expectedDetail: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			message, err := client.Signup(context.Background(), "Chess Club", "michael@mergington.edu")
			assert.Empty(t, message)

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeUpstream, appErr.Type)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.expectedDetail, appErr.Message)
		})
	}
}

func TestActivitiesClient_SignupUnparseableSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	})

	_, err := client.Signup(context.Background(), "Chess Club", "a@x.com")
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestActivitiesClient_Unregister(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/activities/Gym Class/participants", r.URL.Path)
		assert.Equal(t, "john@mergington.edu", r.URL.Query().Get("email"))
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Unregistered john@mergington.edu from Gym Class"})
	})

	message, err := client.Unregister(context.Background(), "Gym Class", "john@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Unregistered john@mergington.edu from Gym Class", message)
}

func TestActivitiesClient_UnregisterNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "Participant not found"})
	})

	_, err := client.Unregister(context.Background(), "Chess Club", "notexist@mergington.edu")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Participant not found", appErr.Message)
}

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a+b@x.com", "a%2Bb%40x.com"},
		{"Chess Club & Co.", "Chess%20Club%20%26%20Co."},
		{"Art/Design?#1", "Art%2FDesign%3F%231"},
		{"(it's)!~*-_.", "(it's)!~*-_."},
		{"école", "%C3%A9cole"},
		{"100%", "100%25"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			encoded := EncodeComponent(tt.input)
			assert.Equal(t, tt.expected, encoded)

			decoded, err := DecodeComponent(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.input, decoded)
		})
	}
}

func TestDecodeComponent_Malformed(t *testing.T) {
	_, err := DecodeComponent("%zz")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
