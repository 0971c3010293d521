package targetprocess

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the test server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Accept string
	Body   string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		reqs = append(reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  q,
			Accept: r.Header.Get("Accept"),
			Body:   string(body),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestClient_GetTicket(t *testing.T) {
	// Setup
	srv, reqs := newTestServer(t, http.StatusOK, `{
		"ResourceType": "UserStory",
		"Id": 115068,
		"Name": "Translate report type",
		"Description": "<p>Hello</p>",
		"EntityState": {"Id": 74, "Name": "Planned"},
		"EntityType": {"Id": 4, "Name": "UserStory"},
		"Project": {"Id": 9, "Name": "Payments"}
	}`)
	client := NewClient(srv.URL+"/", "secret")

	// Execute
	ticket, err := client.GetTicket(context.Background(), 115068)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 115068, ticket.ID)
	assert.Equal(t, "Translate report type", ticket.Name)
	assert.Equal(t, "<p>Hello</p>", ticket.Description)
	assert.True(t, ticket.IsUserStory())
	assert.Equal(t, 74, ticket.EntityState.ID)
	require.NotNil(t, ticket.Project)
	assert.Equal(t, "Payments", ticket.Project.Name)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/Assignables/115068", req.Path)
	assert.Equal(t, "secret", req.Query["access_token"])
	assert.Equal(t, "application/json", req.Accept)
}

func TestClient_GetTicket_NullDescription(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"ResourceType":"Bug","Id":7,"Name":"Crash","Description":null,"EntityState":{"Id":73,"Name":"Open"},"EntityType":{"Id":8,"Name":"Bug"}}`)
	client := NewClient(srv.URL, "secret")

	ticket, err := client.GetTicket(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, ticket.Description)
	assert.True(t, ticket.IsBug())
	assert.Nil(t, ticket.Project)
}

func TestClient_GetTicket_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{name: "missing ticket", status: http.StatusNotFound, notFound: true},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			srv, _ := newTestServer(t, tt.status, `{"Status":"Error"}`)
			client := NewClient(srv.URL, "secret")

			// Execute
			_, err := client.GetTicket(context.Background(), 999)

			// Assert
			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.notFound, errors.Is(err, domain.ErrTicketNotFound))
			assert.NotContains(t, err.Error(), "secret")
			assert.NotContains(t, err.Error(), "get ticket")
		})
	}
}

func TestClient_GetTicket_DecodeError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `<html>login</html>`)
	client := NewClient(srv.URL, "secret")

	_, err := client.GetTicket(context.Background(), 1)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	var httpErr *HTTPError
	assert.NotErrorAs(t, err, &httpErr)
}

func TestClient_CurrentUser(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"Id":12,"FirstName":"Ada","LastName":"Lovelace","Login":"ada","Email":"ada@example.com","IsActive":true,"Role":{"Id":1,"Name":"Developer"}}`)
	client := NewClient(srv.URL, "secret")

	user, err := client.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.Equal(t, "Developer", user.Role.Name)
	assert.Equal(t, "/api/v1/Users/loggeduser", (*reqs)[0].Path)
}

func TestClient_CurrentSprintTickets(t *testing.T) {
	// Setup
	srv, reqs := newTestServer(t, http.StatusOK, `{"items":[
		{"id":1,"name":"First","resourceType":"UserStory","description":null,"entityType":{"id":4,"name":"UserStory"},"entityState":{"id":73,"name":"Open"},"project":{"id":9,"name":"Payments","resourceType":"Project","abbreviation":"PAY"}},
		{"id":2,"name":"Second","resourceType":"Bug","entityType":{"id":8,"name":"Bug"},"entityState":{"id":74,"name":"Planned"}}
	]}`)
	client := NewClient(srv.URL, "secret")

	// Execute
	tickets, err := client.CurrentSprintTickets(context.Background(), "Pay'ments")

	// Assert
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "First", tickets[0].Name)
	assert.Equal(t, "PAY", tickets[0].Project.Abbreviation)
	assert.True(t, tickets[1].IsBug())

	req := (*reqs)[0]
	assert.Equal(t, "/api/v2/assignables", req.Path)
	assert.Contains(t, req.Query["where"], "(EntityState.IsInitial = true)")
	assert.Contains(t, req.Query["where"], "(Project.Name='Pay''ments')")
	assert.Equal(t, "{id,name,description,resourceType,entityState,entityType,project}", req.Query["select"])
}

func TestClient_Projects(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"items":[{"id":9,"name":"Payments","abbreviation":"PAY"},{"id":10,"name":"Web","abbreviation":null}]}`)
	client := NewClient(srv.URL, "secret")

	projects, err := client.Projects(context.Background(), 200, 200)

	require.NoError(t, err)
	assert.Equal(t, []domain.ProjectRef{
		{ID: 9, Name: "Payments", Abbreviation: "PAY"},
		{ID: 10, Name: "Web"},
	}, projects)
	assert.Equal(t, "200", (*reqs)[0].Query["skip"])
	assert.Equal(t, "200", (*reqs)[0].Query["take"])
}

func TestClient_Assign(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"Id":5}`)
	client := NewClient(srv.URL, "secret")

	require.NoError(t, client.Assign(context.Background(), 5, 12))

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/Assignables/5", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.JSONEq(t, `{"Assignments":[{"GeneralUser":{"Id":12},"Role":{"Id":1}}]}`, req.Body)
}

func TestClient_UpdateState(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"Id":5}`)
	client := NewClient(srv.URL, "secret")

	require.NoError(t, client.UpdateState(context.Background(), 5, domain.EntityStateInStaging))

	assert.JSONEq(t, `{"Id":5,"EntityState":{"Id":127}}`, (*reqs)[0].Body)
}

func TestClient_BaseURL(t *testing.T) {
	client := NewClient("https://acme.tpondemand.com/", "t")
	assert.Equal(t, "https://acme.tpondemand.com", client.BaseURL())
}

func TestRedactToken(t *testing.T) {
	err := redactToken(assert.AnError, "")
	assert.Equal(t, assert.AnError, err)

	err = redactToken(&HTTPError{URL: "https://x/api?access_token=abc", StatusCode: 500}, "abc")
	assert.NotContains(t, err.Error(), "abc")
}
