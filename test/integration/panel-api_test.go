//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/NordCoder/netpanel/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okEnvelope struct {
	StatusText string                    `json:"statusText"`
	Data       notification.Notification `json:"data"`
}

type listEnvelope struct {
	Data []notification.Notification `json:"data"`
}

func visibleIDs(t *testing.T, s Session) map[int64]bool {
	t.Helper()
	var list listEnvelope
	require.NoError(t, json.Unmarshal(s.Do(t, http.MethodGet, "/api/notifications?limit=500", nil, http.StatusOK), &list))
	out := make(map[int64]bool, len(list.Data))
	for _, n := range list.Data {
		out[n.ID] = true
	}
	return out
}

func TestPanelAPI_Lifecycle(t *testing.T) {
	c := LoadCfg()
	WaitHealthz(t, c.APIHealthURL, 60*time.Second)
	s := NewSession(t, c, "it-lifecycle")

	title := "it lifecycle " + UniqueSuffix()
	var created okEnvelope
	require.NoError(t, json.Unmarshal(s.Do(t, http.MethodPut, "/notifications", map[string]any{
		"title": title, "body": "created by the integration suite",
	}, http.StatusOK), &created))
	assert.Equal(t, "OK", created.StatusText)
	id := created.Data.ID
	require.NotZero(t, id)
	assert.True(t, visibleIDs(t, s)[id])

	s.Do(t, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, http.StatusOK)
	assert.False(t, visibleIDs(t, s)[id], "read notifications leave the list")

	s.Do(t, http.MethodPatch, fmt.Sprintf("/notifications/%d/sticky", id), nil, http.StatusOK)
	assert.True(t, visibleIDs(t, s)[id], "sticky notifications stay even when read")

	s.Do(t, http.MethodPatch, fmt.Sprintf("/notifications/%d/bogus", id), nil, http.StatusBadRequest)
	s.Do(t, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil, http.StatusOK)
	s.Do(t, http.MethodGet, fmt.Sprintf("/api/notifications/%d", id), nil, http.StatusNotFound)

	ev, ok := ReadUntil(t, c.KafkaBootstrap, c.EventsTopic, "it-lifecycle-"+UniqueSuffix(), 30*time.Second,
		func(ev notification.Event) bool {
			return ev.Notification.ID == id && ev.Kind == notification.EventDeleted
		})
	require.True(t, ok, "delete event reaches kafka through the outbox")
	assert.Equal(t, title, ev.Notification.Title)
}

func TestPanelAPI_ValidationAndGuards(t *testing.T) {
	c := LoadCfg()
	WaitHealthz(t, c.APIHealthURL, 60*time.Second)
	s := NewSession(t, c, "it-guards")

	var fields map[string]string
	require.NoError(t, json.Unmarshal(s.Do(t, http.MethodPut, "/notifications", map[string]any{"body": "x"},
		http.StatusUnprocessableEntity), &fields))
	assert.Equal(t, "The title field is required.", fields["title"])

	anon := Session{Base: c.APIBase}
	anon.Do(t, http.MethodGet, "/api/notifications", nil, http.StatusUnauthorized)

	noCSRF := s
	noCSRF.CSRF = ""
	noCSRF.Do(t, http.MethodPut, "/notifications", map[string]any{"title": "t", "body": "b"}, 419)
}
