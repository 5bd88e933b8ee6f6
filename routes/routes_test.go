package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/db/dbtest"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/handlers"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-test-secret"

type apiEnv struct {
	server *httptest.Server
	hub    *brackets.Hub
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	bus := events.NewBus(logger)
	t.Cleanup(func() { _ = bus.Close() })
	require.NoError(t, events.NewRelay(bus, hub, logger).Run(ctx))

	registry := prometheus.NewRegistry()
	deps := services.NewDeps(dbtest.New(t), logger)
	deps.Events = bus
	deps.Metrics = services.NewMetrics(registry)
	deps.Shuffler = brackets.NoShuffle

	tournaments := services.NewTournamentService(deps)
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Tournament:  handlers.NewTournamentHandler(tournaments),
		Participant: handlers.NewParticipantHandler(services.NewParticipantService(deps)),
		Bracket:     handlers.NewBracketHandler(services.NewBracketService(deps), services.NewStandingsService(deps)),
		Match:       handlers.NewMatchHandler(services.NewMatchService(deps)),
		WebSocket:   handlers.NewWebSocketHandler(hub, tournaments, nil, logger),
	}, Options{JWTSecret: secret, Gatherer: registry})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiEnv{server: server, hub: hub}
}

func token(t *testing.T, userID uuid.UUID, role models.UserRole) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// call sends a request and decodes a JSON envelope into out when out is non-nil.
func (e *apiEnv) call(t *testing.T, method, path, bearer string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type tournamentEnvelope struct {
	Tournament models.Tournament `json:"tournament"`
}

type participantEnvelope struct {
	Participant models.Participant `json:"participant"`
}

type matchesEnvelope struct {
	Matches []models.Match `json:"matches"`
}

func findMatch(matches []models.Match, round, number int) models.Match {
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	return models.Match{}
}

func TestTournamentLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t)
	organizer := token(t, uuid.New(), models.RoleOrganizer)
	officiant := token(t, uuid.New(), models.RoleOfficiant)

	var created tournamentEnvelope
	status := api.call(t, http.MethodPost, "/api/tournaments", organizer,
		map[string]interface{}{"title": "Friday Cup", "format": "single_elimination", "max_participants": 8}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, models.StatusDraft, created.Tournament.Status)
	base := "/api/tournaments/" + created.Tournament.ID.String()

	playerToken := token(t, uuid.New(), models.RolePlayer)
	assert.Equal(t, http.StatusForbidden, api.call(t, http.MethodPatch, base+"/status", playerToken, map[string]string{"status": "open"}, nil))
	require.Equal(t, http.StatusOK, api.call(t, http.MethodPatch, base+"/status", organizer, map[string]string{"status": "open"}, nil))

	participants := make([]models.Participant, 0, 3)
	for i := 0; i < 3; i++ {
		var registered participantEnvelope
		require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, base+"/participants", token(t, uuid.New(), models.RolePlayer), nil, &registered))
		assert.Equal(t, models.PaymentPending, registered.Participant.PaymentStatus)
		participants = append(participants, registered.Participant)
	}

	// Без оплаты в сетку никто не попадает
	assert.Equal(t, http.StatusConflict, api.call(t, http.MethodPost, base+"/bracket", organizer, nil, nil))

	for _, p := range participants {
		path := "/api/participants/" + p.ID.String() + "/payment"
		require.Equal(t, http.StatusOK, api.call(t, http.MethodPatch, path, organizer, map[string]string{"payment_status": "completed"}, nil))
	}

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws/tournaments/" + created.Tournament.ID.String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	room := brackets.RoomForTournament(created.Tournament.ID)
	require.Eventually(t, func() bool { return api.hub.ClientCount(room) == 1 }, 2*time.Second, 10*time.Millisecond)

	var generated matchesEnvelope
	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, base+"/bracket", organizer, nil, &generated))
	assert.Len(t, generated.Matches, 3)
	assert.Equal(t, http.StatusConflict, api.call(t, http.MethodPost, base+"/bracket", organizer, nil, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var pushed brackets.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, brackets.MessageBracketGenerated, pushed.Type)

	var bracket struct {
		Bracket struct {
			Rounds []services.RoundView `json:"rounds"`
		} `json:"bracket"`
	}
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, base+"/bracket", "", nil, &bracket))
	assert.Len(t, bracket.Bracket.Rounds, 2)

	opener := findMatch(generated.Matches, 1, 1)
	require.NotNil(t, opener.Player1ID)
	require.NotNil(t, opener.Player2ID)
	winnerPath := "/api/matches/" + opener.ID.String() + "/winner"
	assert.Equal(t, http.StatusForbidden, api.call(t, http.MethodPost, winnerPath, playerToken, map[string]string{"winner_participant_id": opener.Player1ID.String()}, nil))
	assert.Equal(t, http.StatusConflict, api.call(t, http.MethodPost, winnerPath, officiant, map[string]string{"winner_participant_id": uuid.NewString()}, nil))
	require.Equal(t, http.StatusOK, api.call(t, http.MethodPost, winnerPath, officiant, map[string]string{"winner_participant_id": opener.Player1ID.String()}, nil))

	var listed matchesEnvelope
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, base+"/matches", "", nil, &listed))
	final := findMatch(listed.Matches, 2, 1)
	require.NotNil(t, final.Player1ID)
	require.NotNil(t, final.Player2ID)
	require.Equal(t, http.StatusOK, api.call(t, http.MethodPost, "/api/matches/"+final.ID.String()+"/winner", organizer,
		map[string]string{"winner_participant_id": final.Player2ID.String()}, nil))

	var standings struct {
		Standings []models.StandingEntry `json:"standings"`
	}
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, base+"/standings", "", nil, &standings))
	require.Len(t, standings.Standings, 3)
	assert.Equal(t, *final.Player2ID, standings.Standings[0].ParticipantID)
	require.NotNil(t, standings.Standings[0].FinalPlacement)
	assert.Equal(t, 1, *standings.Standings[0].FinalPlacement)

	var finished tournamentEnvelope
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, base, "", nil, &finished))
	assert.Equal(t, models.StatusCompleted, finished.Tournament.Status)

	var advanced struct {
		Result services.AdvanceResult `json:"result"`
	}
	require.Equal(t, http.StatusOK, api.call(t, http.MethodPost, base+"/advance", organizer, nil, &advanced))
	assert.True(t, advanced.Result.TournamentCompleted)
}

func TestRequestErrors(t *testing.T) {
	api := newAPI(t)
	organizer := token(t, uuid.New(), models.RoleOrganizer)

	var created tournamentEnvelope
	require.Equal(t, http.StatusCreated, api.call(t, http.MethodPost, "/api/tournaments", organizer,
		map[string]interface{}{"title": "Draft Cup", "format": "round_robin"}, &created))
	base := "/api/tournaments/" + created.Tournament.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		body   interface{}
		want   int
	}{
		{"create without token", http.MethodPost, "/api/tournaments", "", map[string]string{"title": "x", "format": "round_robin"}, http.StatusUnauthorized},
		{"create without title", http.MethodPost, "/api/tournaments", organizer, map[string]string{"format": "round_robin"}, http.StatusBadRequest},
		{"unknown body field", http.MethodPost, "/api/tournaments", organizer, map[string]string{"title": "x", "format": "round_robin", "prize": "1"}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/tournaments/not-a-uuid", "", nil, http.StatusBadRequest},
		{"unknown tournament", http.MethodGet, "/api/tournaments/" + uuid.NewString(), "", nil, http.StatusNotFound},
		{"invalid status filter", http.MethodGet, "/api/tournaments?status=paused", "", nil, http.StatusBadRequest},
		{"standings before start", http.MethodGet, base + "/standings", "", nil, http.StatusConflict},
		{"register on draft", http.MethodPost, base + "/participants", organizer, nil, http.StatusConflict},
		{"manual completion", http.MethodPatch, base + "/status", organizer, map[string]string{"status": "completed"}, http.StatusBadRequest},
		{"unknown match", http.MethodPost, "/api/matches/" + uuid.NewString() + "/start", organizer, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.call(t, tt.method, tt.path, tt.bearer, tt.body, nil))
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	api := newAPI(t)

	assert.Equal(t, http.StatusOK, api.call(t, http.MethodGet, "/healthz", "", nil, nil))

	var listed struct {
		Tournaments []models.Tournament `json:"tournaments"`
	}
	require.Equal(t, http.StatusOK, api.call(t, http.MethodGet, "/api/tournaments", "", nil, &listed))
	assert.Empty(t, listed.Tournaments)

	resp, err := api.server.Client().Get(api.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "forge_matches_completed_total")
}
