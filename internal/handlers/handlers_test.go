package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/metrics"
	"anniversary-timeline/internal/models"
	"anniversary-timeline/internal/player"
	"anniversary-timeline/internal/realtime"
	"anniversary-timeline/internal/repository"
	"anniversary-timeline/internal/services"
)

type testServer struct {
	router  *mux.Router
	session *services.Session
	hub     *realtime.Hub
}

func newTestServer(t *testing.T, store repository.DocumentStore, opts ...services.Option) *testServer {
	t.Helper()
	log := logger.NewNop()
	m := metrics.NewMetrics(prometheus.NewRegistry())

	opts = append([]services.Option{services.WithObserver(m), services.WithLogger(log)}, opts...)
	svc := services.NewPresentationService(store, opts...)
	session := services.NewSession(svc, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := realtime.NewHub(log)
	go hub.Run(ctx)
	session.OnChange(func(v player.View) { _ = hub.Broadcast(v) })

	validator := NewRequestValidator()
	router := SetupRoutes(
		NewSlideHandler(session, validator, 1<<20, log),
		NewPresentationHandler(session, validator, log),
		NewPlayerHandler(session, validator, log),
		NewWebSocketHandler(hub, session, nil, log),
		NewHealthHandler(svc),
		m,
	)
	return &testServer{router: router, session: session, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestSaveAndReloadTimeline(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())

	rec := s.do(t, "POST", "/api/slides", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[models.Slide](t, rec)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "hike.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t, 32, 24))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/api/slides/"+first.ID+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decode[models.Slide](t, rec).Image, "data:image/png;base64,"))

	rec = s.do(t, "PATCH", "/api/slides/"+first.ID, map[string]string{"phrase": "Our first hike"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "POST", "/api/slides", nil)
	second := decode[models.Slide](t, rec)

	rec = s.do(t, "PUT", "/api/slides/"+second.ID+"/quiz", QuizRequest{
		Question: "Where did we get engaged?",
		Answers: []AnswerRequest{
			{Text: "Paris"},
			{Text: "Rome", IsCorrect: true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, "POST", "/api/presentations", SavePresentationRequest{Title: "Trip"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[SavePresentationResponse](t, rec)
	require.NotEmpty(t, saved.ID)

	rec = s.do(t, "DELETE", "/api/slides?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode[ResultResponse](t, rec).Result)

	rec = s.do(t, "POST", "/api/presentations/"+saved.ID+"/load", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loaded := decode[LoadPresentationResponse](t, rec)
	assert.Equal(t, "Trip", loaded.Title)
	require.Len(t, loaded.Slides, 2)
	assert.Equal(t, "Our first hike", loaded.Slides[0].Phrase)
	require.NotNil(t, loaded.Slides[1].Quiz)

	var correct []string
	for _, a := range loaded.Slides[1].Quiz.Answers {
		if a.IsCorrect {
			correct = append(correct, a.Text)
		}
	}
	assert.Equal(t, []string{"Rome"}, correct)
}

func TestQuizValidationMessages(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())
	slide := decode[models.Slide](t, s.do(t, "POST", "/api/slides", nil))
	path := "/api/slides/" + slide.ID + "/quiz"

	testCases := []struct {
		name  string
		req   QuizRequest
		field string
		msg   string
	}{
		{
			name:  "no question",
			req:   QuizRequest{Answers: []AnswerRequest{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			field: "question",
			msg:   "Please enter a question",
		},
		{
			name:  "one answer",
			req:   QuizRequest{Question: "Q", Answers: []AnswerRequest{{Text: "a", IsCorrect: true}, {Text: "  "}}},
			field: "answers",
			msg:   "Please add at least 2 answers",
		},
		{
			name:  "nothing correct",
			req:   QuizRequest{Question: "Q", Answers: []AnswerRequest{{Text: "a"}, {Text: "b"}}},
			field: "answers",
			msg:   "Please mark one answer as correct",
		},
		{
			name:  "duplicate answer ids",
			req:   QuizRequest{Question: "Q", Answers: []AnswerRequest{{ID: "x", Text: "a", IsCorrect: true}, {ID: "x", Text: "b"}}},
			field: "answers",
			msg:   "Answer ids must be unique",
		},
		{
			name:  "question too long",
			req:   QuizRequest{Question: strings.Repeat("x", 201)},
			field: "question",
			msg:   "must be at most 200 characters",
		},
		{
			name:  "answer too long",
			req:   QuizRequest{Question: "Q", Answers: []AnswerRequest{{Text: strings.Repeat("x", 101)}}},
			field: "answers[0].text",
			msg:   "must be at most 100 characters",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, "PUT", path, tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tc.msg, resp.Fields[tc.field])
		})
	}

	got, _ := s.session.Slide(slide.ID)
	assert.False(t, got.HasQuiz())

	rec := s.do(t, "PUT", "/api/slides/unknown/quiz", QuizRequest{Question: "Q"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizMixedAnswerIDs(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())
	slide := decode[models.Slide](t, s.do(t, "POST", "/api/slides", nil))

	rec := s.do(t, "PUT", "/api/slides/"+slide.ID+"/quiz", QuizRequest{
		Question: "Where did we get engaged?",
		Answers:  []AnswerRequest{{ID: "2", Text: "Paris"}, {Text: "Rome", IsCorrect: true}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quiz := decode[models.Slide](t, rec).Quiz
	require.NotNil(t, quiz)
	require.Len(t, quiz.Answers, 2)
	assert.NotEqual(t, quiz.Answers[0].ID, quiz.Answers[1].ID)

	s.do(t, "POST", "/api/player/present", nil)
	resp := decode[PlayerResponse](t, s.do(t, "POST", "/api/player/select", SelectRequest{AnswerID: quiz.Answers[1].ID}))
	assert.True(t, resp.Changed)
	require.NotNil(t, resp.View.Quiz)
	require.NotNil(t, resp.View.Quiz.Correct)
	assert.True(t, *resp.View.Quiz.Correct)
}

func TestRemoveQuizNeedsConfirmation(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())
	slide := decode[models.Slide](t, s.do(t, "POST", "/api/slides", nil))
	rec := s.do(t, "PUT", "/api/slides/"+slide.ID+"/quiz", QuizRequest{
		Question: "Q",
		Answers:  []AnswerRequest{{Text: "a", IsCorrect: true}, {Text: "b"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "DELETE", "/api/slides/"+slide.ID+"/quiz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[ResultResponse](t, rec).Result)
	got, _ := s.session.Slide(slide.ID)
	assert.True(t, got.HasQuiz())

	rec = s.do(t, "DELETE", "/api/slides/"+slide.ID+"/quiz?confirm=true", nil)
	assert.Equal(t, "confirmed", decode[ResultResponse](t, rec).Result)
	got, _ = s.session.Slide(slide.ID)
	assert.False(t, got.HasQuiz())

	rec = s.do(t, "DELETE", "/api/slides/"+slide.ID+"/quiz?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveWithoutSlides(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())

	rec := s.do(t, "POST", "/api/presentations", SavePresentationRequest{Title: "Trip"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Add at least one slide before saving", decode[ErrorResponse](t, rec).Fields["slides"])

	rec = s.do(t, "POST", "/api/presentations", SavePresentationRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decode[ErrorResponse](t, rec).Fields["title"])
}

func TestStorageErrorsMapToStatus(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		reason := errors.Join(apperr.ErrConfigurationIncomplete, errors.New("missing MONGO_URI"))
		s := newTestServer(t, nil, services.WithUnavailableReason(reason))

		rec := s.do(t, "GET", "/api/presentations", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Error, "storage unavailable")

		rec = s.do(t, "GET", "/healthz", nil)
		assert.False(t, decode[HealthResponse](t, rec).Storage)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer(t, repository.NewMemoryPresentationRepository())
		s.session.AddSlide()

		rec := s.do(t, "GET", "/api/presentations/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = s.do(t, "POST", "/api/presentations/nope/load", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = s.do(t, "PUT", "/api/presentations/nope", SavePresentationRequest{Title: "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = s.do(t, "GET", "/api/presentations/nope/export", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteAndExportPresentation(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())
	s.session.AddSlide()
	saved := decode[SavePresentationResponse](t, s.do(t, "POST", "/api/presentations", SavePresentationRequest{Title: "Trip"}))

	rec := s.do(t, "GET", "/api/presentations/"+saved.ID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `attachment; filename="Trip-\d+\.json"`, rec.Header().Get("Content-Disposition"))
	exported := decode[models.Presentation](t, rec)
	assert.Equal(t, "Trip", exported.Title)

	rec = s.do(t, "DELETE", "/api/presentations/"+saved.ID, nil)
	assert.Equal(t, "cancelled", decode[ResultResponse](t, rec).Result)
	list := decode[[]models.Presentation](t, s.do(t, "GET", "/api/presentations", nil))
	assert.Len(t, list, 1)

	rec = s.do(t, "DELETE", "/api/presentations/"+saved.ID+"?confirm=true", nil)
	assert.Equal(t, "confirmed", decode[ResultResponse](t, rec).Result)
	rec = s.do(t, "DELETE", "/api/presentations/"+saved.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "deleting twice succeeds")

	list = decode[[]models.Presentation](t, s.do(t, "GET", "/api/presentations", nil))
	assert.Empty(t, list)
}

func TestPlayerEndpoints(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())

	rec := s.do(t, "POST", "/api/player/present", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	first := s.session.AddSlide()
	s.do(t, "PATCH", "/api/slides/"+first.ID, map[string]string{"phrase": "Our first hike"})
	second := s.session.AddSlide()
	s.do(t, "PUT", "/api/slides/"+second.ID+"/quiz", QuizRequest{
		Question: "Where?",
		Answers:  []AnswerRequest{{ID: "a", Text: "Paris"}, {ID: "b", Text: "Rome", IsCorrect: true}},
	})

	resp := decode[PlayerResponse](t, s.do(t, "POST", "/api/player/present", nil))
	assert.True(t, resp.Changed)
	assert.Equal(t, player.LayoutCaption, resp.View.Layout)
	assert.Equal(t, "Our first hike", resp.View.Caption)

	resp = decode[PlayerResponse](t, s.do(t, "POST", "/api/player/swipe", SwipeRequest{StartY: 500, EndY: 400}))
	assert.True(t, resp.Changed)
	assert.Equal(t, player.LayoutQuiz, resp.View.Layout)

	resp = decode[PlayerResponse](t, s.do(t, "POST", "/api/player/advance", nil))
	assert.False(t, resp.Changed, "no wraparound")

	resp = decode[PlayerResponse](t, s.do(t, "POST", "/api/player/select", SelectRequest{AnswerID: "a"}))
	assert.True(t, resp.Changed)
	require.NotNil(t, resp.View.Quiz.Correct)
	assert.False(t, *resp.View.Quiz.Correct)
	assert.Empty(t, resp.View.Quiz.Message)

	rec = s.do(t, "POST", "/api/player/select", SelectRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "GET", "/api/player/slide.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "anniversary-timeline-slide-2.png")

	resp = decode[PlayerResponse](t, s.do(t, "POST", "/api/player/key", KeyRequest{Key: "Escape"}))
	assert.Equal(t, "idle", resp.View.State)
}

func TestWebSocketPlayerFeed(t *testing.T) {
	s := newTestServer(t, repository.NewMemoryPresentationRepository())
	s.session.AddSlide()
	s.session.AddSlide()

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/player", nil)
	require.NoError(t, err)
	defer conn.Close()

	readView := func() player.View {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var v player.View
		require.NoError(t, conn.ReadJSON(&v))
		return v
	}

	v := readView()
	assert.Equal(t, "idle", v.State)
	assert.Equal(t, 2, v.Total)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "present"}))
	v = readView()
	assert.Equal(t, "presenting", v.State)
	assert.Equal(t, 0, v.Index)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "key", Key: "ArrowUp"}))
	v = readView()
	assert.Equal(t, 1, v.Index)

	rec := s.do(t, "POST", "/api/player/exit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v = readView()
	assert.Equal(t, "idle", v.State)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://timeline.example"})

	req := httptest.NewRequest("GET", "http://localhost:8080/ws/player", nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "https://timeline.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:8080")
	assert.True(t, check(req), "same host")

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
