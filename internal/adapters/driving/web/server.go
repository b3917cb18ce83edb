package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	goahttp "goa.design/goa/v3/http"
	httpmdlwr "goa.design/goa/v3/http/middleware"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/logger"
)

// maxQuestionBytes bounds request bodies on the ask endpoints.
const maxQuestionBytes = 16 << 10

// Server is the chatbot web server.
type Server struct {
	ports   *Ports
	mux     goahttp.Muxer
	handler http.Handler
	page    *template.Template
}

// AskRequest is the JSON body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// errorBody is the JSON body of API errors.
type errorBody struct {
	Error string `json:"error"`
}

// NewServer creates a web server with its routes mounted.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		mux:   goahttp.NewMuxer(),
		page: template.Must(template.New("page").Funcs(template.FuncMap{
			"statusClass": StatusClass,
		}).Parse(pageHTML)),
	}

	s.mux.Handle(http.MethodGet, "/", s.handleIndex)
	s.mux.Handle(http.MethodPost, "/ask", s.handleAsk)
	s.mux.Handle(http.MethodPost, "/api/ask", s.handleAPIAsk)
	s.mux.Handle(http.MethodGet, "/api/items", s.handleItems)
	s.mux.Handle(http.MethodGet, "/healthz", s.handleHealth)

	var handler http.Handler = s.mux
	{
		handler = logRequests(handler)
		handler = httpmdlwr.RequestID(httpmdlwr.UseXRequestIDHeaderOption(true))(handler)
	}
	s.handler = handler

	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("web: listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// pageData is the template input for the HTML page.
type pageData struct {
	Question string
	Answer   *domain.Answer
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, pageData{})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuestionBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Error: "Permintaan tidak valid."})
		return
	}

	question := strings.TrimSpace(r.PostFormValue("question"))
	if question == "" {
		s.render(w, http.StatusBadRequest, pageData{Error: "Pertanyaan tidak boleh kosong."})
		return
	}

	answer := s.ports.Chat.Ask(r.Context(), question)
	s.render(w, http.StatusOK, pageData{Question: question, Answer: &answer})
}

func (s *Server) handleAPIAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuestionBytes)

	var req AskRequest
	if err := goahttp.RequestDecoder(r).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "question is required"})
		return
	}

	writeJSON(w, r, http.StatusOK, s.ports.Chat.Ask(r.Context(), question))
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items := []domain.WasteItem{}
	if s.ports.Seed != nil {
		listed, err := s.ports.Seed.Items(r.Context())
		if err != nil {
			logger.Error("web: listing items: %v", err)
			writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "listing items failed"})
			return
		}
		items = append(items, listed...)
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf strings.Builder
	if err := s.page.Execute(&buf, data); err != nil {
		logger.Error("web: rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	enc := goahttp.ResponseEncoder(r.Context(), w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		logger.Error("web: encoding response: %v", err)
	}
}

// StatusClass maps an answer status to the CSS class used by the page.
func StatusClass(status domain.AnswerStatus) string {
	switch status {
	case domain.AnswerSuccess:
		return "success"
	case domain.AnswerNoInformation:
		return "warning"
	case domain.AnswerError:
		return "error"
	default:
		return "normal"
	}
}

const pageHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Pilah - Chatbot Sampah</title>
<style>
body { font-family: sans-serif; max-width: 44rem; margin: 2rem auto; color: #4c4f69; }
h1 { color: #40a02b; }
form { display: flex; gap: .5rem; }
input[type=text] { flex: 1; padding: .5rem; }
.answer { margin-top: 1.5rem; padding: 1rem; border-left: 4px solid #9ca0b0; }
.answer.success { border-color: #40a02b; }
.answer.warning { border-color: #df8e1d; background: #fdf6e3; }
.answer.error { border-color: #d20f39; background: #fdecee; }
.sources { font-size: .85rem; color: #6c6f85; }
.invalid { color: #d20f39; }
</style>
</head>
<body>
<h1>Chatbot Sampah</h1>
<form method="post" action="/ask">
<input type="text" name="question" value="{{.Question}}" placeholder="Tanyakan tentang sampah..." autofocus>
<button type="submit">Tanya</button>
</form>
{{with .Error}}<p class="invalid">{{.}}</p>{{end}}
{{with .Answer}}
<div class="answer {{statusClass .Status}}" data-status="{{.Status}}">
<p>{{.Text}}</p>
{{if .Sources}}<ol class="sources">{{range .Sources}}<li>{{.Content}}</li>{{end}}</ol>{{end}}
</div>
{{end}}
</body>
</html>
`
