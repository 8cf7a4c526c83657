package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/resolver"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// JobView is the wire form of a job.
type JobView struct {
	ID     string          `json:"id"`
	URI    string          `json:"uri"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

type jobResponse struct {
	Job JobView `json:"job"`
}

type jobsResponse struct {
	Jobs []JobView `json:"jobs"`
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		respondMessage(w, r, http.StatusBadRequest, domain.ErrMalformedRequest.Error()+": content type must be application/json")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, domain.ErrMalformedRequest.Error())
		return
	}

	j, err := s.submitter.Submit(r.Context(), body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Str("job", j.ID).Str("target", j.Target).Msg("job enqueued")
	respondJSON(w, r, http.StatusCreated, jobResponse{Job: s.view(r, *j)})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.monitor.ListJobs(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, s.view(r, j))
	}
	respondJSON(w, r, http.StatusOK, jobsResponse{Jobs: views})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.monitor.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, jobResponse{Job: s.view(r, *j)})
}

func (s *Server) listResolvers(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	for _, res := range s.registry.List() {
		names = append(names, resolver.Describe(res))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"resolvers": names})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.opts.Pinger != nil {
		if err := s.opts.Pinger.Ping(r.Context()); err != nil {
			respondError(w, r, err)
			return
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (s *Server) view(r *http.Request, j domain.Job) JobView {
	result := j.Result
	if len(result) == 0 {
		result = nil
	}
	return JobView{
		ID:     j.ID,
		URI:    s.baseURL(r) + "/jobs/" + url.PathEscape(j.ID),
		Status: string(j.Status),
		Result: result,
	}
}

func (s *Server) baseURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}
