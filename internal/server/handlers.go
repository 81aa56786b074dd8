package server

import (
	"net/http"
	"strconv"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/conversation"
	"github.com/spigell/scheme-navigator/internal/profile"
)

type startRequest struct {
	Language string `json:"language"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type searchRequest struct {
	Query    string `json:"query"`
	State    string `json:"state"`
	Category string `json:"category"`
	MinAge   *int   `json:"min_age"`
	MaxAge   *int   `json:"max_age"`
	TopK     int    `json:"top_k"`
}

type eligibilityRequest struct {
	Age        *int   `json:"age"`
	State      string `json:"state"`
	Education  string `json:"education_level"`
	Income     string `json:"income_range"`
	Category   string `json:"category"`
	Gender     string `json:"gender"`
	Occupation string `json:"occupation"`
}

func (r eligibilityRequest) profile() profile.Profile {
	return profile.Profile{
		Age:        r.Age,
		Region:     r.State,
		Education:  profile.Education(r.Education),
		Income:     profile.Income(r.Income),
		Category:   profile.Category(r.Category),
		Gender:     profile.Gender(r.Gender),
		Occupation: profile.Occupation(r.Occupation),
	}
}

type schemeResponse struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	NameHi             string        `json:"name_hi"`
	Description        string        `json:"description"`
	DescriptionHi      string        `json:"description_hi"`
	Category           string        `json:"category"`
	Benefits           string        `json:"benefits"`
	RequiredDocuments  []string      `json:"required_documents"`
	ApplicationProcess string        `json:"application_process"`
	OfficialURL        string        `json:"official_url,omitempty"`
	OfficeLocation     string        `json:"office_location,omitempty"`
	Deadline           string        `json:"deadline,omitempty"`
	SourceURL          string        `json:"source_url"`
	Eligibility        catalog.Rules `json:"eligibility"`
}

func toSchemeResponse(e *catalog.Entry) schemeResponse {
	docs := e.RequiredDocuments
	if docs == nil {
		docs = []string{}
	}
	return schemeResponse{
		ID:                 e.ID,
		Name:               e.Name,
		NameHi:             e.LocalizedName("hi"),
		Description:        e.Description,
		DescriptionHi:      e.LocalizedDescription("hi"),
		Category:           e.Category(),
		Benefits:           e.Benefits,
		RequiredDocuments:  docs,
		ApplicationProcess: e.ApplicationProcess,
		OfficialURL:        e.ApplicationURL,
		OfficeLocation:     e.OfficeLocation,
		Deadline:           e.Deadline,
		SourceURL:          e.SourceURL,
		Eligibility:        e.Eligibility,
	}
}

type schemesResponse struct {
	Total   int              `json:"total"`
	Schemes []schemeResponse `json:"schemes"`
}

type searchHit struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NameHi      string  `json:"name_hi"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Score       float64 `json:"similarity_score"`
}

type searchResponse struct {
	Total   int         `json:"total"`
	Schemes []searchHit `json:"schemes"`
}

type eligibilityResult struct {
	SchemeID     string   `json:"scheme_id"`
	SchemeName   string   `json:"scheme_name"`
	SchemeNameHi string   `json:"scheme_name_hi"`
	Category     string   `json:"category"`
	Eligible     bool     `json:"is_eligible"`
	Confidence   float64  `json:"confidence"`
	Explanation  string   `json:"explanation"`
	Matching     []string `json:"matching_criteria"`
}

type eligibilityResponse struct {
	TotalEligible int                 `json:"total_eligible"`
	Results       []eligibilityResult `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
	conversation.Health
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.StartSession(req.Language))
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	result, err := s.svc.SendTurn(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.GetSession(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEndConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.EndSession(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.svc.List(conversation.ListRequest{
		Region: q.Get("state"),
		Topic:  q.Get("category"),
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := schemesResponse{Total: len(entries), Schemes: make([]schemeResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Schemes = append(resp.Schemes, toSchemeResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetScheme(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.Entry(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSchemeResponse(entry))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	hits := s.svc.Search(r.Context(), conversation.SearchRequest{
		Query:  req.Query,
		Region: req.State,
		Topic:  req.Category,
		MinAge: req.MinAge,
		MaxAge: req.MaxAge,
		TopK:   req.TopK,
	})

	resp := searchResponse{Total: len(hits), Schemes: make([]searchHit, 0, len(hits))}
	for _, h := range hits {
		resp.Schemes = append(resp.Schemes, searchHit{
			ID:          h.Entry.ID,
			Name:        h.Entry.Name,
			NameHi:      h.Entry.LocalizedName("hi"),
			Description: h.Entry.Description,
			Category:    h.Entry.Category(),
			Score:       h.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	report, err := s.svc.CheckEligibility(req.profile())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := eligibilityResponse{TotalEligible: report.TotalEligible, Results: make([]eligibilityResult, 0, len(report.Results))}
	for _, res := range report.Results {
		resp.Results = append(resp.Results, eligibilityResult{
			SchemeID:     res.Entry.ID,
			SchemeName:   res.Entry.Name,
			SchemeNameHi: res.Entry.LocalizedName("hi"),
			Category:     res.Entry.Category(),
			Eligible:     res.Eligible,
			Confidence:   res.Confidence,
			Explanation:  res.Explanation,
			Matching:     res.Satisfied,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Health: s.svc.Health()})
}
