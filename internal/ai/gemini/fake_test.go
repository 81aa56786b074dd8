package gemini

import (
	"context"

	"google.golang.org/genai"
)

type fakeModels struct {
	generateResp *genai.GenerateContentResponse
	generateErr  error
	embedResp    *genai.EmbedContentResponse
	embedErr     error

	lastModel    string
	lastContents []*genai.Content
	lastEmbedCfg *genai.EmbedContentConfig
	hadDeadline  bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastContents = contents
	_, f.hadDeadline = ctx.Deadline()
	return f.generateResp, f.generateErr
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.lastModel = model
	f.lastContents = contents
	f.lastEmbedCfg = cfg
	_, f.hadDeadline = ctx.Deadline()
	return f.embedResp, f.embedErr
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}
