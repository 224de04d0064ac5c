package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/repository"
	"robinhoodarmy/internal/testutil"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"Story", "Write an engaging, age-appropriate story that teaches key concepts in Science."},
		{"practice questions", "Create 5 practice questions that are appropriate for 8-year-old children learning Science."},
		{"Simple Explanation", "Provide a simple, clear explanation of basic Science concepts"},
		{"Fun Activities", "Suggest 5 fun, hands-on activities that 8-year-old children can do to learn Science."},
		{"Learning Games", "Design 3-5 educational games that teach Science concepts to 8-year-old children."},
		{"Poem", "Create helpful educational content about Science"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			prompt := BuildPrompt(models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: tt.contentType})
			if !strings.HasPrefix(prompt, "Create educational content for 8-year-old children about Science.") {
				t.Errorf("prompt missing base sentence: %q", prompt)
			}
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("prompt = %q, want it to contain %q", prompt, tt.want)
			}
		})
	}

	prompt := BuildPrompt(models.GenerateRequest{AgeGroup: 8, Subject: "Hindi", ContentType: "Story", Tone: "Playful", Language: "Hindi", IncludeQuiz: true, CustomInstructions: "Mention mangoes"})
	for _, want := range []string{"Use a playful tone.", "Write the content in Hindi.", "short quiz", "Additional instructions: Mention mangoes"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt = %q, want it to contain %q", prompt, want)
		}
	}
}

func TestContentServiceGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	gen := &fakeGenerator{text: "Once upon a time..."}
	svc := NewContentService(db, gen, nil, false)
	ctx := context.Background()

	item, err := svc.Generate(ctx, "u1", models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: "Practice Questions", UserID: "u1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if item.ContentType != "practice questions" || item.Content != "Once upon a time..." {
		t.Errorf("Generate() = %+v", item)
	}

	stored, err := repository.NewContentRepository(db).List(ctx, "u1", repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 || stored[0].AgeGroup != 8 {
		t.Errorf("stored content = %+v", stored)
	}
}

func TestContentServiceErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       models.GenerateRequest
		genErr    error
		wantMsg   string
		wantCalls int
	}{
		{"age too high", models.GenerateRequest{AgeGroup: 25, Subject: "Science", ContentType: "Story"}, nil, "Age group must be a number between 3 and 20", 0},
		{"missing subject", models.GenerateRequest{AgeGroup: 8, ContentType: "Story"}, nil, "Subject is required", 0},
		{"bad type", models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: "Poem"}, nil, "Content type must be one of", 0},
		{"other user", models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: "Story", UserID: "u2"}, nil, ErrUserMismatch.Error(), 0},
		{"generator down", models.GenerateRequest{AgeGroup: 8, Subject: "Science", ContentType: "Story"}, errors.New("Gemini API error: 503 Service Unavailable"), "Content generation failed: Gemini API error", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "x", err: tt.genErr}
			svc := NewContentService(db, gen, nil, false)

			_, err := svc.Generate(ctx, "u1", tt.req)
			var cerr *ContentError
			if !errors.As(err, &cerr) {
				t.Fatalf("Generate() error = %v, want *ContentError", err)
			}
			if !strings.HasPrefix(cerr.Message, tt.wantMsg) {
				t.Errorf("message = %q, want prefix %q", cerr.Message, tt.wantMsg)
			}
			if gen.calls != tt.wantCalls {
				t.Errorf("generator called %d times, want %d", gen.calls, tt.wantCalls)
			}
		})
	}
}

func TestContentServiceMapsCheckViolations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewContentService(db, &fakeGenerator{}, nil, false)

	_, err := repository.NewContentRepository(db).Create(context.Background(), "u1", 25, "Science", "story", "x")
	if err == nil {
		t.Fatal("expected age group check violation")
	}
	if got := svc.saveError(err).Message; got != msgConstraintViolation {
		t.Errorf("saveError() = %q, want %q", got, msgConstraintViolation)
	}
	if got := svc.saveError(errors.New("disk full")).Message; got != msgSaveFailed {
		t.Errorf("saveError() = %q, want %q", got, msgSaveFailed)
	}
}
