package domain

import "testing"

func TestScoreText(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		text           string
		expectPositive bool
	}{
		{name: "exact match", query: "chatgpt", text: "ChatGPT", expectPositive: true},
		{name: "prefix match", query: "chat", text: "ChatGPT", expectPositive: true},
		{name: "substring match", query: "gpt", text: "ChatGPT", expectPositive: true},
		{name: "no match", query: "xyz", text: "ChatGPT", expectPositive: false},
		{name: "multi-word match", query: "hub docker", text: "Docker Hub", expectPositive: true},
		{name: "partial multi-word", query: "docker lab", text: "Docker Hub", expectPositive: false},
		{name: "empty query", query: "  ", text: "Docker Hub", expectPositive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreText(tt.query, tt.text)
			if tt.expectPositive && score <= 0 {
				t.Errorf("ScoreText(%q, %q) = %v, want > 0", tt.query, tt.text, score)
			}
			if !tt.expectPositive && score != 0 {
				t.Errorf("ScoreText(%q, %q) = %v, want 0", tt.query, tt.text, score)
			}
		})
	}
}

func TestScoreTextOrdering(t *testing.T) {
	exact := ScoreText("go", "Go")
	prefix := ScoreText("go", "Go generics")
	early := ScoreText("go", "Why go")
	late := ScoreText("go", "Notes on why I use go")

	if !(exact > prefix && prefix > early && early > late) {
		t.Errorf("scores exact=%v prefix=%v early=%v late=%v, want strictly decreasing", exact, prefix, early, late)
	}
}

func TestRank(t *testing.T) {
	records := []*Bookmark{
		{ID: "1", Title: "Weekly notes", URL: "https://github.com/me/notes"},
		{ID: "2", Title: "GitHub Actions tips", URL: "https://blog.example.com/gha"},
		{ID: "3", Title: "Cooking", URL: "https://food.example.com"},
		{ID: "4", Title: "GitHub Actions tips", URL: "https://other.example.com/gha"},
		nil,
	}

	got := Rank("github", records)
	if len(got) != 3 {
		t.Fatalf("Rank() returned %d candidates, want 3", len(got))
	}
	if got[0].Bookmark.ID != "2" || got[1].Bookmark.ID != "4" || got[2].Bookmark.ID != "1" {
		t.Errorf("Rank() order = %s,%s,%s, want 2,4,1", got[0].Bookmark.ID, got[1].Bookmark.ID, got[2].Bookmark.ID)
	}

	if b := Best("cooking", records); b == nil || b.ID != "3" {
		t.Errorf("Best(cooking) = %v, want 3", b)
	}
	if b := Best("gardening", records); b != nil {
		t.Errorf("Best(gardening) = %v, want nil", b)
	}
}
