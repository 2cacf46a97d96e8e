package services

import (
	"context"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/models"
)

// fakeDB is an in-memory core.DbClient for service tests.
type fakeDB struct {
	docs      map[string]*models.Document
	hits      []models.ScoredChunk
	searchErr error

	messages []models.ChatMessage
	attempts []models.QuizAttempt
	answers  []models.QuizAnswer

	lastSearchK         int
	lastSearchThreshold float64
	lastSearchDoc       *string
}

func newFakeDB() *fakeDB {
	return &fakeDB{docs: map[string]*models.Document{}}
}

func (f *fakeDB) CreateUser(context.Context, *models.User) error { return nil }
func (f *fakeDB) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func (f *fakeDB) CreateDocument(_ context.Context, doc *models.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	return f.docs[id], nil
}

func (f *fakeDB) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateDocumentStatus(context.Context, string, string) error { return nil }
func (f *fakeDB) SetDocumentPageCount(context.Context, string, int) error    { return nil }
func (f *fakeDB) DeleteDocument(context.Context, string) error               { return nil }

func (f *fakeDB) InsertDocumentChunks(context.Context, []models.DocumentChunk) error { return nil }
func (f *fakeDB) DeleteChunksByDocument(context.Context, string) error               { return nil }

func (f *fakeDB) SearchChunks(_ context.Context, _ string, _ []float32, documentID *string, k int, threshold float64) ([]models.ScoredChunk, error) {
	f.lastSearchK = k
	f.lastSearchThreshold = threshold
	f.lastSearchDoc = documentID
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeDB) CreateChatMessage(_ context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeDB) GetRecentMessages(_ context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID && m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeDB) CreateQuizAttempt(_ context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) error {
	f.attempts = append(f.attempts, *attempt)
	f.answers = append(f.answers, answers...)
	return nil
}

func (f *fakeDB) ListQuizAttemptsByUser(_ context.Context, userID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeEmbedder returns a constant vector or a configured error.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.5, 0.5, 0.5}, nil
}

// fakeLLM returns canned output and records the prompts it saw.
type fakeLLM struct {
	text     string
	deltas   []string
	quizJSON []byte
	err      error

	lastSystem  string
	lastPrompt  string
	lastHistory []core.ChatTurn
}

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.lastSystem, f.lastPrompt = system, user
	return f.text, f.err
}

func (f *fakeLLM) GenerateStream(_ context.Context, system string, history []core.ChatTurn, query string, onDelta func(string) error) (string, error) {
	f.lastSystem, f.lastPrompt, f.lastHistory = system, query, history
	if f.err != nil {
		return "", f.err
	}
	var full string
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return "", err
		}
		full += d
	}
	return full, nil
}

func (f *fakeLLM) GenerateQuiz(_ context.Context, system, user string) ([]byte, error) {
	f.lastSystem, f.lastPrompt = system, user
	return f.quizJSON, f.err
}

var _ core.LLMProvider = (*fakeLLM)(nil)
