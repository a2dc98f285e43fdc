package commentary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

func testRequest() Request {
	return Request{
		PlayerHand: cards.Hand{
			{Suit: cards.Hearts, Rank: cards.Ten, FaceUp: true},
			{Suit: cards.Spades, Rank: cards.Six, FaceUp: true},
		},
		DealerHand: cards.Hand{
			{Suit: cards.Clubs, Rank: cards.King, FaceUp: false},
			{Suit: cards.Diamonds, Rank: cards.Five, FaceUp: true},
		},
		Phase:       protocol.PhaseTurns,
		PlayerScore: 16,
		DealerScore: 5,
	}
}

func TestPrompt(t *testing.T) {
	prompt := testRequest().prompt()
	require.Contains(t, prompt, "Phase: TURNS")
	require.Contains(t, prompt, "[10♥, 6♠] (Total: 16)")
	require.Contains(t, prompt, "[??, 5♦] (Total: 5)")
	require.Contains(t, prompt, "Game in progress")
}

func TestNewRequest(t *testing.T) {
	session := protocol.NewSession("123456")
	session.Phase = protocol.PhaseTurns
	session.DealerHand = testRequest().DealerHand
	session.Players = protocol.PlayersList{
		{ID: "a", Name: gofakeit.Username(), Hand: testRequest().PlayerHand},
	}

	request := NewRequest(session)
	require.Equal(t, 16, request.PlayerScore)
	require.Equal(t, 5, request.DealerScore)
	require.Len(t, request.PlayerHand, 2)
	require.Empty(t, request.Result)

	session.Phase = protocol.PhaseResolution
	session.ActivePlayerIndex = 1
	session.Message = "Kết thúc ván"
	request = NewRequest(session)
	require.Len(t, request.PlayerHand, 2)
	require.Equal(t, 16, request.PlayerScore)
	require.Equal(t, "Kết thúc ván", request.Result)

	session.Players = nil
	session.ActivePlayerIndex = 0
	request = NewRequest(session)
	require.Empty(t, request.PlayerHand)
	require.Zero(t, request.PlayerScore)
}

func TestOpenAIComment(t *testing.T) {
	apiKey := gofakeit.UUID()
	reply := gofakeit.Sentence(5)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer "+apiKey, r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, DefaultModel, body["model"])
		require.Contains(t, body["input"], "Xì Dách")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []any{
				map[string]any{"content": []any{
					map[string]any{"type": "output_text", "text": "  " + reply + "\n"},
				}},
			},
		})
	}))
	defer server.Close()

	service := NewOpenAI(OpenAIConfig{APIKey: apiKey, ResponsesURL: server.URL}, nil)
	require.Equal(t, reply, service.Comment(context.Background(), testRequest()))
}

func TestOpenAIFallback(t *testing.T) {
	testCases := []struct {
		name     string
		handler  http.HandlerFunc
		expected string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expected: Fallback,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
			expected: Fallback,
		},
		{
			name: "empty output",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"output_text": "   "}`))
			},
			expected: EmptyReply,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			service := NewOpenAI(OpenAIConfig{APIKey: "key", ResponsesURL: server.URL}, nil)
			require.Equal(t, tc.expected, service.Comment(context.Background(), testRequest()))
		})
	}
}

func TestOpenAINoKey(t *testing.T) {
	service := NewOpenAI(OpenAIConfig{}, nil)
	require.Equal(t, Fallback, service.Comment(context.Background(), testRequest()))
}

func TestOpenAIContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	service := NewOpenAI(OpenAIConfig{APIKey: "key", ResponsesURL: server.URL}, nil)
	require.Equal(t, Fallback, service.Comment(ctx, testRequest()))
}

func TestStatic(t *testing.T) {
	service := NewStatic()
	ctx := context.Background()

	request := testRequest()
	first := service.Comment(ctx, request)
	second := service.Comment(ctx, request)
	require.Contains(t, turnLines, first)
	require.NotEqual(t, first, second)

	request.PlayerHand = cards.Hand{
		{Suit: cards.Hearts, Rank: cards.Ace, FaceUp: true},
		{Suit: cards.Spades, Rank: cards.Ace, FaceUp: true},
	}
	require.Equal(t, "Xì Bàng! Nhà cái xin thua.", service.Comment(ctx, request))

	request.Phase = protocol.PhaseResolution
	require.Equal(t, "Hết ván, chung tiền nào!", service.Comment(ctx, request))

	require.Equal(t, Fallback, service.Comment(ctx, Request{Phase: protocol.PhaseTurns}))
}
