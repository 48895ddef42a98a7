package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"haru-assistant/internal/gateway"
)

func TestGatewayGenerateParsesReplyAndClassification(t *testing.T) {
	var gotBody struct {
		Messages []chatTurn `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"Code":200,"message":"ok","data":{
			"reply":"내일 서울은 맑겠습니다.",
			"model":"haru-chat-1",
			"classification":{"label":"weather","confidence":0.92}
		}}`))
	}))
	defer srv.Close()

	c := NewGateway(gateway.NewClient(srv.URL, gateway.Options{Timeout: 2 * time.Second, RetryBudget: 0}))
	resp, err := c.Generate(context.Background(), []Message{
		{Role: "system", Content: "너는 개인 비서야."},
		{Role: "user", Content: "내일 날씨 어때?"},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Content != "내일 서울은 맑겠습니다." || resp.Model != "haru-chat-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Classification == nil || resp.Classification.Label != "weather" {
		t.Fatalf("classification metadata lost: %+v", resp.Classification)
	}
	if resp.Classification.Confidence != 0.92 {
		t.Fatalf("confidence = %v, want 0.92", resp.Classification.Confidence)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[1].Role != "user" {
		t.Fatalf("conversation turns not forwarded: %+v", gotBody.Messages)
	}
}

func TestGatewayGenerateSurfacesEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":500,"message":"모델 호출에 실패했습니다"}`))
	}))
	defer srv.Close()

	c := NewGateway(gateway.NewClient(srv.URL, gateway.Options{Timeout: 2 * time.Second, RetryBudget: 0}))
	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "안녕"}})
	if !gateway.IsKind(err, gateway.KindEnvelope) {
		t.Fatalf("error kind = %v, want envelope", err)
	}
	if got := gateway.UserMessage(err, ""); got != "모델 호출에 실패했습니다" {
		t.Fatalf("backend message lost: %q", got)
	}
}
