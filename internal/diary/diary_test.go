package diary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"haru-assistant/internal/gateway"
	"haru-assistant/internal/session"
)

func envelopeWith(t *testing.T, code int, msg string, data any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{"code": code, "message": msg, "data": data})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return b
}

func TestSearchFiltersByTermCaseInsensitively(t *testing.T) {
	records := []Record{
		{ID: 1, UserID: "u1", Title: "제주 여행", Content: "바다", Date: "2026-08-01"},
		{ID: 2, UserID: "u1", Title: "출근", Content: "피곤한 하루", Date: "2026-08-02"},
		{ID: 3, UserID: "u1", Title: "Weekend Trip", Content: "등산", Date: "2026-08-03"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diary/list" || r.URL.Query().Get("userId") != "u1" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write(envelopeWith(t, 200, "ok", records))
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	sess := session.Context{UserID: "u1"}

	got := svc.Search(context.Background(), sess, "여행")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("search 여행: got %+v", got)
	}

	got = svc.Search(context.Background(), sess, "trip")
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("search trip (case-insensitive): got %+v", got)
	}

	// empty term means no filter
	got = svc.Search(context.Background(), sess, "  ")
	if len(got) != 3 {
		t.Fatalf("empty term: got %d records, want 3", len(got))
	}
}

func TestListDegradesToEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelopeWith(t, 500, "내부 오류", nil))
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	if got := svc.ListByUser(context.Background(), session.Context{UserID: "u1"}); len(got) != 0 {
		t.Fatalf("read path must collapse to empty, got %+v", got)
	}
}

func TestSaveRejectsWithoutLoginBeforeAnyNetworkCall(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	_, err := svc.Save(context.Background(), session.Context{}, Record{Title: "t", Date: "2026-08-28"})
	if !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("kind = %v, want validation", err)
	}
	if got := gateway.UserMessage(err, ""); !strings.Contains(got, "로그인") {
		t.Fatalf("validation message must name 로그인, got %q", got)
	}
	if hits != 0 {
		t.Fatalf("server was hit %d times before validation", hits)
	}
}

func TestSaveRejectsBadDateBeforeNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	_, err := svc.Save(context.Background(), session.Context{UserID: "u1"}, Record{Title: "t", Date: "어제쯤"})
	if !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("kind = %v, want validation", err)
	}
	if hits != 0 {
		t.Fatalf("bad date must fail before any network call")
	}
}

func TestSaveNormalizesLooseDate(t *testing.T) {
	var gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/diary/create" {
			var rec Record
			_ = json.NewDecoder(r.Body).Decode(&rec)
			gotDate = rec.Date
			_, _ = w.Write(envelopeWith(t, 200, "ok", rec))
			return
		}
		// backup path
		_, _ = w.Write(envelopeWith(t, 200, "ok", nil))
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	saved, err := svc.Save(context.Background(), session.Context{UserID: "u1"}, Record{Title: "t", Content: "c", Date: "2026/08/28"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotDate != "2026-08-28" || saved.Date != "2026-08-28" {
		t.Fatalf("date not normalized: sent=%q echoed=%q", gotDate, saved.Date)
	}
}

func TestSaveSurfacesBackendMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelopeWith(t, 500, "저장 공간이 부족합니다", nil))
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	_, err := svc.Save(context.Background(), session.Context{UserID: "u1"}, Record{Title: "t", Date: "2026-08-28"})
	if !gateway.IsKind(err, gateway.KindEnvelope) {
		t.Fatalf("kind = %v, want envelope", err)
	}
	if got := gateway.UserMessage(err, ""); got != "저장 공간이 부족합니다" {
		t.Fatalf("backend message lost: %q", got)
	}
}

func TestBackupFailureDoesNotAffectSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/diary/backup" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var rec Record
		_ = json.NewDecoder(r.Body).Decode(&rec)
		rec.ID = 11
		_, _ = w.Write(envelopeWith(t, 200, "ok", rec))
	}))
	defer srv.Close()

	c := gateway.NewClient(srv.URL, gateway.Options{RetryBudget: 0})
	svc := NewService(c)
	saved, err := svc.Save(context.Background(), session.Context{UserID: "u1"}, Record{Title: "t", Date: "2026-08-28"})
	if err != nil {
		t.Fatalf("backup failure must not surface: %v", err)
	}
	if saved.ID != 11 {
		t.Fatalf("primary result lost: %+v", saved)
	}
}

func TestRoundTripSavedDiaryIsFoundByTitle(t *testing.T) {
	var store []Record
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/diary/create":
			var rec Record
			_ = json.NewDecoder(r.Body).Decode(&rec)
			rec.ID = int64(len(store) + 1)
			store = append(store, rec)
			_, _ = w.Write(envelopeWith(t, 200, "ok", rec))
		case "/diary/backup":
			_, _ = w.Write(envelopeWith(t, 200, "ok", nil))
		case "/diary/list":
			_, _ = w.Write(envelopeWith(t, 200, "ok", store))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	sess := session.Context{UserID: "u1"}
	saved, err := svc.Save(context.Background(), sess, Record{Title: "한라산 등반", Content: "정상까지", Date: "2026-08-28"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	found := svc.Search(context.Background(), sess, saved.Title)
	if len(found) != 1 || found[0].ID != saved.ID {
		t.Fatalf("saved diary not found by its title: %+v", found)
	}
}

func TestRequestsCarryBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write(envelopeWith(t, 200, "ok", []Record{}))
	}))
	defer srv.Close()

	svc := NewService(gateway.NewClient(srv.URL, gateway.Options{}))
	sess := session.Context{UserID: "u1", Token: session.StaticToken("tok-2")}
	svc.ListByUser(context.Background(), sess)
	if got != "Bearer tok-2" {
		t.Fatalf("Authorization = %q, want Bearer tok-2", got)
	}
}

func TestDeleteRequiresLogin(t *testing.T) {
	svc := NewService(gateway.NewClient("http://127.0.0.1:0", gateway.Options{}))
	if err := svc.Delete(context.Background(), session.Context{}, 1); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("kind = %v, want validation", err)
	}
}
