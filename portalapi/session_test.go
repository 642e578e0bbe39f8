// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

var testUser = User{ID: 7, Name: "Ana", Email: "ana@example.pt", Role: RoleClient}

func TestLogout(t *testing.T) {
	t.Run("clears store on success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}"))
		})
		session, tokens := newTestSession(t, loginHandler("tok-123", testUser, mux))

		if err := session.Logout(context.Background()); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		if stored, _ := tokens.Token(); stored != "" {
			t.Errorf("token store not cleared, still %q", stored)
		}
	})

	t.Run("clears store even when the server call fails", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
		})
		session, tokens := newTestSession(t, loginHandler("tok-123", testUser, mux))

		if err := session.Logout(context.Background()); err == nil {
			t.Fatal("expected server error to propagate")
		}
		if stored, _ := tokens.Token(); stored != "" {
			t.Errorf("token store not cleared after failed logout, still %q", stored)
		}
	})
}

func TestDashboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Dashboard{Stats: DashboardStats{
			ApplicationStatus:   StatusNIFInProgress,
			ApplicationProgress: 20,
			DocumentCount:       3,
			UnreadMessages:      2,
			CompletedLessons:    1,
		}})
	})
	session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

	dashboard, err := session.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dashboard.Stats.ApplicationStatus != StatusNIFInProgress {
		t.Errorf("status = %q", dashboard.Stats.ApplicationStatus)
	}
	if dashboard.Stats.UnreadMessages != 2 {
		t.Errorf("unread = %d", dashboard.Stats.UnreadMessages)
	}
}

func TestApplication(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /application", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Application{
			Status:             StatusNISSCompleted,
			ProgressPercentage: 50,
			Notes:              "awaiting bank appointment",
		})
	})
	session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

	application, err := session.Application(context.Background())
	if err != nil {
		t.Fatalf("Application: %v", err)
	}
	if application.Status != StatusNISSCompleted || application.ProgressPercentage != 50 {
		t.Errorf("application = %+v", application)
	}
}

func TestDocuments(t *testing.T) {
	t.Run("upload is multipart with file, name, and type fields", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /documents", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("ParseMultipartForm: %v", err)
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("FormFile: %v", err)
			}
			defer file.Close()
			content, _ := io.ReadAll(file)
			if string(content) != "passport scan bytes" {
				t.Errorf("file content = %q", content)
			}
			if header.Filename != "passport.pdf" {
				t.Errorf("filename = %q", header.Filename)
			}
			if got := r.FormValue("name"); got != "passport.pdf" {
				t.Errorf("name field = %q", got)
			}
			if got := r.FormValue("type"); got != "passport" {
				t.Errorf("type field = %q", got)
			}
			json.NewEncoder(w).Encode(Document{ID: 31, Name: "passport.pdf", Type: "passport", Size: 19})
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		document, err := session.UploadDocument(context.Background(), "passport.pdf", "passport", strings.NewReader("passport scan bytes"))
		if err != nil {
			t.Fatalf("UploadDocument: %v", err)
		}
		if document.ID != 31 {
			t.Errorf("document ID = %d", document.ID)
		}
	})

	t.Run("download streams into the writer", func(t *testing.T) {
		payload := bytes.Repeat([]byte("binary"), 1024)
		mux := http.NewServeMux()
		mux.HandleFunc("GET /documents/31/download", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(payload)
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		var out bytes.Buffer
		written, err := session.DownloadDocument(context.Background(), 31, &out)
		if err != nil {
			t.Fatalf("DownloadDocument: %v", err)
		}
		if written != int64(len(payload)) || !bytes.Equal(out.Bytes(), payload) {
			t.Errorf("wrote %d bytes, want %d", written, len(payload))
		}
	})

	t.Run("download error is converted not streamed", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /documents/99/download", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "document not found"})
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		var out bytes.Buffer
		_, err := session.DownloadDocument(context.Background(), 99, &out)
		if err == nil {
			t.Fatal("expected not-found error")
		}
		if out.Len() != 0 {
			t.Errorf("error body leaked into writer: %q", out.String())
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		deleted := false
		mux := http.NewServeMux()
		mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]Document{{ID: 31, Name: "passport.pdf"}})
		})
		mux.HandleFunc("DELETE /documents/31", func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			w.Write([]byte("{}"))
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		documents, err := session.Documents(context.Background())
		if err != nil {
			t.Fatalf("Documents: %v", err)
		}
		if len(documents) != 1 || documents[0].ID != 31 {
			t.Errorf("documents = %+v", documents)
		}
		if err := session.DeleteDocument(context.Background(), 31); err != nil {
			t.Fatalf("DeleteDocument: %v", err)
		}
		if !deleted {
			t.Error("delete never reached the server")
		}
	})
}

func TestMessages(t *testing.T) {
	now := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /messages", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]Message{
				{ID: 1, SenderID: 7, Body: "hello", CreatedAt: now, UpdatedAt: now},
				{ID: 2, SenderID: 1, Body: "hi there", IsAdminMessage: true, CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)},
			})
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		messages, err := session.Messages(context.Background())
		if err != nil {
			t.Fatalf("Messages: %v", err)
		}
		if len(messages) != 2 || messages[1].Body != "hi there" || !messages[1].IsAdminMessage {
			t.Errorf("messages = %+v", messages)
		}
	})

	t.Run("send uses server record", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /messages", func(w http.ResponseWriter, r *http.Request) {
			var got sendMessageRequest
			json.NewDecoder(r.Body).Decode(&got)
			if got.Message != "hello" {
				t.Errorf("payload message = %q", got.Message)
			}
			if got.RecipientID != nil {
				t.Errorf("client send carried recipient_id %v", *got.RecipientID)
			}
			json.NewEncoder(w).Encode(Message{ID: 3, SenderID: 7, Body: got.Message, CreatedAt: now, UpdatedAt: now})
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		message, err := session.SendMessage(context.Background(), "hello", nil)
		if err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
		if message.ID != 3 {
			t.Errorf("message ID = %d, want server-assigned 3", message.ID)
		}
	})

	t.Run("send rejects empty text locally", func(t *testing.T) {
		called := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		session := &Session{client: mustClient(t, handler)}

		if _, err := session.SendMessage(context.Background(), "", nil); err == nil {
			t.Fatal("expected empty-text error")
		}
		if called {
			t.Error("empty send reached the server")
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		deleted := false
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /messages/3", func(w http.ResponseWriter, r *http.Request) {
			var got updateMessageRequest
			json.NewDecoder(r.Body).Decode(&got)
			json.NewEncoder(w).Encode(Message{ID: 3, SenderID: 7, Body: got.Message, CreatedAt: now, UpdatedAt: now.Add(time.Hour)})
		})
		mux.HandleFunc("DELETE /messages/3", func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			w.Write([]byte("{}"))
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		message, err := session.UpdateMessage(context.Background(), 3, "hello again")
		if err != nil {
			t.Fatalf("UpdateMessage: %v", err)
		}
		if message.Body != "hello again" || !message.Edited() {
			t.Errorf("updated message = %+v", message)
		}
		if err := session.DeleteMessage(context.Background(), 3); err != nil {
			t.Fatalf("DeleteMessage: %v", err)
		}
		if !deleted {
			t.Error("delete never reached the server")
		}
	})

	t.Run("unread count", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /messages/unread-count", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(unreadCountResponse{UnreadCount: 4})
		})
		session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

		count, err := session.UnreadCount(context.Background())
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if count != 4 {
			t.Errorf("count = %d, want 4", count)
		}
	})
}

func TestLessons(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lessons", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Lesson{
			{ID: 1, Title: "Getting your NIF", Order: 1, Progress: 100},
			{ID: 2, Title: "Opening a bank account", Order: 2, Progress: 0},
		})
	})
	mux.HandleFunc("GET /lessons/2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Lesson{ID: 2, Title: "Opening a bank account", Content: "# Banks\n\nBring your NIF.", Order: 2})
	})
	var gotProgress lessonProgressRequest
	mux.HandleFunc("POST /lessons/2/progress", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotProgress)
		w.Write([]byte("{}"))
	})
	session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

	lessons, err := session.Lessons(context.Background())
	if err != nil {
		t.Fatalf("Lessons: %v", err)
	}
	if len(lessons) != 2 || lessons[0].Content != "" {
		t.Errorf("lessons = %+v", lessons)
	}

	lesson, err := session.Lesson(context.Background(), 2)
	if err != nil {
		t.Fatalf("Lesson: %v", err)
	}
	if lesson.Content == "" {
		t.Error("single lesson fetch missing content")
	}

	if err := session.UpdateLessonProgress(context.Background(), 2, 60); err != nil {
		t.Fatalf("UpdateLessonProgress: %v", err)
	}
	if gotProgress.Progress != 60 {
		t.Errorf("progress payload = %d", gotProgress.Progress)
	}

	if err := session.UpdateLessonProgress(context.Background(), 2, 150); err == nil {
		t.Error("expected range error for progress 150")
	}
}

func TestCreateCheckout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments/create-checkout", func(w http.ResponseWriter, r *http.Request) {
		var got checkoutRequest
		json.NewDecoder(r.Body).Decode(&got)
		if got.Package != "full_service" {
			t.Errorf("package = %q", got.Package)
		}
		json.NewEncoder(w).Encode(checkoutResponse{URL: "https://pay.example.pt/c/abc"})
	})
	session, _ := newTestSession(t, loginHandler("tok-123", testUser, mux))

	url, err := session.CreateCheckout(context.Background(), "full_service")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if url != "https://pay.example.pt/c/abc" {
		t.Errorf("checkout URL = %q", url)
	}
}

// mustClient builds a Client around handler with a pre-seeded token,
// for tests that construct a Session directly.
func mustClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	client, tokens := newTestClient(t, handler)
	tokens.SetToken("tok-test")
	return client
}
