// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// Session is an authenticated view of the portal API. Obtain one from
// Client.Login, Client.Register, or Client.Resume.
//
// All methods read the bearer token from the shared token store on
// every request, so a Session remains valid across token rewrites and
// becomes uniformly unusable the moment the store is cleared.
type Session struct {
	client *Client
	user   User
}

// User returns the account this session was authenticated as. The
// value is a snapshot from login time; Me re-fetches it.
func (s *Session) User() User {
	return s.user
}

// IsAdmin reports whether the session belongs to an admin account.
// This gates which views the UI offers, nothing more — the backend
// enforces authorization on every admin endpoint regardless.
func (s *Session) IsAdmin() bool {
	return s.user.Role == RoleAdmin
}

// Me re-fetches the account record from the server.
func (s *Session) Me(ctx context.Context) (*User, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/me", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: me failed: %w", err)
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse user response: %w", err)
	}
	s.user = user
	return &user, nil
}

// Logout invalidates the token server-side and clears the token store.
// The store is cleared even when the server call fails: a logout must
// always leave the local state logged out.
func (s *Session) Logout(ctx context.Context) error {
	_, err := s.client.doRequest(ctx, http.MethodPost, "/logout", true, nil)
	if clearErr := s.client.tokens.Clear(); clearErr != nil && err == nil {
		err = fmt.Errorf("clearing token store: %w", clearErr)
	}
	if err != nil {
		return fmt.Errorf("portalapi: logout: %w", err)
	}
	return nil
}

// Dashboard fetches the portal home aggregate.
func (s *Session) Dashboard(ctx context.Context) (*Dashboard, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/dashboard", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: dashboard failed: %w", err)
	}
	var dashboard Dashboard
	if err := json.Unmarshal(body, &dashboard); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse dashboard response: %w", err)
	}
	return &dashboard, nil
}

// Application fetches the session owner's case record.
func (s *Session) Application(ctx context.Context) (*Application, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/application", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: application failed: %w", err)
	}
	var application Application
	if err := json.Unmarshal(body, &application); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse application response: %w", err)
	}
	return &application, nil
}

// UpdateApplication updates the session owner's own case record. The
// backend restricts which fields a client may change; status updates
// on behalf of other users go through AdminSession.UpdateApplicationStatus.
func (s *Session) UpdateApplication(ctx context.Context, application Application) (*Application, error) {
	body, err := s.client.doRequest(ctx, http.MethodPut, "/application", true, application)
	if err != nil {
		return nil, fmt.Errorf("portalapi: application update failed: %w", err)
	}
	var updated Application
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse application response: %w", err)
	}
	return &updated, nil
}

// Documents lists the session owner's uploaded documents.
func (s *Session) Documents(ctx context.Context) ([]Document, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/documents", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: documents failed: %w", err)
	}
	var documents []Document
	if err := json.Unmarshal(body, &documents); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse documents response: %w", err)
	}
	return documents, nil
}

// UploadDocument uploads a document as multipart form data. name is
// the display name, docType the portal's document category, and
// content the file bytes. The content is buffered into the multipart
// body; documents are bounded by the backend's upload limit, not by
// this client.
func (s *Session) UploadDocument(ctx context.Context, name, docType string, content io.Reader) (*Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("portalapi: building upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("portalapi: reading document content: %w", err)
	}
	if err := writer.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("portalapi: building upload form: %w", err)
	}
	if err := writer.WriteField("type", docType); err != nil {
		return nil, fmt.Errorf("portalapi: building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("portalapi: building upload form: %w", err)
	}

	body, err := s.client.doRequestRaw(ctx, http.MethodPost, "/documents", writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("portalapi: document upload failed: %w", err)
	}

	var document Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse document response: %w", err)
	}
	return &document, nil
}

// DownloadDocument streams the document's binary content into w.
// Returns the number of bytes written.
func (s *Session) DownloadDocument(ctx context.Context, id int64, w io.Writer) (int64, error) {
	stream, err := s.client.doRequestStream(ctx, "/documents/"+strconv.FormatInt(id, 10)+"/download")
	if err != nil {
		return 0, fmt.Errorf("portalapi: document download failed: %w", err)
	}
	defer stream.Close()

	written, err := io.Copy(w, stream)
	if err != nil {
		return written, fmt.Errorf("portalapi: streaming document %d: %w", id, err)
	}
	return written, nil
}

// DeleteDocument removes an uploaded document.
func (s *Session) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := s.client.doRequest(ctx, http.MethodDelete, "/documents/"+strconv.FormatInt(id, 10), true, nil); err != nil {
		return fmt.Errorf("portalapi: document delete failed: %w", err)
	}
	return nil
}

// Messages fetches the session owner's conversation with the back
// office, oldest first. Fetching marks the messages read server-side.
func (s *Session) Messages(ctx context.Context) ([]Message, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/messages", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: messages failed: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse messages response: %w", err)
	}
	return messages, nil
}

// SendMessage posts a new message. recipientID is nil for client
// sends (they always address the back office); admins set it to the
// selected conversation's user. Returns the server's message record —
// the id and timestamps are the server's, never fabricated locally.
func (s *Session) SendMessage(ctx context.Context, text string, recipientID *int64) (*Message, error) {
	if text == "" {
		return nil, fmt.Errorf("portalapi: message text is required")
	}
	body, err := s.client.doRequest(ctx, http.MethodPost, "/messages", true, sendMessageRequest{
		Message:     text,
		RecipientID: recipientID,
	})
	if err != nil {
		return nil, fmt.Errorf("portalapi: message send failed: %w", err)
	}
	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse message response: %w", err)
	}
	return &message, nil
}

// UpdateMessage replaces the body of an existing message. The server
// decides whether the caller may edit it.
func (s *Session) UpdateMessage(ctx context.Context, id int64, text string) (*Message, error) {
	if text == "" {
		return nil, fmt.Errorf("portalapi: message text is required")
	}
	body, err := s.client.doRequest(ctx, http.MethodPut, "/messages/"+strconv.FormatInt(id, 10), true, updateMessageRequest{
		Message: text,
	})
	if err != nil {
		return nil, fmt.Errorf("portalapi: message update failed: %w", err)
	}
	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse message response: %w", err)
	}
	return &message, nil
}

// DeleteMessage removes a message. The server decides whether the
// caller may delete it.
func (s *Session) DeleteMessage(ctx context.Context, id int64) error {
	if _, err := s.client.doRequest(ctx, http.MethodDelete, "/messages/"+strconv.FormatInt(id, 10), true, nil); err != nil {
		return fmt.Errorf("portalapi: message delete failed: %w", err)
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the
// session owner.
func (s *Session) UnreadCount(ctx context.Context) (int, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/messages/unread-count", true, nil)
	if err != nil {
		return 0, fmt.Errorf("portalapi: unread count failed: %w", err)
	}
	var response unreadCountResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("portalapi: failed to parse unread count response: %w", err)
	}
	return response.UnreadCount, nil
}

// Lessons lists the learning content in course order. Content bodies
// are omitted; fetch a single lesson for the markdown.
func (s *Session) Lessons(ctx context.Context) ([]Lesson, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/lessons", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: lessons failed: %w", err)
	}
	var lessons []Lesson
	if err := json.Unmarshal(body, &lessons); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse lessons response: %w", err)
	}
	return lessons, nil
}

// Lesson fetches a single lesson including its markdown content.
func (s *Session) Lesson(ctx context.Context, id int64) (*Lesson, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/lessons/"+strconv.FormatInt(id, 10), true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: lesson failed: %w", err)
	}
	var lesson Lesson
	if err := json.Unmarshal(body, &lesson); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse lesson response: %w", err)
	}
	return &lesson, nil
}

// UpdateLessonProgress records completion progress (0-100) for a
// lesson.
func (s *Session) UpdateLessonProgress(ctx context.Context, id int64, progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("portalapi: progress %d out of range [0, 100]", progress)
	}
	path := "/lessons/" + strconv.FormatInt(id, 10) + "/progress"
	if _, err := s.client.doRequest(ctx, http.MethodPost, path, true, lessonProgressRequest{Progress: progress}); err != nil {
		return fmt.Errorf("portalapi: lesson progress update failed: %w", err)
	}
	return nil
}

// CreateCheckout starts a payment flow for the named service package
// and returns the hosted checkout URL for the user to open.
func (s *Session) CreateCheckout(ctx context.Context, packageType string) (string, error) {
	if packageType == "" {
		return "", fmt.Errorf("portalapi: package type is required")
	}
	body, err := s.client.doRequest(ctx, http.MethodPost, "/payments/create-checkout", true, checkoutRequest{
		Package: packageType,
	})
	if err != nil {
		return "", fmt.Errorf("portalapi: checkout failed: %w", err)
	}
	var response checkoutResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("portalapi: failed to parse checkout response: %w", err)
	}
	return response.URL, nil
}
