// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import "time"

// User roles as reported by the backend.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is the authenticated account record returned by login and /me.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// Message is one portal message. The backend owns all fields; the
// client never fabricates ids or timestamps.
type Message struct {
	ID       int64 `json:"id"`
	SenderID int64 `json:"sender_id"`

	// RecipientID is nil for client-sent messages (they always go to
	// the admin side) and set for admin-sent messages once a
	// conversation is selected.
	RecipientID *int64 `json:"recipient_id"`

	Body           string    `json:"message"`
	IsAdminMessage bool      `json:"is_admin_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Edited reports whether the message body was changed after sending.
// The backend keeps no edit history; an updated_at differing from
// created_at is the only signal, and it is display-only.
func (m Message) Edited() bool {
	return !m.UpdatedAt.Equal(m.CreatedAt)
}

// Equal reports field-by-field equality. Timestamp jitter counts as a
// difference — snapshot reconciliation depends on that.
func (m Message) Equal(other Message) bool {
	if m.ID != other.ID ||
		m.SenderID != other.SenderID ||
		m.Body != other.Body ||
		m.IsAdminMessage != other.IsAdminMessage ||
		!m.CreatedAt.Equal(other.CreatedAt) ||
		!m.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if (m.RecipientID == nil) != (other.RecipientID == nil) {
		return false
	}
	return m.RecipientID == nil || *m.RecipientID == *other.RecipientID
}

// Conversation is one row of the admin conversation list: the
// non-admin participant plus a denormalized preview of the latest
// message and the number of messages the admin has not yet fetched.
type Conversation struct {
	UserID      int64    `json:"id"`
	UserName    string   `json:"name"`
	UserEmail   string   `json:"email,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_messages_count"`
}

// Equal reports field-by-field equality, including the preview
// message.
func (c Conversation) Equal(other Conversation) bool {
	if c.UserID != other.UserID ||
		c.UserName != other.UserName ||
		c.UserEmail != other.UserEmail ||
		c.UnreadCount != other.UnreadCount {
		return false
	}
	if (c.LastMessage == nil) != (other.LastMessage == nil) {
		return false
	}
	return c.LastMessage == nil || c.LastMessage.Equal(*other.LastMessage)
}

// ApplicationStatus is the case-progress stage of a client's
// application. The stages track the standard relocation sequence:
// tax number (NIF), social security number (NISS), bank account,
// integration course, and the AIMA appointment.
type ApplicationStatus string

const (
	StatusNotStarted            ApplicationStatus = "not_started"
	StatusDocumentsPending      ApplicationStatus = "documents_pending"
	StatusNIFInProgress         ApplicationStatus = "nif_in_progress"
	StatusNIFCompleted          ApplicationStatus = "nif_completed"
	StatusNISSInProgress        ApplicationStatus = "niss_in_progress"
	StatusNISSCompleted         ApplicationStatus = "niss_completed"
	StatusBankAccountInProgress ApplicationStatus = "bank_account_in_progress"
	StatusBankAccountCompleted  ApplicationStatus = "bank_account_completed"
	StatusCourseInProgress      ApplicationStatus = "course_in_progress"
	StatusCourseCompleted       ApplicationStatus = "course_completed"
	StatusAIMAScheduled         ApplicationStatus = "aima_scheduled"
	StatusAIMACompleted         ApplicationStatus = "aima_completed"
	StatusApproved              ApplicationStatus = "approved"
)

// Statuses returns all stages in case order.
func Statuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusNotStarted,
		StatusDocumentsPending,
		StatusNIFInProgress,
		StatusNIFCompleted,
		StatusNISSInProgress,
		StatusNISSCompleted,
		StatusBankAccountInProgress,
		StatusBankAccountCompleted,
		StatusCourseInProgress,
		StatusCourseCompleted,
		StatusAIMAScheduled,
		StatusAIMACompleted,
		StatusApproved,
	}
}

var suggestedProgress = map[ApplicationStatus]int{
	StatusNotStarted:            0,
	StatusDocumentsPending:      10,
	StatusNIFInProgress:         20,
	StatusNIFCompleted:          30,
	StatusNISSInProgress:        40,
	StatusNISSCompleted:         50,
	StatusBankAccountInProgress: 55,
	StatusBankAccountCompleted:  65,
	StatusCourseInProgress:      70,
	StatusCourseCompleted:       80,
	StatusAIMAScheduled:         85,
	StatusAIMACompleted:         95,
	StatusApproved:              100,
}

// Valid reports whether s is one of the known stages.
func (s ApplicationStatus) Valid() bool {
	_, ok := suggestedProgress[s]
	return ok
}

// SuggestedProgress returns the default progress percentage for the
// stage. It is a suggestion only: operators override the percentage
// freely, so status and progress must never be assumed to stay in
// lock-step.
func (s ApplicationStatus) SuggestedProgress() int {
	return suggestedProgress[s]
}

// Application is a client's case record.
type Application struct {
	Status             ApplicationStatus `json:"status"`
	ProgressPercentage int               `json:"progress_percentage"`
	Notes              string            `json:"notes,omitempty"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Label is a free-form tag an admin attaches to a user. No uniqueness
// constraint: several labels of the same type may coexist.
type Label struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Amount    *float64  `json:"amount,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is file metadata. The binary payload is retrievable only
// through Session.DownloadDocument.
type Document struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"created_at"`
}

// Lesson is one unit of the learning content. Content is markdown and
// is only populated by the single-lesson endpoint.
type Lesson struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Order    int    `json:"order"`
	Progress int    `json:"progress"`
}

// Dashboard is the aggregate returned by GET /dashboard.
type Dashboard struct {
	Stats DashboardStats `json:"stats"`
}

// DashboardStats are the portal home numbers.
type DashboardStats struct {
	ApplicationStatus   ApplicationStatus `json:"application_status"`
	ApplicationProgress int               `json:"application_progress"`
	DocumentCount       int               `json:"document_count"`
	UnreadMessages      int               `json:"unread_messages"`
	CompletedLessons    int               `json:"completed_lessons"`
}

// AdminUser is one row of the admin user list.
type AdminUser struct {
	User
	ApplicationStatus  ApplicationStatus `json:"application_status"`
	ProgressPercentage int               `json:"progress_percentage"`
	RegisteredAt       time.Time         `json:"created_at"`
}

// AdminUserDetail is the full admin view of one user.
type AdminUserDetail struct {
	User        User         `json:"user"`
	Application *Application `json:"application"`
	Documents   []Document   `json:"documents"`
	Labels      []Label      `json:"labels"`
}

// Statistics is the admin dashboard aggregate.
type Statistics struct {
	TotalUsers      int            `json:"total_users"`
	UnreadMessages  int            `json:"unread_messages"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
}

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ContactRequest is the payload for POST /contact. The same endpoint
// carries genuine contact-form submissions and, tagged with type
// "password_reset", password-reset requests.
type ContactRequest struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// StatusUpdate is the payload for PUT /admin/application/update. The
// percentage is always sent explicitly so operator overrides survive.
type StatusUpdate struct {
	UserID             int64             `json:"user_id"`
	Status             ApplicationStatus `json:"status"`
	ProgressPercentage int               `json:"progress_percentage"`
	Notes              string            `json:"notes,omitempty"`
}

// LabelRequest is the payload for POST /admin/labels.
type LabelRequest struct {
	UserID int64    `json:"user_id"`
	Type   string   `json:"type"`
	Amount *float64 `json:"amount,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type unreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type sendMessageRequest struct {
	Message     string `json:"message"`
	RecipientID *int64 `json:"recipient_id,omitempty"`
}

type updateMessageRequest struct {
	Message string `json:"message"`
}

type lessonProgressRequest struct {
	Progress int `json:"progress"`
}

type checkoutRequest struct {
	Package string `json:"package"`
}

type checkoutResponse struct {
	URL string `json:"checkout_url"`
}

type adminUsersResponse struct {
	Users []AdminUser `json:"users"`
}
