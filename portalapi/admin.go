// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

package portalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Admin-only endpoints. These live on Session rather than a separate
// type because the backend, not the client, decides who is an admin:
// a non-admin calling any of these gets a 403 from the server. The
// UI uses Session.IsAdmin to decide what to offer, and the sync layer
// picks the conversation-list or single-thread polling shape based on
// the same bit.

// Conversations lists every client conversation with a preview of the
// latest message and the count of messages the back office has not yet
// read. Admin only.
func (s *Session) Conversations(ctx context.Context) ([]Conversation, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/messages/conversations", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: conversations failed: %w", err)
	}
	var conversations []Conversation
	if err := json.Unmarshal(body, &conversations); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse conversations response: %w", err)
	}
	return conversations, nil
}

// UserMessages fetches the full message thread with one client,
// oldest first, and marks that client's messages read server-side.
// Admin only.
func (s *Session) UserMessages(ctx context.Context, userID int64) ([]Message, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/messages/user/"+strconv.FormatInt(userID, 10), true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: user messages failed: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse user messages response: %w", err)
	}
	return messages, nil
}

// AdminUsers lists every registered user with their case stage and
// progress. Admin only.
func (s *Session) AdminUsers(ctx context.Context) ([]AdminUser, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/admin/users", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: admin users failed: %w", err)
	}
	var response adminUsersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse admin users response: %w", err)
	}
	return response.Users, nil
}

// AdminUserDetail fetches the full admin view of one user: account,
// case record, documents, and labels. Admin only.
func (s *Session) AdminUserDetail(ctx context.Context, userID int64) (*AdminUserDetail, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/admin/users/"+strconv.FormatInt(userID, 10), true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: admin user detail failed: %w", err)
	}
	var detail AdminUserDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse admin user detail response: %w", err)
	}
	return &detail, nil
}

// UpdateApplicationStatus sets a user's case stage, progress
// percentage, and notes. The percentage is sent exactly as given —
// callers wanting the stage default pass
// update.Status.SuggestedProgress() explicitly. Admin only.
func (s *Session) UpdateApplicationStatus(ctx context.Context, update StatusUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("portalapi: unknown application status %q", update.Status)
	}
	if update.ProgressPercentage < 0 || update.ProgressPercentage > 100 {
		return fmt.Errorf("portalapi: progress %d out of range [0, 100]", update.ProgressPercentage)
	}
	if _, err := s.client.doRequest(ctx, http.MethodPut, "/admin/application/update", true, update); err != nil {
		return fmt.Errorf("portalapi: application status update failed: %w", err)
	}
	return nil
}

// AdminStatistics fetches the admin dashboard aggregate. Admin only.
func (s *Session) AdminStatistics(ctx context.Context) (*Statistics, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/admin/statistics", true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: admin statistics failed: %w", err)
	}
	var statistics Statistics
	if err := json.Unmarshal(body, &statistics); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse statistics response: %w", err)
	}
	return &statistics, nil
}

// AddUserLabel attaches a label to a user. Labels are not unique:
// adding the same type twice yields two labels. Admin only.
func (s *Session) AddUserLabel(ctx context.Context, request LabelRequest) (*Label, error) {
	if request.Type == "" {
		return nil, fmt.Errorf("portalapi: label type is required")
	}
	body, err := s.client.doRequest(ctx, http.MethodPost, "/admin/labels", true, request)
	if err != nil {
		return nil, fmt.Errorf("portalapi: label add failed: %w", err)
	}
	var label Label
	if err := json.Unmarshal(body, &label); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse label response: %w", err)
	}
	return &label, nil
}

// UserLabels lists the labels attached to a user. Admin only.
func (s *Session) UserLabels(ctx context.Context, userID int64) ([]Label, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/admin/labels/"+strconv.FormatInt(userID, 10), true, nil)
	if err != nil {
		return nil, fmt.Errorf("portalapi: user labels failed: %w", err)
	}
	var labels []Label
	if err := json.Unmarshal(body, &labels); err != nil {
		return nil, fmt.Errorf("portalapi: failed to parse labels response: %w", err)
	}
	return labels, nil
}

// DeleteUserLabel removes a label by its own id. Admin only.
func (s *Session) DeleteUserLabel(ctx context.Context, labelID int64) error {
	if _, err := s.client.doRequest(ctx, http.MethodDelete, "/admin/labels/"+strconv.FormatInt(labelID, 10), true, nil); err != nil {
		return fmt.Errorf("portalapi: label delete failed: %w", err)
	}
	return nil
}
