// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"strings"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// TutorMessages are the tutors page toasts.
var TutorMessages = ResourceMessages{
	FetchFailed:  "Failed to fetch personal tutors",
	Created:      "Personal tutor created successfully",
	CreateFailed: "Failed to create personal tutor",
	Updated:      "Personal tutor updated successfully",
	UpdateFailed: "Failed to update personal tutor",
	Deleted:      "Personal tutor deleted successfully",
	DeleteFailed: "Failed to delete personal tutor",
}

// TutorsSpec configures the tutors page. Edits address the assistant id;
// deletes address the tutor id.
func TutorsSpec() ResourceSpec[model.Tutor, model.TutorPayload] {
	return ResourceSpec[model.Tutor, model.TutorPayload]{
		Route:    RouteTutors,
		Title:    "Tutors",
		Subtitle: "Your personal tutors",
		Columns: []components.Column[model.Tutor]{
			{Header: "Name", Width: 20, Render: model.Tutor.Name},
			{Header: "Model", Width: 20, Render: model.Tutor.Model},
			{Header: "Instruction", Render: func(t model.Tutor) string {
				return strings.Join(strings.Fields(t.Instructions()), " ")
			}},
			{Header: "Created", Width: 18, Render: func(t model.Tutor) string {
				return model.Timestamp{Time: t.CreatedAt()}.Display()
			}},
		},
		List: func(ctx context.Context, b Backend) ([]model.Tutor, error) {
			return b.ListTutors(ctx)
		},
		Create: func(ctx context.Context, b Backend, p model.TutorPayload) error {
			return b.CreateTutor(ctx, p)
		},
		Update: func(ctx context.Context, b Backend, id string, p model.TutorPayload) error {
			return b.UpdateTutor(ctx, id, p)
		},
		Delete: func(ctx context.Context, b Backend, t model.Tutor) error {
			return b.DeleteTutor(ctx, t.ID)
		},
		Name: model.Tutor.Name,
		NewForm: func(theme *styles.Theme, t *model.Tutor, _ []model.Assistant, hooks FormHooks[model.TutorPayload]) Form {
			var a *model.Assistant
			if t != nil {
				a = &t.Assistant
			}
			f := components.NewTutorForm(theme, a)
			f.OnCreate = hooks.Create
			f.OnUpdate = hooks.Update
			return f
		},
		DeleteTitle: "Delete Personal Tutor",
		AuditNoun:   "tutor",
		Messages:    TutorMessages,
	}
}

// NewTutors creates the tutors page.
func NewTutors(deps Deps) *Resource[model.Tutor, model.TutorPayload] {
	return NewResource(deps, TutorsSpec())
}
