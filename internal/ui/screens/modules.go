// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"

	"github.com/jeranaias/ptutor-tui/internal/model"
	"github.com/jeranaias/ptutor-tui/internal/ui/components"
	"github.com/jeranaias/ptutor-tui/internal/ui/styles"
)

// ModuleMessages are the modules page toasts.
var ModuleMessages = ResourceMessages{
	FetchFailed:   "Failed to fetch modules",
	ChoicesFailed: "Failed to fetch personal tutors",
	Created:       "Module created successfully",
	CreateFailed:  "Failed to create module",
	Updated:       "Module updated successfully",
	UpdateFailed:  "Failed to update module",
	Deleted:       "Module deleted successfully",
	DeleteFailed:  "Failed to delete module",
}

// ModulesSpec configures the modules page. The tutors list is fetched
// alongside for the form's tutor picker.
func ModulesSpec() ResourceSpec[model.Module, model.ModulePayload] {
	return ResourceSpec[model.Module, model.ModulePayload]{
		Route:    RouteModules,
		Title:    "Modules",
		Subtitle: "Your modules",
		Columns: []components.Column[model.Module]{
			{Header: "Name", Render: func(m model.Module) string { return m.Name }},
			{Header: "Tutor", Render: model.Module.TutorName},
			{Header: "Created", Width: 18, Render: func(m model.Module) string { return m.Created.Display() }},
		},
		List: func(ctx context.Context, b Backend) ([]model.Module, error) {
			return b.ListModules(ctx)
		},
		Create: func(ctx context.Context, b Backend, p model.ModulePayload) error {
			return b.CreateModule(ctx, p)
		},
		Update: func(ctx context.Context, b Backend, id string, p model.ModulePayload) error {
			return b.UpdateModule(ctx, id, p)
		},
		Delete: func(ctx context.Context, b Backend, m model.Module) error {
			return b.DeleteModule(ctx, m.ID)
		},
		Name: func(m model.Module) string { return m.Name },
		Choices: func(ctx context.Context, b Backend) ([]model.Assistant, error) {
			tutors, err := b.ListTutors(ctx)
			if err != nil {
				return nil, err
			}
			return model.Assistants(tutors), nil
		},
		NewForm: func(theme *styles.Theme, m *model.Module, tutors []model.Assistant, hooks FormHooks[model.ModulePayload]) Form {
			f := components.NewModuleForm(theme, m, tutors)
			f.OnCreate = hooks.Create
			f.OnUpdate = hooks.Update
			return f
		},
		DeleteTitle: "Delete Module",
		AuditNoun:   "module",
		Messages:    ModuleMessages,
	}
}

// NewModules creates the modules page.
func NewModules(deps Deps) *Resource[model.Module, model.ModulePayload] {
	return NewResource(deps, ModulesSpec())
}
