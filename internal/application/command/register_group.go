package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER GROUP COMMAND
// Stores or updates a subgroup profile. Registered subgroups are picked up by
// the background refresh worker.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterGroupCommand contains the profile data of a subgroup.
type RegisterGroupCommand struct {
	// Subgroup is the raw subgroup name; it is canonicalized before use.
	Subgroup string

	// Speciality narrows upstream feed discovery, e.g. "лечебное дело".
	Speciality string

	// CourseNumber narrows upstream feed discovery, e.g. "1".
	CourseNumber string

	// GroupStream narrows upstream feed discovery, e.g. "а".
	GroupStream string
}

// Validate validates the command.
func (c RegisterGroupCommand) Validate() error {
	if _, err := shared.NewSubgroup(c.Subgroup); err != nil {
		return shared.WrapError("command", "RegisterGroup", shared.ErrInvalidInput, "subgroup", err)
	}
	return nil
}

// RegisterGroupResult contains the stored profile.
type RegisterGroupResult struct {
	Profile *schedule.GroupProfile

	// Created reports that the profile did not exist before.
	Created bool
}

// RegisterGroupHandler handles RegisterGroupCommand.
type RegisterGroupHandler struct {
	groups schedule.GroupRepository
	logger *slog.Logger
}

// NewRegisterGroupHandler creates a new RegisterGroupHandler.
func NewRegisterGroupHandler(groups schedule.GroupRepository, logger *slog.Logger) *RegisterGroupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterGroupHandler{
		groups: groups,
		logger: logger.With(slog.String("component", "register_group")),
	}
}

// Handle executes the register command. An existing profile is updated in
// place; its identifier is preserved.
func (h *RegisterGroupHandler) Handle(ctx context.Context, cmd RegisterGroupCommand) (*RegisterGroupResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	subgroup, _ := shared.NewSubgroup(cmd.Subgroup)

	profile := &schedule.GroupProfile{
		Subgroup:     subgroup,
		Speciality:   cmd.Speciality,
		CourseNumber: cmd.CourseNumber,
		GroupStream:  cmd.GroupStream,
	}

	created := false
	existing, err := h.groups.GetBySubgroup(ctx, subgroup.String())
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, shared.ErrNotFound):
		created = true
	default:
		return nil, fmt.Errorf("register_group: lookup: %w", err)
	}

	if err := h.groups.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("register_group: save: %w", err)
	}

	h.logger.Info("subgroup registered",
		slog.String("subgroup", subgroup.String()),
		slog.Bool("created", created))
	return &RegisterGroupResult{Profile: profile, Created: created}, nil
}
