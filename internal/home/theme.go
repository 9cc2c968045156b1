package home

import (
	"fmt"

	"github.com/dukerupert/homedash/internal/model"
)

// ToggleTheme switches between light and dark and returns the new theme.
func (h *Home) ToggleTheme() (model.Theme, error) {
	var theme model.Theme
	err := h.update(func() (bool, error) {
		theme = h.state.Theme.Toggle()
		h.state.Theme = theme
		if err := h.store.SetTheme(theme); err != nil {
			return true, fmt.Errorf("save theme: %w", err)
		}
		return true, nil
	})
	return theme, err
}
