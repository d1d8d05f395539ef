package catalog

import (
	"context"
	"strings"
)

// selectionSep joins program ID and group name in a "Tomar lista" button value.
const selectionSep = "/"

// Card is the view model of one program card.
type Card struct {
	ID       string
	Name     string
	Icon     string
	Expanded bool
	Groups   []GroupItem
}

// GroupItem is one row of a card's group list.
type GroupItem struct {
	Name      string
	Selection string
}

// ContainerClass is the CSS class of the group list; "mostrar" shows it.
func (c Card) ContainerClass() string {
	if c.Expanded {
		return "grupos-container mostrar"
	}
	return "grupos-container"
}

// ToggleIcon is the chevron next to the card title.
func (c Card) ToggleIcon() string {
	if c.Expanded {
		return "fa-chevron-up"
	}
	return "fa-chevron-down"
}

// Cards rebuilds the card list from the current search term. Groups of
// collapsed programs listed without them are not fetched.
func (c *Controller) Cards(ctx context.Context) []Card {
	programs := c.Filter(c.Search)
	cards := make([]Card, 0, len(programs))
	for _, p := range programs {
		card := Card{
			ID:       p.ID,
			Name:     p.Name,
			Icon:     p.Icon,
			Expanded: c.IsExpanded(p.ID),
		}
		groups := p.Groups
		if len(groups) == 0 && card.Expanded {
			groups = c.Groups(ctx, p)
		}
		for _, g := range groups {
			card.Groups = append(card.Groups, GroupItem{Name: g, Selection: Selection(p.ID, g)})
		}
		cards = append(cards, card)
	}
	return cards
}

// Selection encodes a program and group as a single form value.
func Selection(programID, group string) string {
	return programID + selectionSep + group
}

// ParseSelection splits a value built by Selection.
func ParseSelection(value string) (programID, group string) {
	parts := strings.SplitN(value, selectionSep, 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
