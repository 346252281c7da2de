package domain

import (
	"fmt"
	"sort"
)

type ActionType string

const (
	ActionTruth ActionType = "truth"
	ActionDare  ActionType = "dare"
)

func (t ActionType) Valid() bool {
	return t == ActionTruth || t == ActionDare
}

type Action struct {
	ID    int        `json:"id"`
	Text  string     `json:"text"`
	Type  ActionType `json:"type"`
	Order int        `json:"order"`
}

// Collection is a read-only projection of a server-owned card collection.
// Actions is nil until loaded.
type Collection struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	UserID      int      `json:"userId"`
	PlayCount   int      `json:"playCount"`
	Actions     []Action `json:"actions,omitempty"`
	CreatedAt   APITime  `json:"createdAt"`
}

func (c Collection) TotalCardsCount() int {
	return len(c.Actions)
}

func (c Collection) TruthCardsCount() int {
	return c.countByType(ActionTruth)
}

func (c Collection) DareCardsCount() int {
	return c.countByType(ActionDare)
}

func (c Collection) countByType(t ActionType) int {
	n := 0
	for _, a := range c.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// SortedActions returns a copy of the actions in play order.
func (c Collection) SortedActions() []Action {
	out := append([]Action(nil), c.Actions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (c Collection) CardsCountText() string {
	return pluralize(c.TotalCardsCount(), "card", "cards")
}

func (c Collection) BreakdownText() string {
	return fmt.Sprintf("%s · %s", pluralize(c.TruthCardsCount(), "truth", "truths"), pluralize(c.DareCardsCount(), "dare", "dares"))
}

func (c Collection) PlayCountText() string {
	if c.PlayCount == 1 {
		return "Played once"
	}
	return fmt.Sprintf("Played %d times", c.PlayCount)
}

func (c Collection) CreatedAtText() string {
	if c.CreatedAt.IsZero() {
		return ""
	}
	return c.CreatedAt.UTC().Format("02.01.2006")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

type CollectionInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

type ActionInput struct {
	Text  string     `json:"text"`
	Type  ActionType `json:"type,omitempty"`
	Order int        `json:"order"`
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

type CollectionPage struct {
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Items []Collection `json:"items"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
