package service

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// ShoppingListFilename is the attachment name of the exported list.
const ShoppingListFilename = "shopping_cart.txt"

// ShoppingListService derives the consolidated shopping list of a user's cart.
type ShoppingListService interface {
	Aggregate(ctx context.Context, userID uint) ([]model.ShoppingItem, error)
	Export(ctx context.Context, userID uint) ([]byte, error)
}

type shoppingListService struct {
	members repository.MembershipRepository
}

// NewShoppingListService creates a new shopping list service.
func NewShoppingListService(members repository.MembershipRepository) ShoppingListService {
	return &shoppingListService{members: members}
}

// Aggregate sums amounts per (ingredient name, unit) across the cart, ordered
// by name. An empty cart yields an empty list.
func (s *shoppingListService) Aggregate(ctx context.Context, userID uint) ([]model.ShoppingItem, error) {
	items, err := s.members.AggregateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate cart: %w", err)
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	return items, nil
}

// Export renders the aggregated list as plain text.
func (s *shoppingListService) Export(ctx context.Context, userID uint) ([]byte, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return []byte(FormatShoppingList(items)), nil
}

// FormatShoppingList renders one "{name} - {amount} ({unit})" line per item.
func FormatShoppingList(items []model.ShoppingItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s - %d (%s)", item.Name, item.TotalAmount, item.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}
