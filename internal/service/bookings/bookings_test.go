package bookings

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestSearchRejectsBadBookDate(t *testing.T) {
	svc := NewBookingsService(zap.NewNop(), nil)

	bad := "15-07-2024"
	_, err := svc.Search(context.Background(), SearchFilter{BookDate: &bad})
	if !errors.Is(err, ErrBadBookDate) {
		t.Errorf("Expected ErrBadBookDate, got %v", err)
	}

	alsoBad := "2024-7-1x"
	_, err = svc.Search(context.Background(), SearchFilter{BookDate: &alsoBad})
	if !errors.Is(err, ErrBadBookDate) {
		t.Errorf("Expected ErrBadBookDate, got %v", err)
	}
}
