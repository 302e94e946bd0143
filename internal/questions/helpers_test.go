package questions

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/llm"
)

type stubLLM struct {
	content string
	err     error
	block   bool
	calls   atomic.Int32
	last    atomic.Pointer[llm.Request]
}

func (s *stubLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls.Add(1)
	s.last.Store(&req)
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.content, s.err
}

func (s *stubLLM) Name() string { return "stub" }

func product(id, productType, price string, tags ...string) catalog.Product {
	return catalog.Product{
		ID:          catalog.ProductID(id),
		Title:       "Product " + id,
		ProductType: productType,
		Tags:        tags,
		Variants:    []catalog.Variant{{Price: catalog.RawPrice(price)}},
	}
}

func mustInput(t *testing.T, products ...catalog.Product) Input {
	t.Helper()
	in, err := NewInput(products, enums.QuizStyleProfessional)
	if err != nil {
		t.Fatalf("new input: %v", err)
	}
	return in
}

func snowboardCatalog() []catalog.Product {
	return []catalog.Product{
		product("1", "Snowboards", "600", "winter", "Minimalist"),
		product("2", "Snowboards", "650", "winter", "Vintage Look"),
		product("3", "Mittens", "20", "wool"),
		product("4", "Mittens", "30", "wool", "gift"),
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
