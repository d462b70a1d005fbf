// internal/domain/review/service.go
package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
)

// Validation failures raised before any API call
var (
	ErrInvalidRating   = api.Validation("Rating must be between 1 and 5")
	ErrTextRequired    = api.Validation("Please write a review")
	ErrReplyRequired   = api.Validation("Reply cannot be empty")
	ErrAlreadyReviewed = api.Validation("You already reviewed this product")
	ErrProductRequired = api.Validation("Please select a product to review")
	ErrNotPurchased    = api.Validation("You can only review products from paid orders")
)

// Service handles review operations
type Service struct {
	client *api.Client
	logger *logrus.Logger
}

// NewService creates a new review service
func NewService(client *api.Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Validate checks a review form
func (in Input) Validate() error {
	if in.ProductID <= 0 {
		return ErrProductRequired
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(in.ReviewText) == "" {
		return ErrTextRequired
	}
	return nil
}

// List returns every review
func (s *Service) List(ctx context.Context, tokens api.TokenSource) ([]Review, error) {
	var reviews []Review
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.ReviewList}, &reviews); err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

// UserReviews returns the signed-in customer's reviews
func (s *Service) UserReviews(ctx context.Context, tokens api.TokenSource) ([]Review, error) {
	var reviews []Review
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.ReviewUserList}, &reviews); err != nil {
		return nil, fmt.Errorf("failed to fetch user reviews: %w", err)
	}
	return reviews, nil
}

// LoadReviewed seeds set from the customer's existing reviews
func (s *Service) LoadReviewed(ctx context.Context, tokens api.TokenSource, set *ReviewedSet) error {
	reviews, err := s.UserReviews(ctx, tokens)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ProductID)
	}
	set.Replace(ids)
	return nil
}

// Create submits a review. A product already in set is rejected without a
// call, and a successful review adds the product to set.
func (s *Service) Create(ctx context.Context, tokens api.TokenSource, set *ReviewedSet, in Input) (*Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if set != nil && set.Has(in.ProductID) {
		return nil, ErrAlreadyReviewed
	}

	var review Review
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ReviewCreate,
		Body: createRequest{
			ProductID:  in.ProductID,
			Rating:     in.Rating,
			ReviewText: strings.TrimSpace(in.ReviewText),
		},
	}, &review)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if set != nil {
		set.Add(in.ProductID)
	}
	s.logger.WithFields(logrus.Fields{
		"product_id": in.ProductID,
		"rating":     in.Rating,
	}).Info("Review created")
	return &review, nil
}

// CreatePurchased is Create restricted to products the customer has paid for.
// purchased reports whether a product is on one of the customer's paid orders.
func (s *Service) CreatePurchased(ctx context.Context, tokens api.TokenSource, set *ReviewedSet, purchased func(productID int64) bool, in Input) (*Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if set != nil && set.Has(in.ProductID) {
		return nil, ErrAlreadyReviewed
	}
	if !purchased(in.ProductID) {
		return nil, ErrNotPurchased
	}
	return s.Create(ctx, tokens, set, in)
}

// Reply answers a review (staff only). An existing reply is updated instead.
func (s *Service) Reply(ctx context.Context, tokens api.TokenSource, r Review, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrReplyRequired
	}

	endpoint := api.ReviewReplyCreate
	if r.HasReply() {
		endpoint = api.ReviewReplyUpdate
	}
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: endpoint,
		PathArgs: []string{strconv.FormatInt(r.ID, 10)},
		Body:     replyRequest{Reply: text},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to reply to review %d: %w", r.ID, err)
	}
	return nil
}

// Delete removes a review (staff only)
func (s *Service) Delete(ctx context.Context, tokens api.TokenSource, id int64) error {
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ReviewDelete,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, err)
	}

	s.logger.WithField("review_id", id).Info("Review deleted")
	return nil
}
