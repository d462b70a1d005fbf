// internal/domain/review/entity.go
package review

import (
	"sort"
	"sync"
	"time"

	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// Review is a customer's rating of a product with an optional staff reply
type Review struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProductID  int64      `json:"product_id"`
	Rating     int        `json:"rating"`
	ReviewText string     `json:"review_text"`
	Reply      string     `json:"reply,omitempty"`
	ReplyDate  *time.Time `json:"reply_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	User    *Reviewer        `json:"user,omitempty"`
	Product *catalog.Product `json:"product,omitempty"`
}

// HasReply reports whether staff already answered
func (r Review) HasReply() bool {
	return r.Reply != ""
}

// Reviewer is the user embedded in review listings
type Reviewer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Input is the review form
type Input struct {
	ProductID  int64  `json:"product_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type createRequest struct {
	ProductID  int64  `json:"product_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// ReviewedSet holds the product ids a customer already reviewed in this session
type ReviewedSet struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewReviewedSet creates an empty set
func NewReviewedSet() *ReviewedSet {
	return &ReviewedSet{ids: make(map[int64]struct{})}
}

// Has reports whether productID was reviewed
func (s *ReviewedSet) Has(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[productID]
	return ok
}

// Add marks productID as reviewed
func (s *ReviewedSet) Add(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[productID] = struct{}{}
}

// Replace swaps the whole set for ids
func (s *ReviewedSet) Replace(ids []int64) {
	fresh := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		fresh[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = fresh
	s.mu.Unlock()
}

// IDs returns the reviewed product ids in ascending order
func (s *ReviewedSet) IDs() []int64 {
	s.mu.RLock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
