package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/collection"
	"github.com/asadazo/asadazo/pkg/event"
	"github.com/asadazo/asadazo/pkg/logger"
)

// SubscriptionInput is the POST /subscriptions body.
type SubscriptionInput struct {
	Type             string                       `json:"type"             validate:"required"`
	SelectedProducts []models.SubscriptionProduct `json:"selectedProducts" validate:"required,min=1,dive"`
	Frequency        string                       `json:"frequency"        validate:"required"`
	DeliveryAddress  *models.Address              `json:"deliveryAddress"`
	PickupOption     bool                         `json:"pickupOption"`
	Notes            string                       `json:"notes"`
}

// UpdateInput is the PUT body shared by orders and subscriptions.
type UpdateInput struct {
	ID            string                     `json:"-"`
	Updates       map[string]json.RawMessage `json:"updates"`
	AdminOverride bool                       `json:"adminOverride"`
	TargetUserID  string                     `json:"targetUserId"`
}

// target resolves whose bucket an update applies to. The override only
// takes effect for admins who name a target.
func (in UpdateInput) target(caller *auth.Claims) string {
	if in.AdminOverride && in.TargetUserID != "" && caller.IsAdmin() {
		return in.TargetUserID
	}
	return caller.UserID()
}

// Fields an update can never overwrite.
var immutableFields = []string{"id", "userId", "createdAt"}

type SubscriptionService struct {
	subs  *repositories.SubscriptionRepository
	index *repositories.SubscriptionIndex
	bus   *event.Bus

	EnforceTransitions bool
	ReconcileWeight    bool

	Now   func() time.Time
	NewID func() string
}

func NewSubscriptionService(subs *repositories.SubscriptionRepository, index *repositories.SubscriptionIndex, bus *event.Bus) *SubscriptionService {
	s := &SubscriptionService{
		subs:               subs,
		index:              index,
		bus:                bus,
		EnforceTransitions: true,
		Now:                time.Now,
	}
	s.NewID = s.defaultID
	return s
}

// defaultID is "sub_<unix ms>_<9 random chars>".
func (s *SubscriptionService) defaultID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "sub_" + strconv.FormatInt(s.Now().UnixMilli(), 10) + "_" + suffix
}

// Create stores a new subscription in pending review and indexes it.
func (s *SubscriptionService) Create(ctx context.Context, caller *auth.Claims, in SubscriptionInput) (models.Subscription, error) {
	if caller == nil {
		return models.Subscription{}, newError(ErrUnauthorized, "Unauthorized. Please log in to create a subscription.")
	}
	if !in.PickupOption {
		if missing := in.DeliveryAddress.Missing(); len(missing) > 0 {
			fields := make(map[string]string, len(missing))
			for _, f := range missing {
				fields["deliveryAddress."+f] = fmt.Sprintf("The deliveryAddress.%s field is required.", f)
			}
			return models.Subscription{}, invalid("Missing required fields", fields)
		}
	}

	now := s.Now().UTC()
	sub := models.Subscription{
		ID:               s.NewID(),
		UserID:           caller.UserID(),
		Type:             in.Type,
		Frequency:        in.Frequency,
		SelectedProducts: in.SelectedProducts,
		Status:           models.StatusPendingReview,
		DeliveryAddress:  in.DeliveryAddress,
		PickupOption:     in.PickupOption,
		Notes:            in.Notes,
		NextDelivery:     now.AddDate(0, 0, models.FrequencyDays(in.Frequency)),
		CreatedAt:        now,
		LastModified:     now,
	}
	sub.TotalWeight = sub.SumWeight()

	list, version, err := s.subs.Load(ctx, sub.UserID)
	if err != nil {
		return models.Subscription{}, err
	}
	for _, existing := range list {
		if existing.ID == sub.ID {
			return models.Subscription{}, newError(ErrConflict, "Subscription ID already exists")
		}
	}
	if err := s.subs.Save(ctx, sub.UserID, append(list, sub), version); err != nil {
		return models.Subscription{}, err
	}
	if err := s.index.Add(ctx, sub.ID, sub.UserID); err != nil {
		return models.Subscription{}, fmt.Errorf("subscription %s stored but not indexed: %w", sub.ID, err)
	}

	logger.WithCtx(ctx).Info("subscription created", "subscription_id", sub.ID, "user_id", sub.UserID)
	s.bus.Fire(ctx, EventSubscriptionCreated, SubscriptionCreated{Subscription: sub, CustomerEmail: caller.Email})
	return sub, nil
}

// List returns the caller's subscriptions, or every indexed subscription
// when an admin asks for all.
func (s *SubscriptionService) List(ctx context.Context, caller *auth.Claims, all bool) ([]models.Subscription, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, "Unauthorized")
	}
	if !all || !caller.IsAdmin() {
		list, _, err := s.subs.Load(ctx, caller.UserID())
		return list, err
	}
	return s.listAll(ctx)
}

func (s *SubscriptionService) listAll(ctx context.Context) ([]models.Subscription, error) {
	entries, err := s.index.List(ctx)
	if err != nil {
		return nil, err
	}

	owners := collection.Unique(collection.Map(entries, func(e models.IndexEntry) string { return e.UserID }))
	wanted := collection.GroupSet(entries,
		func(e models.IndexEntry) string { return e.UserID },
		func(e models.IndexEntry) string { return e.ID })

	out := []models.Subscription{}
	for _, owner := range owners {
		list, _, err := s.subs.Load(ctx, owner)
		if err != nil {
			return nil, err
		}
		for _, sub := range list {
			if wanted[owner][sub.ID] {
				sub.UserID = owner
				out = append(out, sub)
			}
		}
	}
	return out, nil
}

// Update shallow-merges in.Updates over the subscription.
func (s *SubscriptionService) Update(ctx context.Context, caller *auth.Claims, in UpdateInput) (models.Subscription, error) {
	if caller == nil {
		return models.Subscription{}, newError(ErrUnauthorized, "Unauthorized")
	}
	if in.ID == "" {
		return models.Subscription{}, invalid("Subscription ID required", nil)
	}

	owner := in.target(caller)
	list, version, err := s.subs.Load(ctx, owner)
	if err != nil {
		return models.Subscription{}, err
	}
	i := findSubscription(list, in.ID)
	if i < 0 {
		return models.Subscription{}, newError(ErrNotFound, "Subscription not found")
	}

	prev := list[i]
	next, err := models.Merge(prev, in.Updates, immutableFields...)
	if err != nil {
		return models.Subscription{}, invalid(err.Error(), nil)
	}

	if next.Status != prev.Status && !models.CanTransition(prev.Status, next.Status) {
		msg := "invalid status transition: " + ChangeNote(prev.Status, next.Status)
		if s.EnforceTransitions {
			return models.Subscription{}, newError(ErrInvalidTransition, msg)
		}
		logger.WithCtx(ctx).Warn(msg, "subscription_id", prev.ID)
	}
	if s.ReconcileWeight {
		next.TotalWeight = next.SumWeight()
	}
	next.LastModified = s.Now().UTC()

	list[i] = next
	if err := s.subs.Save(ctx, owner, list, version); err != nil {
		return models.Subscription{}, err
	}

	s.bus.Fire(ctx, EventSubscriptionUpdated, SubscriptionUpdated{Subscription: next, By: caller.UserID()})
	if next.Status != prev.Status {
		s.bus.Fire(ctx, EventSubscriptionStatusChanged, SubscriptionStatusChanged{
			Subscription: next, From: prev.Status, To: next.Status, By: caller.UserID(),
		})
	}
	return next, nil
}

// Cancel soft-deletes one of the caller's own subscriptions. Cancelling an
// already cancelled subscription succeeds without writing.
func (s *SubscriptionService) Cancel(ctx context.Context, caller *auth.Claims, id string) error {
	if caller == nil {
		return newError(ErrUnauthorized, "Unauthorized")
	}
	if id == "" {
		return invalid("Subscription ID required", nil)
	}

	owner := caller.UserID()
	list, version, err := s.subs.Load(ctx, owner)
	if err != nil {
		return err
	}
	i := findSubscription(list, id)
	if i < 0 {
		return newError(ErrNotFound, "Subscription not found")
	}

	prev := list[i].Status
	if prev == models.StatusCancelled {
		return nil
	}
	list[i].Status = models.StatusCancelled
	list[i].LastModified = s.Now().UTC()

	if err := s.subs.Save(ctx, owner, list, version); err != nil {
		return err
	}

	s.bus.Fire(ctx, EventSubscriptionStatusChanged, SubscriptionStatusChanged{
		Subscription: list[i], From: prev, To: models.StatusCancelled, By: owner,
	})
	return nil
}

func findSubscription(list []models.Subscription, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
